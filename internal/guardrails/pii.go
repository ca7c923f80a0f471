package guardrails

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
)

// Entity types recognised by the PII check.
const (
	EntityCreditCard = "CREDIT_CARD"
	EntityIBAN       = "IBAN_CODE"
	EntitySSN        = "US_SSN"
	EntityPassport   = "US_PASSPORT"
	EntityBankNumber = "US_BANK_NUMBER"
	EntityEmail      = "EMAIL_ADDRESS"
	EntityPhone      = "PHONE_NUMBER"
)

type entityPattern struct {
	entity string
	re     *regexp.Regexp
}

// piiPatterns is ordered by precedence. Each pattern runs on text already
// masked by the patterns before it, so a card number is never re-counted as
// a bank or phone number.
var piiPatterns = []entityPattern{
	// Visa, Mastercard, Amex, Discover with optional spaces or dashes
	{EntityCreditCard, regexp.MustCompile(`\b(?:4\d{3}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}|5[1-5]\d{2}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}|3[47]\d{2}[-\s]?\d{6}[-\s]?\d{5}|6011[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4})\b`)},
	{EntityIBAN, regexp.MustCompile(`\b[A-Z]{2}\d{2}[-\s]?[A-Z0-9]{4}[-\s]?(?:[A-Z0-9]{4}[-\s]?){1,7}[A-Z0-9]{1,4}\b`)},
	// 123-45-6789 or 123 45 6789
	{EntitySSN, regexp.MustCompile(`\b\d{3}[-\s]\d{2}[-\s]\d{4}\b`)},
	{EntityPassport, regexp.MustCompile(`\b[A-Z]\d{8}\b`)},
	{EntityBankNumber, regexp.MustCompile(`\b\d{8,17}\b`)},
	{EntityEmail, regexp.MustCompile(`\b[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}\b`)},
	{EntityPhone, regexp.MustCompile(`(?:\+\d{1,3}[-\s]?\d{1,4}[-\s]?\d{3,4}[-\s]?\d{3,4}\b|(?:\+1[-\s]?)?\(?\b\d{3}\)?[-\s.]?\d{3}[-\s.]?\d{4}\b)`)},
}

var (
	base64Token = regexp.MustCompile(`^[A-Za-z0-9+/_-]{12,}={0,2}$`)
	hexToken    = regexp.MustCompile(`^(?:[0-9a-fA-F]{2}){6,}$`)
)

// PIICheck detects and masks personally identifiable information with
// regular expressions. Matches are replaced by "<ENTITY>".
type PIICheck struct{}

func NewPIICheck() *PIICheck {
	return &PIICheck{}
}

func (c *PIICheck) Name() string {
	return config.CheckPII
}

func (c *PIICheck) Run(ctx context.Context, text string, cfg config.CheckConfig) (CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return CheckResult{}, err
	}

	enabled := enabledEntities(cfg.Entities)
	detected := make(map[string][]string)

	masked := maskPlain(text, enabled, detected)
	if cfg.DetectEncodedPII {
		masked = maskEncoded(masked, enabled, detected)
	}

	return CheckResult{
		Name:              config.CheckPII,
		TripwireTriggered: cfg.Blocks() && len(detected) > 0,
		Info: PIIInfo{
			DetectedEntities: detected,
			AnonymizedText:   &masked,
			CheckedText:      &masked,
		},
	}, nil
}

// enabledEntities returns the configured entity set; an empty list enables
// every known entity.
func enabledEntities(entities []string) map[string]bool {
	enabled := make(map[string]bool, len(piiPatterns))
	if len(entities) == 0 {
		for _, p := range piiPatterns {
			enabled[p.entity] = true
		}
		return enabled
	}
	for _, e := range entities {
		enabled[strings.ToUpper(e)] = true
	}
	return enabled
}

func maskPlain(text string, enabled map[string]bool, detected map[string][]string) string {
	for _, p := range piiPatterns {
		if !enabled[p.entity] {
			continue
		}
		text = p.re.ReplaceAllStringFunc(text, func(match string) string {
			detected[p.entity] = append(detected[p.entity], match)
			return placeholder(p.entity)
		})
	}
	return text
}

// maskEncoded decodes URL-encoded, base64 and hex tokens and masks the whole
// token when its decoded form contains PII.
func maskEncoded(text string, enabled map[string]bool, detected map[string][]string) string {
	fields := strings.Fields(text)
	for _, token := range fields {
		decoded, ok := decodeToken(token)
		if !ok {
			continue
		}

		found := make(map[string][]string)
		maskPlain(decoded, enabled, found)
		if len(found) == 0 {
			continue
		}

		first := ""
		for _, p := range piiPatterns {
			if values, ok := found[p.entity]; ok {
				detected[p.entity] = append(detected[p.entity], values...)
				if first == "" {
					first = p.entity
				}
			}
		}
		text = strings.Replace(text, token, placeholder(first), 1)
	}
	return text
}

func decodeToken(token string) (string, bool) {
	if strings.Contains(token, "%") {
		if decoded, err := url.QueryUnescape(token); err == nil && decoded != token && printable(decoded) {
			return decoded, true
		}
	}

	if hexToken.MatchString(token) {
		if raw, err := hex.DecodeString(token); err == nil && printable(string(raw)) {
			return string(raw), true
		}
	}

	if base64Token.MatchString(token) {
		for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding, base64.RawStdEncoding, base64.RawURLEncoding} {
			if raw, err := enc.DecodeString(token); err == nil && printable(string(raw)) {
				return string(raw), true
			}
		}
	}

	return "", false
}

func printable(s string) bool {
	if s == "" || !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

func placeholder(entity string) string {
	return "<" + entity + ">"
}
