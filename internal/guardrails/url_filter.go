package guardrails

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
)

var urlPattern = regexp.MustCompile(`(?i)\b(?:[a-z][a-z0-9+.\-]*://|www\.)[^\s<>"'()\[\]]+`)

// URLFilterCheck trips when the text links to a host outside the allow list
// or uses a scheme that is not allowed. Subdomains of an allowed host pass.
type URLFilterCheck struct{}

func NewURLFilterCheck() *URLFilterCheck {
	return &URLFilterCheck{}
}

func (c *URLFilterCheck) Name() string {
	return config.CheckURLFilter
}

func (c *URLFilterCheck) Run(ctx context.Context, text string, cfg config.CheckConfig) (CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return CheckResult{}, err
	}

	detected := urlPattern.FindAllString(text, -1)
	blocked := make([]string, 0)

	for _, raw := range detected {
		if !urlAllowed(raw, cfg) {
			blocked = append(blocked, raw)
		}
	}

	return CheckResult{
		Name:              config.CheckURLFilter,
		TripwireTriggered: len(blocked) > 0,
		Info: URLFilterInfo{
			DetectedURLs: detected,
			BlockedURLs:  blocked,
		},
	}, nil
}

func urlAllowed(raw string, cfg config.CheckConfig) bool {
	candidate := strings.TrimRight(raw, ".,;:!?")
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return false
	}

	if !containsFold(cfg.AllowedSchemes, u.Scheme) {
		return false
	}

	host := strings.ToLower(u.Hostname())
	for _, allowed := range cfg.URLAllowList {
		allowedHost := normalizeHost(allowed)
		if allowedHost == "" {
			continue
		}
		if host == allowedHost || strings.HasSuffix(host, "."+allowedHost) {
			return true
		}
	}
	return false
}

// normalizeHost reduces an allow list entry such as "https://example.com/docs"
// to its bare host.
func normalizeHost(entry string) string {
	entry = strings.TrimSpace(strings.ToLower(entry))
	if i := strings.Index(entry, "://"); i >= 0 {
		entry = entry[i+3:]
	}
	if i := strings.IndexAny(entry, "/:?#"); i >= 0 {
		entry = entry[:i]
	}
	return strings.TrimPrefix(entry, "*.")
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
