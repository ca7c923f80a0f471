package guardrails

import (
	"fmt"
	"sort"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
)

// FailureReport is the per-category summary returned to the caller when an
// input is blocked. Checks that were not configured report failed=false.
type FailureReport struct {
	PII             PIIReport           `json:"pii"`
	Moderation      ModerationReport    `json:"moderation"`
	Jailbreak       CheckReport         `json:"jailbreak"`
	Hallucination   HallucinationReport `json:"hallucination"`
	NSFW            CheckReport         `json:"nsfw"`
	URLFilter       CheckReport         `json:"url_filter"`
	CustomPrompt    CheckReport         `json:"custom_prompt_check"`
	PromptInjection CheckReport         `json:"prompt_injection"`
}

type CheckReport struct {
	Failed bool `json:"failed"`
}

type PIIReport struct {
	Failed         bool     `json:"failed"`
	DetectedCounts []string `json:"detected_counts"`
}

type ModerationReport struct {
	Failed            bool     `json:"failed"`
	FlaggedCategories []string `json:"flagged_categories"`
}

type HallucinationReport struct {
	Failed                 bool     `json:"failed"`
	Reasoning              string   `json:"reasoning,omitempty"`
	HallucinationType      string   `json:"hallucination_type,omitempty"`
	HallucinatedStatements []string `json:"hallucinated_statements,omitempty"`
	VerifiedStatements     []string `json:"verified_statements,omitempty"`
}

// HasTripwire reports whether any result asks for the input to be blocked.
func HasTripwire(results []CheckResult) bool {
	for _, r := range results {
		if r.TripwireTriggered {
			return true
		}
	}
	return false
}

// SafeText picks the best available sanitized version of the input. The first
// result carrying checked text wins, then the first PII anonymization, then
// the fallback.
func SafeText(results []CheckResult, fallback string) string {
	for _, r := range results {
		if text, ok := checkedText(r.Info); ok {
			return text
		}
	}

	for _, r := range results {
		if pii, ok := r.Info.(PIIInfo); ok && pii.AnonymizedText != nil {
			return *pii.AnonymizedText
		}
	}

	return fallback
}

// checkedText returns the redacted text a result vouches for. Only the PII
// check rewrites its input, so other variants never carry one.
func checkedText(info CheckInfo) (string, bool) {
	if pii, ok := info.(PIIInfo); ok && pii.CheckedText != nil {
		return *pii.CheckedText, true
	}
	return "", false
}

// BuildFailureReport summarizes results by check name. Missing checks and
// results whose info does not match their check default to empty values.
func BuildFailureReport(results []CheckResult) FailureReport {
	report := FailureReport{
		PII:        PIIReport{DetectedCounts: []string{}},
		Moderation: ModerationReport{FlaggedCategories: []string{}},
	}

	if r, ok := findResult(results, config.CheckPII); ok {
		info, _ := r.Info.(PIIInfo)
		report.PII.DetectedCounts = detectedCounts(info.DetectedEntities)
		report.PII.Failed = r.TripwireTriggered || len(report.PII.DetectedCounts) > 0
	}

	if r, ok := findResult(results, config.CheckModeration); ok {
		info, _ := r.Info.(ModerationInfo)
		if info.FlaggedCategories != nil {
			report.Moderation.FlaggedCategories = info.FlaggedCategories
		}
		report.Moderation.Failed = r.TripwireTriggered || len(info.FlaggedCategories) > 0
	}

	if r, ok := findResult(results, config.CheckHallucination); ok {
		info, _ := r.Info.(HallucinationInfo)
		report.Hallucination = HallucinationReport{
			Failed:                 r.TripwireTriggered,
			Reasoning:              info.Reasoning,
			HallucinationType:      info.HallucinationType,
			HallucinatedStatements: info.HallucinatedStatements,
			VerifiedStatements:     info.VerifiedStatements,
		}
	}

	report.Jailbreak.Failed = tripped(results, config.CheckJailbreak)
	report.NSFW.Failed = tripped(results, config.CheckNSFW)
	report.URLFilter.Failed = tripped(results, config.CheckURLFilter)
	report.CustomPrompt.Failed = tripped(results, config.CheckCustomPrompt)
	report.PromptInjection.Failed = tripped(results, config.CheckPromptInjection)

	return report
}

func findResult(results []CheckResult, name string) (CheckResult, bool) {
	for _, r := range results {
		if r.Name == name {
			return r, true
		}
	}
	return CheckResult{}, false
}

func tripped(results []CheckResult, name string) bool {
	r, ok := findResult(results, name)
	return ok && r.TripwireTriggered
}

// detectedCounts renders "ENTITY:n" for every entity with at least one match,
// sorted by entity name.
func detectedCounts(entities map[string][]string) []string {
	counts := make([]string, 0, len(entities))
	for entity, values := range entities {
		if len(values) == 0 {
			continue
		}
		counts = append(counts, fmt.Sprintf("%s:%d", entity, len(values)))
	}
	sort.Strings(counts)
	return counts
}
