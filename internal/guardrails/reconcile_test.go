package guardrails

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/povarna/generative-ai-agents/proposal-agent/internal/config"
)

func TestHasTripwire(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    bool
	}{
		{name: "no results", results: nil, want: false},
		{
			name: "none triggered",
			results: []CheckResult{
				{Name: config.CheckPII},
				{Name: config.CheckModeration},
			},
			want: false,
		},
		{
			name: "one triggered",
			results: []CheckResult{
				{Name: config.CheckPII},
				{Name: config.CheckJailbreak, TripwireTriggered: true},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasTripwire(tt.results); got != tt.want {
				t.Errorf("HasTripwire() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSafeText(t *testing.T) {
	tests := []struct {
		name    string
		results []CheckResult
		want    string
	}{
		{
			name:    "no results falls back",
			results: nil,
			want:    "original",
		},
		{
			name: "no text fields falls back",
			results: []CheckResult{
				{Name: config.CheckModeration, Info: ModerationInfo{}},
				{Name: config.CheckJailbreak, Info: LLMCheckInfo{}},
				{Name: config.CheckURLFilter, Info: nil},
			},
			want: "original",
		},
		{
			name: "checked text wins over other results",
			results: []CheckResult{
				{Name: config.CheckModeration, Info: ModerationInfo{FlaggedCategories: []string{"hate"}}},
				{Name: config.CheckPII, Info: PIIInfo{CheckedText: strPtr("X"), AnonymizedText: strPtr("Y")}},
				{Name: config.CheckJailbreak, TripwireTriggered: true, Info: LLMCheckInfo{Flagged: true}},
			},
			want: "X",
		},
		{
			name: "anonymized text used when no checked text",
			results: []CheckResult{
				{Name: config.CheckModeration, Info: ModerationInfo{}},
				{Name: config.CheckPII, Info: PIIInfo{AnonymizedText: strPtr("Y")}},
			},
			want: "Y",
		},
		{
			name: "first checked text wins",
			results: []CheckResult{
				{Name: config.CheckPII, Info: PIIInfo{CheckedText: strPtr("first")}},
				{Name: config.CheckPII, Info: PIIInfo{CheckedText: strPtr("second")}},
			},
			want: "first",
		},
		{
			name: "checked text beats earlier anonymized text",
			results: []CheckResult{
				{Name: config.CheckPII, Info: PIIInfo{AnonymizedText: strPtr("Y")}},
				{Name: config.CheckPII, Info: PIIInfo{CheckedText: strPtr("X")}},
			},
			want: "X",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeText(tt.results, "original"); got != tt.want {
				t.Errorf("SafeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildFailureReport_NothingConfigured(t *testing.T) {
	report := BuildFailureReport(nil)

	if report.PII.Failed || report.Moderation.Failed || report.Jailbreak.Failed ||
		report.Hallucination.Failed || report.NSFW.Failed || report.URLFilter.Failed ||
		report.CustomPrompt.Failed || report.PromptInjection.Failed {
		t.Errorf("Expected every check to pass, got %+v", report)
	}
	if report.PII.DetectedCounts == nil || len(report.PII.DetectedCounts) != 0 {
		t.Errorf("Expected empty detected counts, got %v", report.PII.DetectedCounts)
	}
	if report.Moderation.FlaggedCategories == nil || len(report.Moderation.FlaggedCategories) != 0 {
		t.Errorf("Expected empty flagged categories, got %v", report.Moderation.FlaggedCategories)
	}
}

func TestBuildFailureReport_PII(t *testing.T) {
	results := []CheckResult{
		{
			Name: config.CheckPII,
			Info: PIIInfo{DetectedEntities: map[string][]string{
				EntitySSN:        {"123-45-6789"},
				EntityCreditCard: {"4111 1111 1111 1111", "5500 0000 0000 0004"},
				EntityEmail:      {},
			}},
		},
	}

	report := BuildFailureReport(results)

	if !report.PII.Failed {
		t.Error("Expected PII to fail when entities were detected")
	}
	want := []string{"CREDIT_CARD:2", "US_SSN:1"}
	if !reflect.DeepEqual(report.PII.DetectedCounts, want) {
		t.Errorf("Expected detected counts %v, got %v", want, report.PII.DetectedCounts)
	}
}

func TestBuildFailureReport_PIIEmptyEntitiesDoNotFail(t *testing.T) {
	results := []CheckResult{
		{Name: config.CheckPII, Info: PIIInfo{DetectedEntities: map[string][]string{EntitySSN: {}}}},
	}

	report := BuildFailureReport(results)
	if report.PII.Failed {
		t.Error("Expected PII to pass when every entity list is empty")
	}
}

func TestBuildFailureReport_Moderation(t *testing.T) {
	results := []CheckResult{
		{
			Name:              config.CheckModeration,
			TripwireTriggered: true,
			Info:              ModerationInfo{FlaggedCategories: []string{"hate/threatening"}},
		},
	}

	report := BuildFailureReport(results)

	if !report.Moderation.Failed {
		t.Error("Expected moderation to fail")
	}
	if !reflect.DeepEqual(report.Moderation.FlaggedCategories, []string{"hate/threatening"}) {
		t.Errorf("Unexpected flagged categories %v", report.Moderation.FlaggedCategories)
	}
}

func TestBuildFailureReport_Hallucination(t *testing.T) {
	results := []CheckResult{
		{
			Name:              config.CheckHallucination,
			TripwireTriggered: true,
			Info: HallucinationInfo{
				Reasoning:              "revenue figure is not in the source",
				HallucinationType:      "fabricated",
				HallucinatedStatements: []string{"Revenue was $9B"},
				VerifiedStatements:     []string{"Founded in 1999"},
			},
		},
	}

	report := BuildFailureReport(results)

	if !report.Hallucination.Failed {
		t.Error("Expected hallucination to fail")
	}
	if report.Hallucination.HallucinationType != "fabricated" {
		t.Errorf("Unexpected hallucination type %q", report.Hallucination.HallucinationType)
	}
	if len(report.Hallucination.HallucinatedStatements) != 1 || len(report.Hallucination.VerifiedStatements) != 1 {
		t.Errorf("Unexpected statements %+v", report.Hallucination)
	}
}

func TestBuildFailureReport_TripwireOnlyChecks(t *testing.T) {
	results := []CheckResult{
		{Name: config.CheckJailbreak, TripwireTriggered: true},
		{Name: config.CheckNSFW, TripwireTriggered: false},
		{Name: config.CheckURLFilter, TripwireTriggered: true},
		{Name: config.CheckCustomPrompt, TripwireTriggered: true},
		{Name: config.CheckPromptInjection, TripwireTriggered: true},
	}

	report := BuildFailureReport(results)

	if !report.Jailbreak.Failed || report.NSFW.Failed || !report.URLFilter.Failed ||
		!report.CustomPrompt.Failed || !report.PromptInjection.Failed {
		t.Errorf("Unexpected report %+v", report)
	}
}

func TestBuildFailureReport_MismatchedInfoDefaultsToEmpty(t *testing.T) {
	results := []CheckResult{
		{Name: config.CheckPII, Info: ModerationInfo{FlaggedCategories: []string{"hate"}}},
		{Name: config.CheckModeration, Info: nil},
		{Name: config.CheckHallucination, Info: LLMCheckInfo{Reason: "wrong variant"}},
	}

	report := BuildFailureReport(results)

	if report.PII.Failed || report.Moderation.Failed || report.Hallucination.Failed {
		t.Errorf("Expected malformed results to default to passing, got %+v", report)
	}
	if report.Hallucination.Reasoning != "" {
		t.Errorf("Expected empty reasoning, got %q", report.Hallucination.Reasoning)
	}
}

func TestFailureReport_JSONShape(t *testing.T) {
	data, err := json.Marshal(BuildFailureReport(nil))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var decoded map[string]map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	keys := []string{"pii", "moderation", "jailbreak", "hallucination", "nsfw", "url_filter", "custom_prompt_check", "prompt_injection"}
	for _, key := range keys {
		section, ok := decoded[key]
		if !ok {
			t.Errorf("Missing report key %q", key)
			continue
		}
		if failed, ok := section["failed"].(bool); !ok || failed {
			t.Errorf("Expected %s.failed=false, got %v", key, section["failed"])
		}
	}

	if _, ok := decoded["pii"]["detected_counts"].([]any); !ok {
		t.Error("Expected pii.detected_counts to be an array")
	}
	if _, ok := decoded["moderation"]["flagged_categories"].([]any); !ok {
		t.Error("Expected moderation.flagged_categories to be an array")
	}
}
