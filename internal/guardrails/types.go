package guardrails

// CheckResult is the outcome of one configured guardrail for one input.
type CheckResult struct {
	Name              string
	TripwireTriggered bool
	Info              CheckInfo
}

// CheckInfo is the check-specific payload of a result. The set of variants
// is closed: PIIInfo, ModerationInfo, LLMCheckInfo, HallucinationInfo and
// URLFilterInfo.
type CheckInfo interface {
	checkInfo()
}

type PIIInfo struct {
	// DetectedEntities maps an entity type to the matched values.
	DetectedEntities map[string][]string
	AnonymizedText   *string
	CheckedText      *string
}

type ModerationInfo struct {
	FlaggedCategories []string
}

// LLMCheckInfo is produced by the model-judged checks (jailbreak, NSFW,
// custom prompt, prompt injection).
type LLMCheckInfo struct {
	Flagged    bool
	Confidence float64
	Threshold  float64
	Reason     string
}

type HallucinationInfo struct {
	Flagged                bool
	Confidence             float64
	Threshold              float64
	Reasoning              string
	HallucinationType      string
	HallucinatedStatements []string
	VerifiedStatements     []string
}

type URLFilterInfo struct {
	DetectedURLs []string
	BlockedURLs  []string
}

func (PIIInfo) checkInfo()           {}
func (ModerationInfo) checkInfo()    {}
func (LLMCheckInfo) checkInfo()      {}
func (HallucinationInfo) checkInfo() {}
func (URLFilterInfo) checkInfo()     {}
