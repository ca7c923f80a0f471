package workflow

import "strings"

type Intent string

const (
	IntentEvaluate  Intent = "evaluate"
	IntentWebSearch Intent = "web_search"
)

// evaluationTriggers is the closed set of messages that request a document
// evaluation. Matching is exact and case-sensitive.
var evaluationTriggers = []string{
	"evaluate", "Evaluate",
	"analyse", "Analyse",
	"assessment", "Assessment",
	"review", "Review",
	"check", "Check",
	"inspect", "Inspect",
	"test", "Test",
	"validate", "Validate",
	"verify", "Verify",
	"examine", "Examine",
	"scrutinize", "Scrutinize",
	"audit", "Audit",
}

// Classify routes a message whose trimmed text is exactly one of the
// evaluation triggers to the evaluator; everything else goes to web search.
func Classify(text string) Intent {
	trimmed := strings.TrimSpace(text)
	for _, trigger := range evaluationTriggers {
		if trimmed == trigger {
			return IntentEvaluate
		}
	}
	return IntentWebSearch
}
