package flow

import (
	"strings"
	"unicode"
)

// TaskType is the tag of the task union. The wire form is snake_case.
type TaskType string

const (
	TaskSEOOptimizer                 TaskType = "seo_optimizer"
	TaskCompetitorWatchdog           TaskType = "competitor_watchdog"
	TaskProductRecommendation        TaskType = "product_recommendation"
	TaskPostCreator                  TaskType = "post_creator"
	TaskSmartEmailManager            TaskType = "smart_email_manager"
	TaskMeetingSummarizer            TaskType = "meeting_summarizer"
	TaskCustomerFeedbackAnalyzer     TaskType = "customer_feedback_analyzer"
	TaskContractSummarizer           TaskType = "contract_summarizer"
	TaskAIResearchAssistant          TaskType = "ai_research_assistant"
	TaskRegulatoryComplianceWatchdog TaskType = "regulatory_compliance_watchdog"
)

var taskTypes = []TaskType{
	TaskSEOOptimizer,
	TaskCompetitorWatchdog,
	TaskProductRecommendation,
	TaskPostCreator,
	TaskSmartEmailManager,
	TaskMeetingSummarizer,
	TaskCustomerFeedbackAnalyzer,
	TaskContractSummarizer,
	TaskAIResearchAssistant,
	TaskRegulatoryComplianceWatchdog,
}

// legacy subtype spellings still found in saved canvases
var taskAliases = map[string]TaskType{
	"productRecommendationAI": TaskProductRecommendation,
}

// TaskTypes returns every task type in palette order.
func TaskTypes() []TaskType {
	return append([]TaskType(nil), taskTypes...)
}

// ParseTaskType accepts the snake_case wire form, the camelCase canvas
// subtype form, or a legacy alias.
func ParseTaskType(s string) (TaskType, bool) {
	if t, ok := taskAliases[s]; ok {
		return t, true
	}
	if t := TaskType(s); t.Valid() {
		return t, true
	}
	candidate := TaskType(CamelToSnake(s))
	if candidate.Valid() {
		return candidate, true
	}
	return "", false
}

func (t TaskType) Valid() bool {
	for _, known := range taskTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Subtype is the camelCase form stored in a task node's "subtype" field.
func (t TaskType) Subtype() string {
	return SnakeToCamel(string(t))
}

// Label is the human title, e.g. "Seo Optimizer".
func (t TaskType) Label() string {
	return TitleCase(string(t))
}

// SnakeToCamel converts "company_name" to "companyName".
func SnakeToCamel(s string) string {
	var sb strings.Builder
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			sb.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// CamelToSnake converts "companyName" to "company_name".
func CamelToSnake(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// TitleCase turns "post_creator" or "postCreator" into "Post Creator".
func TitleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(CamelToSnake(s), "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
