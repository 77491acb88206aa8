package flow

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TaskSpec is the variant-specific part of a Task. Each task type has
// exactly one implementation.
type TaskSpec interface {
	TaskType() TaskType
}

// Task is one element of an agent's task list: a tagged union keyed by Type.
// Spec holds the variant fields of a known type. For an unknown type Spec is
// nil and the variant fields are kept verbatim in Extra.
type Task struct {
	Type      TaskType
	Frequency string
	LastRun   string
	Spec      TaskSpec
	Extra     map[string]any
}

type SEOOptimizer struct {
	Keywords []string `json:"keywords"`
	Content  string   `json:"content"`
}

type CompetitorWatchdog struct {
	Websites []string `json:"websites"`
}

type ProductRecommendation struct {
	Products        []string `json:"products"`
	UserDataSource  string   `json:"user_data_source"`
	SourceURL       string   `json:"source_url"`
	UploadedCSVPath string   `json:"uploaded_csv_path"`
	CompanyPDFPath  string   `json:"company_pdf_path"`
}

type PostCreator struct {
	Topic    string `json:"topic"`
	Platform string `json:"platform"`
}

type SmartEmailManager struct {
	Action           string   `json:"action"`
	To               []string `json:"to"`
	CC               []string `json:"cc"`
	BCC              []string `json:"bcc"`
	Subject          string   `json:"subject"`
	Body             string   `json:"body"`
	Inbox            string   `json:"inbox"`
	Keywords         []string `json:"keywords"`
	Tone             string   `json:"tone"`
	Role             string   `json:"role"`
	CompanyName      string   `json:"company_name"`
	CustomInclusions string   `json:"custom_inclusions"`
	WordLimit        int      `json:"word_limit"`
	TemplateReuse    bool     `json:"template_reuse"`
}

// EmailActions are the smart email manager actions the agent runner knows.
// Only "Send" actually sends.
var EmailActions = []string{"Send", "Draft", "Summarize", "Filter"}

// NormalizeEmailAction returns the canonical spelling of action, matched
// case-insensitively. Unknown actions come back unchanged.
func NormalizeEmailAction(action string) string {
	for _, a := range EmailActions {
		if strings.EqualFold(a, action) {
			return a
		}
	}
	return action
}

type MeetingSummarizer struct {
	RecordingSource string `json:"recording_source"`
	SourceURL       string `json:"source_url"`
}

type CustomerFeedbackAnalyzer struct {
	FeedbackSource string `json:"feedback_source"`
	FilePath       string `json:"file_path"`
	APIEndpoint    string `json:"api_endpoint"`
	FeedbackText   string `json:"feedback_text"`
}

type ContractSummarizer struct {
	ContractSource string `json:"contract_source"`
	SourceURL      string `json:"source_url"`
}

type AIResearchAssistant struct {
	ResearchTopics []string `json:"research_topics"`
	DataSources    []string `json:"data_sources"`
}

type RegulatoryComplianceWatchdog struct {
	RegulatoryBodies []string `json:"regulatory_bodies"`
	Keywords         []string `json:"keywords"`
}

func (*SEOOptimizer) TaskType() TaskType             { return TaskSEOOptimizer }
func (*CompetitorWatchdog) TaskType() TaskType       { return TaskCompetitorWatchdog }
func (*ProductRecommendation) TaskType() TaskType    { return TaskProductRecommendation }
func (*PostCreator) TaskType() TaskType              { return TaskPostCreator }
func (*SmartEmailManager) TaskType() TaskType        { return TaskSmartEmailManager }
func (*MeetingSummarizer) TaskType() TaskType        { return TaskMeetingSummarizer }
func (*CustomerFeedbackAnalyzer) TaskType() TaskType { return TaskCustomerFeedbackAnalyzer }
func (*ContractSummarizer) TaskType() TaskType       { return TaskContractSummarizer }
func (*AIResearchAssistant) TaskType() TaskType      { return TaskAIResearchAssistant }
func (*RegulatoryComplianceWatchdog) TaskType() TaskType {
	return TaskRegulatoryComplianceWatchdog
}

// NewTaskSpec returns an empty spec for t, or nil when t is unknown.
func NewTaskSpec(t TaskType) TaskSpec {
	switch t {
	case TaskSEOOptimizer:
		return &SEOOptimizer{}
	case TaskCompetitorWatchdog:
		return &CompetitorWatchdog{}
	case TaskProductRecommendation:
		return &ProductRecommendation{}
	case TaskPostCreator:
		return &PostCreator{}
	case TaskSmartEmailManager:
		return &SmartEmailManager{}
	case TaskMeetingSummarizer:
		return &MeetingSummarizer{}
	case TaskCustomerFeedbackAnalyzer:
		return &CustomerFeedbackAnalyzer{}
	case TaskContractSummarizer:
		return &ContractSummarizer{}
	case TaskAIResearchAssistant:
		return &AIResearchAssistant{}
	case TaskRegulatoryComplianceWatchdog:
		return &RegulatoryComplianceWatchdog{}
	}
	return nil
}

// NewTask builds a task from a spec, taking the tag from the spec.
func NewTask(spec TaskSpec, frequency string) Task {
	return Task{Type: spec.TaskType(), Frequency: frequency, Spec: spec}
}

type taskHeader struct {
	Type      TaskType `json:"type"`
	Frequency string   `json:"frequency"`
	LastRun   *string  `json:"last_run"`
}

func (t Task) MarshalJSON() ([]byte, error) {
	fields, err := t.Fields()
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var hdr taskHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return fmt.Errorf("decode task header: %w", err)
	}
	if hdr.Type == "" {
		return fmt.Errorf("task has no type")
	}
	*t = Task{Type: hdr.Type, Frequency: hdr.Frequency}
	if hdr.LastRun != nil {
		t.LastRun = *hdr.LastRun
	}

	spec := NewTaskSpec(hdr.Type)
	if spec == nil {
		var all map[string]any
		if err := json.Unmarshal(data, &all); err != nil {
			return err
		}
		for _, k := range []string{"type", "frequency", "last_run"} {
			delete(all, k)
		}
		t.Extra = all
		return nil
	}
	if err := json.Unmarshal(data, spec); err != nil {
		return fmt.Errorf("decode %s task: %w", hdr.Type, err)
	}
	t.Spec = spec
	return nil
}

// Fields flattens the task into its snake_case wire map.
func (t Task) Fields() (map[string]any, error) {
	out := make(map[string]any)
	switch {
	case t.Spec != nil:
		b, err := json.Marshal(t.Spec)
		if err != nil {
			return nil, fmt.Errorf("encode %s task: %w", t.Type, err)
		}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
	default:
		for k, v := range t.Extra {
			out[k] = v
		}
	}
	out["type"] = string(t.Type)
	out["frequency"] = t.Frequency
	if t.LastRun != "" {
		out["last_run"] = t.LastRun
	} else {
		out["last_run"] = nil
	}
	return out, nil
}
