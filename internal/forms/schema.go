// Package forms binds node data bags to per-type input forms. A schema
// lists the fields of one node type or task subtype; Render reads a node
// through its schema and Edit turns one field change into a canvas command.
package forms

import (
	"fmt"

	"github.com/soochol/agentcanvas/internal/flow"
)

type Kind string

const (
	KindText     Kind = "text"
	KindTextarea Kind = "textarea"
	KindList     Kind = "list"
	KindSelect   Kind = "select"
	KindCheckbox Kind = "checkbox"
	KindNumber   Kind = "number"
	KindURL      Kind = "url"
)

// Field describes one input. VisibleWhen is an expression over the node's
// data bag; an empty expression means always visible.
type Field struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Kind        Kind     `json:"kind"`
	Options     []string `json:"options,omitempty"`
	Placeholder string   `json:"placeholder,omitempty"`
	Default     any      `json:"default,omitempty"`
	VisibleWhen string   `json:"visible_when,omitempty"`
}

type Schema struct {
	Title  string  `json:"title"`
	Fields []Field `json:"fields"`
}

// Field returns the field with the given key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

var (
	taskFrequencies   = []string{"daily", "weekly", "monthly", "on-demand"}
	updateFrequencies = []string{"hourly", "daily", "weekly", "monthly"}
	sourceKinds       = []string{"File Upload", "URL"}
)

func text(key, label string) Field     { return Field{Key: key, Label: label, Kind: KindText} }
func list(key, label string) Field     { return Field{Key: key, Label: label, Kind: KindList, Placeholder: "One per line"} }
func textarea(key, label string) Field { return Field{Key: key, Label: label, Kind: KindTextarea} }
func url(key, label string) Field      { return Field{Key: key, Label: label, Kind: KindURL} }

func choice(key, label string, options ...string) Field {
	return Field{Key: key, Label: label, Kind: KindSelect, Options: options}
}

func frequency() Field {
	return Field{Key: "frequency", Label: "Frequency", Kind: KindSelect, Options: taskFrequencies, Default: "daily"}
}

var (
	personaSchema = Schema{Title: "Persona", Fields: []Field{
		{Key: "label", Label: "Name", Kind: KindText, Placeholder: "Agent name"},
		textarea("description", "Description"),
		{Key: "role", Label: "Qualities", Kind: KindTextarea, Placeholder: "Role and qualities"},
	}}

	documentsSchema = Schema{Title: "Documents", Fields: []Field{
		text("label", "Name"),
		textarea("description", "Description"),
		list("sources", "Sources"),
	}}

	updatesSchema = Schema{Title: "Updates", Fields: []Field{
		text("label", "Name"),
		textarea("description", "Description"),
		choice("frequency", "Frequency", updateFrequencies...),
		url("endpoint", "Endpoint"),
		text("recipient", "Recipient"),
	}}

	emptySchema = Schema{Fields: []Field{}}
)

// taskSchemas is keyed by task type; every task type has an entry.
var taskSchemas = map[flow.TaskType]Schema{
	flow.TaskSEOOptimizer: {Fields: []Field{
		list("keywords", "Keywords"),
		textarea("content", "Content"),
		frequency(),
	}},
	flow.TaskCompetitorWatchdog: {Fields: []Field{
		list("websites", "Websites"),
		frequency(),
	}},
	flow.TaskProductRecommendation: {Fields: []Field{
		list("products", "Products"),
		text("userDataSource", "User Data Source"),
		url("sourceUrl", "Source URL"),
		text("uploadedCsvPath", "Uploaded CSV Path"),
		text("companyPdfPath", "Company PDF Path"),
		frequency(),
	}},
	flow.TaskPostCreator: {Fields: []Field{
		text("topic", "Topic"),
		choice("platform", "Platform", "Facebook", "Twitter", "LinkedIn", "Instagram"),
		frequency(),
	}},
	flow.TaskSmartEmailManager: {Fields: []Field{
		{Key: "action", Label: "Action", Kind: KindSelect, Options: flow.EmailActions, Default: "Send"},
		{Key: "inbox", Label: "Inbox URL", Kind: KindURL, VisibleWhen: `action in ["Summarize", "summarize"]`},
		{Key: "keywords", Label: "Keywords", Kind: KindList, Placeholder: "One per line", VisibleWhen: `action in ["Filter", "filter"]`},
		list("to", "To"),
		list("cc", "CC"),
		list("bcc", "BCC"),
		text("subject", "Subject"),
		textarea("body", "Body"),
		text("tone", "Tone"),
		text("role", "Role"),
		text("companyName", "Company Name"),
		textarea("customInclusions", "Custom Inclusions"),
		{Key: "wordLimit", Label: "Word Limit", Kind: KindNumber, Default: 300},
		{Key: "templateReuse", Label: "Template Reuse", Kind: KindCheckbox, Default: false},
		frequency(),
	}},
	flow.TaskMeetingSummarizer: {Fields: []Field{
		choice("recordingSource", "Recording Source", sourceKinds...),
		url("sourceUrl", "Source URL"),
		frequency(),
	}},
	flow.TaskCustomerFeedbackAnalyzer: {Fields: []Field{
		choice("feedbackSource", "Feedback Source", "CSV File", "API Endpoint", "Text Input"),
		{Key: "filePath", Label: "File Path", Kind: KindText, VisibleWhen: `feedbackSource == "CSV File"`},
		{Key: "apiEndpoint", Label: "API Endpoint", Kind: KindURL, VisibleWhen: `feedbackSource == "API Endpoint"`},
		{Key: "feedbackText", Label: "Feedback Text", Kind: KindTextarea, VisibleWhen: `feedbackSource == "Text Input"`},
		frequency(),
	}},
	flow.TaskContractSummarizer: {Fields: []Field{
		choice("contractSource", "Contract Source", sourceKinds...),
		{Key: "sourceUrl", Label: "Source URL", Kind: KindURL, VisibleWhen: `contractSource == "URL"`},
		frequency(),
	}},
	flow.TaskAIResearchAssistant: {Fields: []Field{
		list("researchTopics", "Research Topics"),
		list("dataSources", "Data Sources"),
		frequency(),
	}},
	flow.TaskRegulatoryComplianceWatchdog: {Fields: []Field{
		list("regulatoryBodies", "Regulatory Bodies"),
		list("keywords", "Keywords"),
		frequency(),
	}},
}

// SchemaFor returns the form schema of a node. Task nodes dispatch on their
// subtype; agent and orchestrator nodes have no editable fields.
func SchemaFor(n flow.Node) (Schema, error) {
	switch n.Type {
	case flow.NodeTypePersona:
		return personaSchema, nil
	case flow.NodeTypeDocuments:
		return documentsSchema, nil
	case flow.NodeTypeUpdates:
		return updatesSchema, nil
	case flow.NodeTypeAgent, flow.NodeTypeOrchestrator:
		return emptySchema, nil
	case flow.NodeTypeTask:
		tt, ok := flow.ParseTaskType(n.Data.String("subtype"))
		if !ok {
			return Schema{}, fmt.Errorf("%w: %q", ErrUnknownSubtype, n.Data.String("subtype"))
		}
		s := taskSchemas[tt]
		s.Title = tt.Label()
		return s, nil
	}
	return Schema{}, fmt.Errorf("%w: %q", ErrUnknownNodeType, n.Type)
}
