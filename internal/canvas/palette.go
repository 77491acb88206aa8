package canvas

import (
	"fmt"

	"github.com/soochol/agentcanvas/internal/flow"
)

// Choice is one entry of the task selection prompt.
type Choice struct {
	Subtype string `json:"subtype"`
	Label   string `json:"label"`
	Locked  bool   `json:"locked"`
}

// premium components shown in the prompt but not yet available
var lockedSubtypes = []string{
	"mailSender",
	"aiPrompter",
	"scrapeWebPage",
	"summriseData",
	"createImage",
	"callApi",
}

// TaskChoices lists the free task subtypes followed by the locked ones.
func TaskChoices() []Choice {
	var out []Choice
	for _, t := range flow.TaskTypes() {
		out = append(out, Choice{Subtype: t.Subtype(), Label: t.Label(), Locked: false})
	}
	for _, s := range lockedSubtypes {
		out = append(out, Choice{Subtype: s, Label: flow.TitleCase(s), Locked: true})
	}
	return out
}

func isLocked(subtype string) bool {
	for _, s := range lockedSubtypes {
		if s == subtype {
			return true
		}
	}
	return false
}

// paletteTypes are the node types a user may add by hand.
var paletteTypes = map[flow.NodeType]bool{
	flow.NodeTypePersona:   true,
	flow.NodeTypeDocuments: true,
	flow.NodeTypeTask:      true,
	flow.NodeTypeUpdates:   true,
}

// defaultData returns the starting data bag for a new node. subtype is the
// canonical camelCase task subtype, or "" for non-task nodes.
func defaultData(t flow.NodeType, subtype string) flow.Data {
	label := fmt.Sprintf("New %s Node", flow.TitleCase(string(t)))
	if subtype != "" {
		label = flow.TitleCase(subtype) + " Node"
	}
	d := flow.Data{
		"label":       label,
		"description": "Add a description here",
		"role":        "",
	}

	switch t {
	case flow.NodeTypePersona:
		d["role"] = ""
	case flow.NodeTypeDocuments:
		d["sources"] = []string{}
	case flow.NodeTypeUpdates:
		d["frequency"] = ""
	case flow.NodeTypeTask:
		d["subtype"] = subtype
		d["frequency"] = "daily"
		switch subtype {
		case flow.TaskSmartEmailManager.Subtype():
			d["action"] = "Send"
		case flow.TaskCustomerFeedbackAnalyzer.Subtype():
			d["feedbackSource"] = "CSV File"
		case flow.TaskMeetingSummarizer.Subtype():
			d["recordingSource"] = "File Upload"
		case flow.TaskContractSummarizer.Subtype():
			d["contractSource"] = "File Upload"
		}
	}
	return d
}
