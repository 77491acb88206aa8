package canvas

import (
	"github.com/soochol/agentcanvas/internal/flow"
)

// checkConnection applies the connection rule table to a candidate edge.
//
//   - persona, documents and updates connect only to the agent node, on the
//     handle named after the source type or one of its side variants;
//   - a task connects to another task, or to the agent on a task handle;
//   - any other source is accepted.
func checkConnection(source, target flow.Node, e flow.Edge) error {
	switch source.Type {
	case flow.NodeTypePersona, flow.NodeTypeDocuments, flow.NodeTypeUpdates:
		if target.Type != flow.NodeTypeAgent {
			return rejected("%s can only connect to the agent node, not %s", source.Type, target.Type)
		}
		if !sideHandle(e.TargetHandle, string(source.Type)) {
			return rejected("%s must use the %q handle, got %q", source.Type, source.Type, e.TargetHandle)
		}
	case flow.NodeTypeTask:
		switch target.Type {
		case flow.NodeTypeTask:
		case flow.NodeTypeAgent:
			if !isTaskHandle(e.TargetHandle) {
				return rejected("task must use the %q handle, got %q", flow.HandleTaskWorkflow, e.TargetHandle)
			}
		default:
			return rejected("task can only connect to a task or the agent node, not %s", target.Type)
		}
	}
	return nil
}

// sideHandle matches name itself and its -left/-right variants.
func sideHandle(handle, name string) bool {
	return handle == name || handle == name+"-left" || handle == name+"-right"
}

func isTaskHandle(handle string) bool {
	switch handle {
	case flow.HandleTaskWorkflow, flow.HandleTaskLeft, flow.HandleTaskRight:
		return true
	}
	return false
}
