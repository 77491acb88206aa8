package canvas

import (
	"errors"
	"fmt"
)

var (
	ErrNodeNotFound        = errors.New("node not found")
	ErrEdgeNotFound        = errors.New("edge not found")
	ErrRootNode            = errors.New("the agent root node cannot be deleted")
	ErrNotDraggable        = errors.New("node is not draggable")
	ErrConnectionRejected  = errors.New("connection rejected")
	ErrSubtypeRequired     = errors.New("task subtype required")
	ErrSubtypeLocked       = errors.New("task subtype is locked")
	ErrUnknownSubtype      = errors.New("unknown task subtype")
	ErrUnsupportedNodeType = errors.New("node type cannot be added from the palette")
)

// SubtypeRequiredError is returned by AddNode for a task without a subtype.
// It carries the choices of the selection prompt.
type SubtypeRequiredError struct {
	Choices []Choice
}

func (e *SubtypeRequiredError) Error() string {
	return fmt.Sprintf("%s: choose one of %d task types", ErrSubtypeRequired, len(e.Choices))
}

func (e *SubtypeRequiredError) Is(target error) bool { return target == ErrSubtypeRequired }

func rejected(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConnectionRejected, fmt.Sprintf(format, args...))
}
