package forms

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/soochol/agentcanvas/internal/canvas"
	"github.com/soochol/agentcanvas/internal/flow"
	"github.com/soochol/agentcanvas/internal/schedule"
)

var (
	ErrUnknownField    = errors.New("unknown form field")
	ErrInvalidValue    = errors.New("invalid field value")
	ErrUnknownSubtype  = errors.New("unknown task subtype")
	ErrUnknownNodeType = errors.New("unknown node type")
)

// Value is a field together with its current value. List values are
// rendered as newline-joined text.
type Value struct {
	Field
	Value   any  `json:"value"`
	Visible bool `json:"visible"`
}

type Form struct {
	NodeID   string        `json:"node_id"`
	NodeType flow.NodeType `json:"node_type"`
	Subtype  string        `json:"subtype,omitempty"`
	Title    string        `json:"title"`
	Fields   []Value       `json:"fields"`
	NextRun  *time.Time    `json:"next_run,omitempty"`
	DueIn    string        `json:"due_in,omitempty"`
}

// Render reads the node's data bag through its schema. Missing values show
// the field default or an empty value of the field's kind.
func Render(n flow.Node, now time.Time) (Form, error) {
	s, err := SchemaFor(n)
	if err != nil {
		return Form{}, err
	}
	f := Form{
		NodeID:   n.ID,
		NodeType: n.Type,
		Subtype:  n.Data.String("subtype"),
		Title:    s.Title,
		Fields:   make([]Value, 0, len(s.Fields)),
	}
	for _, field := range s.Fields {
		vis, err := visible(field, n.Data)
		if err != nil {
			slog.Warn("forms: bad visibility condition", "field", field.Key, "err", err)
		}
		f.Fields = append(f.Fields, Value{Field: field, Value: display(field, n.Data), Visible: vis})
	}

	if n.Type == flow.NodeTypeTask {
		freq := n.Data.String("frequency")
		last, err := schedule.ParseLastRun(n.Data.String("lastRun"), now.Location())
		if err == nil && freq != "" && freq != schedule.OnDemand {
			if next, err := schedule.NextRun(freq, last, now); err == nil {
				f.NextRun = &next
				f.DueIn = schedule.FormatDueIn(next.Sub(now))
			}
		}
	}
	return f, nil
}

func display(f Field, d flow.Data) any {
	_, present := d[f.Key]
	switch f.Kind {
	case KindList:
		return EncodeList(d.Strings(f.Key))
	case KindCheckbox:
		if !present {
			if b, ok := f.Default.(bool); ok {
				return b
			}
		}
		return d.Bool(f.Key)
	case KindNumber:
		if n, ok := d.Int(f.Key); ok {
			return n
		}
		return f.Default
	default:
		if s := d.String(f.Key); s != "" || present {
			return s
		}
		if f.Default != nil {
			return f.Default
		}
		return ""
	}
}

// Edit parses one field change and returns the canvas command that applies
// it. raw is the input as submitted: text for text-like fields, a bool or
// "true"/"false" for checkboxes, a number or numeric text for numbers.
func Edit(n flow.Node, key string, raw any) (canvas.UpdateNodeData, error) {
	s, err := SchemaFor(n)
	if err != nil {
		return canvas.UpdateNodeData{}, err
	}
	f, ok := s.Field(key)
	if !ok {
		return canvas.UpdateNodeData{}, fmt.Errorf("%w: %s on %s node", ErrUnknownField, key, n.Type)
	}
	v, err := parse(f, raw)
	if err != nil {
		return canvas.UpdateNodeData{}, err
	}
	return canvas.UpdateNodeData{NodeID: n.ID, Patch: flow.Data{key: v}}, nil
}

func parse(f Field, raw any) (any, error) {
	switch f.Kind {
	case KindList:
		switch v := raw.(type) {
		case string:
			return DecodeList(v), nil
		case []string:
			return v, nil
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					return nil, fmt.Errorf("%w: %s items must be text", ErrInvalidValue, f.Key)
				}
				out = append(out, s)
			}
			return out, nil
		}
	case KindCheckbox:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.Key, err)
			}
			return b, nil
		}
	case KindNumber:
		switch v := raw.(type) {
		case float64:
			return int(v), nil
		case int:
			return v, nil
		case string:
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidValue, f.Key, err)
			}
			return n, nil
		}
	case KindSelect:
		s, ok := raw.(string)
		if !ok {
			break
		}
		i := slices.IndexFunc(f.Options, func(o string) bool { return strings.EqualFold(o, s) })
		if i < 0 {
			return nil, fmt.Errorf("%w: %s must be one of %s", ErrInvalidValue, f.Key, strings.Join(f.Options, ", "))
		}
		return f.Options[i], nil
	default:
		if s, ok := raw.(string); ok {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %s does not accept %T", ErrInvalidValue, f.Key, raw)
}
