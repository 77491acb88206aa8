package forms

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/soochol/agentcanvas/internal/flow"
)

// compiled visibleWhen programs, keyed by source
var programs sync.Map

func compileCondition(src string) (*vm.Program, error) {
	if p, ok := programs.Load(src); ok {
		return p.(*vm.Program), nil
	}
	p, err := expr.Compile(src, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", src, err)
	}
	programs.Store(src, p)
	return p, nil
}

// visible evaluates a field's condition against the data bag. Keys missing
// from the bag evaluate as nil.
func visible(f Field, data flow.Data) (bool, error) {
	if f.VisibleWhen == "" {
		return true, nil
	}
	p, err := compileCondition(f.VisibleWhen)
	if err != nil {
		return false, err
	}
	env := make(map[string]any, len(data))
	for k, v := range data {
		env[k] = v
	}
	out, err := expr.Run(p, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition %q: %w", f.VisibleWhen, err)
	}
	b, _ := out.(bool)
	return b, nil
}
