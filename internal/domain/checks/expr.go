package checks

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/dftest-dev/dftest/internal/domain/dataset"
	"github.com/dftest-dev/dftest/internal/domain/values"
)

// Complexity limits applied to every expression.
const (
	maxExpressionLength = 1000
	maxASTNodes         = 100
)

// ExprSpec is the parameter record of expr_test.
//
// The expression sees:
//   - value: the cell's string form
//   - number: the cell as a float (0 when not numeric)
//   - is_number: whether the cell is numeric
//   - column: the bound column name
//   - row: every cell of the current row by column name, as strings
//
// plus the helper isDate(value, layout) using Go time layouts. Expressions
// reading row build a RowTest, e.g. `float(row.Apps) >= float(row.Accept)`.
type ExprSpec struct {
	Expression string
}

func (s ExprSpec) Kind() string { return KindExpr }

func (s ExprSpec) Describe() string {
	return s.Expression
}

func exprEnv(v dataset.Value, column string, row map[string]dataset.Value) map[string]any {
	number, isNumber := v.Float()
	cells := make(map[string]string, len(row))
	for name, cell := range row {
		cells[name] = cell.String()
	}
	return map[string]any{
		"value":     v.String(),
		"number":    number,
		"is_number": isNumber,
		"column":    column,
		"row":       cells,
	}
}

// rowRefs records whether an expression reads the row variable.
type rowRefs struct {
	found bool
}

func (r *rowRefs) Visit(node *ast.Node) {
	if id, ok := (*node).(*ast.IdentifierNode); ok && id.Value == "row" {
		r.found = true
	}
}

func exprOptions() []expr.Option {
	return []expr.Option{
		expr.Env(exprEnv(dataset.StringValue(""), "", nil)),
		expr.AsBool(),
		expr.MaxNodes(maxASTNodes),
		expr.Function("isDate", func(params ...any) (any, error) {
			if len(params) != 2 {
				return nil, fmt.Errorf("isDate expects 2 arguments")
			}
			s, ok := params[0].(string)
			if !ok {
				return nil, fmt.Errorf("isDate: value must be a string")
			}
			layout, ok := params[1].(string)
			if !ok {
				return nil, fmt.Errorf("isDate: layout must be a string")
			}
			_, err := time.Parse(layout, s)
			return err == nil, nil
		}),
	}
}

// compile also reports whether the expression reads the row variable.
func (s ExprSpec) compile() (*vm.Program, bool, error) {
	if s.Expression == "" {
		return nil, false, fmt.Errorf("expression is required")
	}
	if len(s.Expression) > maxExpressionLength {
		return nil, false, fmt.Errorf("expression too long (max %d chars): %d chars", maxExpressionLength, len(s.Expression))
	}
	program, err := expr.Compile(s.Expression, exprOptions()...)
	if err != nil {
		return nil, false, fmt.Errorf("compilation failed: %w", err)
	}
	refs := &rowRefs{}
	node := program.Node()
	ast.Walk(&node, refs)
	return program, refs.found, nil
}

// Build compiles the expression once. Evaluation errors are returned per cell.
// Expressions reading row yield a RowTest; evaluated without a row they see an empty one.
func (s ExprSpec) Build(column string) (Test, error) {
	program, usesRow, err := s.compile()
	if err != nil {
		return nil, err
	}

	run := func(v dataset.Value, row map[string]dataset.Value) (values.Outcome, error) {
		output, err := expr.Run(program, exprEnv(v, column, row))
		if err != nil {
			return values.OutcomeInvalid, fmt.Errorf("evaluation failed: %w", err)
		}
		result, ok := output.(bool)
		if !ok {
			return values.OutcomeInvalid, fmt.Errorf("expression did not return boolean: %v", output)
		}
		return outcomeOf(result), nil
	}

	if usesRow {
		return Guard(RowFunc(run)), nil
	}
	return Guard(Func(func(v dataset.Value) (values.Outcome, error) {
		return run(v, nil)
	})), nil
}

// MakeExprTest returns a test evaluating a boolean expression per cell.
func MakeExprTest(expression, column string) (Test, error) {
	return ExprSpec{Expression: expression}.Build(column)
}

func parseExpr(p RawParams) (Spec, error) {
	if err := p.expect(1, "expression"); err != nil {
		return nil, err
	}
	expression, _ := p.lookup("expression", 0)
	spec := ExprSpec{Expression: expression}
	if _, _, err := spec.compile(); err != nil {
		return nil, err
	}
	return spec, nil
}
