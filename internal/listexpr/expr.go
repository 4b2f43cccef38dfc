// Package listexpr implements component E: the list-expression expander.
// Every element of a task's next/sub/exceeded_next/on_error_next/
// reduce_other_times field is itself a tiny expression over task names,
// built from three binary operators (`+` concatenate, `*` replicate,
// `#` project-a-field-from-another-task). This package evaluates that
// mini-language with an explicit two-stack operator-precedence machine,
// per spec.md §4.E and the Design Notes' "avoid recursion over the
// expression string".
//
// Grounded directly on TaskData.cpp::expend_task's expend_sharp_task_list
// / generate_tasks / perform_op: the stack layout, operator priority
// table, and the #back/#self edge cases are all taken from there.
package listexpr

import (
	"fmt"
	"strconv"

	"github.com/vk/taskcatalog/internal/tasktype"
)

// ExprError names the offending raw expression string.
type ExprError struct {
	Owner string
	Expr  string
	Err   error
}

func (e *ExprError) Error() string {
	return fmt.Sprintf("task %q: invalid expression %q: %v", e.Owner, e.Expr, e.Err)
}

func (e *ExprError) Unwrap() error { return e.Err }

var priority = map[byte]int{'+': 0, '*': 1, '#': 2}

func isOperator(c byte) bool { return c == '+' || c == '*' || c == '#' }

// Expander evaluates list-field expressions against a raw task table.
type Expander struct {
	// GetRaw returns the raw (un-expanded) task named name, or nil if it
	// has never been materialized. Used to resolve the left-hand side of
	// a `#` projection.
	GetRaw func(name string) *tasktype.Task
	// Default is the prototype task a `#` projection resolves against
	// when its left-hand side is empty (e.g. a bare "#next").
	Default *tasktype.Task
}

// expansion carries the state shared across every field of a single
// owning task's list-field expansion: whether anything changed (so the
// caller knows whether to keep the original raw task or intern a freshly
// expanded one) and any synthetic `_DERIVED_` tasks created along the way.
type expansion struct {
	ex      *Expander
	owner   string
	changed bool
	derived []*tasktype.Task
}

// Expand evaluates every list field of raw (the task owning it, named
// owner) and returns the resolved task. If nothing in any field actually
// changed, the original raw pointer is returned unchanged, preserving
// object identity for already-resolved inputs (spec.md §8's
// idempotence property). derived holds any synthetic `_DERIVED_` tasks
// that must be interned alongside the resolved result.
func (ex *Expander) Expand(owner string, raw *tasktype.Task) (resolved *tasktype.Task, derived []*tasktype.Task, err error) {
	st := &expansion{ex: ex, owner: owner}

	next, err := st.expandField(raw.Next, false)
	if err != nil {
		return nil, nil, err
	}
	sub, err := st.expandField(raw.Sub, true)
	if err != nil {
		return nil, nil, err
	}
	exceeded, err := st.expandField(raw.ExceededNext, false)
	if err != nil {
		return nil, nil, err
	}
	onError, err := st.expandField(raw.OnErrorNext, false)
	if err != nil {
		return nil, nil, err
	}
	reduce, err := st.expandField(raw.ReduceOtherTimes, true)
	if err != nil {
		return nil, nil, err
	}

	if !st.changed {
		return raw, nil, nil
	}

	out := raw.Clone()
	out.Next = next
	out.Sub = sub
	out.ExceededNext = exceeded
	out.OnErrorNext = onError
	out.ReduceOtherTimes = reduce
	return out, st.derived, nil
}

// fieldSpec identifies which list field a `#` projection's right-hand
// side refers to, and whether that field permits duplicate entries.
type fieldSpec struct {
	get  func(t *tasktype.Task) []string
	multi bool
}

var fields = map[string]fieldSpec{
	"next":               {func(t *tasktype.Task) []string { return t.Next }, false},
	"sub":                {func(t *tasktype.Task) []string { return t.Sub }, true},
	"on_error_next":      {func(t *tasktype.Task) []string { return t.OnErrorNext }, false},
	"exceeded_next":      {func(t *tasktype.Task) []string { return t.ExceededNext }, false},
	"reduce_other_times": {func(t *tasktype.Task) []string { return t.ReduceOtherTimes }, true},
}

// expandField expands one whole list field (e.g. the owner's raw Next
// list), using a fresh duplicate-tracking set scoped to this one field —
// but shared across any recursive `#` projections triggered while
// expanding it, matching the original's single tasks_set captured by
// reference across the whole recursive descent for one field.
func (st *expansion) expandField(raw []string, multi bool) ([]string, error) {
	return st.expandWithSeen(raw, multi, make(map[string]bool, len(raw)))
}

func (st *expansion) expandWithSeen(raw []string, multi bool, seen map[string]bool) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item == "" {
			return nil, &ExprError{Owner: st.owner, Expr: item, Err: fmt.Errorf("empty task reference")}
		}
		if !multi && seen[item] {
			st.changed = true
			continue
		}
		seen[item] = true

		vals, sawOp, synthesize, err := st.eval(item, seen)
		if err != nil {
			return nil, err
		}
		if !sawOp {
			out = append(out, vals...)
			continue
		}
		st.changed = true
		if synthesize {
			name := st.owner + "_DERIVED_" + item
			st.derived = append(st.derived, &tasktype.Task{
				Name:      name,
				Algorithm: tasktype.AlgorithmJustReturn,
				Sub:       append([]string(nil), vals...),
			})
			out = append(out, name)
			continue
		}
		out = append(out, vals...)
	}
	return out, nil
}

// eval parses and evaluates a single expression with a two-stack
// operator-precedence machine. It reports whether any operator appeared
// at all (sawOp) and, if so, whether it used only `#` (in which case the
// result splices directly into the containing list) or also used `+`/`*`
// (in which case the caller must synthesize a derived task).
//
// Parenthesized grouping, `(...)`, is supported on top of the bare
// three-operator grammar of spec.md §4.E so that an expression like
// `(A+B)*3` groups the concatenation before replicating it — without
// parens, `*`'s higher precedence would otherwise bind `B*3` first.
func (st *expansion) eval(expr string, seen map[string]bool) (vals []string, sawOp, synthesize bool, err error) {
	var valStack [][]string
	var opStack []byte
	onlySharp := true

	pushIdent := func(s string) { valStack = append(valStack, []string{s}) }

	topIsOpenParen := func() bool {
		return len(opStack) > 0 && opStack[len(opStack)-1] == '('
	}

	applyTop := func() error {
		op := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		y := valStack[len(valStack)-1]
		x := valStack[len(valStack)-2]
		valStack = valStack[:len(valStack)-2]
		res, err := st.applyOp(x, y, op, seen)
		if err != nil {
			return err
		}
		valStack = append(valStack, res)
		return nil
	}

	// justClosedGroup is true immediately after a `)` has pushed its
	// group's result onto valStack. The very next operator (or the
	// trailing tail) must not push another, empty, identifier for that
	// same boundary — the operand is already sitting on the stack. It is
	// false everywhere else, including at the very start of the
	// expression, so a leading bare operator like "#self" still pushes
	// its (empty) left-hand identifier exactly as the ungrouped grammar
	// requires.
	justClosedGroup := false

	start := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		switch {
		case c == '(':
			opStack = append(opStack, c)
			start = i + 1
			justClosedGroup = false

		case c == ')':
			if !(justClosedGroup && i == start) {
				pushIdent(expr[start:i])
			}
			for !topIsOpenParen() {
				if len(opStack) == 0 {
					return nil, false, false, &ExprError{Owner: st.owner, Expr: expr, Err: fmt.Errorf("unbalanced parentheses")}
				}
				if err := applyTop(); err != nil {
					return nil, false, false, &ExprError{Owner: st.owner, Expr: expr, Err: err}
				}
			}
			opStack = opStack[:len(opStack)-1]
			start = i + 1
			justClosedGroup = true

		case isOperator(c):
			sawOp = true
			if c == '+' || c == '*' {
				onlySharp = false
			}
			if !(justClosedGroup && i == start) {
				pushIdent(expr[start:i])
			}
			for len(opStack) > 0 && !topIsOpenParen() && priority[opStack[len(opStack)-1]] >= priority[c] {
				if err := applyTop(); err != nil {
					return nil, false, false, &ExprError{Owner: st.owner, Expr: expr, Err: err}
				}
			}
			opStack = append(opStack, c)
			start = i + 1
			justClosedGroup = false
		}
	}

	if !sawOp {
		return []string{expr}, false, false, nil
	}

	if !(justClosedGroup && start == len(expr)) {
		pushIdent(expr[start:])
	}
	for len(opStack) > 0 {
		if topIsOpenParen() {
			return nil, false, false, &ExprError{Owner: st.owner, Expr: expr, Err: fmt.Errorf("unbalanced parentheses")}
		}
		if err := applyTop(); err != nil {
			return nil, false, false, &ExprError{Owner: st.owner, Expr: expr, Err: err}
		}
	}

	if len(valStack) != 1 {
		return nil, false, false, &ExprError{Owner: st.owner, Expr: expr, Err: fmt.Errorf("malformed expression")}
	}
	return valStack[0], true, !onlySharp, nil
}

func (st *expansion) applyOp(x, y []string, op byte, seen map[string]bool) ([]string, error) {
	switch op {
	case '+':
		res := make([]string, 0, len(x)+len(y))
		res = append(res, x...)
		res = append(res, y...)
		return res, nil

	case '*':
		if len(y) != 1 {
			return nil, fmt.Errorf("'*' requires a single integer right operand")
		}
		times, err := strconv.Atoi(y[0])
		if err != nil {
			return nil, fmt.Errorf("'*' right operand %q is not an integer", y[0])
		}
		if times < 0 {
			return nil, fmt.Errorf("'*' right operand %q must not be negative", y[0])
		}
		res := make([]string, 0, len(x)*times)
		for i := 0; i < times; i++ {
			res = append(res, x...)
		}
		return res, nil

	case '#':
		if len(x) != 1 || len(y) != 1 {
			return nil, fmt.Errorf("'#' requires single-name operands on both sides")
		}
		lhs, field := x[0], y[0]
		switch field {
		case "self":
			return []string{st.owner}, nil
		case "back":
			// "A#back" == "A", "B@A#back" == "B@A", "#back" == empty.
			if lhs == "" {
				return []string{}, nil
			}
			return []string{lhs}, nil
		}

		spec, ok := fields[field]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", field)
		}
		var task *tasktype.Task
		if lhs == "" {
			task = st.ex.Default
		} else {
			task = st.ex.GetRaw(lhs)
			if task == nil {
				return nil, fmt.Errorf("task %q not found", lhs)
			}
		}
		return st.expandWithSeen(spec.get(task), spec.multi, seen)

	default:
		return nil, fmt.Errorf("unknown operator %q", op)
	}
}
