package queryir

import (
	"fmt"
	"strings"
)

// ValidationResult lists the structural problems found in a predicate tree.
type ValidationResult struct {
	Problems []string
}

// Valid reports whether no problems were found.
func (r ValidationResult) Valid() bool {
	return len(r.Problems) == 0
}

// Err returns nil for a valid tree, or an *InvalidPredicateError that
// lists every problem.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return &InvalidPredicateError{Reason: strings.Join(r.Problems, "; ")}
}

// Validate walks a predicate tree and reports problems that NewCondition
// would have rejected, plus nil nodes and unknown node types. It catches
// Conditions assembled as struct literals.
//
// Validate is a pure function with no side effects.
func Validate(p Predicate) ValidationResult {
	v := &validator{problems: []string{}}
	v.validate(p, "root")
	return ValidationResult{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validate(p Predicate, path string) {
	switch pred := p.(type) {
	case nil:
		v.addProblem("%s: nil predicate", path)
	case Condition:
		v.validateCondition(pred, path)
	case *Condition:
		if pred == nil {
			v.addProblem("%s: nil condition", path)
			return
		}
		v.validateCondition(*pred, path)
	case Group:
		v.validateGroup(pred, path)
	case *Group:
		if pred == nil {
			v.addProblem("%s: nil group", path)
			return
		}
		v.validateGroup(*pred, path)
	default:
		v.addProblem("%s: unknown predicate type %T", path, p)
	}
}

func (v *validator) validateCondition(c Condition, path string) {
	if err := checkCondition(c); err != nil {
		v.addProblem("%s: %s", path, err.Error())
	}
}

func (v *validator) validateGroup(g Group, path string) {
	if g.Connective != And && g.Connective != Or {
		v.addProblem("%s: unknown connective %d", path, int(g.Connective))
	}
	for i, child := range g.Children {
		v.validate(child, fmt.Sprintf("%s[%d]", path, i))
	}
}
