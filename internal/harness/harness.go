package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/procquery/internal/compiler"
	"github.com/roach88/procquery/internal/query"
	"github.com/roach88/procquery/internal/queryir"
	"github.com/roach88/procquery/internal/store"
	"github.com/roach88/procquery/internal/testutil"
)

// Harness runs the queries of one scenario against a seeded store.
type Harness struct {
	exec   *query.Executor
	cue    *cue.Context
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Instances without an id get sequential ids, so results are reproducible.
//
// Expectation mismatches are reported in Result.Errors. The returned error
// is reserved for failures that stop the run: seeding or storage errors.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.DiscardHandler)
	h := &Harness{
		exec:   query.NewExecutor(st, query.WithLogger(logger)),
		cue:    cuecontext.New(),
		logger: logger,
	}

	ctx := context.Background()

	ds := &store.Dataset{Instances: scenario.Instances}
	if _, err := st.Seed(ctx, ds, testutil.NewSequentialIDs("pi")); err != nil {
		return nil, fmt.Errorf("failed to seed instances: %w", err)
	}

	result := NewResult()
	for i, step := range scenario.Queries {
		qt, err := h.runStep(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("queries[%d] %s: %w", i, step.Name, err)
		}
		result.AddTrace(qt)
		for _, msg := range checkExpect(step, qt) {
			result.AddError(msg)
		}
	}

	return result, nil
}

// runStep compiles and executes one query. Query-level failures are
// recorded in the trace; storage failures are returned.
func (h *Harness) runStep(ctx context.Context, step QueryStep) (QueryTrace, error) {
	qt := QueryTrace{Name: step.Name}

	v := h.cue.CompileString(step.Query, cue.Filename(step.Name+".cue"))
	doc, err := compiler.CompileQuery(v)
	if err != nil {
		qt.Error = classifyError(err)
		h.logger.Debug("query rejected", "step", step.Name, "error", err)
		return qt, nil
	}

	qt.Mode = doc.Mode.String()
	qt.Predicate = doc.Where.String()

	res, err := h.exec.Execute(ctx, doc.Where, doc.Mode)
	if err != nil {
		if query.IsStorageError(err) {
			return qt, err
		}
		qt.Error = classifyError(err)
		return qt, nil
	}

	switch doc.Mode {
	case query.ModeCount:
		n := res.Count
		qt.Count = &n
	case query.ModeSingle:
		if res.Instance != nil {
			qt.IDs = []string{res.Instance.ID}
		}
	default:
		for _, pi := range res.Instances {
			qt.IDs = append(qt.IDs, pi.ID)
		}
	}

	return qt, nil
}

// classifyError maps a query error to its trace error kind.
func classifyError(err error) string {
	var pe *compiler.PredicateError
	switch {
	case query.IsNonUniqueResult(err):
		return ErrorNonUnique
	case errors.As(err, &pe), queryir.IsInvalidPredicate(err):
		return ErrorInvalidPredicate
	default:
		return ErrorInvalidQuery
	}
}

// checkExpect compares a trace entry against the step's expect clause.
func checkExpect(step QueryStep, qt QueryTrace) []string {
	var errs []string
	e := step.Expect

	if e.Error != "" {
		if qt.Error != e.Error {
			errs = append(errs, fmt.Sprintf("%s: expected error %q, got %q", step.Name, e.Error, describeOutcome(qt)))
		}
		return errs
	}

	if qt.Error != "" {
		return append(errs, fmt.Sprintf("%s: unexpected error %q", step.Name, qt.Error))
	}

	if e.Count != nil {
		if qt.Count == nil {
			return append(errs, fmt.Sprintf("%s: expected count %d, got %s", step.Name, *e.Count, describeOutcome(qt)))
		}
		if *qt.Count != *e.Count {
			errs = append(errs, fmt.Sprintf("%s: expected count %d, got %d", step.Name, *e.Count, *qt.Count))
		}
		return errs
	}

	if qt.Count != nil {
		return append(errs, fmt.Sprintf("%s: expected ids %v, got count %d", step.Name, e.IDs, *qt.Count))
	}
	if !slices.Equal(qt.IDs, e.IDs) {
		errs = append(errs, fmt.Sprintf("%s: expected ids %v, got %v", step.Name, e.IDs, qt.IDs))
	}
	return errs
}

func describeOutcome(qt QueryTrace) string {
	switch {
	case qt.Error != "":
		return qt.Error
	case qt.Count != nil:
		return fmt.Sprintf("count %d", *qt.Count)
	default:
		return fmt.Sprintf("ids %v", qt.IDs)
	}
}
