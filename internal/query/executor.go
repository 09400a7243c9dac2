package query

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/queryir"
	"github.com/roach88/procquery/internal/querysql"
	"github.com/roach88/procquery/internal/store"
)

// Mode selects the result shape of Execute.
type Mode = querysql.Mode

// Result modes.
const (
	ModeList   = querysql.ModeList
	ModeSingle = querysql.ModeSingle
	ModeCount  = querysql.ModeCount
)

// Querier runs SQL. *store.Store and *sql.DB both satisfy it.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Result holds the outcome of Execute. Only the field matching Mode is set.
type Result struct {
	Mode Mode

	// Instances is set for ModeList. Never nil.
	Instances []ir.ProcessInstance

	// Instance is set for ModeSingle; nil when nothing matched.
	Instance *ir.ProcessInstance

	// Count is set for ModeCount.
	Count int64
}

// Executor compiles predicate trees and runs them against a Querier.
//
// Executor has no mutable state and is safe for concurrent use.
type Executor struct {
	db       Querier
	compiler *querysql.Compiler
	logger   *slog.Logger
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithLogger sets the logger used for debug output. Default: discard.
func WithLogger(logger *slog.Logger) ExecutorOption {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExecutor creates an Executor over db.
func NewExecutor(db Querier, opts ...ExecutorOption) *Executor {
	e := &Executor{
		db:       db,
		compiler: querysql.NewCompiler(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewQuery starts a Builder bound to this executor.
func (e *Executor) NewQuery() *Builder {
	b := NewBuilder()
	b.exec = e
	return b
}

// Execute validates p, compiles it for mode and runs it.
// A nil predicate matches every instance.
//
// Returns *queryir.InvalidPredicateError for malformed trees,
// *NonUniqueResultError when ModeSingle matches more than one row, and
// *StorageError for failures of the underlying store.
func (e *Executor) Execute(ctx context.Context, p queryir.Predicate, mode Mode) (Result, error) {
	if p != nil {
		if err := queryir.Validate(p).Err(); err != nil {
			return Result{}, err
		}
	}

	sqlStr, params, err := e.compiler.Compile(p, mode)
	if err != nil {
		return Result{}, fmt.Errorf("compile query: %w", err)
	}

	e.logger.DebugContext(ctx, "executing query",
		"mode", mode.String(),
		"sql", sqlStr,
		"params", len(params),
	)

	switch mode {
	case ModeCount:
		n, err := e.count(ctx, sqlStr, params)
		if err != nil {
			return Result{}, err
		}
		e.logger.DebugContext(ctx, "query complete", "mode", mode.String(), "count", n)
		return Result{Mode: mode, Count: n}, nil

	case ModeList, ModeSingle:
		instances, err := e.fetch(ctx, sqlStr, params)
		if err != nil {
			return Result{}, err
		}
		e.logger.DebugContext(ctx, "query complete", "mode", mode.String(), "rows", len(instances))

		if mode == ModeList {
			return Result{Mode: mode, Instances: instances}, nil
		}
		switch len(instances) {
		case 0:
			return Result{Mode: mode}, nil
		case 1:
			return Result{Mode: mode, Instance: &instances[0]}, nil
		default:
			return Result{}, &NonUniqueResultError{Limit: querysql.SingleLimit}
		}

	default:
		return Result{}, fmt.Errorf("unsupported mode: %s", mode)
	}
}

// List returns every instance matching p, ordered by id.
func (e *Executor) List(ctx context.Context, p queryir.Predicate) ([]ir.ProcessInstance, error) {
	res, err := e.Execute(ctx, p, ModeList)
	if err != nil {
		return nil, err
	}
	return res.Instances, nil
}

// SingleResult returns the only instance matching p, or nil if none does.
func (e *Executor) SingleResult(ctx context.Context, p queryir.Predicate) (*ir.ProcessInstance, error) {
	res, err := e.Execute(ctx, p, ModeSingle)
	if err != nil {
		return nil, err
	}
	return res.Instance, nil
}

// Count returns the number of instances matching p.
func (e *Executor) Count(ctx context.Context, p queryir.Predicate) (int64, error) {
	res, err := e.Execute(ctx, p, ModeCount)
	if err != nil {
		return 0, err
	}
	return res.Count, nil
}

func (e *Executor) fetch(ctx context.Context, sqlStr string, params []any) ([]ir.ProcessInstance, error) {
	rows, err := e.db.QueryContext(ctx, sqlStr, params...)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	instances := []ir.ProcessInstance{}
	for rows.Next() {
		pi, err := store.ScanProcessInstance(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan", Err: err}
		}
		instances = append(instances, pi)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "iterate", Err: err}
	}

	return instances, nil
}

func (e *Executor) count(ctx context.Context, sqlStr string, params []any) (int64, error) {
	rows, err := e.db.QueryContext(ctx, sqlStr, params...)
	if err != nil {
		return 0, &StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, &StorageError{Op: "scan", Err: err}
		}
	}
	if err := rows.Err(); err != nil {
		return 0, &StorageError{Op: "iterate", Err: err}
	}

	return n, nil
}
