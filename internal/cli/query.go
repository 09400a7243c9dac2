package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/query"
	"github.com/roach88/procquery/internal/queryir"
	"github.com/roach88/procquery/internal/querysql"
	"github.com/roach88/procquery/internal/store"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	Database  string
	Mode      string   // overrides the document's mode when set
	Variables []string // variables to print with each instance
}

// InstanceView is an instance as printed by the query command.
type InstanceView struct {
	ir.ProcessInstance
	Variables map[string]any `json:"variables,omitempty"`
}

// QueryResult is the JSON payload of a successful query.
type QueryResult struct {
	Mode      string         `json:"mode"`
	Instances []InstanceView `json:"instances,omitempty"`
	Count     *int64         `json:"count,omitempty"`
}

func (r QueryResult) String() string {
	if r.Count != nil {
		return fmt.Sprintf("%d", *r.Count)
	}
	if len(r.Instances) == 0 {
		return "(no matching process instances)"
	}

	lines := make([]string, 0, len(r.Instances))
	for _, inst := range r.Instances {
		var b strings.Builder
		fmt.Fprintf(&b, "%s\ttenant=%q\tname=%q\tdefinition=%s",
			inst.ID, inst.TenantID, inst.Name, inst.ProcessDefinitionID)
		for _, name := range slices.Sorted(maps.Keys(inst.Variables)) {
			fmt.Fprintf(&b, "\t%s=%v", name, inst.Variables[name])
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <query.cue>",
		Short: "Run a CUE query document against a database",
		Long: `Run a query document against a seeded database and print the matches.

Modes:
  list    every match, ordered by id
  single  zero or one match; more than one exits with code 1
  count   the number of matches

Example:
  procquery query --db ./procquery.db ./queries/tenant.cue
  procquery query --db ./procquery.db --mode count --var var1 ./queries/tenant.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().StringVar(&opts.Mode, "mode", "", "result mode (list|single|count), overrides the document")
	cmd.Flags().StringSliceVar(&opts.Variables, "var", nil, "variable to include in the output (repeatable)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *QueryOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := loadQueryDoc(path, opts.Mode)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("predicate: %s", doc.Where)

	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	exec := query.NewExecutor(st, query.WithLogger(logger))
	res, err := exec.Execute(cmd.Context(), doc.Where, doc.Mode)
	if err != nil {
		return outputQueryError(formatter, err)
	}

	out := QueryResult{Mode: doc.Mode.String()}
	switch doc.Mode {
	case query.ModeCount:
		n := res.Count
		out.Count = &n
	case query.ModeSingle:
		if res.Instance != nil {
			out.Instances = []InstanceView{{ProcessInstance: *res.Instance}}
		}
	default:
		out.Instances = make([]InstanceView, 0, len(res.Instances))
		for _, pi := range res.Instances {
			out.Instances = append(out.Instances, InstanceView{ProcessInstance: pi})
		}
	}

	if err := attachVariables(cmd.Context(), st, out.Instances, opts.Variables); err != nil {
		return outputQueryError(formatter, err)
	}

	return formatter.Success(out)
}

// loadQueryDoc loads path and applies the --mode override.
func loadQueryDoc(path, modeOverride string) (*QueryDoc, error) {
	doc, err := LoadQueryFile(path)
	if err != nil {
		return nil, err
	}
	if modeOverride != "" {
		mode, err := querysql.ParseMode(modeOverride)
		if err != nil {
			return nil, &LoadError{Code: ErrCodeInvalidMode, Message: err.Error()}
		}
		doc.Mode = mode
	}
	return doc, nil
}

// attachVariables looks up the requested variables for every instance.
// Variables an instance does not have are omitted.
func attachVariables(ctx context.Context, vs store.VariableStore, instances []InstanceView, names []string) error {
	if len(names) == 0 {
		return nil
	}
	for i := range instances {
		vars := make(map[string]any)
		for _, name := range names {
			v, ok, err := vs.Variable(ctx, instances[i].ID, name)
			if err != nil {
				return &query.StorageError{Op: "variable", Err: err}
			}
			if ok {
				vars[name] = ir.Native(v)
			}
		}
		instances[i].Variables = vars
	}
	return nil
}

func outputLoadError(formatter *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
	}
	_ = formatter.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, "failed to load query", err)
}

// outputQueryError maps execution errors to codes and exit codes.
func outputQueryError(formatter *OutputFormatter, err error) error {
	switch {
	case query.IsNonUniqueResult(err):
		_ = formatter.Error(ErrCodeNonUnique, err.Error(), nil)
		return WrapExitError(ExitFailure, "query failed", err)
	case queryir.IsInvalidPredicate(err):
		_ = formatter.Error(ErrCodeInvalidPredicate, err.Error(), nil)
	case query.IsStorageError(err):
		_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
	default:
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
	}
	return WrapExitError(ExitCommandError, "query failed", err)
}
