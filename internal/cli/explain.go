package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/procquery/internal/queryir"
	"github.com/roach88/procquery/internal/querysql"
)

// ExplainOptions holds flags for the explain command.
type ExplainOptions struct {
	*RootOptions
	Mode string
}

// ExplainResult is the compiled form of a query document.
type ExplainResult struct {
	Mode      string `json:"mode"`
	Predicate string `json:"predicate"`
	SQL       string `json:"sql"`
	Params    []any  `json:"params"`
}

func (r ExplainResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- mode: %s\n", r.Mode)
	fmt.Fprintf(&b, "-- predicate: %s\n", r.Predicate)
	b.WriteString(r.SQL)
	for i, p := range r.Params {
		fmt.Fprintf(&b, "\n$%d = %#v", i+1, p)
	}
	return b.String()
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <query.cue>",
		Short: "Print the SQL a query document compiles to",
		Long: `Compile a query document and print the SQL and bound parameters
without touching a database.

Example:
  procquery explain ./queries/tenant.cue
  procquery explain --mode count --format json ./queries/tenant.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Mode, "mode", "", "result mode (list|single|count), overrides the document")

	return cmd
}

func runExplain(opts *ExplainOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	doc, err := loadQueryDoc(path, opts.Mode)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if err := queryir.Validate(doc.Where).Err(); err != nil {
		return outputQueryError(formatter, err)
	}

	sqlStr, params, err := querysql.NewCompiler().Compile(doc.Where, doc.Mode)
	if err != nil {
		return outputQueryError(formatter, err)
	}
	logger.Debug("query compiled", "path", path, "params", len(params))

	return formatter.Success(ExplainResult{
		Mode:      doc.Mode.String(),
		Predicate: doc.Where.String(),
		SQL:       sqlStr,
		Params:    params,
	})
}
