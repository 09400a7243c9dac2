package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/procquery/internal/store"
)

// RenameOptions holds flags for the rename command.
type RenameOptions struct {
	*RootOptions
	Database string
}

// RenameResult is the JSON payload of a successful rename.
type RenameResult struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (r RenameResult) String() string {
	if r.Name == "" {
		return fmt.Sprintf("✓ Cleared name of %s", r.ID)
	}
	return fmt.Sprintf("✓ Renamed %s to %q", r.ID, r.Name)
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenameOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rename <instance-id> <name>",
		Short: "Set the name of a process instance",
		Long: `Set the name of an existing process instance. An empty name clears it,
so the instance no longer matches any name predicate.

Example:
  procquery rename --db ./procquery.db pi-0001 'One%'
  procquery rename --db ./procquery.db pi-0001 ''`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRename(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runRename(opts *RenameOptions, id, name string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

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

	if err := st.SetProcessInstanceName(cmd.Context(), id, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			_ = formatter.Error(ErrCodeNoSuchInstance, fmt.Sprintf("no process instance with id %s", id), nil)
			return WrapExitError(ExitCommandError, "unknown process instance", err)
		}
		_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to rename process instance", err)
	}
	logger.Debug("process instance renamed", "id", id, "name", name)

	return formatter.Success(RenameResult{ID: id, Name: name})
}
