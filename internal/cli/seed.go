package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/procquery/internal/store"
)

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Database string
	Replace  bool

	// IDGenerator allows overriding id generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// SeedResult is the JSON payload of a successful seed.
type SeedResult struct {
	Database  string   `json:"database"`
	Instances []string `json:"instances"`
}

func (r SeedResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✓ Seeded %d process instance(s) into %s", len(r.Instances), r.Database)
	for _, id := range r.Instances {
		fmt.Fprintf(&b, "\n  %s", id)
	}
	return b.String()
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return newSeedCommand(&SeedOptions{RootOptions: rootOpts})
}

func newSeedCommand(opts *SeedOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <dataset.yaml>",
		Short: "Load process instances and variables from YAML",
		Long: `Load process instances and their variables from a YAML dataset into a
SQLite database, creating the database if it doesn't exist.

Instances without an id get a generated UUIDv7. Variable values may be
strings, integers, booleans or null.

Seeding an id that already exists fails and writes nothing. With --replace,
instances whose ids appear in the dataset are deleted (variables included)
and written again.

Example:
  procquery seed --db ./procquery.db ./testdata/escape.yaml
  procquery seed --db ./procquery.db --replace ./testdata/escape.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.Replace, "replace", false, "replace instances whose ids already exist")

	return cmd
}

func runSeed(opts *SeedOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	logger.Debug("loading dataset", "path", path)
	ds, err := store.LoadDataset(path)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidDataset, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load dataset", err)
	}

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

	seed := st.Seed
	if opts.Replace {
		seed = st.Reseed
	}
	ids, err := seed(cmd.Context(), ds, opts.IDGenerator)
	if err != nil {
		_ = formatter.Error(ErrCodeStorage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to seed database", err)
	}
	logger.Debug("dataset seeded", "db", opts.Database, "instances", len(ids))

	return formatter.Success(SeedResult{Database: opts.Database, Instances: ids})
}
