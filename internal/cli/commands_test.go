package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/procquery/internal/testutil"
)

var (
	escapeDataset   = filepath.Join("testdata", "escape.yaml")
	orTenantQuery   = filepath.Join("testdata", "queries", "or_tenant.cue")
	allQuery        = filepath.Join("testdata", "queries", "all.cue")
	ignoreCaseQuery = filepath.Join("testdata", "queries", "var_ignore_case.cue")
)

// execute runs cmd with args and returns stdout and the error.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seedDB seeds the escape dataset into a new database with ids pi-0001, pi-0002.
func seedDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "procquery.db")

	cmd := newSeedCommand(&SeedOptions{
		RootOptions: &RootOptions{Format: "text"},
		IDGenerator: testutil.NewSequentialIDs("pi"),
	})

	_, err := execute(t, cmd, "--db", dbPath, escapeDataset)
	require.NoError(t, err)
	return dbPath
}

type queryResponse struct {
	Status string      `json:"status"`
	Data   QueryResult `json:"data"`
	Error  *CLIError   `json:"error"`
}

func runQueryJSON(t *testing.T, dbPath string, args ...string) (queryResponse, error) {
	t.Helper()
	cmd := NewQueryCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, append([]string{"--db", dbPath}, args...)...)

	var resp queryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp, err
}

func TestSeedCommand_Text(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "procquery.db")
	cmd := newSeedCommand(&SeedOptions{
		RootOptions: &RootOptions{Format: "text"},
		IDGenerator: testutil.NewSequentialIDs("pi"),
	})

	out, err := execute(t, cmd, "--db", dbPath, escapeDataset)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ Seeded 2 process instance(s)")
	assert.Contains(t, out, "pi-0001")
	assert.Contains(t, out, "pi-0002")
}

func TestSeedCommand_JSON(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "procquery.db")
	cmd := NewSeedCommand(&RootOptions{Format: "json"})

	out, err := execute(t, cmd, "--db", dbPath, escapeDataset)
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   SeedResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Len(t, resp.Data.Instances, 2)
	assert.Equal(t, dbPath, resp.Data.Database)
}

func TestSeedCommand_InvalidDataset(t *testing.T) {
	dir := t.TempDir()
	dataset := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(dataset, []byte("instances:\n  - tenant_id: x\n"), 0644))

	cmd := NewSeedCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--db", filepath.Join(dir, "db"), dataset)
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeInvalidDataset+"]")
}

func TestSeedCommand_RequiresDB(t *testing.T) {
	cmd := NewSeedCommand(&RootOptions{Format: "text"})
	_, err := execute(t, cmd, escapeDataset)
	require.Error(t, err)
}

const explicitIDDataset = `
instances:
  - id: a
    tenant_id: "One%"
    process_definition_id: "oneTaskProcess:1:4"
    variables:
      var1: "One%"
`

func TestSeedCommand_ExistingIDFailsUnlessReplace(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "procquery.db")
	dataset := filepath.Join(dir, "explicit.yaml")
	require.NoError(t, os.WriteFile(dataset, []byte(explicitIDDataset), 0644))

	_, err := execute(t, NewSeedCommand(&RootOptions{Format: "text"}), "--db", dbPath, dataset)
	require.NoError(t, err)

	out, err := execute(t, NewSeedCommand(&RootOptions{Format: "text"}), "--db", dbPath, dataset)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeStorage+"]")

	out, err = execute(t, NewSeedCommand(&RootOptions{Format: "text"}), "--db", dbPath, "--replace", dataset)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Seeded 1 process instance(s)")

	query := filepath.Join(dir, "count.cue")
	require.NoError(t, os.WriteFile(query, []byte(`mode: "count"`), 0644))
	resp, err := runQueryJSON(t, dbPath, query)
	require.NoError(t, err)
	require.NotNil(t, resp.Data.Count)
	assert.Equal(t, int64(1), *resp.Data.Count)
}

func TestRenameCommand(t *testing.T) {
	dbPath := seedDB(t)
	dir := t.TempDir()

	renamedQuery := filepath.Join(dir, "renamed.cue")
	require.NoError(t, os.WriteFile(renamedQuery,
		[]byte(`mode: "single", where: [{attr: "name", likeIgnoreCase: "renamed|_%"}]`), 0644))
	anyNameQuery := filepath.Join(dir, "any_name.cue")
	require.NoError(t, os.WriteFile(anyNameQuery,
		[]byte(`mode: "count", where: [{attr: "name", like: "%"}]`), 0644))

	out, err := execute(t, NewRenameCommand(&RootOptions{Format: "text"}), "--db", dbPath, "pi-0001", "Renamed_One")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ Renamed pi-0001 to "Renamed_One"`)

	resp, err := runQueryJSON(t, dbPath, renamedQuery)
	require.NoError(t, err)
	require.Len(t, resp.Data.Instances, 1)
	assert.Equal(t, "pi-0001", resp.Data.Instances[0].ID)

	// An empty name clears it, so the instance stops matching name predicates.
	out, err = execute(t, NewRenameCommand(&RootOptions{Format: "text"}), "--db", dbPath, "pi-0001", "")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Cleared name of pi-0001")

	resp, err = runQueryJSON(t, dbPath, anyNameQuery)
	require.NoError(t, err)
	require.NotNil(t, resp.Data.Count)
	assert.Equal(t, int64(1), *resp.Data.Count)
}

func TestRenameCommand_UnknownInstance(t *testing.T) {
	dbPath := seedDB(t)

	cmd := NewRenameCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--db", dbPath, "pi-9999", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp queryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoSuchInstance, resp.Error.Code)
}

func TestQueryCommand_SingleInsideOr(t *testing.T) {
	dbPath := seedDB(t)

	resp, err := runQueryJSON(t, dbPath, orTenantQuery)
	require.NoError(t, err)

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "single", resp.Data.Mode)
	require.Len(t, resp.Data.Instances, 1)
	assert.Equal(t, "pi-0001", resp.Data.Instances[0].ID)
	assert.Equal(t, "One%", resp.Data.Instances[0].TenantID)
}

func TestQueryCommand_VariableIgnoreCase(t *testing.T) {
	dbPath := seedDB(t)

	resp, err := runQueryJSON(t, dbPath, "--var", "var1", "--var", "missing", ignoreCaseQuery)
	require.NoError(t, err)

	require.Len(t, resp.Data.Instances, 1)
	inst := resp.Data.Instances[0]
	assert.Equal(t, "pi-0002", inst.ID)
	assert.Equal(t, map[string]any{"var1": "Two_"}, inst.Variables)
}

func TestQueryCommand_NonUniqueExitsWithFailure(t *testing.T) {
	dbPath := seedDB(t)

	resp, err := runQueryJSON(t, dbPath, "--mode", "single", allQuery)
	require.Error(t, err)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNonUnique, resp.Error.Code)
}

func TestQueryCommand_Count(t *testing.T) {
	dbPath := seedDB(t)

	resp, err := runQueryJSON(t, dbPath, "--mode", "count", allQuery)
	require.NoError(t, err)

	require.NotNil(t, resp.Data.Count)
	assert.Equal(t, int64(2), *resp.Data.Count)
	assert.Empty(t, resp.Data.Instances)
}

func TestQueryCommand_ListText(t *testing.T) {
	dbPath := seedDB(t)

	cmd := NewQueryCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--db", dbPath, "--var", "priority", allQuery)
	require.NoError(t, err)

	assert.Equal(t,
		"pi-0001\ttenant=\"One%\"\tname=\"One%\"\tdefinition=oneTaskProcess:1:4\tpriority=1\n"+
			"pi-0002\ttenant=\"Two_\"\tname=\"Two_\"\tdefinition=oneTaskProcess:2:8\tpriority=2\n",
		out)
}

func TestQueryCommand_NoMatchText(t *testing.T) {
	dbPath := seedDB(t)
	query := filepath.Join(t.TempDir(), "none.cue")
	require.NoError(t, os.WriteFile(query, []byte(`where: [{attr: "tenantId", equals: "nobody"}]`), 0644))

	cmd := NewQueryCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, "--db", dbPath, query)
	require.NoError(t, err)
	assert.Contains(t, out, "no matching process instances")
}

func TestQueryCommand_InvalidMode(t *testing.T) {
	dbPath := seedDB(t)

	resp, err := runQueryJSON(t, dbPath, "--mode", "first", allQuery)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidMode, resp.Error.Code)
}

func TestExplainCommand_Golden(t *testing.T) {
	cmd := NewExplainCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, orTenantQuery)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "explain_or_tenant", []byte(out))
}

func TestExplainCommand_JSON(t *testing.T) {
	cmd := NewExplainCommand(&RootOptions{Format: "json"})
	out, err := execute(t, cmd, "--mode", "count", orTenantQuery)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   ExplainResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "count", resp.Data.Mode)
	assert.Contains(t, resp.Data.SQL, "SELECT COUNT(*)")
	assert.Equal(t, []any{"%|%%", "undefined"}, resp.Data.Params)
}

func TestExplainCommand_MissingFile(t *testing.T) {
	cmd := NewExplainCommand(&RootOptions{Format: "text"})
	out, err := execute(t, cmd, filepath.Join(t.TempDir(), "nope.cue"))
	require.Error(t, err)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}
