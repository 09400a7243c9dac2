package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/procquery/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestInstance creates a process instance with minimal required fields.
func createTestInstance(id, tenantID, name string) ir.ProcessInstance {
	return ir.ProcessInstance{
		ID:                   id,
		TenantID:             tenantID,
		Name:                 name,
		ProcessDefinitionID:  "oneTaskProcess:1:4",
		ProcessDefinitionKey: "oneTaskProcess",
	}
}
