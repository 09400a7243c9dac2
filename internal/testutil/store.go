package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/roach88/procquery/internal/store"
)

// EscapeFixture holds the ids of the two instances seeded by
// SeedEscapeFixture.
type EscapeFixture struct {
	// One has tenant, name and var1 all set to "One%".
	One string

	// Two has tenant, name and var1 all set to "Two_".
	Two string
}

// Process definition values used by the fixture.
const (
	FixtureDefinitionKey = "oneTaskProcess"
	FixtureDefinitionOne = "oneTaskProcess:1:4"
	FixtureDefinitionTwo = "oneTaskProcess:2:8"
)

// OpenStore opens a store in t.TempDir() and closes it on cleanup.
func OpenStore(t testing.TB) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "procquery.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// SeedEscapeFixture seeds the two instances whose data contains LIKE
// wildcards: "One%" (id pi-0001) and "Two_" (id pi-0002).
func SeedEscapeFixture(t testing.TB, st *store.Store) EscapeFixture {
	t.Helper()

	ds := &store.Dataset{Instances: []store.DatasetInstance{
		{
			TenantID:             "One%",
			Name:                 "One%",
			ProcessDefinitionID:  FixtureDefinitionOne,
			ProcessDefinitionKey: FixtureDefinitionKey,
			Variables:            map[string]any{"var1": "One%"},
		},
		{
			TenantID:             "Two_",
			Name:                 "Two_",
			ProcessDefinitionID:  FixtureDefinitionTwo,
			ProcessDefinitionKey: FixtureDefinitionKey,
			Variables:            map[string]any{"var1": "Two_"},
		},
	}}

	ids, err := st.Seed(context.Background(), ds, NewSequentialIDs("pi"))
	if err != nil {
		t.Fatalf("seed escape fixture: %v", err)
	}
	return EscapeFixture{One: ids[0], Two: ids[1]}
}
