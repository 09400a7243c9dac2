package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/procquery/internal/ir"
)

// Dataset is a YAML document of process instances to load into a store.
//
//	instances:
//	  - tenant_id: "One%"
//	    name: "One%"
//	    process_definition_id: "oneTaskProcess:1:4"
//	    variables:
//	      var1: "One%"
type Dataset struct {
	Instances []DatasetInstance `yaml:"instances"`
}

// DatasetInstance is one process instance with its variables.
// ID is optional; a generated id is used when it is empty.
type DatasetInstance struct {
	ID                   string         `yaml:"id,omitempty"`
	TenantID             string         `yaml:"tenant_id,omitempty"`
	Name                 string         `yaml:"name,omitempty"`
	ProcessDefinitionID  string         `yaml:"process_definition_id"`
	ProcessDefinitionKey string         `yaml:"process_definition_key,omitempty"`
	Variables            map[string]any `yaml:"variables,omitempty"`
}

// LoadDataset reads and parses a dataset YAML file.
func LoadDataset(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	return ParseDataset(data)
}

// ParseDataset parses dataset YAML. Unknown fields are rejected so typos
// surface instead of silently dropping data.
func ParseDataset(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateDataset(&ds); err != nil {
		return nil, fmt.Errorf("invalid dataset: %w", err)
	}

	return &ds, nil
}

func validateDataset(ds *Dataset) error {
	var errs []error
	seen := make(map[string]int)
	for i, inst := range ds.Instances {
		if inst.ID != "" {
			if first, ok := seen[inst.ID]; ok {
				errs = append(errs, fmt.Errorf("instances[%d]: duplicate id %q (first used by instances[%d])", i, inst.ID, first))
			} else {
				seen[inst.ID] = i
			}
		}
		if inst.ProcessDefinitionID == "" {
			errs = append(errs, fmt.Errorf("instances[%d]: process_definition_id is required", i))
		}
		for name, raw := range inst.Variables {
			if _, err := ir.FromNative(raw); err != nil {
				errs = append(errs, fmt.Errorf("instances[%d].variables.%s: %w", i, name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// Seed writes every instance and variable of ds in one transaction and
// returns the instance ids in dataset order.
//
// An id that already exists, in the store or earlier in ds, fails the
// whole seed; nothing is written.
func (s *Store) Seed(ctx context.Context, ds *Dataset, gen IDGenerator) ([]string, error) {
	return s.seed(ctx, ds, gen, false)
}

// Reseed is Seed for a dataset that may have been loaded before: every
// instance with an explicit id is deleted, variables included, before it
// is written again. Ids repeated within ds still fail.
func (s *Store) Reseed(ctx context.Context, ds *Dataset, gen IDGenerator) ([]string, error) {
	return s.seed(ctx, ds, gen, true)
}

func (s *Store) seed(ctx context.Context, ds *Dataset, gen IDGenerator, replace bool) ([]string, error) {
	if gen == nil {
		gen = UUIDv7Generator{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("seed: begin: %w", err)
	}
	defer tx.Rollback()

	if replace {
		for _, inst := range ds.Instances {
			if inst.ID == "" {
				continue
			}
			if err := deleteProcessInstance(ctx, tx, inst.ID); err != nil {
				return nil, fmt.Errorf("seed: %w", err)
			}
		}
	}

	ids := make([]string, 0, len(ds.Instances))
	for _, inst := range ds.Instances {
		id := inst.ID
		if id == "" {
			id = gen.Generate()
		}

		pi := ir.ProcessInstance{
			ID:                   id,
			TenantID:             inst.TenantID,
			Name:                 inst.Name,
			ProcessDefinitionID:  inst.ProcessDefinitionID,
			ProcessDefinitionKey: inst.ProcessDefinitionKey,
		}
		if err := writeProcessInstance(ctx, tx, pi, false); err != nil {
			return nil, fmt.Errorf("seed: %w", err)
		}

		for _, name := range slices.Sorted(maps.Keys(inst.Variables)) {
			val, err := ir.FromNative(inst.Variables[name])
			if err != nil {
				return nil, fmt.Errorf("seed: variable %s: %w", name, err)
			}
			if err := setVariable(ctx, tx, ir.Variable{InstanceID: id, Name: name, Value: val}); err != nil {
				return nil, fmt.Errorf("seed: %w", err)
			}
		}

		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("seed: commit: %w", err)
	}

	return ids, nil
}
