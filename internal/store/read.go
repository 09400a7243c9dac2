package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/procquery/internal/ir"
)

// VariableStore gives read access to variables keyed by (instance, name).
type VariableStore interface {
	// Variable returns the value and true, or (nil, false, nil) when the
	// instance has no variable with that name.
	Variable(ctx context.Context, instanceID, name string) (ir.Value, bool, error)
}

var _ VariableStore = (*Store)(nil)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanProcessInstance scans the columns
// id, tenant_id, name, proc_def_id, proc_def_key (in that order).
func ScanProcessInstance(sc Scanner) (ir.ProcessInstance, error) {
	var pi ir.ProcessInstance
	var name sql.NullString

	if err := sc.Scan(&pi.ID, &pi.TenantID, &name, &pi.ProcessDefinitionID, &pi.ProcessDefinitionKey); err != nil {
		return ir.ProcessInstance{}, err
	}
	pi.Name = name.String

	return pi, nil
}

// ReadProcessInstance retrieves a single instance by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadProcessInstance(ctx context.Context, id string) (ir.ProcessInstance, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, name, proc_def_id, proc_def_key
		FROM process_instances
		WHERE id = ?
	`, id)

	return ScanProcessInstance(row)
}

// Variable implements VariableStore.
func (s *Store) Variable(ctx context.Context, instanceID, name string) (ir.Value, bool, error) {
	var enc encodedValue
	err := s.db.QueryRowContext(ctx, `
		SELECT type, text_value, long_value
		FROM variables
		WHERE instance_id = ? AND name = ?
	`, instanceID, name).Scan(&enc.typ, &enc.text, &enc.long)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read variable %s: %w", name, err)
	}

	v, err := decodeValue(enc)
	if err != nil {
		return nil, false, fmt.Errorf("read variable %s: %w", name, err)
	}
	return v, true, nil
}

// Variables returns all variables of an instance.
// Returns an empty map (not nil) if the instance has none.
func (s *Store) Variables(ctx context.Context, instanceID string) (map[string]ir.Value, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, type, text_value, long_value
		FROM variables
		WHERE instance_id = ?
		ORDER BY name COLLATE BINARY ASC
	`, instanceID)
	if err != nil {
		return nil, fmt.Errorf("query variables: %w", err)
	}
	defer rows.Close()

	vars := make(map[string]ir.Value)
	for rows.Next() {
		var name string
		var enc encodedValue
		if err := rows.Scan(&name, &enc.typ, &enc.text, &enc.long); err != nil {
			return nil, fmt.Errorf("scan variable: %w", err)
		}
		v, err := decodeValue(enc)
		if err != nil {
			return nil, fmt.Errorf("variable %s: %w", name, err)
		}
		vars[name] = v
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variables: %w", err)
	}

	return vars, nil
}
