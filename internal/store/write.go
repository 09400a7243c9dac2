package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/procquery/internal/ir"
	"github.com/roach88/procquery/internal/pattern"
)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// WriteProcessInstance inserts a process instance.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently ignored.
// An empty Name is stored as NULL. Text attributes are stored in NFC.
func (s *Store) WriteProcessInstance(ctx context.Context, pi ir.ProcessInstance) error {
	return writeProcessInstance(ctx, s.db, pi, true)
}

// writeProcessInstance inserts pi. With ignoreExisting false an existing
// id is a constraint error instead of a no-op.
func writeProcessInstance(ctx context.Context, db execer, pi ir.ProcessInstance, ignoreExisting bool) error {
	if pi.ID == "" {
		return fmt.Errorf("write process instance: id is required")
	}
	if pi.ProcessDefinitionID == "" {
		return fmt.Errorf("write process instance %s: process definition id is required", pi.ID)
	}

	query := `
		INSERT INTO process_instances
		(id, tenant_id, name, proc_def_id, proc_def_key)
		VALUES (?, ?, ?, ?, ?)`
	if ignoreExisting {
		query += `
		ON CONFLICT(id) DO NOTHING`
	}

	_, err := db.ExecContext(ctx, query,
		pi.ID,
		pattern.Normalize(pi.TenantID),
		nullIfEmpty(pattern.Normalize(pi.Name)),
		pattern.Normalize(pi.ProcessDefinitionID),
		pattern.Normalize(pi.ProcessDefinitionKey),
	)
	if err != nil {
		return fmt.Errorf("write process instance %s: %w", pi.ID, err)
	}

	return nil
}

// SetProcessInstanceName renames an instance. An empty name clears it.
// Returns sql.ErrNoRows if the instance does not exist.
func (s *Store) SetProcessInstanceName(ctx context.Context, id, name string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE process_instances SET name = ? WHERE id = ?`,
		nullIfEmpty(pattern.Normalize(name)), id)
	if err != nil {
		return fmt.Errorf("set process instance name: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set process instance name: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set process instance name %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

// SetVariable creates or replaces a variable on an instance.
// The instance must exist (foreign key constraint).
func (s *Store) SetVariable(ctx context.Context, v ir.Variable) error {
	return setVariable(ctx, s.db, v)
}

func setVariable(ctx context.Context, db execer, v ir.Variable) error {
	if v.Name == "" {
		return fmt.Errorf("set variable on %s: name is required", v.InstanceID)
	}

	enc, err := encodeValue(v.Value)
	if err != nil {
		return fmt.Errorf("set variable %s: %w", v.Name, err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO variables (instance_id, name, type, text_value, long_value)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(instance_id, name) DO UPDATE SET
			type = excluded.type,
			text_value = excluded.text_value,
			long_value = excluded.long_value
	`,
		v.InstanceID,
		v.Name,
		enc.typ,
		enc.text,
		enc.long,
	)
	if err != nil {
		return fmt.Errorf("set variable %s: %w", v.Name, err)
	}

	return nil
}

// deleteProcessInstance removes an instance and, by cascade, its variables.
// Deleting a missing instance is not an error.
func deleteProcessInstance(ctx context.Context, db execer, id string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM process_instances WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete process instance %s: %w", id, err)
	}
	return nil
}
