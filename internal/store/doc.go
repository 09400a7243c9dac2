// Package store provides SQLite-backed storage for process instances and
// their variables.
//
// The store is the persistence collaborator of the query layer:
//   - process_instances: one row per instance (tenant, name, definition)
//   - variables: typed key/value pairs, UNIQUE(instance_id, name)
//
// # Connection Setup
//
// Connections are opened through a dedicated driver whose connect hook:
//   - registers the casefold SQL function (pattern.Fold), used by
//     case-insensitive LIKE
//   - enables PRAGMA case_sensitive_like, so plain LIKE compares exactly
//     (SQLite folds ASCII by default)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Variables are deleted with their instance
//
// # Deterministic Reads
//
// All multi-row reads ORDER BY a unique key with COLLATE BINARY.
package store
