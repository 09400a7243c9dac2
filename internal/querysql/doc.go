// Package querysql compiles queryir predicate trees into parameterized
// SQLite queries over the process_instances and variables tables.
//
// Rules every compiled query follows:
//   - Values are always bound parameters, never interpolated.
//   - LIKE always declares the escape character: LIKE ? ESCAPE '|'.
//   - Case-insensitive LIKE folds the column with the casefold SQL function
//     and the pattern in Go, using the same fold.
//   - List and Single queries ORDER BY pi.id ASC COLLATE BINARY, so equal
//     input produces equal output.
//   - Variable conditions become correlated EXISTS subqueries, a semi-join
//     on (instance_id, name) that never duplicates an instance.
package querysql
