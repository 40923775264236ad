package db

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/strutkit/strut/domain/schema"
)

// condition is a single equality predicate. Conditions are AND-combined;
// no OR, no inequality operators, no nesting.
type condition struct {
	key   string
	value any
}

func whereClause(conds []condition) (string, []any) {
	if len(conds) == 0 {
		return "", nil
	}
	preds := make([]string, len(conds))
	args := make([]any, len(conds))
	for i, c := range conds {
		preds[i] = c.key + " = ?"
		args[i] = c.value
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}

// sortedKeys keeps generated SQL deterministic for a given field map.
func sortedKeys(fields map[string]any) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// InsertStatement composes an INSERT for one table.
type InsertStatement struct {
	exec   Executor
	table  string
	fields map[string]any
}

// Insert starts an INSERT builder bound to table.
func Insert(exec Executor, table string) *InsertStatement {
	return &InsertStatement{exec: exec, table: table}
}

// Fields sets the column values to insert.
func (s *InsertStatement) Fields(fields map[string]any) *InsertStatement {
	s.fields = fields
	return s
}

// SQL returns the statement text and bound values.
func (s *InsertStatement) SQL() (string, []any) {
	keys := sortedKeys(s.fields)
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = s.fields[k]
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(keys, ", "), strings.Join(placeholders, ", "),
	)
	return query, args
}

// Execute runs the insert and reports the generated identifier.
func (s *InsertStatement) Execute(ctx context.Context) (Result, error) {
	query, args := s.SQL()
	res, err := s.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("insert into %s: %w", s.table, err)
	}
	return resultOf(res)
}

// UpdateStatement composes an UPDATE for one table.
type UpdateStatement struct {
	exec   Executor
	table  string
	fields map[string]any
	conds  []condition
}

// Update starts an UPDATE builder bound to table.
func Update(exec Executor, table string) *UpdateStatement {
	return &UpdateStatement{exec: exec, table: table}
}

// Fields sets the column values to write.
func (s *UpdateStatement) Fields(fields map[string]any) *UpdateStatement {
	s.fields = fields
	return s
}

// Condition appends an equality predicate, AND-combined with prior ones.
func (s *UpdateStatement) Condition(key string, value any) *UpdateStatement {
	s.conds = append(s.conds, condition{key: key, value: value})
	return s
}

// SQL returns the statement text and bound values.
func (s *UpdateStatement) SQL() (string, []any) {
	keys := sortedKeys(s.fields)
	sets := make([]string, len(keys))
	args := make([]any, 0, len(keys)+len(s.conds))
	for i, k := range keys {
		sets[i] = k + " = ?"
		args = append(args, s.fields[k])
	}
	where, whereArgs := whereClause(s.conds)
	query := fmt.Sprintf("UPDATE %s SET %s%s", s.table, strings.Join(sets, ", "), where)
	return query, append(args, whereArgs...)
}

// Execute runs the update; the result's row count reflects affected rows.
func (s *UpdateStatement) Execute(ctx context.Context) (Result, error) {
	query, args := s.SQL()
	res, err := s.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("update %s: %w", s.table, err)
	}
	return resultOf(res)
}

// DeleteStatement composes a DELETE for one table.
type DeleteStatement struct {
	exec  Executor
	table string
	conds []condition
}

// Delete starts a DELETE builder bound to table.
func Delete(exec Executor, table string) *DeleteStatement {
	return &DeleteStatement{exec: exec, table: table}
}

// Condition appends an equality predicate, AND-combined with prior ones.
func (s *DeleteStatement) Condition(key string, value any) *DeleteStatement {
	s.conds = append(s.conds, condition{key: key, value: value})
	return s
}

// SQL returns the statement text and bound values.
func (s *DeleteStatement) SQL() (string, []any) {
	where, args := whereClause(s.conds)
	return "DELETE FROM " + s.table + where, args
}

// Execute runs the delete; the result's row count reflects affected rows.
func (s *DeleteStatement) Execute(ctx context.Context) (Result, error) {
	query, args := s.SQL()
	res, err := s.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return Result{}, fmt.Errorf("delete from %s: %w", s.table, err)
	}
	return resultOf(res)
}

// SelectStatement composes a SELECT for one table. Fetched rows are
// type-coerced through the bound schema before being returned.
type SelectStatement struct {
	exec     Executor
	table    string
	fields   []schema.Field
	conds    []condition
	start    int
	count    int
	hasRange bool
}

// Select starts a SELECT builder bound to table and its schema.
func Select(exec Executor, table string, fields []schema.Field) *SelectStatement {
	return &SelectStatement{exec: exec, table: table, fields: fields}
}

// Condition appends an equality predicate, AND-combined with prior ones.
func (s *SelectStatement) Condition(key string, value any) *SelectStatement {
	s.conds = append(s.conds, condition{key: key, value: value})
	return s
}

// Range sets the [start, start+count) page window.
func (s *SelectStatement) Range(start, count int) *SelectStatement {
	s.start = start
	s.count = count
	s.hasRange = true
	return s
}

// SQL returns the statement text and bound values. Columns follow schema
// order; no explicit sort is applied, rows come back in storage order.
func (s *SelectStatement) SQL() (string, []any) {
	cols := make([]string, len(s.fields))
	for i, f := range s.fields {
		cols[i] = f.Name
	}
	where, args := whereClause(s.conds)
	query := fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(cols, ", "), s.table, where)
	if s.hasRange {
		query += " LIMIT ? OFFSET ?"
		args = append(args, s.count, s.start)
	}
	return query, args
}

// ExecuteAndFetchAll materializes every row, coerced per the bound schema.
func (s *SelectStatement) ExecuteAndFetchAll(ctx context.Context) ([]map[string]any, error) {
	query, args := s.SQL()
	rows, err := s.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", s.table, err)
	}
	defer rows.Close()

	var out []map[string]any
	raw := make([]any, len(s.fields))
	holders := make([]any, len(s.fields))
	for i := range raw {
		holders[i] = &raw[i]
	}

	for rows.Next() {
		if err := rows.Scan(holders...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		row := make(map[string]any, len(s.fields))
		for i, f := range s.fields {
			row[f.Name] = raw[i]
		}
		coerced, err := schema.CoerceRow(row, s.fields)
		if err != nil {
			return nil, err
		}
		out = append(out, coerced)
	}
	return out, rows.Err()
}
