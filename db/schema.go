// schema.go fetches the table/column metadata snapshot used to ground
// SQL generation.
//
// The snapshot is read fresh from information_schema on every call:
// no caching, no identity beyond the current database state. Column
// order follows ordinal_position so the prompt sees columns the way
// the table defines them.
package db

import (
	"context"
	"fmt"
	"sort"
)

// Column describes a single column in a table.
type Column struct {
	Name     string `json:"column"`
	DataType string `json:"data_type"`
}

// SchemaDescriptor maps table name to its ordered column list.
type SchemaDescriptor map[string][]Column

// Tables returns the table names in sorted order, for deterministic
// serialization into prompts.
func (s SchemaDescriptor) Tables() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Schema reads the current schema descriptor for all base tables in
// the public schema.
func (d *DB) Schema(ctx context.Context) (SchemaDescriptor, error) {
	ctx, cancel := d.queryCtx(ctx)
	defer cancel()

	query := `
		SELECT c.table_name, c.column_name, c.data_type
		FROM information_schema.columns c
		JOIN information_schema.tables t
		  ON t.table_schema = c.table_schema AND t.table_name = c.table_name
		WHERE c.table_schema = 'public' AND t.table_type = 'BASE TABLE'
		ORDER BY c.table_name, c.ordinal_position`
	rows, err := d.pool.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	defer rows.Close()

	descriptor := make(SchemaDescriptor)
	for rows.Next() {
		var table string
		var col Column
		if err := rows.Scan(&table, &col.Name, &col.DataType); err != nil {
			return nil, fmt.Errorf("scan schema row: %w", err)
		}
		descriptor[table] = append(descriptor[table], col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}

	return descriptor, nil
}
