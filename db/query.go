// query.go executes generated read queries and collects rows.
//
// Functions accept a context and return structured results. Errors are
// returned, never logged or printed here.
package db

import (
	"context"
	"fmt"
	"strings"
)

// Result holds the output of a read query. Columns preserves the
// result-set column order; Rows holds one mapping per row.
type Result struct {
	Columns []string
	Rows    []map[string]any
	// Truncated is true when the configured row cap cut the result short.
	Truncated bool
}

// Select runs a read query and collects rows as column→value mappings.
// Reading stops at the configured row cap so a runaway generated query
// cannot exhaust memory.
func (d *DB) Select(ctx context.Context, sqlText string) (*Result, error) {
	sqlText = strings.TrimSpace(sqlText)
	if sqlText == "" {
		return nil, fmt.Errorf("empty query")
	}

	ctx, cancel := d.queryCtx(ctx)
	defer cancel()

	rows, err := d.pool.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := &Result{Columns: columns, Rows: []map[string]any{}}
	values := make([]any, len(columns))
	scanTargets := make([]any, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if d.maxRows > 0 && len(result.Rows) >= d.maxRows {
			result.Truncated = true
			break
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = normalizeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// normalizeValue makes driver values JSON-friendly. The pgx driver
// hands text and numeric types back as []byte through database/sql.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
