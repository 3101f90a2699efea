package seeder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"jobpilot/internal/database"
)

var ErrSchemaMismatch = errors.New("schema mismatch")

// EnsureTableColumns fails with ErrSchemaMismatch when table lacks any of
// columns, which means migrations have not been applied.
func EnsureTableColumns(ctx context.Context, db database.Querier, table string, columns ...string) error {
	if db == nil {
		return errors.New("nil db")
	}
	if table == "" || len(columns) == 0 {
		return errors.New("table and columns are required")
	}

	rows, err := db.Query(ctx, `
SELECT want.name
FROM unnest($2::text[]) AS want(name)
WHERE NOT EXISTS (
	SELECT 1 FROM information_schema.columns c
	WHERE c.table_schema = current_schema() AND c.table_name = $1 AND c.column_name = want.name
)`, table, columns)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	defer rows.Close()

	var missing []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		missing = append(missing, name)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s lacks %s", ErrSchemaMismatch, table, strings.Join(missing, ", "))
	}
	return nil
}
