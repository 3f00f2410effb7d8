package dataset

import (
	"context"
	"fmt"

	"data-mirror/core/engine"
	"data-mirror/core/utils"

	"gorm.io/gorm"
)

// Table is a provider that reads rows from a database table.
type Table struct {
	db *gorm.DB

	// TableName is the table to read from.
	TableName string

	// Columns limits the selected columns. Empty selects all columns.
	Columns []string

	// OrderBy is an optional ORDER BY clause to make row order deterministic.
	OrderBy string
}

// NewTable creates a provider reading from the given table.
func NewTable(db *gorm.DB, tableName string) *Table {
	return &Table{db: db, TableName: tableName}
}

// Name returns "table:" followed by the table name.
func (t *Table) Name() string {
	return "table:" + t.TableName
}

// Load reads all rows from the table as generic records.
func (t *Table) Load(ctx context.Context) ([]engine.Record, error) {
	query := t.db.WithContext(ctx).Table(t.TableName)
	if len(t.Columns) > 0 {
		query = query.Select(t.Columns)
	}
	if t.OrderBy != "" {
		query = query.Order(t.OrderBy)
	}

	var rows []map[string]any
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", t.TableName, err)
	}

	records := make([]engine.Record, len(rows))
	for i, row := range rows {
		records[i] = normalizeRow(row)
	}
	return records, nil
}

// normalizeRow converts driver-specific values into plain Go values.
// MySQL text columns scan as []byte; records should carry strings.
func normalizeRow(row map[string]any) engine.Record {
	rec := make(engine.Record, len(row))
	for k, v := range row {
		if b, ok := v.([]byte); ok {
			rec[k] = utils.ToString(b)
			continue
		}
		rec[k] = v
	}
	return rec
}
