package mirror

// Apply callbacks executing change set entries against the destination table.

import (
	"context"
	"fmt"

	"data-mirror/core/engine"
)

// callbacks builds the engine callbacks writing to the destination table.
// Delete and update locate rows by the rule set's key columns.
func (s *Service) callbacks(rules *RuleSet) engine.Callbacks {
	keyFields := rules.KeyFields()

	return engine.Callbacks{
		Insert: func(ctx context.Context, row engine.Record) (any, error) {
			return s.insertRow(ctx, row)
		},
		Delete: func(ctx context.Context, row engine.Record) (any, error) {
			return s.deleteRow(ctx, row, keyFields)
		},
		Update: func(ctx context.Context, row engine.Record, deltas []engine.FieldDelta) (any, error) {
			return s.updateRow(ctx, row, deltas, keyFields)
		},
	}
}

// insertRow inserts one mapped record into the destination table.
func (s *Service) insertRow(ctx context.Context, row engine.Record) (any, error) {
	values := map[string]any(row)

	result := s.db.WithContext(ctx).
		Table(s.cfg.DestTable).
		Create(values)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", s.cfg.DestTable, result.Error)
	}

	return result.RowsAffected, nil
}

// deleteRow removes one destination record matched by its key columns.
func (s *Service) deleteRow(ctx context.Context, row engine.Record, keyFields []string) (any, error) {
	query := s.db.WithContext(ctx).Table(s.cfg.DestTable)
	for _, field := range keyFields {
		query = query.Where(field+" = ?", row[field])
	}

	result := query.Delete(nil)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to delete from %s: %w", s.cfg.DestTable, result.Error)
	}

	return result.RowsAffected, nil
}

// updateRow writes the differing columns of one matched record. Values come
// from the merged payload so update overrides take effect.
func (s *Service) updateRow(ctx context.Context, row engine.Record, deltas []engine.FieldDelta, keyFields []string) (any, error) {
	updates := make(map[string]any, len(deltas))
	for _, delta := range deltas {
		updates[delta.Field] = row[delta.Field]
	}

	query := s.db.WithContext(ctx).Table(s.cfg.DestTable)
	for _, field := range keyFields {
		query = query.Where(field+" = ?", row[field])
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update %s: %w", s.cfg.DestTable, result.Error)
	}

	return result.RowsAffected, nil
}
