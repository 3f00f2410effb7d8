package engine

import (
	"context"
	"errors"
	"fmt"
)

// Options configures an Engine. Source, Destination and Mappings are treated
// as immutable snapshots; every call re-derives its output from them.
type Options struct {
	// Source is the authoritative dataset to synchronize from.
	Source []Record

	// Destination is the existing dataset to reconcile against.
	Destination []Record

	// Mappings is the ordered list of field mappings. Evaluation and delta
	// ordering follow declaration order.
	Mappings []FieldMapping

	// KeyFields optionally names the composite key fields explicitly.
	// When empty, the key is derived from the mappings marked Key, in
	// declaration order. Each name must match a mapping's destination name.
	KeyFields []string

	// Callbacks are the optional effect functions invoked by Sync.
	Callbacks Callbacks
}

// Engine performs one-way reconciliation passes over the configured
// snapshots. It holds no mutable state between calls.
type Engine struct {
	source    []Record
	dest      []Record
	mappings  []FieldMapping
	keyFields []string
	callbacks Callbacks
}

// New validates the options and builds an Engine.
//
// An empty derived key set is accepted: every record then shares the empty
// key, so the diff degenerates into all-deleted plus all-inserted-or-updated.
// That is caller error, not something the engine guards against.
func New(opts Options) (*Engine, error) {
	if err := validateMappings(opts.Mappings); err != nil {
		return nil, err
	}

	keyFields := opts.KeyFields
	if len(keyFields) == 0 {
		for _, m := range opts.Mappings {
			if m.Key {
				keyFields = append(keyFields, m.Name)
			}
		}
	} else {
		// Explicit key names must refer to declared destination fields.
		declared := make(map[string]struct{}, len(opts.Mappings))
		for _, m := range opts.Mappings {
			declared[m.Name] = struct{}{}
		}
		for _, name := range keyFields {
			if _, ok := declared[name]; !ok {
				return nil, fmt.Errorf("key field %q does not match any mapped destination field", name)
			}
		}
	}

	return &Engine{
		source:    opts.Source,
		dest:      opts.Destination,
		mappings:  opts.Mappings,
		keyFields: keyFields,
		callbacks: opts.Callbacks,
	}, nil
}

// KeyFields returns the composite key field names in match order.
func (e *Engine) KeyFields() []string {
	return e.keyFields
}

// MapFields projects every source record into the destination field shape.
// The output has exactly one record per source row, in source order. A
// failing compute function aborts the whole pass; no partial dataset is
// returned.
func (e *Engine) MapFields(ctx context.Context) ([]Record, error) {
	return mapRows(ctx, e.source, e.mappings)
}

// GetChanges maps the source and diffs it against the destination, returning
// the full change set for one reconciliation pass.
func (e *Engine) GetChanges(ctx context.Context) (*ChangeSet, error) {
	mapped, err := e.MapFields(ctx)
	if err != nil {
		return nil, err
	}
	return diff(ctx, mapped, e.dest, e.mappings, e.keyFields)
}

// Sync computes the change set and applies it through the configured
// callbacks. Categories without a callback are skipped and their result slot
// is nil. On any failure Sync returns no result; a failed pass is fully
// non-committal.
func (e *Engine) Sync(ctx context.Context) (*SyncResult, error) {
	changes, err := e.GetChanges(ctx)
	if err != nil {
		return nil, err
	}
	return e.Apply(ctx, changes)
}

func validateMappings(mappings []FieldMapping) error {
	if len(mappings) == 0 {
		return errors.New("at least one field mapping is required")
	}

	seen := make(map[string]struct{}, len(mappings))
	for _, m := range mappings {
		if m.Name == "" {
			return errors.New("field mapping with empty destination name")
		}
		if _, dup := seen[m.Name]; dup {
			return fmt.Errorf("duplicate destination field %q", m.Name)
		}
		seen[m.Name] = struct{}{}

		hasSource := m.Source != ""
		hasCompute := m.Compute != nil
		if hasSource == hasCompute {
			return fmt.Errorf("field %q must declare exactly one of a source field or a compute function", m.Name)
		}
	}

	return nil
}
