package engine

import "context"

// Record is an open mapping from field name to value. Values may be scalars
// (string, number, bool, time, nil) or a nested map one level deep.
// A record has no identity beyond its fields.
type Record map[string]any

// ComputeFunc derives a destination field value from a full source row.
// It may block (remote lookups, I/O); the engine invokes it with the pass
// context and awaits the result.
type ComputeFunc func(ctx context.Context, row Record) (any, error)

// CompareFunc reports whether a field is equal between a mapped row and its
// matched destination row. It receives both full rows so comparisons can
// consult more than the field itself. Returning false marks the field as
// differing.
type CompareFunc func(mapped, dest Record) bool

// OverrideFunc computes an alternate value for a field, used only when
// building the effect payload for insert or update. Override values never
// participate in diffing.
type OverrideFunc func(ctx context.Context, row Record) (any, error)

// FieldMapping describes how one destination field is derived from a source
// record. Exactly one of Source or Compute must be set.
type FieldMapping struct {
	// Name is the destination field name, unique within the mapping list.
	Name string

	// Key marks this field as part of the composite matching key.
	Key bool

	// Source names the source field to copy directly.
	Source string

	// Compute derives the value from the full source row instead of a
	// direct copy.
	Compute ComputeFunc

	// Compare overrides default equality for this field during diffing.
	Compare CompareFunc

	// InsertOverride computes the effect payload value for this field when
	// the record is inserted.
	InsertOverride OverrideFunc

	// UpdateOverride computes the effect payload value for this field when
	// the record is updated.
	UpdateOverride OverrideFunc
}

// FieldDelta records one differing field between a mapped row and its
// matched destination row.
type FieldDelta struct {
	// Field is the destination field name.
	Field string `json:"field"`

	// Old is the destination's current value.
	Old any `json:"old"`

	// New is the mapped (desired) value.
	New any `json:"new"`
}

// Insert is a mapped record with no matching destination key.
type Insert struct {
	// Row is the mapped record.
	Row Record `json:"row"`

	// Overrides holds effect-only values computed by insert override
	// functions. Nil when no mapping declares one.
	Overrides Record `json:"overrides,omitempty"`
}

// Update pairs a mapped record with the list of fields that differ from its
// matched destination row.
type Update struct {
	// Row is the mapped record.
	Row Record `json:"row"`

	// Deltas lists every differing field. Always non-empty.
	Deltas []FieldDelta `json:"deltas"`

	// Overrides holds effect-only values computed by update override
	// functions. Nil when no mapping declares one.
	Overrides Record `json:"overrides,omitempty"`
}

// ChangeSet is the output of one reconciliation pass.
type ChangeSet struct {
	// Inserted follows mapped (source) iteration order.
	Inserted []Insert `json:"inserted"`

	// Deleted contains destination records with no matching mapped key,
	// untouched, in destination iteration order.
	Deleted []Record `json:"deleted"`

	// Updated follows mapped (source) iteration order.
	Updated []Update `json:"updated"`

	// Summary provides aggregate counts for the pass.
	Summary Summary `json:"summary"`
}

// Summary provides aggregate statistics for a change set.
type Summary struct {
	// SourceRows is the number of source records.
	SourceRows int `json:"source_rows"`

	// DestinationRows is the number of destination records.
	DestinationRows int `json:"destination_rows"`

	// Inserted counts mapped records without a destination match.
	Inserted int `json:"inserted"`

	// Deleted counts destination records without a mapped match.
	Deleted int `json:"deleted"`

	// Updated counts matched records with at least one field delta.
	Updated int `json:"updated"`

	// Unchanged counts matched records with no field deltas.
	Unchanged int `json:"unchanged"`

	// DuplicateKeys counts records whose composite key was already seen
	// within the same dataset. Duplicates are not rejected; the first
	// record wins for existence checks.
	DuplicateKeys int `json:"duplicate_keys"`
}

// InsertFunc applies one insertion. It receives the mapped row with insert
// overrides merged in.
type InsertFunc func(ctx context.Context, row Record) (any, error)

// DeleteFunc applies one deletion. It receives the raw destination record.
type DeleteFunc func(ctx context.Context, row Record) (any, error)

// UpdateFunc applies one update. It receives the mapped row with update
// overrides merged in, plus the field deltas.
type UpdateFunc func(ctx context.Context, row Record, deltas []FieldDelta) (any, error)

// Callbacks bundles the optional effect functions invoked by Sync.
// Each nil slot disables its category.
type Callbacks struct {
	Insert InsertFunc
	Delete DeleteFunc
	Update UpdateFunc
}

// SyncResult aggregates per-record callback results, positionally aligned
// with the corresponding change set lists. A slot is nil when no callback
// was supplied for that category.
type SyncResult struct {
	Inserts []any `json:"inserts"`
	Deletes []any `json:"deletes"`
	Updates []any `json:"updates"`
}

// Payload returns the record handed to the insert callback: the mapped row
// with overrides applied on top. The underlying row is not modified.
func (in Insert) Payload() Record {
	return mergeOverrides(in.Row, in.Overrides)
}

// Payload returns the record handed to the update callback: the mapped row
// with overrides applied on top. The underlying row is not modified.
func (u Update) Payload() Record {
	return mergeOverrides(u.Row, u.Overrides)
}

func mergeOverrides(row, overrides Record) Record {
	if len(overrides) == 0 {
		return row
	}
	merged := make(Record, len(row))
	for k, v := range row {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
