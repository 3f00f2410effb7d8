package engine

import (
	"context"
	"fmt"
	"reflect"
	"time"
)

// diff partitions mapped and destination records into the three change
// categories. The destination is indexed by composite key once, so the pass
// is near-linear in the number of records.
//
// Duplicate keys resolve by first match: the first destination record with a
// key is the comparison target for every mapped record sharing it, and later
// duplicates are counted in the summary but never reported as errors.
func diff(ctx context.Context, mapped, dest []Record, mappings []FieldMapping, keyFields []string) (*ChangeSet, error) {
	cs := &ChangeSet{
		Inserted: []Insert{},
		Deleted:  []Record{},
		Updated:  []Update{},
		Summary: Summary{
			SourceRows:      len(mapped),
			DestinationRows: len(dest),
		},
	}

	destIndex := make(map[string]Record, len(dest))
	for _, row := range dest {
		key := compositeKey(row, keyFields)
		if _, exists := destIndex[key]; exists {
			cs.Summary.DuplicateKeys++
			continue
		}
		destIndex[key] = row
	}

	mappedKeys := make(map[string]struct{}, len(mapped))
	for _, row := range mapped {
		key := compositeKey(row, keyFields)
		if _, exists := mappedKeys[key]; exists {
			cs.Summary.DuplicateKeys++
		} else {
			mappedKeys[key] = struct{}{}
		}

		destRow, matched := destIndex[key]
		if !matched {
			overrides, err := overrideRecord(ctx, row, mappings, true)
			if err != nil {
				return nil, err
			}
			cs.Inserted = append(cs.Inserted, Insert{Row: row, Overrides: overrides})
			continue
		}

		deltas := fieldDeltas(row, destRow, mappings)
		if len(deltas) == 0 {
			cs.Summary.Unchanged++
			continue
		}

		overrides, err := overrideRecord(ctx, row, mappings, false)
		if err != nil {
			return nil, err
		}
		cs.Updated = append(cs.Updated, Update{Row: row, Deltas: deltas, Overrides: overrides})
	}

	for _, row := range dest {
		if _, matched := mappedKeys[compositeKey(row, keyFields)]; !matched {
			cs.Deleted = append(cs.Deleted, row)
		}
	}

	cs.Summary.Inserted = len(cs.Inserted)
	cs.Summary.Deleted = len(cs.Deleted)
	cs.Summary.Updated = len(cs.Updated)
	return cs, nil
}

// fieldDeltas compares every mapped field against the destination row's
// same-named field, in mapping declaration order. A declared compare
// function replaces default equality for its field.
func fieldDeltas(mapped, dest Record, mappings []FieldMapping) []FieldDelta {
	var deltas []FieldDelta
	for _, m := range mappings {
		var equal bool
		if m.Compare != nil {
			equal = m.Compare(mapped, dest)
		} else {
			equal = valuesEqual(mapped[m.Name], dest[m.Name])
		}
		if !equal {
			deltas = append(deltas, FieldDelta{
				Field: m.Name,
				Old:   dest[m.Name],
				New:   mapped[m.Name],
			})
		}
	}
	return deltas
}

// overrideRecord invokes each mapping's insert or update override function
// with the mapped row. Returns nil when no mapping declares one.
func overrideRecord(ctx context.Context, row Record, mappings []FieldMapping, insert bool) (Record, error) {
	var overrides Record
	for _, m := range mappings {
		fn := m.UpdateOverride
		if insert {
			fn = m.InsertOverride
		}
		if fn == nil {
			continue
		}
		value, err := fn(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("override field %q: %w", m.Name, err)
		}
		if overrides == nil {
			overrides = Record{}
		}
		overrides[m.Name] = value
	}
	return overrides, nil
}

// valuesEqual is the default field equality: scalar equality, except that
// nested maps compare shallowly, one level deep. Declare a CompareFunc on
// the mapping for anything deeper or for non-comparable values.
func valuesEqual(a, b any) bool {
	am, aIsMap := asRecord(a)
	bm, bIsMap := asRecord(b)
	if aIsMap || bIsMap {
		if !aIsMap || !bIsMap || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !scalarEqual(av, bv) {
				return false
			}
		}
		return true
	}
	return scalarEqual(a, b)
}

func asRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

// scalarEqual compares two scalar values. Numeric values compare by value
// across int/uint/float representations, mirroring the key encoding, so a
// JSON-decoded 1.0 equals a database 1. Non-comparable values never compare
// equal.
func scalarEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, aNum := asFloat(a); aNum {
		bf, bNum := asFloat(b)
		return bNum && af == bf
	}

	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
