// Package engine implements a one-way data reconciliation engine.
//
// Given a source dataset and a destination dataset, the engine projects each
// source record into the destination's field shape through a declarative list
// of field mappings, computes the change set (inserted, deleted, updated)
// required to make the destination match the source, and optionally applies
// those changes through caller-supplied callbacks.
//
// # Architecture
//
// The engine is built from four small parts:
//
//  1. Field mapper: evaluates the field mappings against every source row,
//     producing the mapped (destination-shaped) dataset. Rows are mapped
//     concurrently; output order always equals source order.
//
//  2. Key resolver: builds a composite key from the fields marked as keys.
//     Keys use a type-tagged encoding, so the number 1 and the string "1"
//     never collide, and neither do values containing the join delimiter.
//
//  3. Diff: indexes the destination by key and partitions records into
//     inserted (mapped key absent from destination), deleted (destination
//     key absent from mapped set) and updated (matched keys with at least
//     one differing field). Per-field compare functions override default
//     equality; override functions compute effect-only payloads.
//
//  4. Sync: fans out the optional insert/delete/update callbacks over the
//     change set, one invocation per record, collecting results positionally.
//
// # Guarantees and sharp edges
//
// The engine holds immutable snapshots: every call re-derives its output
// from the datasets supplied at construction. Duplicate keys within either
// dataset are not rejected; the first record in iteration order wins for
// existence checks (the summary reports a duplicate count). An empty key
// field set is accepted but degenerates into an all-or-nothing diff; both
// behaviors are caller responsibility.
//
// # Usage Example
//
//	eng, err := engine.New(engine.Options{
//	    Source:      sourceRows,
//	    Destination: destRows,
//	    Mappings: []engine.FieldMapping{
//	        {Name: "id", Source: "id", Key: true},
//	        {Name: "FullName", Compute: fullName},
//	    },
//	    Callbacks: engine.Callbacks{Insert: insertRow},
//	})
//
//	changes, err := eng.GetChanges(ctx) // report only
//	result, err := eng.Sync(ctx)        // diff + apply callbacks
package engine
