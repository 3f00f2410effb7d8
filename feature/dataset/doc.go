// Package dataset provides record providers for the mirror engine.
//
// A Provider loads a dataset as a slice of generic records. Three
// implementations are included:
//
//   - Table: reads rows from a database table via GORM.
//   - Object: reads a JSON array from an object in storage.
//   - Static: serves an in-memory slice, mainly for tests and fixtures.
//
// # Caching
//
// LoadCached wraps any provider with a TTL snapshot cache. Concurrent
// callers requesting the same expired snapshot are collapsed into a single
// load via singleflight, so a burst of plan requests hits the backing store
// once.
package dataset
