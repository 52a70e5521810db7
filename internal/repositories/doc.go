// Package repositories implements SQLite persistence for the snapshot cache.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SnapshotRepository] : Cached top-item responses with kind and time-range lookups
//
// Sequence numbers provide stable, human-readable ordering (e.g., snapshot #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
