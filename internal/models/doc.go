// Package models defines domain entities and persistence interfaces for the local snapshot cache.
//
// The cache stores the most recent top-item responses per kind and time range so
// listings render offline and the dashboard has instant data while fresh fetches
// run. One persistent entity backs it:
//   - [Snapshot] : A cached top-artists or top-tracks response with its raw payload
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
