// Package tasks orchestrates long-running backend operations with real-time progress reporting.
//
// # Import Polling
//
// [ImportEngine.Start] asks the backend to begin a listening-graph import, then
// watches it to completion:
//
//  1. POST /music/import to enqueue the job.
//  2. Poll GET /music/import-status on a fixed interval.
//  3. Stop when the snapshot is terminal (user exists and statistics are
//     present), when the poll budget is exhausted, or when the caller stops the
//     handle.
//
// The start call and the watch are deliberately decoupled: polling begins even
// when the start request fails, since the job may already be running from an
// earlier attempt.
//
// One goroutine owns the whole watch. The returned [PollHandle] is the only way
// to interact with it: Stop cancels, Done signals completion, Result reports
// the outcome. There are no competing timers; interval and budget are both
// enforced inside the single loop.
//
// # Progress Reporting
//
// All operations use non-blocking channel sends for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Bulk Export
//
// [BulkExporter.Run] fetches ranked artists and tracks for every time range in
// one pass, pacing requests with a rate limiter. Per-range failures are
// recorded and skipped rather than aborting the run.
package tasks
