// Package services provides typed facades over the listening-graph backend REST API.
//
// # Request Pipeline
//
// All calls flow through a single [Client] that base-URLs requests, enforces a
// blanket request timeout, paces outgoing calls with a rate limiter, and attaches
// the stored bearer credential to every request that has one.
//
// A response with status 401 triggers the client's cross-cutting failure policy:
// the token store is cleared synchronously, the registered unauthorized hook fires
// (the CLI/TUI equivalent of a redirect to the login screen), and the failure is
// propagated to the caller. No caller downstream of the client special-cases token
// expiry.
//
// # Facades
//
// [AuthService] wraps the five authentication endpoints (login URL issuance,
// callback exchange, current user, refresh, logout). [MusicService] wraps the
// music endpoints (import start, import status, top artists, top tracks, raw
// profile). Facades never swallow errors; orchestration layers decide what to
// surface.
//
// Backend-declared failures carry a structured detail string in the response body
// which is extracted and returned verbatim; transport failures are wrapped with
// [shared.ErrAPIRequest].
package services
