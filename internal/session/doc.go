// package session owns the client-side authentication lifecycle.
//
// The Coordinator is the single writer of session state. It moves through four
// states (Unknown, Anonymous, Authenticated, Failed) in response to the auth
// operations — startup check, login, callback exchange, logout, refresh — and
// publishes a Snapshot after every transition. Readers take snapshots; nothing
// outside the coordinator mutates state.
//
// Credentials live in a FileTokenStore, an oauth2.Token persisted as JSON under
// the user config directory. The store doubles as the request pipeline's
// TokenSource, so a wiped store immediately stops bearer attachment.
package session
