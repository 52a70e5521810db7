// Package ui implements the terminal dashboard.
//
// The dashboard is a bubbletea program with three views. The login view
// is shown when no credentials are stored and tells the user to run
// `sgx auth login`. The import view streams progress updates while the
// backend pulls listening history from Spotify. The dashboard view
// lists top artists or top tracks for a selected time range, with key
// bindings to flip between the two kinds and the three ranges.
//
// The model holds a session coordinator for auth state, a music API
// facade for fetches, and an import engine whose progress channel is
// bridged into bubbletea messages via a re-subscribing command.
package ui
