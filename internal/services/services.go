// package services defines interfaces and facades for the listening-graph backend API
package services

import (
	"context"
)

// TokenSource supplies the bearer credential attached to outgoing requests.
//
// Implemented by the session token store. A nil or empty token means the request
// goes out unauthenticated.
type TokenSource interface {
	// AccessToken returns the stored bearer token, or "" when none is stored.
	AccessToken() string

	// Clear removes the stored credential.
	Clear() error
}

// AuthAPI defines the authentication endpoints of the backend.
type AuthAPI interface {
	// LoginURL requests a Spotify authorization URL and state token.
	LoginURL(ctx context.Context) (*LoginResponse, error)

	// ExchangeCallback exchanges an authorization code for a session token and profile.
	ExchangeCallback(ctx context.Context, code, state string) (*AuthResponse, error)

	// CurrentUser fetches the authenticated user, validating the stored token.
	CurrentUser(ctx context.Context) (*Me, error)

	// Refresh asks the backend to rotate the Spotify token server-side.
	Refresh(ctx context.Context) (*RefreshResponse, error)

	// Logout invalidates the session on the backend.
	Logout(ctx context.Context) (*MessageResponse, error)
}

// MusicAPI defines the music data endpoints of the backend.
type MusicAPI interface {
	// StartImport asks the backend to begin an asynchronous import job.
	StartImport(ctx context.Context) (*ImportStartResponse, error)

	// ImportStatus fetches the current import job snapshot.
	ImportStatus(ctx context.Context) (*ImportStatus, error)

	// TopArtists fetches the user's ranked artists for a time range.
	TopArtists(ctx context.Context, timeRange TimeRange) (*TopArtistsResponse, error)

	// TopTracks fetches the user's ranked tracks for a time range.
	TopTracks(ctx context.Context, timeRange TimeRange) (*TopTracksResponse, error)

	// Profile fetches the raw Spotify profile passthrough.
	Profile(ctx context.Context) (*SpotifyProfileResponse, error)
}
