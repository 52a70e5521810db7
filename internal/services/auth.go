// Authentication facade for the listening-graph backend.
//
// Response shapes mirror the backend's /auth/* endpoints.
package services

import (
	"context"
	"encoding/json"
	"net/http"
)

// Image represents an image resource from a Spotify profile or catalog object.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// Followers is a follower count.
//
// The backend is inconsistent here: the callback payload flattens it to a bare
// number while Spotify profile objects nest it as {"total": n}. Both decode to
// Total.
type Followers struct {
	Total int `json:"total"`
}

// UnmarshalJSON accepts either a bare number or a {"total": n} object.
func (f *Followers) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		f.Total = n
		return nil
	}

	var obj struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	f.Total = obj.Total
	return nil
}

// UserProfile is the denormalized Spotify profile snapshot carried in auth responses.
type UserProfile struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Images      []Image   `json:"images"`
	Followers   Followers `json:"followers"`
}

// User is the client-side identity snapshot. Replaced wholesale on every
// successful fetch, never partially mutated.
type User struct {
	ID            string      `json:"id"`
	SpotifyUserID string      `json:"spotify_user_id"`
	DisplayName   string      `json:"display_name"`
	Email         string      `json:"email"`
	Images        []Image     `json:"images"`
	Followers     Followers   `json:"followers"`
	Profile       UserProfile `json:"user_profile"`
}

// LoginResponse is returned by GET /auth/spotify/login.
type LoginResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state"`
}

// AuthResponse is returned by POST /auth/spotify/callback.
type AuthResponse struct {
	AccessToken   string      `json:"access_token"`
	TokenType     string      `json:"token_type"`
	SpotifyUserID string      `json:"spotify_user_id"`
	UserProfile   UserProfile `json:"user_profile"`
}

// User builds the identity snapshot from the exchange payload, field for field.
func (a *AuthResponse) User() *User {
	return &User{
		ID:            a.UserProfile.ID,
		SpotifyUserID: a.SpotifyUserID,
		DisplayName:   a.UserProfile.DisplayName,
		Email:         a.UserProfile.Email,
		Images:        a.UserProfile.Images,
		Followers:     a.UserProfile.Followers,
		Profile:       a.UserProfile,
	}
}

// Me is returned by GET /auth/me.
type Me struct {
	SpotifyUserID string      `json:"spotify_user_id"`
	UserProfile   UserProfile `json:"user_profile"`
	TokenValid    bool        `json:"token_valid"`
	ExpiresAt     float64     `json:"expires_at"`
}

// User builds the identity snapshot from the current-user payload.
func (m *Me) User() *User {
	return &User{
		ID:            m.UserProfile.ID,
		SpotifyUserID: m.SpotifyUserID,
		DisplayName:   m.UserProfile.DisplayName,
		Email:         m.UserProfile.Email,
		Images:        m.UserProfile.Images,
		Followers:     m.UserProfile.Followers,
		Profile:       m.UserProfile,
	}
}

// RefreshResponse is returned by POST /auth/refresh. The rotated token stays
// server-side; the client never holds it.
type RefreshResponse struct {
	Message   string  `json:"message"`
	ExpiresAt float64 `json:"expires_at"`
}

// MessageResponse is a generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

type callbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state,omitempty"`
}

// AuthService implements [AuthAPI] against the backend.
type AuthService struct {
	client *Client
}

// NewAuthService creates the authentication facade over the shared client.
func NewAuthService(client *Client) *AuthService {
	return &AuthService{client: client}
}

// LoginURL requests a Spotify authorization URL and state token.
func (s *AuthService) LoginURL(ctx context.Context) (*LoginResponse, error) {
	var resp LoginResponse
	if err := s.client.do(ctx, http.MethodGet, "/auth/spotify/login", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExchangeCallback exchanges an authorization code for a session token and profile.
func (s *AuthService) ExchangeCallback(ctx context.Context, code, state string) (*AuthResponse, error) {
	var resp AuthResponse
	body := callbackRequest{Code: code, State: state}
	if err := s.client.do(ctx, http.MethodPost, "/auth/spotify/callback", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CurrentUser fetches the authenticated user, validating the stored token against
// server truth.
func (s *AuthService) CurrentUser(ctx context.Context) (*Me, error) {
	var resp Me
	if err := s.client.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh asks the backend to rotate the Spotify token server-side.
func (s *AuthService) Refresh(ctx context.Context) (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/refresh", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout invalidates the session on the backend.
func (s *AuthService) Logout(ctx context.Context) (*MessageResponse, error) {
	var resp MessageResponse
	if err := s.client.do(ctx, http.MethodPost, "/auth/logout", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
