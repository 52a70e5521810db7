package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// authTestServer routes each auth endpoint to a canned JSON payload and records
// the request bodies it sees.
func authTestServer(t *testing.T, bodies map[string]string) (*httptest.Server, *AuthService) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, ok := bodies[key]
		if !ok {
			t.Errorf("unexpected request: %s", key)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientOpts{BaseURL: server.URL})
	return server, NewAuthService(client)
}

func TestAuthService(t *testing.T) {
	t.Run("LoginURL", func(t *testing.T) {
		_, svc := authTestServer(t, map[string]string{
			"GET /auth/spotify/login": `{"authorization_url": "https://accounts.spotify.com/authorize?state=abc", "state": "abc"}`,
		})

		resp, err := svc.LoginURL(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.AuthorizationURL != "https://accounts.spotify.com/authorize?state=abc" {
			t.Errorf("unexpected authorization URL: %s", resp.AuthorizationURL)
		}
		if resp.State != "abc" {
			t.Errorf("expected state 'abc', got %s", resp.State)
		}
	})

	t.Run("ExchangeCallback", func(t *testing.T) {
		var gotBody callbackRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/auth/spotify/callback" || r.Method != http.MethodPost {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			json.NewDecoder(r.Body).Decode(&gotBody)
			w.Write([]byte(`{
				"access_token": "session-jwt",
				"token_type": "bearer",
				"spotify_user_id": "spotify:user:42",
				"user_profile": {
					"id": "42",
					"display_name": "Owais",
					"email": "owais@example.com",
					"followers": 17
				}
			}`))
		}))
		defer server.Close()

		svc := NewAuthService(NewClient(ClientOpts{BaseURL: server.URL}))
		resp, err := svc.ExchangeCallback(context.Background(), "code-1", "state-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if gotBody.Code != "code-1" || gotBody.State != "state-1" {
			t.Errorf("expected code/state forwarded, got %+v", gotBody)
		}
		if resp.AccessToken != "session-jwt" {
			t.Errorf("expected access token 'session-jwt', got %s", resp.AccessToken)
		}
		if resp.UserProfile.Followers.Total != 17 {
			t.Errorf("expected flattened follower count 17, got %d", resp.UserProfile.Followers.Total)
		}

		t.Run("User Snapshot", func(t *testing.T) {
			user := resp.User()
			if user.ID != "42" {
				t.Errorf("expected user ID '42', got %s", user.ID)
			}
			if user.SpotifyUserID != "spotify:user:42" {
				t.Errorf("expected spotify user id, got %s", user.SpotifyUserID)
			}
			if user.DisplayName != "Owais" {
				t.Errorf("expected display name 'Owais', got %s", user.DisplayName)
			}
			if user.Profile.Email != "owais@example.com" {
				t.Errorf("expected profile carried whole, got %+v", user.Profile)
			}
		})
	})

	t.Run("CurrentUser", func(t *testing.T) {
		_, svc := authTestServer(t, map[string]string{
			"GET /auth/me": `{
				"spotify_user_id": "spotify:user:42",
				"user_profile": {"id": "42", "display_name": "Owais", "followers": {"total": 9}},
				"token_valid": true,
				"expires_at": 1756600000.5
			}`,
		})

		me, err := svc.CurrentUser(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !me.TokenValid {
			t.Error("expected token_valid true")
		}
		if me.ExpiresAt != 1756600000.5 {
			t.Errorf("expected fractional expires_at preserved, got %f", me.ExpiresAt)
		}
		if me.User().Followers.Total != 9 {
			t.Errorf("expected nested follower count 9, got %d", me.User().Followers.Total)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		_, svc := authTestServer(t, map[string]string{
			"POST /auth/refresh": `{"message": "token refreshed", "expires_at": 1756603600}`,
		})

		resp, err := svc.Refresh(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Message != "token refreshed" {
			t.Errorf("unexpected message: %s", resp.Message)
		}
	})

	t.Run("Logout", func(t *testing.T) {
		_, svc := authTestServer(t, map[string]string{
			"POST /auth/logout": `{"message": "logged out"}`,
		})

		resp, err := svc.Logout(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if resp.Message != "logged out" {
			t.Errorf("unexpected message: %s", resp.Message)
		}
	})
}

func TestFollowers(t *testing.T) {
	t.Run("Bare Number", func(t *testing.T) {
		var f Followers
		if err := json.Unmarshal([]byte(`37`), &f); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.Total != 37 {
			t.Errorf("expected 37, got %d", f.Total)
		}
	})

	t.Run("Nested Object", func(t *testing.T) {
		var f Followers
		if err := json.Unmarshal([]byte(`{"href": null, "total": 37}`), &f); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if f.Total != 37 {
			t.Errorf("expected 37, got %d", f.Total)
		}
	})

	t.Run("Invalid Shape", func(t *testing.T) {
		var f Followers
		if err := json.Unmarshal([]byte(`"many"`), &f); err == nil {
			t.Error("expected error for string follower count")
		}
	})
}
