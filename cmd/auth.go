package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/soundgraph/internal/server"
	"github.com/desertthunder/soundgraph/internal/session"
	"github.com/desertthunder/soundgraph/internal/shared"
	"github.com/urfave/cli/v3"
)

// loginTimeout bounds the wait for the browser redirect.
const loginTimeout = 2 * time.Minute

// AuthLogin runs the browser OAuth flow.
//
// Asks the backend for an authorization URL, serves a one-shot local callback
// server, then hands the captured code back to the coordinator for exchange.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	resp, err := r.session.Login(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	handler := server.NewCallbackHandler(resp.State)
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)

	if cmd.Bool("no-browser") {
		r.writePlain("→ Open this URL in your browser:\n%s\n\n", resp.AuthorizationURL)
	} else {
		go func() {
			// Let the callback server bind before the redirect can arrive.
			time.Sleep(100 * time.Millisecond)
			if err := shared.OpenBrowser(resp.AuthorizationURL); err != nil {
				r.logger.Warnf("failed to open browser automatically %v", err)
			}
		}()
		r.writePlain("→ Opening browser for Spotify authorization...\n")
		r.writePlain("  If nothing opens, visit:\n  %s\n\n", resp.AuthorizationURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	serveCtx, cancel := context.WithTimeout(ctx, loginTimeout)
	defer cancel()

	result, err := server.Serve(serveCtx, addr, handler, r.logger)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}
	if result.Error() != nil {
		return fmt.Errorf("authorization failed: %w", result.Error())
	}

	if err := r.session.HandleCallback(ctx, result.Code, result.State); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	snap := r.session.Snapshot()
	r.writePlainln("✓ Authorization successful")
	if snap.User != nil {
		r.writePlain("Signed in as %s (%s)\n", snap.User.DisplayName, snap.User.SpotifyUserID)
	}
	r.writePlain("You can now use: sgx music import\n")

	return nil
}

// AuthLogout signs out locally and best-effort revokes the server session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("signing out")

	if err := r.session.Logout(ctx); err != nil {
		return err
	}

	return r.writePlain("✓ Signed out\n")
}

// AuthStatus resolves and prints the current session state.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("checking auth status")

	snap, err := r.session.CheckAuthStatus(ctx)

	if cmd.Bool("json") {
		out := map[string]any{"state": snap.State.String()}
		if snap.User != nil {
			out["user"] = snap.User
		}
		if snap.Err != nil {
			out["error"] = snap.Err.Error()
		}
		return r.writeJSON(out, true)
	}

	switch snap.State {
	case session.StateAuthenticated:
		r.writePlain("✓ Signed in\n")
		if snap.User != nil {
			r.writePlain("User: %s\n", snap.User.DisplayName)
			r.writePlain("Spotify ID: %s\n", snap.User.SpotifyUserID)
			if snap.User.Email != "" {
				r.writePlain("Email: %s\n", snap.User.Email)
			}
			r.writePlain("Followers: %d\n", snap.User.Followers.Total)
		}
		return nil
	case session.StateAnonymous:
		r.writePlain("✗ Not signed in\n")
		r.writePlain("Run 'sgx auth login' to sign in.\n")
		return nil
	default:
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
}

// AuthRefresh asks the backend to rotate the stored Spotify token.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if r.session == nil {
		return fmt.Errorf("%w: session not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("refreshing token")

	resp, err := r.session.RefreshToken(ctx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Token refreshed\n")
	if resp.ExpiresAt > 0 {
		expires := time.Unix(int64(resp.ExpiresAt), 0)
		r.writePlain("Valid until: %s\n", expires.Format(time.RFC1123))
	}

	return nil
}
