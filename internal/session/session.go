package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/shared"
)

// State is the session lifecycle position.
type State int

const (
	// StateUnknown holds until the first server check resolves.
	StateUnknown State = iota
	// StateAnonymous means no valid credential is held.
	StateAnonymous
	// StateAuthenticated means the server confirmed the stored credential.
	StateAuthenticated
	// StateFailed means the last auth operation errored for a reason other
	// than credential rejection.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Snapshot is an immutable view of session state. Copies are safe to hold.
type Snapshot struct {
	State   State
	User    *services.User
	Loading bool
	Err     error
}

// TokenStore is the credential store the coordinator drives.
type TokenStore interface {
	services.TokenSource

	// Save persists a new credential.
	Save(token *oauth2.Token) error

	// HasToken reports whether a credential is stored.
	HasToken() bool
}

// Coordinator is the single writer of session state.
//
// Every auth operation both returns its error and mirrors it into the current
// Snapshot, so imperative callers and snapshot readers see the same failure.
type Coordinator struct {
	mu            sync.Mutex
	snap          Snapshot
	expectedState string

	auth    services.AuthAPI
	store   TokenStore
	logger  *log.Logger
	updates chan Snapshot
}

// NewCoordinator creates a coordinator in StateUnknown.
func NewCoordinator(auth services.AuthAPI, store TokenStore, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Coordinator{
		auth:    auth,
		store:   store,
		logger:  logger,
		snap:    Snapshot{State: StateUnknown, Loading: true},
		updates: make(chan Snapshot, 8),
	}
}

// Snapshot returns the current session view.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Updates delivers a snapshot after each transition. Slow readers miss
// intermediate snapshots, never the operations behind them.
func (c *Coordinator) Updates() <-chan Snapshot {
	return c.updates
}

// set replaces the snapshot and publishes it without blocking.
func (c *Coordinator) set(snap Snapshot) {
	c.mu.Lock()
	c.snap = snap
	c.mu.Unlock()

	select {
	case c.updates <- snap:
	default:
	}
}

func (c *Coordinator) setLoading() {
	c.mu.Lock()
	snap := c.snap
	c.mu.Unlock()

	snap.Loading = true
	snap.Err = nil
	c.set(snap)
}

// CheckAuthStatus resolves StateUnknown against server truth.
//
// Without a stored token it settles on StateAnonymous immediately; no network
// call is made. With one, the server decides: a confirmed identity yields
// StateAuthenticated, a rejected credential yields StateAnonymous with the
// store wiped, and anything else wipes the store too and yields StateFailed.
// Either way a failed check never leaves a credential behind.
func (c *Coordinator) CheckAuthStatus(ctx context.Context) (Snapshot, error) {
	c.setLoading()

	if !c.store.HasToken() {
		snap := Snapshot{State: StateAnonymous}
		c.set(snap)
		return snap, nil
	}

	me, err := c.auth.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			snap := Snapshot{State: StateAnonymous}
			c.set(snap)
			return snap, nil
		}

		c.logger.Error("auth status check failed", "error", err)
		_ = c.store.Clear()
		snap := Snapshot{State: StateFailed, Err: err}
		c.set(snap)
		return snap, err
	}

	if !me.TokenValid {
		_ = c.store.Clear()
		snap := Snapshot{State: StateAnonymous}
		c.set(snap)
		return snap, nil
	}

	snap := Snapshot{State: StateAuthenticated, User: me.User()}
	c.set(snap)
	return snap, nil
}

// Login requests an authorization URL from the backend and remembers the state
// token for callback validation. The caller directs the user to the URL.
func (c *Coordinator) Login(ctx context.Context) (*services.LoginResponse, error) {
	c.setLoading()

	resp, err := c.auth.LoginURL(ctx)
	if err != nil {
		c.logger.Error("login initiation failed", "error", err)
		c.set(Snapshot{State: StateFailed, Err: err})
		return nil, err
	}

	c.mu.Lock()
	c.expectedState = resp.State
	snap := c.snap
	c.mu.Unlock()

	snap.Loading = false
	c.set(snap)
	return resp, nil
}

// HandleCallback exchanges the authorization code for a session token, persists
// it, and settles on StateAuthenticated.
func (c *Coordinator) HandleCallback(ctx context.Context, code, state string) error {
	c.setLoading()

	c.mu.Lock()
	expected := c.expectedState
	c.expectedState = ""
	c.mu.Unlock()

	if expected != "" && state != expected {
		err := fmt.Errorf("%w: state mismatch", shared.ErrAuthFailed)
		c.set(Snapshot{State: StateFailed, Err: err})
		return err
	}

	resp, err := c.auth.ExchangeCallback(ctx, code, state)
	if err != nil {
		c.logger.Error("callback exchange failed", "error", err)
		c.set(Snapshot{State: StateFailed, Err: err})
		return err
	}

	token := &oauth2.Token{AccessToken: resp.AccessToken, TokenType: resp.TokenType}
	if err := c.store.Save(token); err != nil {
		c.set(Snapshot{State: StateFailed, Err: err})
		return err
	}

	c.logger.Info("authenticated", "spotify_user_id", resp.SpotifyUserID)
	c.set(Snapshot{State: StateAuthenticated, User: resp.User()})
	return nil
}

// Logout invalidates the session on the backend and locally.
//
// The local wipe is unconditional: a failed remote logout still ends in
// StateAnonymous with no stored credential. A remote failure is logged, not
// surfaced; signing out locally always succeeds.
func (c *Coordinator) Logout(ctx context.Context) error {
	c.setLoading()

	if _, remoteErr := c.auth.Logout(ctx); remoteErr != nil && !errors.Is(remoteErr, shared.ErrUnauthorized) {
		c.logger.Warn("remote logout failed, clearing local session anyway", "error", remoteErr)
	}

	_ = c.store.Clear()
	c.set(Snapshot{State: StateAnonymous})
	return nil
}

// RefreshToken asks the backend to rotate the Spotify credential server-side.
//
// Success re-runs CheckAuthStatus so the user snapshot reflects the rotated
// credential. Any failure signs the session out: the store is cleared and the
// coordinator settles on StateAnonymous with the refresh error mirrored.
func (c *Coordinator) RefreshToken(ctx context.Context) (*services.RefreshResponse, error) {
	c.setLoading()

	resp, err := c.auth.Refresh(ctx)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)

		if errors.Is(err, shared.ErrUnauthorized) {
			// The client already wiped the store on the 401; skip the
			// remote logout, which would only fail the same way.
			_ = c.store.Clear()
			c.set(Snapshot{State: StateAnonymous, Err: wrapped})
			return nil, wrapped
		}

		c.logger.Error("token refresh failed, signing out", "error", err)
		_ = c.Logout(ctx)
		c.set(Snapshot{State: StateAnonymous, Err: wrapped})
		return nil, wrapped
	}

	if _, checkErr := c.CheckAuthStatus(ctx); checkErr != nil {
		c.logger.Warn("post-refresh status check failed", "error", checkErr)
	}
	return resp, nil
}

// HandleUnauthorized transitions to StateAnonymous after the request pipeline
// rejects the credential. Registered as the client's unauthorized hook; the
// store is already wiped by the time this runs.
func (c *Coordinator) HandleUnauthorized() {
	c.set(Snapshot{State: StateAnonymous})
}
