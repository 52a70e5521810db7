// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"golang.org/x/oauth2"

	"github.com/desertthunder/soundgraph/internal/services"
)

// MemoryTokenStore is an in-memory [services.TokenSource] for tests.
type MemoryTokenStore struct {
	mu     sync.Mutex
	token  string
	clears int
}

func NewMemoryTokenStore(token string) *MemoryTokenStore {
	return &MemoryTokenStore{token: token}
}

func (m *MemoryTokenStore) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryTokenStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.clears++
	return nil
}

func (m *MemoryTokenStore) Set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *MemoryTokenStore) Save(token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token.AccessToken
	return nil
}

func (m *MemoryTokenStore) HasToken() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != ""
}

// ClearCount reports how many times Clear has run.
func (m *MemoryTokenStore) ClearCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clears
}

// MockAuthAPI is a test double for [services.AuthAPI].
type MockAuthAPI struct {
	LoginResp    *services.LoginResponse
	LoginErr     error
	ExchangeResp *services.AuthResponse
	ExchangeErr  error
	MeResp       *services.Me
	MeErr        error
	RefreshResp  *services.RefreshResponse
	RefreshErr   error
	LogoutResp   *services.MessageResponse
	LogoutErr    error

	LoginCalls    int
	ExchangeCalls int
	MeCalls       int
	RefreshCalls  int
	LogoutCalls   int
}

func (m *MockAuthAPI) LoginURL(ctx context.Context) (*services.LoginResponse, error) {
	m.LoginCalls++
	return m.LoginResp, m.LoginErr
}

func (m *MockAuthAPI) ExchangeCallback(ctx context.Context, code, state string) (*services.AuthResponse, error) {
	m.ExchangeCalls++
	return m.ExchangeResp, m.ExchangeErr
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context) (*services.Me, error) {
	m.MeCalls++
	return m.MeResp, m.MeErr
}

func (m *MockAuthAPI) Refresh(ctx context.Context) (*services.RefreshResponse, error) {
	m.RefreshCalls++
	return m.RefreshResp, m.RefreshErr
}

func (m *MockAuthAPI) Logout(ctx context.Context) (*services.MessageResponse, error) {
	m.LogoutCalls++
	return m.LogoutResp, m.LogoutErr
}

// MockMusicAPI is a test double for [services.MusicAPI].
//
// StatusFunc, when set, is invoked per ImportStatus call so tests can script a
// sequence of poll responses.
type MockMusicAPI struct {
	StartResp   *services.ImportStartResponse
	StartErr    error
	StatusResp  *services.ImportStatus
	StatusErr   error
	StatusFunc  func(call int) (*services.ImportStatus, error)
	ArtistsResp *services.TopArtistsResponse
	ArtistsErr  error
	TracksResp  *services.TopTracksResponse
	TracksErr   error
	ProfileResp *services.SpotifyProfileResponse
	ProfileErr  error

	mu          sync.Mutex
	StartCalls  int
	StatusCalls int

	// Last time range each top-items call was invoked with.
	LastArtistsRange services.TimeRange
	LastTracksRange  services.TimeRange
}

func (m *MockMusicAPI) StartImport(ctx context.Context) (*services.ImportStartResponse, error) {
	m.mu.Lock()
	m.StartCalls++
	m.mu.Unlock()
	return m.StartResp, m.StartErr
}

func (m *MockMusicAPI) ImportStatus(ctx context.Context) (*services.ImportStatus, error) {
	m.mu.Lock()
	m.StatusCalls++
	call := m.StatusCalls
	m.mu.Unlock()

	if m.StatusFunc != nil {
		return m.StatusFunc(call)
	}
	return m.StatusResp, m.StatusErr
}

// StatusCallCount reports how many poll ticks have hit the mock.
func (m *MockMusicAPI) StatusCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.StatusCalls
}

func (m *MockMusicAPI) TopArtists(ctx context.Context, timeRange services.TimeRange) (*services.TopArtistsResponse, error) {
	m.mu.Lock()
	m.LastArtistsRange = timeRange
	m.mu.Unlock()
	return m.ArtistsResp, m.ArtistsErr
}

func (m *MockMusicAPI) TopTracks(ctx context.Context, timeRange services.TimeRange) (*services.TopTracksResponse, error) {
	m.mu.Lock()
	m.LastTracksRange = timeRange
	m.mu.Unlock()
	return m.TracksResp, m.TracksErr
}

func (m *MockMusicAPI) Profile(ctx context.Context) (*services.SpotifyProfileResponse, error) {
	return m.ProfileResp, m.ProfileErr
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
