package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/shared"
	"github.com/desertthunder/soundgraph/internal/tasks"
	tu "github.com/desertthunder/soundgraph/internal/testing"
	"github.com/urfave/cli/v3"
)

type runnerFixture struct {
	runner *Runner
	auth   *tu.MockAuthAPI
	music  *tu.MockMusicAPI
	store  *tu.MemoryTokenStore
	output *bytes.Buffer
}

func newRunnerFixture(t *testing.T) *runnerFixture {
	t.Helper()

	auth := &tu.MockAuthAPI{}
	music := &tu.MockMusicAPI{}
	store := tu.NewMemoryTokenStore("")
	output := &bytes.Buffer{}

	runner := NewRunner(RunnerOpts{
		Config: shared.DefaultConfig(),
		Auth:   auth,
		Music:  music,
		Store:  store,
		Engine: tasks.NewImportEngine(music, tasks.EngineOpts{
			PollInterval: 5 * time.Millisecond,
			PollBudget:   500 * time.Millisecond,
		}),
		Logger: shared.NewLogger(&bytes.Buffer{}),
		Output: output,
	})

	return &runnerFixture{runner: runner, auth: auth, music: music, store: store, output: output}
}

func (f *runnerFixture) run(t *testing.T, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "sgx", Commands: f.runner.register()}
	return app.Run(context.Background(), append([]string{"sgx"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			auth := &tu.MockAuthAPI{}
			music := &tu.MockMusicAPI{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Auth:   auth,
				Music:  music,
				Store:  tu.NewMemoryTokenStore(""),
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.auth != services.AuthAPI(auth) {
				t.Error("expected auth to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to stdout")
			}
		})

		t.Run("builds session when auth is provided", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Auth:  &tu.MockAuthAPI{},
				Store: tu.NewMemoryTokenStore(""),
			})

			if runner.session == nil {
				t.Error("expected session coordinator to be built")
			}
		})

		t.Run("builds engine when music is provided", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Music: &tu.MockMusicAPI{}})

			if runner.engine == nil {
				t.Error("expected import engine to be built")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if got := output.String(); got != "{\"key\":\"value\"}\n" {
			t.Errorf("unexpected output: %q", got)
		}

		output.Reset()
		if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
			t.Fatalf("writeJSON pretty failed: %v", err)
		}
		if !strings.Contains(output.String(), "  \"key\": \"value\"") {
			t.Errorf("expected indented output, got %q", output.String())
		}
	})

	t.Run("writePlain formats and writes", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writePlain("count: %d\n", 3)
		runner.writePlainln("done")

		if got := output.String(); got != "count: 3\n\ndone\n" {
			t.Errorf("unexpected output: %q", got)
		}
	})
}

func TestAuthCommands(t *testing.T) {
	me := &services.Me{
		SpotifyUserID: "spotify:thundercat",
		TokenValid:    true,
		UserProfile: services.UserProfile{
			ID:          "u_1",
			DisplayName: "Thundercat",
			Email:       "cat@example.com",
		},
	}

	t.Run("status reports signed in", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.store.Set("token")
		f.auth.MeResp = me

		if err := f.run(t, "auth", "status"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}

		out := f.output.String()
		if !strings.Contains(out, "Signed in") {
			t.Errorf("expected signed-in banner, got %q", out)
		}
		if !strings.Contains(out, "Thundercat") {
			t.Errorf("expected display name, got %q", out)
		}
	})

	t.Run("status reports anonymous without network call", func(t *testing.T) {
		f := newRunnerFixture(t)

		if err := f.run(t, "auth", "status"); err != nil {
			t.Fatalf("auth status failed: %v", err)
		}

		if !strings.Contains(f.output.String(), "Not signed in") {
			t.Errorf("expected anonymous banner, got %q", f.output.String())
		}
		if f.auth.MeCalls != 0 {
			t.Errorf("expected no backend call, got %d", f.auth.MeCalls)
		}
	})

	t.Run("status emits JSON", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.store.Set("token")
		f.auth.MeResp = me

		if err := f.run(t, "auth", "status", "--json"); err != nil {
			t.Fatalf("auth status --json failed: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(f.output.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["state"] != "authenticated" {
			t.Errorf("expected authenticated state, got %v", decoded["state"])
		}
	})

	t.Run("logout clears credentials", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.store.Set("token")
		f.auth.LogoutResp = &services.MessageResponse{Message: "logged out"}

		if err := f.run(t, "auth", "logout"); err != nil {
			t.Fatalf("auth logout failed: %v", err)
		}

		if f.store.HasToken() {
			t.Error("expected token to be cleared")
		}
		if !strings.Contains(f.output.String(), "Signed out") {
			t.Errorf("expected sign-out banner, got %q", f.output.String())
		}
	})

	t.Run("refresh prints new expiry", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.store.Set("token")
		f.auth.MeResp = &services.Me{
			SpotifyUserID: "spotify:user:42",
			UserProfile:   services.UserProfile{ID: "42", DisplayName: "Owais"},
			TokenValid:    true,
		}
		f.auth.RefreshResp = &services.RefreshResponse{
			Message:   "refreshed",
			ExpiresAt: float64(time.Now().Add(time.Hour).Unix()),
		}

		if err := f.run(t, "auth", "refresh"); err != nil {
			t.Fatalf("auth refresh failed: %v", err)
		}

		out := f.output.String()
		if !strings.Contains(out, "Token refreshed") {
			t.Errorf("expected refresh banner, got %q", out)
		}
		if !strings.Contains(out, "Valid until") {
			t.Errorf("expected expiry line, got %q", out)
		}
	})
}

func TestMusicCommands(t *testing.T) {
	completeStatus := &services.ImportStatus{
		UserExists: true,
		Username:   "thundercat",
		LastSync:   "2026-08-30T12:00:00Z",
		Statistics: &services.ImportStatistics{
			ArtistsInGraph: 42,
			TracksInGraph:  512,
			AlbumsInGraph:  77,
		},
	}

	artists := &services.TopArtistsResponse{
		TimeRange: "long_term",
		Total:     2,
		Artists: []services.Artist{
			{ID: "a1", Name: "Khruangbin", Genres: []string{"psychedelic funk"}},
			{ID: "a2", Name: "Men I Trust"},
		},
	}

	tracks := &services.TopTracksResponse{
		TimeRange: "short_term",
		Total:     1,
		Tracks: []services.Track{
			{
				ID:         "t1",
				Name:       "Texas Sun",
				Artists:    []services.Artist{{Name: "Khruangbin"}, {Name: "Leon Bridges"}},
				Album:      services.Album{Name: "Texas Sun"},
				DurationMS: 252000,
			},
		},
	}

	t.Run("status prints graph summary", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.music.StatusResp = completeStatus

		if err := f.run(t, "music", "status"); err != nil {
			t.Fatalf("music status failed: %v", err)
		}

		out := f.output.String()
		if !strings.Contains(out, "thundercat") {
			t.Errorf("expected username, got %q", out)
		}
		if !strings.Contains(out, "Artists: 42") {
			t.Errorf("expected artist count, got %q", out)
		}
	})

	t.Run("status prints empty-graph hint", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.music.StatusResp = &services.ImportStatus{UserExists: false}

		if err := f.run(t, "music", "status"); err != nil {
			t.Fatalf("music status failed: %v", err)
		}

		if !strings.Contains(f.output.String(), "sgx music import") {
			t.Errorf("expected import hint, got %q", f.output.String())
		}
	})

	t.Run("top-artists forwards the range", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.music.ArtistsResp = artists

		if err := f.run(t, "music", "top-artists", "--range", "long_term"); err != nil {
			t.Fatalf("music top-artists failed: %v", err)
		}

		if f.music.LastArtistsRange != services.LongTerm {
			t.Errorf("expected long_term on the wire, got %v", f.music.LastArtistsRange)
		}
		out := f.output.String()
		if !strings.Contains(out, "1. Khruangbin") {
			t.Errorf("expected ranked artist, got %q", out)
		}
		if !strings.Contains(out, "psychedelic funk") {
			t.Errorf("expected genres, got %q", out)
		}
	})

	t.Run("top-tracks prints duration", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.music.TracksResp = tracks

		if err := f.run(t, "music", "top-tracks", "--range", "short_term"); err != nil {
			t.Fatalf("music top-tracks failed: %v", err)
		}

		out := f.output.String()
		if !strings.Contains(out, "Khruangbin, Leon Bridges - Texas Sun") {
			t.Errorf("expected ranked track, got %q", out)
		}
		if !strings.Contains(out, "4:12") {
			t.Errorf("expected formatted duration, got %q", out)
		}
	})

	t.Run("import watches to completion", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.music.StartResp = &services.ImportStartResponse{Status: "accepted"}
		f.music.StatusResp = completeStatus

		if err := f.run(t, "music", "import"); err != nil {
			t.Fatalf("music import failed: %v", err)
		}

		out := f.output.String()
		if !strings.Contains(out, "Import complete") {
			t.Errorf("expected completion banner, got %q", out)
		}
		if !strings.Contains(out, "Tracks: 512") {
			t.Errorf("expected statistics, got %q", out)
		}
	})

	t.Run("profile prints raw passthrough", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.music.ProfileResp = &services.SpotifyProfileResponse{
			SpotifyProfile: map[string]any{"display_name": "Thundercat", "product": "premium"},
		}

		if err := f.run(t, "music", "profile"); err != nil {
			t.Fatalf("music profile failed: %v", err)
		}

		if !strings.Contains(f.output.String(), "premium") {
			t.Errorf("expected profile fields, got %q", f.output.String())
		}
	})

	t.Run("export writes one file per range and kind", func(t *testing.T) {
		f := newRunnerFixture(t)
		f.music.ArtistsResp = artists
		f.music.TracksResp = tracks

		base := filepath.Join(t.TempDir(), "graph")
		if err := f.run(t, "music", "export", "--format", "csv", "--output", base); err != nil {
			t.Fatalf("music export failed: %v", err)
		}

		for _, timeRange := range services.TimeRanges {
			for _, kind := range []string{"artists", "tracks"} {
				path := base + "_" + string(timeRange) + "_" + kind + ".csv"
				if _, err := os.Stat(path); err != nil {
					t.Errorf("expected export file %s: %v", path, err)
				}
			}
		}
		if !strings.Contains(f.output.String(), "Export complete") {
			t.Errorf("expected export banner, got %q", f.output.String())
		}
	})
}
