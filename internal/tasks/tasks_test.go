package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/soundgraph/internal/services"
	tu "github.com/desertthunder/soundgraph/internal/testing"
)

var completeStatus = &services.ImportStatus{
	UserExists: true,
	Statistics: &services.ImportStatistics{ArtistsInGraph: 50, TracksInGraph: 200, AlbumsInGraph: 80},
}

var pendingStatus = &services.ImportStatus{
	UserExists: true,
	Message:    "import in progress",
}

// waitDone fails the test if the handle does not finish quickly.
func waitDone(t *testing.T, handle *PollHandle) *PollResult {
	t.Helper()
	select {
	case <-handle.Done():
		return handle.Result()
	case <-time.After(5 * time.Second):
		t.Fatal("poll did not finish in time")
		return nil
	}
}

func TestImportEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("Watch", func(t *testing.T) {
		t.Run("Stops At Terminal Snapshot", func(t *testing.T) {
			music := &tu.MockMusicAPI{
				StatusFunc: func(call int) (*services.ImportStatus, error) {
					if call < 5 {
						return pendingStatus, nil
					}
					return completeStatus, nil
				},
			}
			engine := NewImportEngine(music, EngineOpts{PollInterval: 5 * time.Millisecond, PollBudget: time.Second})

			result := waitDone(t, engine.Watch(ctx, nil))

			if result.Outcome != OutcomeCompleted {
				t.Errorf("expected completed, got %s", result.Outcome)
			}
			if result.Ticks != 5 {
				t.Errorf("expected exactly 5 checks, got %d", result.Ticks)
			}
			if music.StatusCallCount() != 5 {
				t.Errorf("expected polling to stop after the terminal tick, got %d calls", music.StatusCallCount())
			}
			if result.Status == nil || !result.Status.Complete() {
				t.Error("expected terminal status on result")
			}
		})

		t.Run("Budget Exhaustion", func(t *testing.T) {
			music := &tu.MockMusicAPI{StatusResp: pendingStatus}
			engine := NewImportEngine(music, EngineOpts{PollInterval: 5 * time.Millisecond, PollBudget: 40 * time.Millisecond})

			result := waitDone(t, engine.Watch(ctx, nil))

			if result.Outcome != OutcomeBudgetExhausted {
				t.Errorf("expected budget_exhausted, got %s", result.Outcome)
			}
			if result.Err == nil {
				t.Error("expected timeout error on result")
			}
			if music.StatusCallCount() == 0 {
				t.Error("expected at least one check before the budget expired")
			}
		})

		t.Run("Tick Error Stops Watch", func(t *testing.T) {
			music := &tu.MockMusicAPI{
				StatusFunc: func(call int) (*services.ImportStatus, error) {
					if call == 2 {
						return nil, errors.New("connection refused")
					}
					return pendingStatus, nil
				},
			}
			engine := NewImportEngine(music, EngineOpts{PollInterval: 5 * time.Millisecond, PollBudget: time.Second})

			result := waitDone(t, engine.Watch(ctx, nil))

			if result.Outcome != OutcomeError {
				t.Errorf("expected error outcome, got %s", result.Outcome)
			}
			if music.StatusCallCount() != 2 {
				t.Errorf("expected watch to stop at the failing tick, got %d calls", music.StatusCallCount())
			}
			if result.Status == nil {
				t.Error("expected last good snapshot carried on result")
			}
		})

		t.Run("Stop Cancels", func(t *testing.T) {
			music := &tu.MockMusicAPI{StatusResp: pendingStatus}
			engine := NewImportEngine(music, EngineOpts{PollInterval: 5 * time.Millisecond, PollBudget: time.Minute})

			handle := engine.Watch(ctx, nil)
			time.Sleep(20 * time.Millisecond)
			handle.Stop()

			result := waitDone(t, handle)
			if result.Outcome != OutcomeStopped {
				t.Errorf("expected stopped, got %s", result.Outcome)
			}

			t.Run("Idempotent", func(t *testing.T) {
				handle.Stop()
			})
		})

		t.Run("Result Nil While Running", func(t *testing.T) {
			music := &tu.MockMusicAPI{StatusResp: pendingStatus}
			engine := NewImportEngine(music, EngineOpts{PollInterval: time.Hour, PollBudget: time.Hour})

			handle := engine.Watch(ctx, nil)
			defer handle.Stop()

			if handle.Result() != nil {
				t.Error("expected nil result while watch is running")
			}
		})
	})

	t.Run("Start", func(t *testing.T) {
		t.Run("Polls After Accepted Start", func(t *testing.T) {
			music := &tu.MockMusicAPI{
				StartResp:  &services.ImportStartResponse{Status: "processing"},
				StatusResp: completeStatus,
			}
			engine := NewImportEngine(music, EngineOpts{PollInterval: 5 * time.Millisecond, PollBudget: time.Second})

			progress := make(chan ProgressUpdate, 16)
			result := waitDone(t, engine.Start(ctx, progress))

			if result.Outcome != OutcomeCompleted {
				t.Errorf("expected completed, got %s", result.Outcome)
			}
			if music.StartCalls != 1 {
				t.Errorf("expected one start call, got %d", music.StartCalls)
			}
			if result.StartErr != nil {
				t.Errorf("expected no start error, got %v", result.StartErr)
			}

			var phases []Phase
			for len(progress) > 0 {
				phases = append(phases, (<-progress).Phase)
			}
			if len(phases) < 2 || phases[0] != StartImport {
				t.Errorf("expected start phase first, got %v", phases)
			}
			if phases[len(phases)-1] != ImportComplete {
				t.Errorf("expected complete phase last, got %v", phases)
			}
		})

		t.Run("Polls Despite Start Failure", func(t *testing.T) {
			music := &tu.MockMusicAPI{
				StartErr:   errors.New("import already running"),
				StatusResp: completeStatus,
			}
			engine := NewImportEngine(music, EngineOpts{PollInterval: 5 * time.Millisecond, PollBudget: time.Second})

			result := waitDone(t, engine.Start(ctx, nil))

			if result.Outcome != OutcomeCompleted {
				t.Errorf("expected polling to run despite failed start, got %s", result.Outcome)
			}
			if music.StatusCallCount() == 0 {
				t.Error("expected status checks despite failed start")
			}
			if result.StartErr == nil {
				t.Error("expected start failure carried on result")
			}
			if result.Err != nil {
				t.Errorf("expected no watch error, got %v", result.Err)
			}
		})

		t.Run("Nil Service", func(t *testing.T) {
			engine := NewImportEngine(nil, EngineOpts{})

			result := waitDone(t, engine.Start(ctx, nil))
			if result.Outcome != OutcomeError {
				t.Errorf("expected error outcome, got %s", result.Outcome)
			}
		})
	})

	t.Run("Progress Never Blocks", func(t *testing.T) {
		music := &tu.MockMusicAPI{
			StatusFunc: func(call int) (*services.ImportStatus, error) {
				if call < 10 {
					return pendingStatus, nil
				}
				return completeStatus, nil
			},
		}
		engine := NewImportEngine(music, EngineOpts{PollInterval: time.Millisecond, PollBudget: time.Second})

		// Nobody drains this channel; the watch must still finish.
		progress := make(chan ProgressUpdate, 1)
		result := waitDone(t, engine.Watch(ctx, progress))

		if result.Outcome != OutcomeCompleted {
			t.Errorf("expected completed, got %s", result.Outcome)
		}
	})
}

func TestBulkExporter(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches Every Range", func(t *testing.T) {
		music := &tu.MockMusicAPI{
			ArtistsResp: &services.TopArtistsResponse{Total: 3},
			TracksResp:  &services.TopTracksResponse{Total: 7},
		}
		exporter := NewBulkExporter(music, 1000)

		result, err := exporter.Run(ctx, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(result.Slices) != len(services.TimeRanges) {
			t.Fatalf("expected %d slices, got %d", len(services.TimeRanges), len(result.Slices))
		}
		for i, slice := range result.Slices {
			if slice.TimeRange != services.TimeRanges[i] {
				t.Errorf("expected range %s at position %d, got %s", services.TimeRanges[i], i, slice.TimeRange)
			}
			if slice.Artists == nil || slice.Tracks == nil {
				t.Errorf("expected both kinds for %s", slice.TimeRange)
			}
		}
	})

	t.Run("Partial Failure Continues", func(t *testing.T) {
		music := &tu.MockMusicAPI{
			ArtistsErr: errors.New("service unavailable"),
			TracksResp: &services.TopTracksResponse{Total: 7},
		}
		exporter := NewBulkExporter(music, 1000)

		result, err := exporter.Run(ctx, nil)
		if err != nil {
			t.Fatalf("expected partial result without error, got %v", err)
		}
		if len(result.Errors) != len(services.TimeRanges) {
			t.Errorf("expected one artists error per range, got %d", len(result.Errors))
		}
		for _, slice := range result.Slices {
			if slice.Tracks == nil {
				t.Errorf("expected tracks despite artists failure for %s", slice.TimeRange)
			}
		}
	})

	t.Run("Total Failure Errors", func(t *testing.T) {
		music := &tu.MockMusicAPI{
			ArtistsErr: errors.New("down"),
			TracksErr:  errors.New("down"),
		}
		exporter := NewBulkExporter(music, 1000)

		if _, err := exporter.Run(ctx, nil); err == nil {
			t.Error("expected error when every fetch fails")
		}
	})

	t.Run("Nil Service", func(t *testing.T) {
		exporter := NewBulkExporter(nil, 0)
		if _, err := exporter.Run(ctx, nil); err == nil {
			t.Error("expected error for nil service")
		}
	})
}
