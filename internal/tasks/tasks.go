// package tasks implements long-running operations against the listening-graph backend.
//
// The core abstraction is ImportEngine, which starts an import job and watches it
// to a terminal state from a single cancellable goroutine.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/shared"
)

// DefaultPollInterval is the pause between import status checks.
const DefaultPollInterval = 2 * time.Second

// DefaultPollBudget bounds how long a watch runs before giving up. The job
// itself continues server-side after the budget expires.
const DefaultPollBudget = 30 * time.Second

// Outcome classifies how a poll run ended.
type Outcome int

const (
	// OutcomeCompleted means the terminal snapshot was observed.
	OutcomeCompleted Outcome = iota
	// OutcomeBudgetExhausted means the poll budget ran out first.
	OutcomeBudgetExhausted
	// OutcomeStopped means the caller cancelled the watch.
	OutcomeStopped
	// OutcomeError means a status check failed and the watch stopped.
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeBudgetExhausted:
		return "budget_exhausted"
	case OutcomeStopped:
		return "stopped"
	case OutcomeError:
		return "error"
	default:
		return ""
	}
}

// PollResult is the final report of a poll run, valid once the handle is done.
type PollResult struct {
	Outcome  Outcome
	Status   *services.ImportStatus // last snapshot observed, may be nil
	Ticks    int                    // status checks performed
	Err      error                  // set when Outcome is OutcomeError
	StartErr error                  // set when the start request failed; the watch ran regardless
}

// PollHandle controls a running watch. Exactly one goroutine sits behind it.
type PollHandle struct {
	cancel   context.CancelFunc
	done     chan struct{}
	startErr error

	mu     sync.Mutex
	result *PollResult
}

// Stop cancels the watch. Safe to call more than once and after completion.
func (h *PollHandle) Stop() {
	h.cancel()
}

// Done is closed when the watch goroutine has exited and Result is valid.
func (h *PollHandle) Done() <-chan struct{} {
	return h.done
}

// Result returns the final report, or nil while the watch is still running.
func (h *PollHandle) Result() *PollResult {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result
}

func (h *PollHandle) finish(result *PollResult) {
	result.StartErr = h.startErr
	h.mu.Lock()
	h.result = result
	h.mu.Unlock()
	close(h.done)
}

// ImportEngine starts listening-graph imports and watches them to completion.
type ImportEngine struct {
	music    services.MusicAPI
	interval time.Duration
	budget   time.Duration
}

// EngineOpts configures an ImportEngine. Zero values take the defaults.
type EngineOpts struct {
	PollInterval time.Duration
	PollBudget   time.Duration
}

// NewImportEngine creates an engine over the music facade.
func NewImportEngine(music services.MusicAPI, opts EngineOpts) *ImportEngine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.PollBudget <= 0 {
		opts.PollBudget = DefaultPollBudget
	}
	return &ImportEngine{music: music, interval: opts.PollInterval, budget: opts.PollBudget}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Start enqueues an import job and begins watching it.
//
// The watch starts regardless of the start request's outcome: a failed or
// duplicate start does not mean no job is running. The start error, if any, is
// reported through progress and carried on the final PollResult as StartErr.
func (e *ImportEngine) Start(ctx context.Context, progress chan<- ProgressUpdate) *PollHandle {
	if e.music == nil {
		handle := newHandle(func() {}, nil)
		handle.finish(&PollResult{Outcome: OutcomeError, Err: fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)})
		return handle
	}

	sendProgress(progress, startImportUpdate())

	var startErr error
	if resp, err := e.music.StartImport(ctx); err != nil {
		startErr = err
		sendProgress(progress, startFailedUpdate(err))
	} else {
		sendProgress(progress, startAcceptedUpdate(resp))
	}

	return e.watch(ctx, progress, startErr)
}

// Watch polls the import status until a terminal snapshot, the poll budget, or
// cancellation ends it. The returned handle controls the single poll goroutine.
func (e *ImportEngine) Watch(ctx context.Context, progress chan<- ProgressUpdate) *PollHandle {
	return e.watch(ctx, progress, nil)
}

func (e *ImportEngine) watch(ctx context.Context, progress chan<- ProgressUpdate, startErr error) *PollHandle {
	ctx, cancel := context.WithCancel(ctx)
	handle := newHandle(cancel, startErr)

	go e.poll(ctx, handle, progress)
	return handle
}

func newHandle(cancel context.CancelFunc, startErr error) *PollHandle {
	return &PollHandle{cancel: cancel, done: make(chan struct{}), startErr: startErr}
}

// poll is the single watch loop. The interval ticker and the budget deadline
// live in one select, so there is never a second timer racing the first.
func (e *ImportEngine) poll(ctx context.Context, handle *PollHandle, progress chan<- ProgressUpdate) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	deadline := time.NewTimer(e.budget)
	defer deadline.Stop()

	var (
		ticks int
		last  *services.ImportStatus
	)

	for {
		select {
		case <-ctx.Done():
			sendProgress(progress, importStoppedUpdate(ticks))
			handle.finish(&PollResult{Outcome: OutcomeStopped, Status: last, Ticks: ticks})
			return

		case <-deadline.C:
			sendProgress(progress, importTimeoutUpdate(ticks))
			handle.finish(&PollResult{
				Outcome: OutcomeBudgetExhausted,
				Status:  last,
				Ticks:   ticks,
				Err:     fmt.Errorf("%w: import still running after %s", shared.ErrTimeout, e.budget),
			})
			return

		case <-ticker.C:
			ticks++

			status, err := e.music.ImportStatus(ctx)
			if err != nil {
				// A failed check ends the watch; the job itself is unaffected.
				handle.finish(&PollResult{Outcome: OutcomeError, Status: last, Ticks: ticks, Err: err})
				return
			}

			last = status
			if status.Complete() {
				sendProgress(progress, importCompleteUpdate(ticks, status))
				handle.finish(&PollResult{Outcome: OutcomeCompleted, Status: status, Ticks: ticks})
				return
			}

			sendProgress(progress, pollTickUpdate(ticks, status))
		}
	}
}
