package tasks

import (
	"fmt"

	"github.com/desertthunder/soundgraph/internal/services"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase (0 when unbounded)
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	StartImport Phase = iota
	PollStatus
	ImportComplete
	ImportTimeout
	ImportStopped
	ExportItems
)

func (p Phase) String() string {
	switch p {
	case StartImport:
		return "start_import"
	case PollStatus:
		return "poll_status"
	case ImportComplete:
		return "import_complete"
	case ImportTimeout:
		return "import_timeout"
	case ImportStopped:
		return "import_stopped"
	case ExportItems:
		return "export_items"
	default:
		return ""
	}
}

func startImportUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartImport,
		Step:    1,
		Total:   1,
		Message: "Starting listening history import...",
	}
}

func startAcceptedUpdate(resp *services.ImportStartResponse) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartImport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Import accepted (status: %s)", resp.Status),
		Data:    resp,
	}
}

func startFailedUpdate(err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   StartImport,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Import request failed, watching for an existing job: %v", err),
	}
}

func pollTickUpdate(tick int, status *services.ImportStatus) ProgressUpdate {
	msg := "Waiting for import to complete..."
	if status != nil && status.Message != "" {
		msg = status.Message
	}
	return ProgressUpdate{
		Phase:   PollStatus,
		Step:    tick,
		Message: msg,
		Data:    status,
	}
}

func importCompleteUpdate(tick int, status *services.ImportStatus) ProgressUpdate {
	msg := "Import complete"
	if status.Statistics != nil {
		msg = fmt.Sprintf("Import complete: %d artists, %d tracks, %d albums",
			status.Statistics.ArtistsInGraph,
			status.Statistics.TracksInGraph,
			status.Statistics.AlbumsInGraph)
	}
	return ProgressUpdate{
		Phase:   ImportComplete,
		Step:    tick,
		Message: msg,
		Data:    status,
	}
}

func importTimeoutUpdate(tick int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportTimeout,
		Step:    tick,
		Message: "Import is taking longer than expected; it continues server-side",
	}
}

func importStoppedUpdate(tick int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportStopped,
		Step:    tick,
		Message: "Stopped watching import",
	}
}

func exportingUpdate(step, total int, timeRange services.TimeRange) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting %s top items...", step, total, timeRange),
	}
}

func exportFailedUpdate(step, total int, timeRange services.TimeRange, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportItems,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, timeRange, err),
	}
}
