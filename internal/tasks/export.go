package tasks

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/shared"
)

// ExportSlice holds one time range's ranked items.
type ExportSlice struct {
	TimeRange services.TimeRange           `json:"time_range"`
	Artists   *services.TopArtistsResponse `json:"artists,omitempty"`
	Tracks    *services.TopTracksResponse  `json:"tracks,omitempty"`
}

// ExportError records a fetch that failed during a bulk export.
type ExportError struct {
	TimeRange services.TimeRange
	Kind      string // "artists" or "tracks"
	Err       error
}

// ExportResult contains every slice the run produced, plus per-fetch failures.
type ExportResult struct {
	Slices []ExportSlice
	Errors []ExportError
}

// BulkExporter fetches ranked artists and tracks across all time ranges.
type BulkExporter struct {
	music   services.MusicAPI
	limiter *rate.Limiter
}

// NewBulkExporter creates an exporter. requestsPerSecond <= 0 takes a
// conservative default.
func NewBulkExporter(music services.MusicAPI, requestsPerSecond float64) *BulkExporter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 3
	}
	return &BulkExporter{
		music:   music,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Run fetches both item kinds for every time range.
//
// Failures are recorded per fetch and the run continues; the returned error is
// non-nil only when nothing could be fetched at all.
func (b *BulkExporter) Run(ctx context.Context, progress chan<- ProgressUpdate) (*ExportResult, error) {
	if b.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	result := &ExportResult{}
	total := len(services.TimeRanges)

	for i, timeRange := range services.TimeRanges {
		sendProgress(progress, exportingUpdate(i+1, total, timeRange))

		slice := ExportSlice{TimeRange: timeRange}

		if err := b.limiter.Wait(ctx); err != nil {
			return result, err
		}
		artists, err := b.music.TopArtists(ctx, timeRange)
		if err != nil {
			sendProgress(progress, exportFailedUpdate(i+1, total, timeRange, err))
			result.Errors = append(result.Errors, ExportError{TimeRange: timeRange, Kind: "artists", Err: err})
		} else {
			slice.Artists = artists
		}

		if err := b.limiter.Wait(ctx); err != nil {
			return result, err
		}
		tracks, err := b.music.TopTracks(ctx, timeRange)
		if err != nil {
			sendProgress(progress, exportFailedUpdate(i+1, total, timeRange, err))
			result.Errors = append(result.Errors, ExportError{TimeRange: timeRange, Kind: "tracks", Err: err})
		} else {
			slice.Tracks = tracks
		}

		if slice.Artists != nil || slice.Tracks != nil {
			result.Slices = append(result.Slices, slice)
		}
	}

	if len(result.Slices) == 0 {
		return result, fmt.Errorf("%w: every export fetch failed", shared.ErrAPIRequest)
	}
	return result, nil
}
