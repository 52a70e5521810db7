package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/soundgraph/internal/formatter"
	"github.com/desertthunder/soundgraph/internal/models"
	"github.com/desertthunder/soundgraph/internal/repositories"
	"github.com/desertthunder/soundgraph/internal/services"
	"github.com/desertthunder/soundgraph/internal/shared"
	"github.com/desertthunder/soundgraph/internal/tasks"
	"github.com/urfave/cli/v3"
)

// MusicImport starts a server-side import and watches it to completion.
func (r *Runner) MusicImport(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: import engine not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("starting listening history import")
	r.writePlainHeader("Importing listening history")

	progress := make(chan tasks.ProgressUpdate, 16)
	handle := r.engine.Start(ctx, progress)

	for {
		select {
		case update := <-progress:
			r.writePlain("  %s\n", update.Message)
			continue
		case <-handle.Done():
		}
		break
	}

	// Drain updates emitted between the last read and completion.
	for {
		select {
		case update := <-progress:
			r.writePlain("  %s\n", update.Message)
			continue
		default:
		}
		break
	}

	result := handle.Result()
	if result.StartErr != nil {
		r.writePlainln("⚠ Start request failed: %v", result.StartErr)
	}
	switch result.Outcome {
	case tasks.OutcomeCompleted:
		r.writePlainln("✓ Import complete after %d poll(s)", result.Ticks)
		if result.Status != nil && result.Status.Statistics != nil {
			stats := result.Status.Statistics
			r.writePlain("  Artists: %d\n", stats.ArtistsInGraph)
			r.writePlain("  Tracks: %d\n", stats.TracksInGraph)
			r.writePlain("  Albums: %d\n", stats.AlbumsInGraph)
		}
		return nil
	case tasks.OutcomeBudgetExhausted:
		r.writePlainln("⚠ Import is still running server-side.")
		r.writePlain("Check again later with: sgx music status\n")
		return nil
	case tasks.OutcomeStopped:
		r.writePlainln("⚠ Import watch stopped.")
		return nil
	default:
		return fmt.Errorf("%w: %v", shared.ErrImportFailed, result.Err)
	}
}

// MusicStatus shows the server-side import status.
func (r *Runner) MusicStatus(ctx context.Context, cmd *cli.Command) error {
	if r.music == nil {
		return fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("fetching import status")

	status, err := r.music.ImportStatus(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	if !status.UserExists {
		r.writePlain("✗ No imported data yet.\n")
		r.writePlain("Run 'sgx music import' to build your listening graph.\n")
		return nil
	}

	r.writePlain("✓ Graph user: %s\n", status.Username)
	if status.LastSync != "" {
		r.writePlain("Last sync: %s\n", status.LastSync)
	}
	if status.Statistics != nil {
		r.writePlain("Artists: %d\n", status.Statistics.ArtistsInGraph)
		r.writePlain("Tracks: %d\n", status.Statistics.TracksInGraph)
		r.writePlain("Albums: %d\n", status.Statistics.AlbumsInGraph)
	}

	return nil
}

// MusicTopArtists lists ranked artists for a time range.
func (r *Runner) MusicTopArtists(ctx context.Context, cmd *cli.Command) error {
	timeRange := services.TimeRange(cmd.String("range"))

	resp, err := r.topArtists(ctx, cmd, timeRange)
	if err != nil {
		return err
	}

	if cmd.Bool("save") {
		if err := r.saveSnapshot(cmd, models.KindArtists, string(timeRange), resp.Total, resp); err != nil {
			r.logger.Warn("failed to cache snapshot", "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp, cmd.Bool("pretty"))
	}

	r.writePlain("Top %d artists (%s):\n\n", len(resp.Artists), resp.TimeRange)
	for i, artist := range resp.Artists {
		r.writePlain("%d. %s\n", i+1, artist.Name)
		if len(artist.Genres) > 0 {
			r.writePlain("   Genres: %s\n", strings.Join(artist.Genres, ", "))
		}
		r.writePlain("   Popularity: %d\n", artist.Popularity)
	}

	return nil
}

// MusicTopTracks lists ranked tracks for a time range.
func (r *Runner) MusicTopTracks(ctx context.Context, cmd *cli.Command) error {
	timeRange := services.TimeRange(cmd.String("range"))

	resp, err := r.topTracks(ctx, cmd, timeRange)
	if err != nil {
		return err
	}

	if cmd.Bool("save") {
		if err := r.saveSnapshot(cmd, models.KindTracks, string(timeRange), resp.Total, resp); err != nil {
			r.logger.Warn("failed to cache snapshot", "error", err)
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(resp, cmd.Bool("pretty"))
	}

	r.writePlain("Top %d tracks (%s):\n\n", len(resp.Tracks), resp.TimeRange)
	for i, track := range resp.Tracks {
		r.writePlain("%d. %s - %s\n", i+1, formatter.ArtistNames(track.Artists), track.Name)
		if track.Album.Name != "" {
			r.writePlain("   Album: %s\n", track.Album.Name)
		}
		r.writePlain("   Duration: %s\n", shared.FormatDuration(track.DurationMS))
	}

	return nil
}

// topArtists resolves the ranked artists from the cache or the backend.
func (r *Runner) topArtists(ctx context.Context, cmd *cli.Command, timeRange services.TimeRange) (*services.TopArtistsResponse, error) {
	if cmd.Bool("cached") {
		var resp services.TopArtistsResponse
		if err := r.loadSnapshot(cmd, models.KindArtists, string(timeRange), &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}

	if r.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Infof("fetching top artists for %v", timeRange)

	resp, err := r.music.TopArtists(ctx, timeRange)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return resp, nil
}

// topTracks resolves the ranked tracks from the cache or the backend.
func (r *Runner) topTracks(ctx context.Context, cmd *cli.Command, timeRange services.TimeRange) (*services.TopTracksResponse, error) {
	if cmd.Bool("cached") {
		var resp services.TopTracksResponse
		if err := r.loadSnapshot(cmd, models.KindTracks, string(timeRange), &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	}

	if r.music == nil {
		return nil, fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Infof("fetching top tracks for %v", timeRange)

	resp, err := r.music.TopTracks(ctx, timeRange)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	return resp, nil
}

// saveSnapshot caches a ranked-list response in the snapshot database.
func (r *Runner) saveSnapshot(cmd *cli.Command, kind models.SnapshotKind, timeRange string, total int, payload any) error {
	config := r.resolveConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}

	repo := repositories.NewSnapshotRepository(db)
	snapshot := models.NewSnapshot(kind, timeRange, total, data)
	if err := repo.Create(snapshot); err != nil {
		return err
	}

	r.logger.Info("snapshot cached", "kind", kind, "range", timeRange, "id", snapshot.ID())
	return nil
}

// loadSnapshot reads the latest cached response for a kind and range.
func (r *Runner) loadSnapshot(cmd *cli.Command, kind models.SnapshotKind, timeRange string, out any) error {
	config := r.resolveConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSnapshotRepository(db)
	snapshot, err := repo.GetLatest(kind, timeRange)
	if err != nil {
		return fmt.Errorf("no cached snapshot for %s %s: %w", kind, timeRange, err)
	}

	if err := json.Unmarshal(snapshot.Payload(), out); err != nil {
		return fmt.Errorf("failed to decode cached snapshot: %w", err)
	}

	r.logger.Info("serving cached snapshot", "kind", kind, "range", timeRange, "created", snapshot.CreatedAt())
	return nil
}

// MusicProfile prints the raw Spotify profile passthrough.
func (r *Runner) MusicProfile(ctx context.Context, cmd *cli.Command) error {
	if r.music == nil {
		return fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	r.logger.Info("fetching spotify profile")

	resp, err := r.music.Profile(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return r.writeJSON(resp.SpotifyProfile, cmd.Bool("pretty"))
}

// MusicExport fetches every time range and writes the files to disk.
func (r *Runner) MusicExport(ctx context.Context, cmd *cli.Command) error {
	if r.music == nil {
		return fmt.Errorf("%w: music service not initialized", shared.ErrServiceUnavailable)
	}

	format := cmd.String("format")
	base := cmd.String("output")

	r.logger.Infof("exporting listening data as %v", format)
	r.writePlain("Fetching top artists and tracks for all time ranges...\n\n")

	exporter := tasks.NewBulkExporter(r.music, r.config.API.RateLimit)

	progress := make(chan tasks.ProgressUpdate, 16)
	drained := make(chan struct{})
	go func() {
		for update := range progress {
			r.writePlain("  %s\n", update.Message)
		}
		close(drained)
	}()

	result, err := exporter.Run(ctx, progress)
	close(progress)
	<-drained

	if err != nil {
		return err
	}

	files, err := formatter.WriteExport(result.Slices, base, format)
	if err != nil {
		return err
	}

	r.writePlainln("✓ Export complete")
	for _, file := range files.Files {
		r.writePlain("  %s\n", file)
	}
	if len(result.Errors) > 0 {
		r.writePlain("\n⚠ %d fetch(es) failed:\n", len(result.Errors))
		for _, exportErr := range result.Errors {
			r.writePlain("  %s %s: %v\n", exportErr.TimeRange, exportErr.Kind, exportErr.Err)
		}
	}

	return nil
}
