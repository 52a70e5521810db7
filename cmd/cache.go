package main

import (
	"context"

	"github.com/desertthunder/soundgraph/internal/models"
	"github.com/desertthunder/soundgraph/internal/repositories"
	"github.com/urfave/cli/v3"
)

// CacheList lists cached snapshots, optionally filtered by kind and range.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if kind := cmd.String("kind"); kind != "" {
		criteria["kind"] = models.SnapshotKind(kind)
	}
	if timeRange := cmd.String("range"); timeRange != "" {
		criteria["time_range"] = timeRange
	}

	repo := repositories.NewSnapshotRepository(db)
	snapshots, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if len(snapshots) == 0 {
		r.writePlain("No cached snapshots.\n")
		return nil
	}

	r.writePlain("Found %d snapshot(s):\n\n", len(snapshots))
	for _, snapshot := range snapshots {
		r.writePlain("#%d %s/%s\n", snapshot.Sequence(), snapshot.Kind(), snapshot.TimeRange())
		r.writePlain("   ID: %s\n", snapshot.ID())
		r.writePlain("   Items: %d\n", snapshot.Total())
		r.writePlain("   Cached: %s\n\n", snapshot.CreatedAt().Format("2006-01-02 15:04:05"))
	}

	return nil
}

// CacheClear prunes every cached snapshot.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	config := r.resolveConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewSnapshotRepository(db)
	pruned, err := repo.Clear()
	if err != nil {
		return err
	}

	r.logger.Infof("pruned %v snapshot(s)", pruned)
	r.writePlain("✓ Pruned %d snapshot(s)\n", pruned)
	return nil
}
