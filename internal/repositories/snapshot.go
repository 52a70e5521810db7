package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/soundgraph/internal/models"
	"github.com/desertthunder/soundgraph/internal/shared"
)

// SnapshotRepository implements models.Repository[*models.Snapshot] for the
// local top-items cache.
//
// Snapshots are written on every successful top-items fetch so listings can
// render without a network round trip. Soft deletes keep history until a cache
// clear prunes it.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository with the given database connection
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create inserts a new [models.Snapshot] into the database with generated ID and sequence
func (r *SnapshotRepository) Create(snapshot *models.Snapshot) error {
	sequence, err := NextSequence(r.db, "snapshots")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	snapshot.SetID(id)
	snapshot.SetSequence(sequence)

	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO snapshots (id, sequence, kind, time_range, total, payload, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		string(snapshot.Kind()),
		snapshot.TimeRange(),
		snapshot.Total(),
		snapshot.Payload(),
		snapshot.CreatedAt(),
		snapshot.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// Get retrieves a snapshot by ID, excluding soft-deleted snapshots
func (r *SnapshotRepository) Get(id string) (*models.Snapshot, error) {
	query := `
		SELECT id, sequence, kind, time_range, total, payload, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetLatest retrieves the most recent snapshot for a kind and time range.
func (r *SnapshotRepository) GetLatest(kind models.SnapshotKind, timeRange string) (*models.Snapshot, error) {
	query := `
		SELECT id, sequence, kind, time_range, total, payload, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE kind = ? AND time_range = ? AND deleted_at IS NULL
		ORDER BY sequence DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRow(query, string(kind), timeRange))
}

// Update modifies an existing snapshot in the database
func (r *SnapshotRepository) Update(snapshot *models.Snapshot) error {
	if err := snapshot.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	snapshot.SetUpdatedAt(now)

	query := `
		UPDATE snapshots
		SET total = ?, payload = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		snapshot.Total(),
		snapshot.Payload(),
		now,
		snapshot.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found or already deleted: %s", snapshot.ID())
	}

	return nil
}

// Delete soft-deletes a snapshot by ID
func (r *SnapshotRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE snapshots
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("snapshot not found or already deleted: %s", id)
	}

	return nil
}

// List retrieves snapshots matching the given criteria, excluding soft-deleted rows.
//
// Supported criteria keys: "kind", "time_range".
func (r *SnapshotRepository) List(criteria map[string]any) ([]*models.Snapshot, error) {
	query := `
		SELECT id, sequence, kind, time_range, total, payload, created_at, updated_at, deleted_at
		FROM snapshots
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if kind, ok := criteria["kind"]; ok {
		query += " AND kind = ?"
		args = append(args, kind)
	}
	if timeRange, ok := criteria["time_range"]; ok {
		query += " AND time_range = ?"
		args = append(args, timeRange)
	}

	query += " ORDER BY sequence DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.Snapshot
	for rows.Next() {
		snapshot, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// Clear soft-deletes every live snapshot and reports how many were pruned.
func (r *SnapshotRepository) Clear() (int, error) {
	result, err := r.db.Exec("UPDATE snapshots SET deleted_at = ? WHERE deleted_at IS NULL", time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to clear snapshots: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SnapshotRepository) scanOne(row *sql.Row) (*models.Snapshot, error) {
	snapshot, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("snapshot not found")
	}
	return snapshot, err
}

func (r *SnapshotRepository) scanRow(row rowScanner) (*models.Snapshot, error) {
	var (
		id, kind, timeRange  string
		sequence, total      int
		payload              []byte
		createdAt, updatedAt time.Time
		deletedAt            sql.NullTime
	)

	if err := row.Scan(&id, &sequence, &kind, &timeRange, &total, &payload, &createdAt, &updatedAt, &deletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	snapshot := models.NewSnapshot(models.SnapshotKind(kind), timeRange, total, payload)
	snapshot.SetID(id)
	snapshot.SetSequence(sequence)
	snapshot.SetCreatedAt(createdAt)
	snapshot.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		t := deletedAt.Time
		snapshot.SetDeletedAt(&t)
	}

	return snapshot, nil
}
