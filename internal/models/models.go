// package models defines the data model for the local snapshot cache
package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// SnapshotKind distinguishes what a cached snapshot holds.
type SnapshotKind string

const (
	KindArtists SnapshotKind = "artists"
	KindTracks  SnapshotKind = "tracks"
)

// Snapshot is a cached top-items response for one kind and time range.
//
// The payload is the raw JSON body as received; readers decode it back into the
// response type matching Kind.
type Snapshot struct {
	id        string
	sequence  int
	kind      SnapshotKind
	timeRange string
	total     int
	payload   []byte
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSnapshot creates a snapshot with timestamps set to now. The ID is assigned
// by the repository on create.
func NewSnapshot(kind SnapshotKind, timeRange string, total int, payload []byte) *Snapshot {
	now := time.Now()
	return &Snapshot{
		kind:      kind,
		timeRange: timeRange,
		total:     total,
		payload:   payload,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Snapshot) ID() string { return s.id }

func (s *Snapshot) Sequence() int { return s.sequence }

func (s *Snapshot) Kind() SnapshotKind { return s.kind }

func (s *Snapshot) TimeRange() string { return s.timeRange }

func (s *Snapshot) Total() int { return s.total }

func (s *Snapshot) Payload() []byte { return s.payload }

func (s *Snapshot) CreatedAt() time.Time { return s.createdAt }

func (s *Snapshot) UpdatedAt() time.Time { return s.updatedAt }
func (s *Snapshot) DeletedAt() *time.Time {
	return s.deletedAt
}

func (s *Snapshot) SetID(id string) { s.id = id }

func (s *Snapshot) SetSequence(sequence int) { s.sequence = sequence }

func (s *Snapshot) SetTotal(total int) { s.total = total }

func (s *Snapshot) SetPayload(payload []byte) { s.payload = payload }

func (s *Snapshot) SetCreatedAt(t time.Time) { s.createdAt = t }

func (s *Snapshot) SetUpdatedAt(t time.Time) { s.updatedAt = t }

func (s *Snapshot) SetDeletedAt(t *time.Time) { s.deletedAt = t }

func (s *Snapshot) SetKind(kind SnapshotKind) { s.kind = kind }

func (s *Snapshot) SetTimeRange(timeRange string) { s.timeRange = timeRange }

// Validate checks the snapshot's data before persistence.
func (s *Snapshot) Validate() error {
	switch s.kind {
	case KindArtists, KindTracks:
	default:
		return fmt.Errorf("invalid snapshot kind: %q", s.kind)
	}

	if s.timeRange == "" {
		return fmt.Errorf("snapshot time range is required")
	}
	if len(s.payload) == 0 {
		return fmt.Errorf("snapshot payload is required")
	}
	return nil
}
