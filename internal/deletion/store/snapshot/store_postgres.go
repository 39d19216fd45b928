package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
)

// PostgresStore persists snapshots in the resource_snapshots table with the
// full pre-mutation state as jsonb. Capture is synchronous: the insert must
// commit before the orchestrator proceeds to the mutation.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Capture(ctx context.Context, snap models.Snapshot) (domain.SnapshotID, error) {
	if snap.ID.IsNil() {
		snap.ID = domain.NewSnapshotID()
	}

	state, err := json.Marshal(snap.State)
	if err != nil {
		return domain.SnapshotID{}, fmt.Errorf("marshal snapshot state: %w", err)
	}

	query := `
		INSERT INTO resource_snapshots (
			id, resource_type, resource_id, resource_name,
			state, deletion_type, correlation_id, captured_by, captured_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(snap.ID),
		string(snap.Resource.Type),
		snap.Resource.ID,
		snap.Resource.DisplayName,
		state,
		string(snap.DeletionType),
		uuid.UUID(snap.CorrelationID),
		snap.CapturedBy,
		snap.CapturedAt,
	)
	if err != nil {
		return domain.SnapshotID{}, fmt.Errorf("insert snapshot: %w", err)
	}
	return snap.ID, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.SnapshotID) (*models.Snapshot, error) {
	query := `
		SELECT id, resource_type, resource_id, resource_name,
			   state, deletion_type, correlation_id, captured_by, captured_at
		FROM resource_snapshots
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *PostgresStore) ListByCorrelation(ctx context.Context, correlationID domain.CorrelationID) ([]models.Snapshot, error) {
	query := `
		SELECT id, resource_type, resource_id, resource_name,
			   state, deletion_type, correlation_id, captured_by, captured_at
		FROM resource_snapshots
		WHERE correlation_id = $1
		ORDER BY captured_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(correlationID))
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []models.Snapshot
	for rows.Next() {
		snap, err := s.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row rowScanner) (*models.Snapshot, error) {
	var (
		snap          models.Snapshot
		id            uuid.UUID
		resourceType  string
		state         []byte
		deletionType  string
		correlationID uuid.UUID
	)
	err := row.Scan(
		&id,
		&resourceType,
		&snap.Resource.ID,
		&snap.Resource.DisplayName,
		&state,
		&deletionType,
		&correlationID,
		&snap.CapturedBy,
		&snap.CapturedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}

	snap.ID = domain.SnapshotID(id)
	snap.Resource.Type = domain.ResourceType(resourceType)
	snap.DeletionType = models.DeletionType(deletionType)
	snap.CorrelationID = domain.CorrelationID(correlationID)
	if len(state) > 0 {
		if err := json.Unmarshal(state, &snap.State); err != nil {
			return nil, fmt.Errorf("unmarshal snapshot state: %w", err)
		}
	}
	return &snap, nil
}
