package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
)

// PostgresStore reads and mutates the deletion-relevant columns of the
// recruiting tables. Table names are fixed per resource type; resource types
// are a closed enum so the switch below is exhaustive.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func tableFor(rt domain.ResourceType) (string, error) {
	switch rt {
	case domain.ResourceCandidate:
		return "candidates", nil
	case domain.ResourceJob:
		return "jobs", nil
	case domain.ResourceFeedback:
		return "feedback", nil
	default:
		return "", fmt.Errorf("no table for resource type %q", rt)
	}
}

// Load serializes the entire row to JSON server-side so the snapshot carries
// every column without this layer enumerating them.
func (s *PostgresStore) Load(ctx context.Context, rt domain.ResourceType, id string) (map[string]any, error) {
	table, err := tableFor(rt)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT to_jsonb(t) FROM %s t WHERE id = $1`, table)
	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load %s row: %w", table, err)
	}

	var state map[string]any
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("unmarshal %s row: %w", table, err)
	}
	return state, nil
}

// SoftDelete writes the deletion mark onto the row. A row already marked is
// left as is so retried deletes stay harmless.
func (s *PostgresStore) SoftDelete(ctx context.Context, rt domain.ResourceType, id string, mark models.DeletionMark) error {
	table, err := tableFor(rt)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = $2, deleted_by = $3, deleted_reason = $4, deletion_type = $5
		WHERE id = $1 AND deleted_at IS NULL
	`, table)
	res, err := s.db.ExecContext(ctx, query,
		id, mark.DeletedAt, mark.DeletedBy, mark.DeletedReason, string(mark.DeletionType))
	if err != nil {
		return fmt.Errorf("soft delete %s row: %w", table, err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either missing or already marked; distinguish for the caller.
		var exists bool
		check := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)`, table)
		if err := s.db.QueryRowContext(ctx, check, id).Scan(&exists); err != nil {
			return fmt.Errorf("check %s row: %w", table, err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
	}
	return nil
}

// HardDelete physically removes the row.
func (s *PostgresStore) HardDelete(ctx context.Context, rt domain.ResourceType, id string) error {
	table, err := tableFor(rt)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hard delete %s row: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// CountActiveDependents counts non-deleted records referencing the resource.
func (s *PostgresStore) CountActiveDependents(ctx context.Context, rt domain.ResourceType, id string) (int, error) {
	var query string
	switch rt {
	case domain.ResourceJob:
		query = `SELECT COUNT(*) FROM candidates WHERE job_id = $1 AND deleted_at IS NULL`
	case domain.ResourceCandidate:
		query = `SELECT COUNT(*) FROM feedback WHERE candidate_id = $1 AND deleted_at IS NULL`
	default:
		return 0, nil
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active dependents: %w", err)
	}
	return count, nil
}

// DeactivateShareLinks deactivates every active share link of a job.
func (s *PostgresStore) DeactivateShareLinks(ctx context.Context, jobID string) (int, error) {
	query := `UPDATE job_share_links SET active = FALSE WHERE job_id = $1 AND active`
	res, err := s.db.ExecContext(ctx, query, jobID)
	if err != nil {
		return 0, fmt.Errorf("deactivate share links: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deactivate share links rows: %w", err)
	}
	return int(n), nil
}
