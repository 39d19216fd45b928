package approval

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/models"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresStore persists deletion approvals. The one-pending-per-resource
// invariant is enforced by a partial unique index:
//
//	CREATE UNIQUE INDEX deletion_approvals_pending_uq
//	    ON deletion_approvals (resource_type, resource_id)
//	    WHERE status = 'pending';
//
// so two concurrent requests can never both insert a pending row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateIfNonePending inserts the approval, translating a unique violation on
// the pending index into sentinel.ErrAlreadyUsed.
func (s *PostgresStore) CreateIfNonePending(ctx context.Context, approval *models.DeletionApproval) error {
	metadata, err := json.Marshal(approval.Metadata)
	if err != nil {
		return fmt.Errorf("marshal approval metadata: %w", err)
	}

	query := `
		INSERT INTO deletion_approvals (
			id, resource_type, resource_id, resource_name,
			requested_by, deletion_reason, risk_level, requires_mfa,
			status, correlation_id, metadata, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = s.db.ExecContext(ctx, query,
		uuid.UUID(approval.ID),
		string(approval.Resource.Type),
		approval.Resource.ID,
		approval.Resource.DisplayName,
		approval.RequestedBy,
		approval.DeletionReason,
		string(approval.RiskLevel),
		approval.RequiresMFA,
		string(approval.Status),
		uuid.UUID(approval.CorrelationID),
		metadata,
		approval.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert deletion approval: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ApprovalID) (*models.DeletionApproval, error) {
	query := selectApproval + ` WHERE id = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(id)))
}

func (s *PostgresStore) FindPendingByResource(ctx context.Context, rt domain.ResourceType, resourceID string) (*models.DeletionApproval, error) {
	query := selectApproval + ` WHERE resource_type = $1 AND resource_id = $2 AND status = 'pending'`
	return s.scanOne(s.db.QueryRowContext(ctx, query, string(rt), resourceID))
}

// Execute loads the approval FOR UPDATE, validates, mutates, and writes the
// decision columns back in one transaction.
func (s *PostgresStore) Execute(
	ctx context.Context,
	id domain.ApprovalID,
	validate func(*models.DeletionApproval) error,
	mutate func(*models.DeletionApproval),
) (*models.DeletionApproval, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin approval tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := selectApproval + ` WHERE id = $1 FOR UPDATE`
	approval, err := s.scanOne(tx.QueryRowContext(ctx, query, uuid.UUID(id)))
	if err != nil {
		return nil, err
	}

	if err := validate(approval); err != nil {
		return nil, err
	}
	mutate(approval)

	update := `
		UPDATE deletion_approvals
		SET status = $2, decided_by = $3, rejection_reason = $4, decided_at = $5
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, update,
		uuid.UUID(approval.ID),
		string(approval.Status),
		approval.DecidedBy,
		approval.RejectionReason,
		approval.DecidedAt,
	); err != nil {
		return nil, fmt.Errorf("update deletion approval: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit approval tx: %w", err)
	}
	return approval, nil
}

const selectApproval = `
	SELECT id, resource_type, resource_id, resource_name,
		   requested_by, deletion_reason, risk_level, requires_mfa,
		   status, correlation_id, metadata,
		   COALESCE(decided_by, ''), COALESCE(rejection_reason, ''),
		   created_at, COALESCE(decided_at, 'epoch'::timestamptz)
	FROM deletion_approvals`

type rowScanner interface {
	Scan(dest ...any) error
}

func (s *PostgresStore) scanOne(row rowScanner) (*models.DeletionApproval, error) {
	var (
		approval      models.DeletionApproval
		id            uuid.UUID
		resourceType  string
		riskLevel     string
		status        string
		correlationID uuid.UUID
		metadata      []byte
	)
	err := row.Scan(
		&id,
		&resourceType,
		&approval.Resource.ID,
		&approval.Resource.DisplayName,
		&approval.RequestedBy,
		&approval.DeletionReason,
		&riskLevel,
		&approval.RequiresMFA,
		&status,
		&correlationID,
		&metadata,
		&approval.DecidedBy,
		&approval.RejectionReason,
		&approval.CreatedAt,
		&approval.DecidedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan deletion approval: %w", err)
	}

	approval.ID = domain.ApprovalID(id)
	approval.Resource.Type = domain.ResourceType(resourceType)
	approval.RiskLevel = models.RiskLevel(riskLevel)
	approval.Status = models.ApprovalStatus(status)
	approval.CorrelationID = domain.CorrelationID(correlationID)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &approval.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal approval metadata: %w", err)
		}
	}
	return &approval, nil
}
