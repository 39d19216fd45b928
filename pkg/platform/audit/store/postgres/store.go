package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
)

// Store persists audit events in the audit_events table. Inserts only: the
// table carries no update path, and duplicate deliveries (e.g. a replayed
// async append) are ignored via ON CONFLICT DO NOTHING on the event ID.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query := `
		INSERT INTO audit_events (
			id, action, category, actor_id, actor_kind, actor_name, actor_auth_method,
			resource_type, resource_id, resource_name, payload,
			user_agent, browser, client_ip, correlation_id, timestamp
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		event.ID,
		string(event.Action),
		string(event.Action.Category()),
		event.Actor.ID,
		string(event.Actor.Kind),
		event.Actor.DisplayName,
		event.Actor.AuthMethod,
		string(event.Resource.Type),
		event.Resource.ID,
		event.Resource.DisplayName,
		payload,
		event.Client.UserAgent,
		event.Client.Browser,
		event.Client.IP,
		uuid.UUID(event.CorrelationID),
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByResource returns events for a resource ordered by timestamp ascending.
func (s *Store) ListByResource(ctx context.Context, rt domain.ResourceType, resourceID string) ([]audit.Event, error) {
	query := `
		SELECT id, action, actor_id, actor_kind, actor_name, actor_auth_method,
			   resource_type, resource_id, resource_name, payload,
			   user_agent, browser, client_ip, correlation_id, timestamp
		FROM audit_events
		WHERE resource_type = $1 AND resource_id = $2
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, string(rt), resourceID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

// ListRecent returns the N most recent events.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `
		SELECT id, action, actor_id, actor_kind, actor_name, actor_auth_method,
			   resource_type, resource_id, resource_name, payload,
			   user_agent, browser, client_ip, correlation_id, timestamp
		FROM audit_events
		ORDER BY timestamp DESC, id DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent audit events: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			event         audit.Event
			action        string
			actorKind     string
			resourceType  string
			payload       []byte
			correlationID uuid.UUID
		)
		err := rows.Scan(
			&event.ID,
			&action,
			&event.Actor.ID,
			&actorKind,
			&event.Actor.DisplayName,
			&event.Actor.AuthMethod,
			&resourceType,
			&event.Resource.ID,
			&event.Resource.DisplayName,
			&payload,
			&event.Client.UserAgent,
			&event.Client.Browser,
			&event.Client.IP,
			&correlationID,
			&event.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}

		event.Action = audit.Action(action)
		event.Actor.Kind = domain.ActorKind(actorKind)
		event.Resource.Type = domain.ResourceType(resourceType)
		event.CorrelationID = domain.CorrelationID(correlationID)
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal audit payload: %w", err)
			}
		}

		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
