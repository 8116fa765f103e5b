// Package postgres persists activities and responses in PostgreSQL. The
// kind-specific configuration, metadata and response payloads are stored as
// JSONB documents.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"interactive-sessions/internal/common/database"
	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/internal/domain"
)

// Store implements domain.Store on top of a PostgreSQL connection pool.
type Store struct {
	db *sql.DB
}

// New wraps the shared postgres client.
func New(client *database.PostgresClient) *Store {
	return &Store{db: client.DB}
}

// NewWithDB is used by tests to inject a mocked connection.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

const createActivityQuery = `
	INSERT INTO activities (id, session_id, kind, config, order_index, state, expires_at, metadata, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

func (s *Store) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	config, err := json.Marshal(activity.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal activity config: %w", err)
	}
	metadata, err := json.Marshal(activity.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal activity metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, createActivityQuery,
		activity.ID,
		activity.SessionID,
		activity.Kind,
		config,
		activity.OrderIndex,
		string(activity.State),
		activity.ExpiresAt,
		metadata,
		activity.CreatedAt,
		activity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

const getActivityQuery = `
	SELECT id, session_id, kind, config, order_index, state, expires_at, metadata, created_at, updated_at
	FROM activities
	WHERE id = $1`

func (s *Store) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	activity, err := scanActivity(s.db.QueryRowContext(ctx, getActivityQuery, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFound("activity", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	return activity, nil
}

const listSessionActivitiesQuery = `
	SELECT id, session_id, kind, config, order_index, state, expires_at, metadata, created_at, updated_at
	FROM activities
	WHERE session_id = $1
	ORDER BY order_index, created_at
	OFFSET $2 LIMIT $3`

func (s *Store) ListSessionActivities(ctx context.Context, sessionID string, offset, limit int) ([]domain.Activity, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, listSessionActivitiesQuery, sessionID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query session activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *activity)
	}
	return activities, rows.Err()
}

const updateActivityQuery = `
	UPDATE activities
	SET config = $2, order_index = $3, state = $4, expires_at = $5, metadata = $6, updated_at = $7
	WHERE id = $1`

func (s *Store) UpdateActivity(ctx context.Context, activity *domain.Activity) error {
	config, err := json.Marshal(activity.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal activity config: %w", err)
	}
	metadata, err := json.Marshal(activity.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal activity metadata: %w", err)
	}

	result, err := s.db.ExecContext(ctx, updateActivityQuery,
		activity.ID,
		config,
		activity.OrderIndex,
		string(activity.State),
		activity.ExpiresAt,
		metadata,
		activity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFound("activity", activity.ID)
	}
	return nil
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return apperrors.NewNotFound("activity", id)
	}
	return nil
}

const listDueActiveQuery = `
	SELECT id, session_id, kind, config, order_index, state, expires_at, metadata, created_at, updated_at
	FROM activities
	WHERE state = 'active' AND expires_at IS NOT NULL AND expires_at <= $1
	ORDER BY expires_at`

func (s *Store) ListDueActive(ctx context.Context, now time.Time) ([]domain.Activity, error) {
	rows, err := s.db.QueryContext(ctx, listDueActiveQuery, now)
	if err != nil {
		return nil, fmt.Errorf("failed to query due activities: %w", err)
	}
	defer rows.Close()

	activities := make([]domain.Activity, 0)
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, *activity)
	}
	return activities, rows.Err()
}

const createResponseQuery = `
	INSERT INTO responses (id, session_id, activity_id, participant_id, payload, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (s *Store) CreateResponse(ctx context.Context, response *domain.Response) error {
	payload, err := json.Marshal(response.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal response payload: %w", err)
	}

	_, err = s.db.ExecContext(ctx, createResponseQuery,
		response.ID,
		response.SessionID,
		response.ActivityID,
		response.ParticipantID,
		payload,
		response.CreatedAt,
		response.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert response: %w", err)
	}
	return nil
}

const listActivityResponsesQuery = `
	SELECT id, session_id, activity_id, participant_id, payload, created_at, updated_at
	FROM responses
	WHERE activity_id = $1
	ORDER BY created_at`

func (s *Store) ListActivityResponses(ctx context.Context, activityID string) ([]domain.Response, error) {
	rows, err := s.db.QueryContext(ctx, listActivityResponsesQuery, activityID)
	if err != nil {
		return nil, fmt.Errorf("failed to query responses: %w", err)
	}
	defer rows.Close()

	responses := make([]domain.Response, 0)
	for rows.Next() {
		var response domain.Response
		var payload []byte
		if err := rows.Scan(
			&response.ID,
			&response.SessionID,
			&response.ActivityID,
			&response.ParticipantID,
			&payload,
			&response.CreatedAt,
			&response.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan response: %w", err)
		}
		if err := json.Unmarshal(payload, &response.Payload); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response payload: %w", err)
		}
		responses = append(responses, response)
	}
	return responses, rows.Err()
}

const summarizeResponsesQuery = `
	SELECT COUNT(*), COUNT(DISTINCT participant_id), MAX(created_at)
	FROM responses
	WHERE activity_id = $1`

func (s *Store) SummarizeResponses(ctx context.Context, activityID string) (*domain.ResponseSummary, error) {
	var summary domain.ResponseSummary
	var lastUpdated sql.NullTime
	err := s.db.QueryRowContext(ctx, summarizeResponsesQuery, activityID).Scan(
		&summary.TotalResponses,
		&summary.UniqueParticipants,
		&lastUpdated,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize responses: %w", err)
	}
	if lastUpdated.Valid {
		summary.LastUpdated = &lastUpdated.Time
	}
	return &summary, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var activity domain.Activity
	var config, metadata []byte
	var state string
	var expiresAt sql.NullTime

	if err := row.Scan(
		&activity.ID,
		&activity.SessionID,
		&activity.Kind,
		&config,
		&activity.OrderIndex,
		&state,
		&expiresAt,
		&metadata,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	); err != nil {
		return nil, err
	}

	activity.State = domain.ActivityState(state)
	if expiresAt.Valid {
		activity.ExpiresAt = &expiresAt.Time
	}
	if err := json.Unmarshal(config, &activity.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity config: %w", err)
	}
	if err := json.Unmarshal(metadata, &activity.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activity metadata: %w", err)
	}
	return &activity, nil
}
