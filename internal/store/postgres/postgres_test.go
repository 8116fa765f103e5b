package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/internal/domain"
)

var activityColumns = []string{
	"id", "session_id", "kind", "config", "order_index", "state",
	"expires_at", "metadata", "created_at", "updated_at",
}

func testActivity() *domain.Activity {
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	return &domain.Activity{
		ID:        "activity-1",
		SessionID: "session-1",
		Kind:      "poll",
		Config: map[string]any{
			"question": "Favorite color?",
			"options":  []any{"Red", "Blue"},
		},
		OrderIndex: 1,
		State:      domain.StateDraft,
		Metadata:   map[string]any{"duration_seconds": float64(300)},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func activityRow(t *testing.T, activity *domain.Activity) *sqlmock.Rows {
	t.Helper()
	config, err := json.Marshal(activity.Config)
	require.NoError(t, err)
	metadata, err := json.Marshal(activity.Metadata)
	require.NoError(t, err)

	return sqlmock.NewRows(activityColumns).AddRow(
		activity.ID, activity.SessionID, activity.Kind, config,
		activity.OrderIndex, string(activity.State), activity.ExpiresAt,
		metadata, activity.CreatedAt, activity.UpdatedAt,
	)
}

func TestCreateActivity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)
	activity := testActivity()

	mock.ExpectExec("INSERT INTO activities").
		WithArgs(
			activity.ID, activity.SessionID, activity.Kind, sqlmock.AnyArg(),
			activity.OrderIndex, "draft", nil, sqlmock.AnyArg(),
			activity.CreatedAt, activity.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.CreateActivity(context.Background(), activity))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActivity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)
	want := testActivity()

	mock.ExpectQuery("SELECT (.+) FROM activities").
		WithArgs(want.ID).
		WillReturnRows(activityRow(t, want))

	got, err := store.GetActivity(context.Background(), want.ID)
	require.NoError(t, err)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, domain.StateDraft, got.State)
	assert.Equal(t, "Favorite color?", got.Config["question"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetActivityNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)

	mock.ExpectQuery("SELECT (.+) FROM activities").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(activityColumns))

	_, err = store.GetActivity(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateActivityNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)
	activity := testActivity()

	mock.ExpectExec("UPDATE activities").
		WithArgs(
			activity.ID, sqlmock.AnyArg(), activity.OrderIndex, "draft",
			nil, sqlmock.AnyArg(), activity.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = store.UpdateActivity(context.Background(), activity)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteActivity(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)

	mock.ExpectExec("DELETE FROM activities").
		WithArgs("activity-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.DeleteActivity(context.Background(), "activity-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDueActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)

	expired := testActivity()
	expired.State = domain.StateActive
	due := time.Date(2026, 1, 1, 10, 5, 0, 0, time.UTC)
	expired.ExpiresAt = &due

	now := due.Add(time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM activities").
		WithArgs(now).
		WillReturnRows(activityRow(t, expired))

	activities, err := store.ListDueActive(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, domain.StateActive, activities[0].State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAndListResponses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	response := &domain.Response{
		ID:            "response-1",
		SessionID:     "session-1",
		ActivityID:    "activity-1",
		ParticipantID: "participant-1",
		Payload:       map[string]any{"type": "poll_response"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec("INSERT INTO responses").
		WithArgs(
			response.ID, response.SessionID, response.ActivityID,
			response.ParticipantID, sqlmock.AnyArg(),
			response.CreatedAt, response.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.CreateResponse(context.Background(), response))

	payload, err := json.Marshal(response.Payload)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT (.+) FROM responses").
		WithArgs(response.ActivityID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "session_id", "activity_id", "participant_id", "payload", "created_at", "updated_at",
		}).AddRow(
			response.ID, response.SessionID, response.ActivityID,
			response.ParticipantID, payload, response.CreatedAt, response.UpdatedAt,
		))

	responses, err := store.ListActivityResponses(context.Background(), response.ActivityID)
	require.NoError(t, err)
	require.Len(t, responses, 1)
	assert.Equal(t, "poll_response", responses[0].Payload["type"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummarizeResponses(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db)
	last := time.Date(2026, 1, 1, 10, 30, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("activity-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "count", "max"}).
			AddRow(5, 3, last))

	summary, err := store.SummarizeResponses(context.Background(), "activity-1")
	require.NoError(t, err)
	assert.Equal(t, 5, summary.TotalResponses)
	assert.Equal(t, 3, summary.UniqueParticipants)
	require.NotNil(t, summary.LastUpdated)
	assert.Equal(t, last, *summary.LastUpdated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
