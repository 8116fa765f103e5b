// Package memory provides an in-memory store used by tests and local
// development. It implements the same interface as the postgres store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/internal/domain"
)

// Store keeps activities and responses in maps guarded by a single mutex.
type Store struct {
	mu         sync.RWMutex
	activities map[string]domain.Activity
	responses  map[string][]domain.Response
}

func New() *Store {
	return &Store{
		activities: make(map[string]domain.Activity),
		responses:  make(map[string][]domain.Response),
	}
}

func (s *Store) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[activity.ID] = cloneActivity(*activity)
	return nil
}

func (s *Store) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	activity, ok := s.activities[id]
	if !ok {
		return nil, apperrors.NewNotFound("activity", id)
	}
	out := cloneActivity(activity)
	return &out, nil
}

func (s *Store) ListSessionActivities(ctx context.Context, sessionID string, offset, limit int) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Activity, 0)
	for _, activity := range s.activities {
		if activity.SessionID == sessionID {
			matched = append(matched, cloneActivity(activity))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].OrderIndex != matched[j].OrderIndex {
			return matched[i].OrderIndex < matched[j].OrderIndex
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return []domain.Activity{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) UpdateActivity(ctx context.Context, activity *domain.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[activity.ID]; !ok {
		return apperrors.NewNotFound("activity", activity.ID)
	}
	s.activities[activity.ID] = cloneActivity(*activity)
	return nil
}

func (s *Store) DeleteActivity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.activities[id]; !ok {
		return apperrors.NewNotFound("activity", id)
	}
	delete(s.activities, id)
	delete(s.responses, id)
	return nil
}

func (s *Store) ListDueActive(ctx context.Context, now time.Time) ([]domain.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	due := make([]domain.Activity, 0)
	for _, activity := range s.activities {
		if activity.State == domain.StateActive && activity.ExpiresAt != nil && !activity.ExpiresAt.After(now) {
			due = append(due, cloneActivity(activity))
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	return due, nil
}

func (s *Store) CreateResponse(ctx context.Context, response *domain.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[response.ActivityID] = append(s.responses[response.ActivityID], cloneResponse(*response))
	return nil
}

func (s *Store) ListActivityResponses(ctx context.Context, activityID string) ([]domain.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.responses[activityID]
	out := make([]domain.Response, 0, len(stored))
	for _, response := range stored {
		out = append(out, cloneResponse(response))
	}
	return out, nil
}

func (s *Store) SummarizeResponses(ctx context.Context, activityID string) (*domain.ResponseSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.responses[activityID]
	summary := &domain.ResponseSummary{TotalResponses: len(stored)}

	participants := make(map[string]bool)
	for _, response := range stored {
		participants[response.ParticipantID] = true
		if summary.LastUpdated == nil || response.CreatedAt.After(*summary.LastUpdated) {
			created := response.CreatedAt
			summary.LastUpdated = &created
		}
	}
	summary.UniqueParticipants = len(participants)
	return summary, nil
}

func cloneActivity(activity domain.Activity) domain.Activity {
	activity.Config = cloneMap(activity.Config)
	activity.Metadata = cloneMap(activity.Metadata)
	if activity.ExpiresAt != nil {
		expires := *activity.ExpiresAt
		activity.ExpiresAt = &expires
	}
	return activity
}

func cloneResponse(response domain.Response) domain.Response {
	response.Payload = cloneMap(response.Payload)
	return response
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
