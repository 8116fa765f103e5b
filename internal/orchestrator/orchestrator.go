// Package orchestrator coordinates the activity framework: it joins the kind
// registry, the state machine and the persistence collaborators into the
// operations the transport layer exposes.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/internal/common/logger"
	"interactive-sessions/internal/common/metrics"
	"interactive-sessions/internal/domain"
	"interactive-sessions/pkg/lifecycle"
	"interactive-sessions/pkg/registry"
)

// ResultsCache is the subset of the cache the orchestrator needs. A nil cache
// disables caching entirely.
type ResultsCache interface {
	Get(ctx context.Context, activityID string) (map[string]any, bool)
	Set(ctx context.Context, activityID string, results map[string]any)
	Invalidate(ctx context.Context, activityID string) error
}

// Service implements the activity operations.
type Service struct {
	reg     *registry.Registry
	machine *lifecycle.Machine
	store   domain.Store
	cache   ResultsCache
	log     logger.Logger
}

// New wires the orchestrator. The state machine's activation check is backed
// by the registry so kind prerequisites apply to pre-flight validation.
func New(reg *registry.Registry, store domain.Store, cache ResultsCache, log logger.Logger) *Service {
	machine := lifecycle.NewMachine(log)
	machine.Activation = func(kindID string, config map[string]any) ([]string, []string) {
		result, err := reg.ValidateConfig(kindID, config)
		if err != nil {
			return []string{err.Error()}, nil
		}
		if !result.Valid {
			return result.Errors, nil
		}
		return nil, nil
	}

	return &Service{
		reg:     reg,
		machine: machine,
		store:   store,
		cache:   cache,
		log:     log,
	}
}

// Machine exposes the state machine, mainly so tests can override its clock.
func (s *Service) Machine() *lifecycle.Machine { return s.machine }

// CreateRequest carries the inputs for activity creation.
type CreateRequest struct {
	SessionID  string
	Kind       string
	Config     map[string]any
	OrderIndex int
	Metadata   map[string]any
}

// CreateActivity validates the configuration against the kind and persists a
// new draft activity. Kind defaults seed the metadata; caller-supplied
// entries win.
func (s *Service) CreateActivity(ctx context.Context, req CreateRequest) (*domain.Activity, error) {
	if !s.reg.IsRegistered(req.Kind) {
		return nil, apperrors.NewUnknownKind(req.Kind)
	}

	validation, err := s.reg.ValidateConfig(req.Kind, req.Config)
	if err != nil {
		return nil, err
	}
	if !validation.Valid {
		return nil, apperrors.NewInvalidConfig(req.Kind, validation.Errors)
	}

	instance, err := s.reg.Create(req.Kind, "", req.Config)
	if err != nil {
		return nil, err
	}

	metadata := instance.DefaultMetadata()
	for key, value := range req.Metadata {
		metadata[key] = value
	}

	now := time.Now().UTC()
	activity := &domain.Activity{
		ID:         uuid.NewString(),
		SessionID:  req.SessionID,
		Kind:       req.Kind,
		Config:     req.Config,
		OrderIndex: req.OrderIndex,
		State:      domain.StateDraft,
		Metadata:   metadata,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateActivity(ctx, activity); err != nil {
		return nil, err
	}

	s.log.Info("activity created", map[string]interface{}{
		"activityId": activity.ID,
		"sessionId":  activity.SessionID,
		"kind":       activity.Kind,
	})
	return activity, nil
}

// GetActivity loads one activity.
func (s *Service) GetActivity(ctx context.Context, id string) (*domain.Activity, error) {
	return s.store.GetActivity(ctx, id)
}

// ListActivities pages through a session's activities in display order.
func (s *Service) ListActivities(ctx context.Context, sessionID string, offset, limit int) ([]domain.Activity, error) {
	return s.store.ListSessionActivities(ctx, sessionID, offset, limit)
}

// UpdateRequest carries the mutable fields of an activity. Nil fields are
// left unchanged.
type UpdateRequest struct {
	Config     map[string]any
	OrderIndex *int
	Metadata   map[string]any
}

// UpdateActivity revalidates a replacement configuration before persisting
// it. Configuration changes are only allowed while the activity is a draft.
func (s *Service) UpdateActivity(ctx context.Context, id string, req UpdateRequest) (*domain.Activity, error) {
	activity, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Config != nil {
		if activity.State != domain.StateDraft {
			return nil, apperrors.NewInvalidTransition(string(activity.State), string(activity.State),
				lifecycle.ValidTransitions(activity.State))
		}
		validation, err := s.reg.ValidateConfig(activity.Kind, req.Config)
		if err != nil {
			return nil, err
		}
		if !validation.Valid {
			return nil, apperrors.NewInvalidConfig(activity.Kind, validation.Errors)
		}
		activity.Config = req.Config
	}

	if req.OrderIndex != nil {
		activity.OrderIndex = *req.OrderIndex
	}
	for key, value := range req.Metadata {
		activity.Metadata[key] = value
	}

	activity.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateActivity(ctx, activity); err != nil {
		return nil, err
	}

	s.invalidateResults(ctx, activity.ID)
	return activity, nil
}

// DeleteActivity removes an activity and its responses.
func (s *Service) DeleteActivity(ctx context.Context, id string) error {
	if err := s.store.DeleteActivity(ctx, id); err != nil {
		return err
	}
	s.invalidateResults(ctx, id)
	return nil
}

// TransitionActivity moves an activity to a new state. The kind may veto a
// table-permitted transition; force overrides both the table and the kind.
func (s *Service) TransitionActivity(ctx context.Context, id string, target domain.ActivityState, reason string, force bool) (*domain.Activity, error) {
	if !target.Valid() {
		return nil, apperrors.NewInvalidTransition("", string(target), nil)
	}

	activity, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return nil, err
	}

	instance, err := s.reg.Create(activity.Kind, activity.ID, activity.Config)
	if err != nil {
		return nil, err
	}

	oldState := activity.State
	if !force && !instance.CanTransitionTo(string(oldState), string(target)) {
		return nil, apperrors.NewInvalidTransition(string(oldState), string(target),
			lifecycle.ValidTransitions(oldState))
	}

	if err := s.machine.Transition(activity, target, reason, force); err != nil {
		return nil, err
	}

	if err := s.store.UpdateActivity(ctx, activity); err != nil {
		return nil, err
	}

	s.invalidateResults(ctx, activity.ID)
	instance.OnStateChange(string(oldState), string(target), activity.Metadata)
	metrics.StateTransitions.WithLabelValues(string(target)).Inc()
	return activity, nil
}

// ValidateTransition is the advisory pre-flight check. It never mutates the
// activity; a concurrent transition can still invalidate the answer.
func (s *Service) ValidateTransition(ctx context.Context, id string, target domain.ActivityState) (lifecycle.TransitionCheck, error) {
	activity, err := s.store.GetActivity(ctx, id)
	if err != nil {
		return lifecycle.TransitionCheck{}, err
	}
	return s.machine.ValidateTransitionRequest(activity.State, target, activity.Kind, activity.Config), nil
}

// SubmitResponse processes one participant submission. Only active activities
// accept responses. The payload stored is the kind's normalized document,
// never the raw input.
func (s *Service) SubmitResponse(ctx context.Context, activityID, participantID string, payload map[string]any) (*domain.Response, error) {
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if activity.State != domain.StateActive {
		metrics.ResponsesRejected.WithLabelValues(activity.Kind, string(apperrors.CodeInvalidResponse)).Inc()
		return nil, apperrors.NewInvalidResponse("activity is not accepting responses in state '" + string(activity.State) + "'")
	}

	instance, err := s.reg.Create(activity.Kind, activity.ID, activity.Config)
	if err != nil {
		return nil, err
	}

	processed, err := instance.ProcessResponse(participantID, payload)
	if err != nil {
		metrics.ResponsesRejected.WithLabelValues(activity.Kind, string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}

	now := time.Now().UTC()
	response := &domain.Response{
		ID:            uuid.NewString(),
		SessionID:     activity.SessionID,
		ActivityID:    activity.ID,
		ParticipantID: participantID,
		Payload:       processed,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.CreateResponse(ctx, response); err != nil {
		return nil, err
	}

	s.invalidateResults(ctx, activity.ID)
	metrics.ResponsesProcessed.WithLabelValues(activity.Kind).Inc()
	return response, nil
}

// ActivityResults returns the aggregated results document, serving from the
// cache when possible.
func (s *Service) ActivityResults(ctx context.Context, activityID string) (map[string]any, error) {
	if s.cache != nil {
		if results, hit := s.cache.Get(ctx, activityID); hit {
			return results, nil
		}
	}

	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	instance, err := s.reg.Create(activity.Kind, activity.ID, activity.Config)
	if err != nil {
		return nil, err
	}

	stored, err := s.store.ListActivityResponses(ctx, activityID)
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(stored))
	for _, response := range stored {
		payloads = append(payloads, response.Payload)
	}

	results := instance.CalculateResults(payloads)
	if s.cache != nil {
		s.cache.Set(ctx, activityID, results)
	}
	return results, nil
}

// ResponseSummary returns response counts for an activity.
func (s *Service) ResponseSummary(ctx context.Context, activityID string) (*domain.ResponseSummary, error) {
	if _, err := s.store.GetActivity(ctx, activityID); err != nil {
		return nil, err
	}
	return s.store.SummarizeResponses(ctx, activityID)
}

// ExpireDue sweeps active activities past their expiration time. Each due
// activity is transitioned and persisted individually so one failure does not
// abort the sweep.
func (s *Service) ExpireDue(ctx context.Context) (int, error) {
	timer := time.Now()
	defer func() {
		metrics.ExpirySweepDuration.Observe(time.Since(timer).Seconds())
	}()

	due, err := s.store.ListDueActive(ctx, s.machine.Now().UTC())
	if err != nil {
		return 0, err
	}

	refs := make([]*domain.Activity, len(due))
	for i := range due {
		refs[i] = &due[i]
	}

	expired := 0
	for _, activity := range s.machine.CheckExpired(refs) {
		if err := s.store.UpdateActivity(ctx, activity); err != nil {
			s.log.WithError(err).Error("failed to persist expired activity", map[string]interface{}{
				"activityId": activity.ID,
			})
			continue
		}
		if instance, err := s.reg.Create(activity.Kind, activity.ID, activity.Config); err == nil {
			instance.OnStateChange(string(domain.StateActive), string(domain.StateExpired), activity.Metadata)
		}
		s.invalidateResults(ctx, activity.ID)
		metrics.ActivitiesExpired.Inc()
		expired++
	}

	if expired > 0 {
		s.log.Info("expiry sweep complete", map[string]interface{}{
			"expired": expired,
			"due":     len(due),
		})
	}
	return expired, nil
}

func (s *Service) invalidateResults(ctx context.Context, activityID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, activityID); err != nil {
		s.log.WithError(err).Warn("failed to invalidate results cache", map[string]interface{}{
			"activityId": activityID,
		})
	}
}
