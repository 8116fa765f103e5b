// Package lifecycle implements the activity state machine: a fixed transition
// table plus the side effects that run when an activity is activated or
// expired.
package lifecycle

import (
	"time"

	"interactive-sessions/internal/common/errors"
	"interactive-sessions/internal/common/logger"
	"interactive-sessions/internal/domain"
)

// transitions is the fixed lifecycle table. EXPIRED is terminal.
var transitions = map[domain.ActivityState][]domain.ActivityState{
	domain.StateDraft:     {domain.StatePublished},
	domain.StatePublished: {domain.StateActive, domain.StateDraft},
	domain.StateActive:    {domain.StateExpired},
	domain.StateExpired:   {},
}

// CanTransition reports whether the table permits moving from current to
// target. Unknown states are never valid.
func CanTransition(current, target domain.ActivityState) bool {
	for _, t := range transitions[current] {
		if t == target {
			return true
		}
	}
	return false
}

// ValidTransitions returns the permitted target states from current.
func ValidTransitions(current domain.ActivityState) []string {
	targets := transitions[current]
	out := make([]string, 0, len(targets))
	for _, t := range targets {
		out = append(out, string(t))
	}
	return out
}

// StateInfo describes the state machine for discovery endpoints.
type StateInfo struct {
	States         []string            `json:"states"`
	Transitions    map[string][]string `json:"transitions"`
	TerminalStates []string            `json:"terminal_states"`
}

// Info returns the full transition table.
func Info() StateInfo {
	info := StateInfo{Transitions: make(map[string][]string, len(transitions))}
	for _, s := range domain.AllStates {
		info.States = append(info.States, string(s))
		info.Transitions[string(s)] = ValidTransitions(s)
		if len(transitions[s]) == 0 {
			info.TerminalStates = append(info.TerminalStates, string(s))
		}
	}
	return info
}

// ActivationCheck validates kind-specific prerequisites before an activity
// goes active, returning validation errors and warnings. The orchestrator
// supplies a check backed by the registry; the machine itself knows nothing
// about kinds.
type ActivationCheck func(kindID string, config map[string]any) (errs []string, warnings []string)

// Machine performs transitions and their side effects on activity records
// supplied by the caller. It holds no activity state itself.
type Machine struct {
	log logger.Logger

	// Now is the clock used for expiry stamps; tests override it.
	Now func() time.Time

	// Activation, when set, adds kind-specific prerequisites to
	// ValidateTransitionRequest for moves into the active state.
	Activation ActivationCheck
}

// NewMachine builds a Machine using the host clock.
func NewMachine(log logger.Logger) *Machine {
	return &Machine{
		log: log,
		Now: time.Now,
	}
}

// Transition writes target into the activity and runs state-specific side
// effects. Without force, moves the table forbids fail with
// INVALID_TRANSITION carrying the valid targets. Forced transitions always
// succeed and are logged.
func (m *Machine) Transition(activity *domain.Activity, target domain.ActivityState, reason string, force bool) error {
	if !force && !CanTransition(activity.State, target) {
		m.log.Warn("invalid state transition attempted", map[string]interface{}{
			"activityId": activity.ID,
			"from":       string(activity.State),
			"to":         string(target),
		})
		return errors.NewInvalidTransition(string(activity.State), string(target), ValidTransitions(activity.State))
	}

	oldState := activity.State
	activity.State = target
	activity.UpdatedAt = m.Now().UTC()

	switch target {
	case domain.StateActive:
		m.handleActivation(activity)
	case domain.StateExpired:
		m.handleExpiration(activity)
	}

	fields := map[string]interface{}{
		"activityId": activity.ID,
		"from":       string(oldState),
		"to":         string(target),
	}
	if reason != "" {
		fields["reason"] = reason
	}
	if force {
		fields["forced"] = true
	}
	m.log.Info("activity state transitioned", fields)

	return nil
}

// handleActivation sets the expiration time when the activity metadata
// carries a duration.
func (m *Machine) handleActivation(activity *domain.Activity) {
	seconds, ok := durationSeconds(activity.Metadata)
	if !ok {
		return
	}
	expiresAt := m.Now().UTC().Add(time.Duration(seconds) * time.Second)
	activity.ExpiresAt = &expiresAt
	m.log.Info("activity expiration scheduled", map[string]interface{}{
		"activityId": activity.ID,
		"expiresAt":  expiresAt,
	})
}

// handleExpiration stamps the expiration time if it was never set, so an
// expired activity always records when it was first observed expired.
func (m *Machine) handleExpiration(activity *domain.Activity) {
	if activity.ExpiresAt == nil {
		now := m.Now().UTC()
		activity.ExpiresAt = &now
	}
}

// CheckExpired transitions every active activity whose expiration time has
// passed and returns the transitioned subset. Intended to be invoked by an
// external scheduler; the machine runs no timer of its own.
func (m *Machine) CheckExpired(activities []*domain.Activity) []*domain.Activity {
	now := m.Now().UTC()
	var expired []*domain.Activity
	for _, activity := range activities {
		if activity.State != domain.StateActive || activity.ExpiresAt == nil {
			continue
		}
		if activity.ExpiresAt.After(now) {
			continue
		}
		if err := m.Transition(activity, domain.StateExpired, "automatic expiration", false); err == nil {
			expired = append(expired, activity)
		}
	}
	return expired
}

// TransitionCheck is the advisory outcome of a pre-flight validation.
type TransitionCheck struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// ValidateTransitionRequest combines the table check with kind-specific
// activation prerequisites without mutating anything. Callers use it for
// pre-flight feedback before committing a transition.
func (m *Machine) ValidateTransitionRequest(current, target domain.ActivityState, kindID string, config map[string]any) TransitionCheck {
	check := TransitionCheck{Errors: []string{}, Warnings: []string{}}

	if !CanTransition(current, target) {
		check.Errors = append(check.Errors,
			"invalid state transition: "+string(current)+" -> "+string(target))
		return check
	}

	if target == domain.StateActive && m.Activation != nil {
		errs, warnings := m.Activation(kindID, config)
		check.Errors = append(check.Errors, errs...)
		check.Warnings = append(check.Warnings, warnings...)
	}

	check.Valid = len(check.Errors) == 0
	return check
}

func durationSeconds(metadata map[string]any) (int64, bool) {
	switch v := metadata["duration_seconds"].(type) {
	case int:
		if v > 0 {
			return int64(v), true
		}
	case int64:
		if v > 0 {
			return v, true
		}
	case float64:
		if v > 0 {
			return int64(v), true
		}
	}
	return 0, false
}
