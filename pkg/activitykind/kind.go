// Package activitykind defines the contract every pluggable activity kind
// must satisfy, plus a base implementation supplying the default behaviors so
// concrete kinds override only what differs.
package activitykind

import "time"

// ActivityKind is the capability set of a pluggable activity implementation.
// Instances are request-scoped: constructed from an activity identifier and a
// configuration document, used, and discarded.
type ActivityKind interface {
	// ValidateConfig performs structural and semantic validation beyond the
	// declarative JSON schema. It returns false on malformed input instead of
	// erroring; callers treat false as a client error.
	ValidateConfig(config map[string]any) bool

	// Schema returns the JSON Schema describing valid configuration. The
	// schema must be stable for a given kind version.
	Schema() map[string]any

	// ProcessResponse validates and reshapes one participant submission into
	// the canonical storage form for this kind. It returns an
	// INVALID_RESPONSE error carrying a human-readable reason on malformed or
	// rule-violating input.
	ProcessResponse(participantID string, payload map[string]any) (map[string]any, error)

	// CalculateResults aggregates the full response history into a
	// read-optimized results document. It is pure and deterministic, tolerates
	// an empty response set, and skips malformed entries rather than failing.
	CalculateResults(responses []map[string]any) map[string]any

	// CanTransitionTo lets a kind restrict state transitions beyond the base
	// lifecycle table. The default permits everything the table permits.
	CanTransitionTo(currentState, targetState string) bool

	// OnStateChange is a side-effect hook invoked after a transition. The
	// default is a no-op.
	OnStateChange(oldState, newState string, activityData map[string]any)

	// DefaultMetadata returns kind-specific metadata defaults merged under
	// caller-supplied overrides at creation time.
	DefaultMetadata() map[string]any
}

// Constructor builds a kind instance for an activity. activityID is empty for
// activities that have not been persisted yet.
type Constructor func(activityID string, config map[string]any) ActivityKind

// Base carries the activity identifier and configuration document and supplies
// the default contract behaviors. Concrete kinds embed Base and implement
// ValidateConfig, Schema and ProcessResponse themselves.
type Base struct {
	ActivityID string
	Config     map[string]any
}

// CanTransitionTo allows every transition the lifecycle table allows.
func (b *Base) CanTransitionTo(currentState, targetState string) bool {
	return true
}

// OnStateChange does nothing by default.
func (b *Base) OnStateChange(oldState, newState string, activityData map[string]any) {
}

// DefaultMetadata returns the framework-wide metadata defaults.
func (b *Base) DefaultMetadata() map[string]any {
	return map[string]any{
		"duration_seconds":         nil,
		"max_responses":            nil,
		"allow_multiple_responses": false,
		"show_live_results":        true,
	}
}

// CalculateResults returns a minimal aggregate for kinds that do not override
// result calculation.
func (b *Base) CalculateResults(responses []map[string]any) map[string]any {
	return map[string]any{
		"total_responses": len(responses),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	}
}

// BoolOption reads a boolean flag from the configuration, falling back to def
// when absent or mistyped.
func (b *Base) BoolOption(key string, def bool) bool {
	if v, ok := b.Config[key].(bool); ok {
		return v
	}
	return def
}

// IntOption reads an integer option from the configuration, accepting the
// float64 representation JSON decoding produces.
func (b *Base) IntOption(key string, def int) int {
	switch v := b.Config[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// StringOption reads a string option from the configuration.
func (b *Base) StringOption(key string, def string) string {
	if v, ok := b.Config[key].(string); ok {
		return v
	}
	return def
}

// StringsOption reads a list of strings from the configuration, accepting the
// []any representation JSON decoding produces.
func (b *Base) StringsOption(key string) []string {
	return StringSlice(b.Config[key])
}

// StringSlice converts a decoded JSON array into a []string, skipping
// non-string entries. A nil or mistyped value yields nil.
func StringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
