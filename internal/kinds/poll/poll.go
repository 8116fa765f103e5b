// Package poll implements the single/multi-choice poll activity kind.
package poll

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/pkg/activitykind"
)

const KindID = "poll"

// Poll lets participants vote on a fixed set of options, optionally selecting
// more than one.
type Poll struct {
	activitykind.Base
}

// New is the registered constructor for the poll kind.
func New(activityID string, config map[string]any) activitykind.ActivityKind {
	return &Poll{activitykind.Base{ActivityID: activityID, Config: config}}
}

func (p *Poll) Schema() map[string]any {
	return Schema
}

// ValidateConfig checks poll semantics beyond the JSON schema: question and
// option bounds, non-blank entries, boolean flag types.
func (p *Poll) ValidateConfig(config map[string]any) bool {
	question, ok := config["question"].(string)
	if !ok || strings.TrimSpace(question) == "" || utf8.RuneCountInString(question) > 500 {
		return false
	}

	rawOptions, ok := config["options"]
	if !ok {
		return false
	}
	options := activitykind.StringSlice(rawOptions)
	if options == nil {
		return false
	}
	// StringSlice drops non-string entries, so a count mismatch means a
	// mistyped option.
	if list, isList := rawOptions.([]any); isList && len(list) != len(options) {
		return false
	}
	if len(options) < 2 || len(options) > 10 {
		return false
	}
	for _, option := range options {
		if strings.TrimSpace(option) == "" || utf8.RuneCountInString(option) > 200 {
			return false
		}
	}

	for _, field := range []string{"allow_multiple_choice", "show_live_results", "anonymous_voting"} {
		if v, present := config[field]; present {
			if _, isBool := v.(bool); !isBool {
				return false
			}
		}
	}

	return true
}

// ProcessResponse normalizes a vote submission. The payload must carry a
// non-empty selected_options list drawn from the configured options, with a
// single selection unless multiple choice is enabled.
func (p *Poll) ProcessResponse(participantID string, payload map[string]any) (map[string]any, error) {
	raw, ok := payload["selected_options"]
	if !ok {
		return nil, apperrors.NewInvalidResponse("response must contain 'selected_options' as a list")
	}
	selected := activitykind.StringSlice(raw)
	if selected == nil {
		return nil, apperrors.NewInvalidResponse("response must contain 'selected_options' as a list")
	}
	if list, isList := raw.([]any); isList && len(list) != len(selected) {
		return nil, apperrors.NewInvalidResponse("each selected option must be a string")
	}

	validOptions := p.StringsOption("options")
	if len(validOptions) == 0 {
		return nil, apperrors.NewInvalidResponse("activity configuration has no valid options")
	}

	for _, option := range selected {
		if !contains(validOptions, option) {
			return nil, apperrors.NewInvalidResponse(fmt.Sprintf("invalid option selected: '%s'", option))
		}
	}

	if !p.BoolOption("allow_multiple_choice", false) && len(selected) > 1 {
		return nil, apperrors.NewInvalidResponse("multiple choices not allowed for this poll")
	}
	if len(selected) == 0 {
		return nil, apperrors.NewInvalidResponse("at least one option must be selected")
	}

	anonymous := p.BoolOption("anonymous_voting", true)
	normalized := map[string]any{
		"type":             "poll_response",
		"participant_id":   participantID,
		"selected_options": selected,
		"timestamp":        time.Now().UTC().Format(time.RFC3339),
		"anonymous":        anonymous,
	}
	if !anonymous {
		normalized["participant_info"] = map[string]any{"id": participantID}
	}

	return normalized, nil
}

// DefaultMetadata marks polls as short, single-response activities.
func (p *Poll) DefaultMetadata() map[string]any {
	return map[string]any{
		"duration_seconds":         300,
		"max_responses":            nil,
		"allow_multiple_responses": false,
		"show_live_results":        true,
		"activity_type":            KindID,
		"requires_moderation":      false,
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
