// Package wordcloud implements the word cloud activity kind. Participants
// submit words or short phrases that are normalized, filtered and aggregated
// into a frequency-weighted cloud.
package wordcloud

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/pkg/activitykind"
)

const KindID = "word_cloud"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	// \w in Go is ASCII-only; spell out the Unicode classes so words in any
	// script survive the punctuation strip.
	punctuationRe = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
)

type WordCloud struct {
	activitykind.Base
}

// New is the registered constructor for the word_cloud kind.
func New(activityID string, config map[string]any) activitykind.ActivityKind {
	return &WordCloud{activitykind.Base{ActivityID: activityID, Config: config}}
}

func (w *WordCloud) Schema() map[string]any {
	return Schema
}

func (w *WordCloud) ValidateConfig(config map[string]any) bool {
	prompt, ok := config["prompt"].(string)
	if !ok || strings.TrimSpace(prompt) == "" || utf8.RuneCountInString(prompt) > 300 {
		return false
	}

	intFields := map[string][2]int{
		"max_word_length":          {3, 50},
		"max_words_per_submission": {1, 10},
	}
	for field, bounds := range intFields {
		if v, present := config[field]; present {
			value, isInt := asInt(v)
			if !isInt || value < bounds[0] || value > bounds[1] {
				return false
			}
		}
	}

	boolFields := []string{
		"allow_phrases",
		"moderate_submissions",
		"case_sensitive",
		"show_live_results",
	}
	for _, field := range boolFields {
		if v, present := config[field]; present {
			if _, isBool := v.(bool); !isBool {
				return false
			}
		}
	}

	if raw, present := config["banned_words"]; present {
		banned := activitykind.StringSlice(raw)
		if banned == nil {
			return false
		}
		if list, isList := raw.([]any); isList && len(list) != len(banned) {
			return false
		}
		for _, word := range banned {
			if strings.TrimSpace(word) == "" {
				return false
			}
		}
	}

	return true
}

// ProcessResponse normalizes each submitted word and rejects the whole
// submission when any word breaks a rule. The stored document keeps the
// normalized forms so aggregation is a plain frequency count.
func (w *WordCloud) ProcessResponse(participantID string, payload map[string]any) (map[string]any, error) {
	raw, ok := payload["words"]
	if !ok {
		return nil, apperrors.NewInvalidResponse("response must contain 'words' as a list")
	}
	words := activitykind.StringSlice(raw)
	if words == nil {
		return nil, apperrors.NewInvalidResponse("response must contain 'words' as a list")
	}
	if list, isList := raw.([]any); isList && len(list) != len(words) {
		return nil, apperrors.NewInvalidResponse("each word must be a string")
	}
	if len(words) == 0 {
		return nil, apperrors.NewInvalidResponse("at least one word must be submitted")
	}

	maxWords := w.IntOption("max_words_per_submission", 3)
	if len(words) > maxWords {
		return nil, apperrors.NewInvalidResponse(fmt.Sprintf("maximum %d words allowed per submission", maxWords))
	}

	normalized := make([]string, 0, len(words))
	for _, word := range words {
		cleaned, err := w.normalizeWord(word)
		if err != nil {
			return nil, err
		}
		normalized = append(normalized, cleaned)
	}

	status := StatusApproved
	if w.BoolOption("moderate_submissions", true) {
		status = StatusPending
	}

	return map[string]any{
		"type":           "word_submission",
		"participant_id": participantID,
		"words":          normalized,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"status":         status,
	}, nil
}

// normalizeWord trims, lowercases unless case sensitivity is on, collapses
// internal whitespace and strips punctuation, then applies length, phrase and
// banned-word rules.
func (w *WordCloud) normalizeWord(word string) (string, error) {
	cleaned := strings.TrimSpace(word)
	if !w.BoolOption("case_sensitive", false) {
		cleaned = strings.ToLower(cleaned)
	}
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = punctuationRe.ReplaceAllString(cleaned, "")

	if cleaned == "" {
		return "", apperrors.NewInvalidResponse(fmt.Sprintf("word '%s' becomes empty after cleaning", word))
	}

	// Length limits count characters, not bytes.
	maxLength := w.IntOption("max_word_length", 20)
	if utf8.RuneCountInString(cleaned) > maxLength {
		return "", apperrors.NewInvalidResponse(fmt.Sprintf("word '%s' exceeds maximum length of %d characters", word, maxLength))
	}

	if !w.BoolOption("allow_phrases", false) && strings.Contains(cleaned, " ") {
		return "", apperrors.NewInvalidResponse(fmt.Sprintf("phrases not allowed: '%s'", word))
	}

	// Banned-word matching ignores case regardless of case_sensitive.
	check := strings.ToLower(cleaned)
	for _, banned := range w.StringsOption("banned_words") {
		if check == strings.ToLower(banned) {
			return "", apperrors.NewInvalidResponse(fmt.Sprintf("word '%s' is not allowed", word))
		}
	}

	return cleaned, nil
}

// DefaultMetadata caps response volume and flags moderation since free-text
// submissions routinely need filtering.
func (w *WordCloud) DefaultMetadata() map[string]any {
	return map[string]any{
		"duration_seconds":         600,
		"max_responses":            100,
		"allow_multiple_responses": true,
		"show_live_results":        true,
		"activity_type":            KindID,
		"requires_moderation":      true,
	}
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
