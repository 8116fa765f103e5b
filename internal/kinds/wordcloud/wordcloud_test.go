package wordcloud

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "interactive-sessions/internal/common/errors"
)

func validConfig() map[string]any {
	return map[string]any{
		"prompt":               "Describe the event in one word",
		"moderate_submissions": false,
	}
}

func TestWordCloudValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]any
		want   bool
	}{
		{
			name:   "valid minimal config",
			config: map[string]any{"prompt": "one word"},
			want:   true,
		},
		{
			name:   "missing prompt",
			config: map[string]any{},
			want:   false,
		},
		{
			name:   "prompt too long",
			config: map[string]any{"prompt": strings.Repeat("x", 301)},
			want:   false,
		},
		{
			name:   "max_word_length out of range",
			config: map[string]any{"prompt": "ok", "max_word_length": 2},
			want:   false,
		},
		{
			name:   "max_words_per_submission as json number",
			config: map[string]any{"prompt": "ok", "max_words_per_submission": float64(5)},
			want:   true,
		},
		{
			name:   "mistyped boolean",
			config: map[string]any{"prompt": "ok", "allow_phrases": "no"},
			want:   false,
		},
		{
			name:   "banned words not a list",
			config: map[string]any{"prompt": "ok", "banned_words": "spam"},
			want:   false,
		},
		{
			name:   "banned word blank",
			config: map[string]any{"prompt": "ok", "banned_words": []any{"spam", " "}},
			want:   false,
		},
		{
			name:   "banned words valid",
			config: map[string]any{"prompt": "ok", "banned_words": []any{"spam"}},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := New("activity-1", tt.config)
			assert.Equal(t, tt.want, kind.ValidateConfig(tt.config))
		})
	}
}

func TestWordCloudProcessResponseNormalization(t *testing.T) {
	kind := New("activity-1", validConfig())

	doc, err := kind.ProcessResponse("participant-1", map[string]any{
		"words": []any{"  Awesome!!  "},
	})
	require.NoError(t, err)

	assert.Equal(t, "word_submission", doc["type"])
	assert.Equal(t, []string{"awesome"}, doc["words"])
	assert.Equal(t, StatusApproved, doc["status"])
}

func TestWordCloudNormalizationKeepsNonASCIILetters(t *testing.T) {
	kind := New("activity-1", validConfig())

	doc, err := kind.ProcessResponse("participant-1", map[string]any{
		"words": []any{"Café!"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"café"}, doc["words"])
}

func TestWordCloudProcessResponseCaseSensitive(t *testing.T) {
	kind := New("activity-1", map[string]any{
		"prompt":               "ok",
		"case_sensitive":       true,
		"moderate_submissions": false,
	})

	doc, err := kind.ProcessResponse("participant-1", map[string]any{
		"words": []any{"Go"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Go"}, doc["words"])
}

func TestWordCloudProcessResponseRejections(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]any
		payload map[string]any
	}{
		{
			name:    "missing words",
			config:  validConfig(),
			payload: map[string]any{},
		},
		{
			name:    "empty list",
			config:  validConfig(),
			payload: map[string]any{"words": []any{}},
		},
		{
			name:    "non-string word",
			config:  validConfig(),
			payload: map[string]any{"words": []any{"ok", 7}},
		},
		{
			name:    "too many words",
			config:  validConfig(),
			payload: map[string]any{"words": []any{"a1", "b2", "c3", "d4"}},
		},
		{
			name:    "word empty after cleaning",
			config:  validConfig(),
			payload: map[string]any{"words": []any{"!!!"}},
		},
		{
			name:    "word too long",
			config:  map[string]any{"prompt": "ok", "max_word_length": 5},
			payload: map[string]any{"words": []any{"toolongword"}},
		},
		{
			name:    "phrase when not allowed",
			config:  validConfig(),
			payload: map[string]any{"words": []any{"two words"}},
		},
		{
			name:    "banned word",
			config:  map[string]any{"prompt": "ok", "banned_words": []any{"Spam"}},
			payload: map[string]any{"words": []any{"spam"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := New("activity-1", tt.config)
			_, err := kind.ProcessResponse("participant-1", tt.payload)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidResponse))
		})
	}
}

func TestWordCloudWordLengthCountsCharacters(t *testing.T) {
	kind := New("activity-1", map[string]any{
		"prompt":               "ok",
		"max_word_length":      5,
		"moderate_submissions": false,
	})

	// 5 two-byte characters stay within a 5-character limit.
	doc, err := kind.ProcessResponse("participant-1", map[string]any{
		"words": []any{strings.Repeat("é", 5)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{strings.Repeat("é", 5)}, doc["words"])

	_, err = kind.ProcessResponse("participant-1", map[string]any{
		"words": []any{strings.Repeat("é", 6)},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidResponse))
}

func TestWordCloudProcessResponsePhrasesAllowed(t *testing.T) {
	kind := New("activity-1", map[string]any{
		"prompt":               "ok",
		"allow_phrases":        true,
		"moderate_submissions": false,
	})

	doc, err := kind.ProcessResponse("participant-1", map[string]any{
		"words": []any{"great   event"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"great event"}, doc["words"])
}

func TestWordCloudProcessResponseModeration(t *testing.T) {
	kind := New("activity-1", map[string]any{"prompt": "ok"})

	doc, err := kind.ProcessResponse("participant-1", map[string]any{
		"words": []any{"held"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, doc["status"])
}

func submission(status string, words ...string) map[string]any {
	return map[string]any{
		"type":      "word_submission",
		"words":     words,
		"status":    status,
		"timestamp": "2026-01-01T10:00:00Z",
	}
}

func TestWordCloudCalculateResults(t *testing.T) {
	kind := New("activity-1", validConfig()).(*WordCloud)

	responses := []map[string]any{
		submission(StatusApproved, "go", "fast"),
		submission(StatusApproved, "go"),
		submission(StatusApproved, "go", "simple"),
		submission(StatusPending, "hidden"),
	}

	results := kind.CalculateResults(responses)

	assert.Equal(t, "word_cloud_results", results["type"])
	assert.Equal(t, 3, results["participant_count"])
	assert.Equal(t, 5, results["total_word_submissions"])
	assert.Equal(t, 3, results["unique_word_count"])

	frequencies := results["word_frequencies"].(map[string]int)
	assert.Equal(t, 3, frequencies["go"])
	assert.NotContains(t, frequencies, "hidden")

	cloud := results["word_cloud_data"].([]cloudEntry)
	require.Len(t, cloud, 3)
	assert.Equal(t, "go", cloud[0].Word)
	assert.Equal(t, 100, cloud[0].Size)
	assert.InDelta(t, 60.0, cloud[0].Percentage, 0.001)

	// Ties sort alphabetically after frequency.
	assert.Equal(t, "fast", cloud[1].Word)
	assert.Equal(t, "simple", cloud[2].Word)
	assert.Equal(t, 33, cloud[1].Size)
}

func TestWordCloudCalculateResultsSizeFloor(t *testing.T) {
	kind := New("activity-1", validConfig()).(*WordCloud)

	responses := []map[string]any{submission(StatusApproved, "solo")}
	for i := 0; i < 20; i++ {
		responses = append(responses, submission(StatusApproved, "crowd"))
	}

	results := kind.CalculateResults(responses)
	cloud := results["word_cloud_data"].([]cloudEntry)
	require.Len(t, cloud, 2)
	assert.Equal(t, "crowd", cloud[0].Word)
	assert.Equal(t, 100, cloud[0].Size)
	assert.Equal(t, "solo", cloud[1].Word)
	assert.Equal(t, 10, cloud[1].Size)
}

func TestWordCloudCalculateResultsEmpty(t *testing.T) {
	kind := New("activity-1", validConfig()).(*WordCloud)

	results := kind.CalculateResults(nil)
	assert.Equal(t, 0, results["participant_count"])
	assert.Equal(t, 0, results["unique_word_count"])
	assert.Empty(t, results["word_cloud_data"].([]cloudEntry))
}
