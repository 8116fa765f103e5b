package wordcloud

// Schema is the JSON Schema for word cloud configuration documents.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"prompt": map[string]any{
			"type":        "string",
			"minLength":   1,
			"maxLength":   300,
			"description": "The prompt or question to guide word submissions",
		},
		"max_word_length": map[string]any{
			"type":        "integer",
			"minimum":     3,
			"maximum":     50,
			"default":     20,
			"description": "Maximum length for individual words",
		},
		"max_words_per_submission": map[string]any{
			"type":        "integer",
			"minimum":     1,
			"maximum":     10,
			"default":     3,
			"description": "Maximum number of words per submission",
		},
		"allow_phrases": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Whether to allow multi-word phrases",
		},
		"moderate_submissions": map[string]any{
			"type":        "boolean",
			"default":     true,
			"description": "Whether submissions require moderation",
		},
		"case_sensitive": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Whether word matching is case sensitive",
		},
		"show_live_results": map[string]any{
			"type":        "boolean",
			"default":     true,
			"description": "Whether to show live word cloud updates",
		},
		"banned_words": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":      "string",
				"minLength": 1,
				"maxLength": 50,
			},
			"default":     []any{},
			"description": "List of banned/filtered words",
		},
	},
	"required":             []any{"prompt"},
	"additionalProperties": false,
}
