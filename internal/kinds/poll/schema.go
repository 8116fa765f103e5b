package poll

// Schema is the JSON Schema for poll configuration.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"question": map[string]any{
			"type":        "string",
			"minLength":   1,
			"maxLength":   500,
			"description": "The poll question to display to participants",
		},
		"options": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
			"minItems":    2,
			"maxItems":    10,
			"description": "List of answer options for participants to choose from",
		},
		"allow_multiple_choice": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Whether participants can select multiple options",
		},
		"show_live_results": map[string]any{
			"type":        "boolean",
			"default":     true,
			"description": "Whether to show live results to viewers",
		},
		"anonymous_voting": map[string]any{
			"type":        "boolean",
			"default":     true,
			"description": "Whether voting is anonymous",
		},
	},
	"required":             []any{"question", "options"},
	"additionalProperties": false,
}
