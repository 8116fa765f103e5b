package qna

// Schema is the JSON Schema for Q&A configuration documents.
var Schema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"topic": map[string]any{
			"type":        "string",
			"minLength":   1,
			"maxLength":   200,
			"description": "The topic or theme for the Q&A session",
		},
		"allow_anonymous": map[string]any{
			"type":        "boolean",
			"default":     true,
			"description": "Whether participants can submit questions anonymously",
		},
		"enable_voting": map[string]any{
			"type":        "boolean",
			"default":     true,
			"description": "Whether participants can vote on questions",
		},
		"moderate_questions": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Whether questions require moderation before being visible",
		},
		"max_question_length": map[string]any{
			"type":        "integer",
			"minimum":     10,
			"maximum":     1000,
			"default":     500,
			"description": "Maximum length for submitted questions",
		},
		"allow_multiple_votes": map[string]any{
			"type":        "boolean",
			"default":     false,
			"description": "Whether participants can vote on multiple questions",
		},
		"show_vote_counts": map[string]any{
			"type":        "boolean",
			"default":     true,
			"description": "Whether to display vote counts to participants",
		},
	},
	"required":             []any{"topic"},
	"additionalProperties": false,
}
