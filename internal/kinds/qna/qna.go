// Package qna implements the question-and-answer activity kind. Participants
// submit questions and vote on questions submitted by others; moderation and
// anonymous submissions are configurable.
package qna

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	apperrors "interactive-sessions/internal/common/errors"
	"interactive-sessions/pkg/activitykind"
)

const KindID = "qna"

// Submission statuses. Pending questions are held back from public results
// until a moderator approves them.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
)

type QnA struct {
	activitykind.Base
}

// New is the registered constructor for the qna kind.
func New(activityID string, config map[string]any) activitykind.ActivityKind {
	return &QnA{activitykind.Base{ActivityID: activityID, Config: config}}
}

func (q *QnA) Schema() map[string]any {
	return Schema
}

func (q *QnA) ValidateConfig(config map[string]any) bool {
	topic, ok := config["topic"].(string)
	if !ok || strings.TrimSpace(topic) == "" || utf8.RuneCountInString(topic) > 200 {
		return false
	}

	boolFields := []string{
		"allow_anonymous",
		"enable_voting",
		"moderate_questions",
		"allow_multiple_votes",
		"show_vote_counts",
	}
	for _, field := range boolFields {
		if v, present := config[field]; present {
			if _, isBool := v.(bool); !isBool {
				return false
			}
		}
	}

	if v, present := config["max_question_length"]; present {
		maxLength, isInt := asInt(v)
		if !isInt || maxLength < 10 || maxLength > 1000 {
			return false
		}
	}

	return true
}

// ProcessResponse dispatches on the payload's "type" field. A question
// submission and a vote are both stored as responses; results aggregation
// joins them back together.
func (q *QnA) ProcessResponse(participantID string, payload map[string]any) (map[string]any, error) {
	switch payload["type"] {
	case "question":
		return q.processQuestion(participantID, payload)
	case "vote":
		return q.processVote(participantID, payload)
	default:
		return nil, apperrors.NewInvalidResponse("response type must be 'question' or 'vote'")
	}
}

func (q *QnA) processQuestion(participantID string, payload map[string]any) (map[string]any, error) {
	text, _ := payload["question_text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewInvalidResponse("question text cannot be empty")
	}

	// Length limits count characters, not bytes.
	maxLength := q.IntOption("max_question_length", 500)
	if utf8.RuneCountInString(text) > maxLength {
		return nil, apperrors.NewInvalidResponse(fmt.Sprintf("question exceeds maximum length of %d characters", maxLength))
	}

	allowAnonymous := q.BoolOption("allow_anonymous", true)
	anonymous := allowAnonymous
	if v, ok := payload["anonymous"].(bool); ok {
		anonymous = v
	}
	if anonymous && !allowAnonymous {
		return nil, apperrors.NewInvalidResponse("anonymous question submissions are not allowed")
	}

	status := StatusApproved
	if q.BoolOption("moderate_questions", false) {
		status = StatusPending
	}

	return map[string]any{
		"type":           "question",
		"question_id":    "q_" + uuid.NewString(),
		"participant_id": participantID,
		"question_text":  text,
		"anonymous":      anonymous,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"status":         status,
		"vote_count":     0,
		"voters":         []string{},
	}, nil
}

func (q *QnA) processVote(participantID string, payload map[string]any) (map[string]any, error) {
	questionID, _ := payload["question_id"].(string)
	if questionID == "" {
		return nil, apperrors.NewInvalidResponse("vote must specify question_id")
	}
	if !q.BoolOption("enable_voting", true) {
		return nil, apperrors.NewInvalidResponse("voting is not enabled for this session")
	}

	return map[string]any{
		"type":           "vote",
		"participant_id": participantID,
		"question_id":    questionID,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// DefaultMetadata gives Q&A sessions a longer default lifetime and permits
// repeated submissions since a participant asks and votes over time.
func (q *QnA) DefaultMetadata() map[string]any {
	return map[string]any{
		"duration_seconds":         900,
		"max_responses":            nil,
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
