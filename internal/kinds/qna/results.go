package qna

import (
	"sort"
	"time"
)

// question is the aggregated view of one submitted question with its votes
// applied.
type question struct {
	ID            string   `json:"id"`
	Text          string   `json:"text"`
	Anonymous     bool     `json:"anonymous"`
	ParticipantID string   `json:"participant_id"`
	Timestamp     string   `json:"timestamp"`
	Status        string   `json:"status"`
	VoteCount     int      `json:"vote_count"`
	Voters        []string `json:"voters"`
}

// CalculateResults replays the response history: questions first, then votes
// joined onto them by question_id. Unless multiple votes are allowed, votes
// are deduplicated per participant per question. Votes for unknown questions
// are dropped.
func (q *QnA) CalculateResults(responses []map[string]any) map[string]any {
	questions := make(map[string]*question)
	votes := make(map[string][]string)
	totalVotes := 0

	for _, response := range responses {
		switch response["type"] {
		case "question":
			id, _ := response["question_id"].(string)
			if id == "" {
				continue
			}
			text, _ := response["question_text"].(string)
			participantID, _ := response["participant_id"].(string)
			timestamp, _ := response["timestamp"].(string)
			anonymous, _ := response["anonymous"].(bool)
			status, _ := response["status"].(string)
			if status == "" {
				status = StatusApproved
			}
			questions[id] = &question{
				ID:            id,
				Text:          text,
				Anonymous:     anonymous,
				ParticipantID: participantID,
				Timestamp:     timestamp,
				Status:        status,
				Voters:        []string{},
			}
		case "vote":
			id, _ := response["question_id"].(string)
			participantID, _ := response["participant_id"].(string)
			if id == "" || participantID == "" {
				continue
			}
			votes[id] = append(votes[id], participantID)
			totalVotes++
		}
	}

	allowMultiple := q.BoolOption("allow_multiple_votes", false)
	for id, voters := range votes {
		target, known := questions[id]
		if !known {
			continue
		}
		if allowMultiple {
			target.VoteCount = len(voters)
			target.Voters = voters
			continue
		}
		seen := make(map[string]bool, len(voters))
		for _, voter := range voters {
			if !seen[voter] {
				seen[voter] = true
				target.Voters = append(target.Voters, voter)
			}
		}
		target.VoteCount = len(target.Voters)
	}

	sorted := make([]*question, 0, len(questions))
	for _, item := range questions {
		sorted = append(sorted, item)
	}
	// Stable sort with a timestamp tiebreak so equal vote counts keep
	// submission order.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].VoteCount != sorted[j].VoteCount {
			return sorted[i].VoteCount > sorted[j].VoteCount
		}
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	approved := make([]*question, 0, len(sorted))
	pending := make([]*question, 0)
	for _, item := range sorted {
		switch item.Status {
		case StatusApproved:
			approved = append(approved, item)
		case StatusPending:
			pending = append(pending, item)
		}
	}

	// With moderation on, pending questions stay private to moderators and
	// are excluded from the shared results document.
	publicPending := pending
	if q.BoolOption("moderate_questions", false) {
		publicPending = []*question{}
	}

	var mostPopular *question
	if len(approved) > 0 {
		mostPopular = approved[0]
	}

	return map[string]any{
		"type":                  "qna_results",
		"topic":                 q.StringOption("topic", ""),
		"total_questions":       len(questions),
		"total_votes":           totalVotes,
		"approved_questions":    approved,
		"pending_questions":     publicPending,
		"most_popular_question": mostPopular,
		"enable_voting":         q.BoolOption("enable_voting", true),
		"show_vote_counts":      q.BoolOption("show_vote_counts", true),
		"allow_anonymous":       q.BoolOption("allow_anonymous", true),
		"last_updated":          time.Now().UTC().Format(time.RFC3339),
	}
}
