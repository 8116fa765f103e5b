package poll

import (
	"math"
	"time"

	"interactive-sessions/pkg/activitykind"
)

// CalculateResults tallies votes per option, derives percentages and the most
// popular option set. Malformed responses are skipped. Options with zero votes
// still appear in the counts so charts render the full option list.
func (p *Poll) CalculateResults(responses []map[string]any) map[string]any {
	options := p.StringsOption("options")

	voteCounts := make(map[string]int, len(options))
	for _, option := range options {
		voteCounts[option] = 0
	}

	total := 0
	for _, response := range responses {
		selected := activitykind.StringSlice(response["selected_options"])
		if selected == nil {
			continue
		}
		total++
		for _, option := range selected {
			if _, known := voteCounts[option]; known {
				voteCounts[option]++
			}
		}
	}

	percentages := make(map[string]float64, len(options))
	for option, count := range voteCounts {
		if total > 0 {
			percentages[option] = math.Round(float64(count)/float64(total)*1000) / 10
		} else {
			percentages[option] = 0
		}
	}

	maxVotes := 0
	for _, count := range voteCounts {
		if count > maxVotes {
			maxVotes = count
		}
	}
	// Ties all win; iterate in configured order for a stable result.
	mostPopular := []string{}
	if maxVotes > 0 {
		for _, option := range options {
			if voteCounts[option] == maxVotes {
				mostPopular = append(mostPopular, option)
			}
		}
	}

	return map[string]any{
		"type":            "poll_results",
		"question":        p.StringOption("question", ""),
		"total_responses": total,
		"vote_counts":     voteCounts,
		"percentages":     percentages,
		"most_popular":    mostPopular,
		"last_updated":    time.Now().UTC().Format(time.RFC3339),
	}
}
