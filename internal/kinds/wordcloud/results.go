package wordcloud

import (
	"math"
	"sort"
	"time"

	"interactive-sessions/pkg/activitykind"
)

// cloudEntry is one word in the rendered cloud. Size is a relative weight in
// the 10..100 range derived from the word's share of the peak frequency.
type cloudEntry struct {
	Word       string  `json:"word"`
	Frequency  int     `json:"frequency"`
	Size       int     `json:"size"`
	Percentage float64 `json:"percentage"`
}

const cloudLimit = 50

// CalculateResults counts word frequencies across approved submissions only
// and derives the display-ready cloud. The cloud holds at most the 50 most
// frequent words, ordered by frequency then alphabetically so equal counts
// render deterministically.
func (w *WordCloud) CalculateResults(responses []map[string]any) map[string]any {
	frequencies := make(map[string]int)
	totalWords := 0
	participants := 0
	timestamps := []string{}

	for _, response := range responses {
		if response["type"] != "word_submission" {
			continue
		}
		status, _ := response["status"].(string)
		if status != "" && status != StatusApproved {
			continue
		}
		words := activitykind.StringSlice(response["words"])
		if words == nil {
			continue
		}
		participants++
		for _, word := range words {
			frequencies[word]++
			totalWords++
		}
		if ts, ok := response["timestamp"].(string); ok {
			timestamps = append(timestamps, ts)
		}
	}

	ordered := make([]string, 0, len(frequencies))
	for word := range frequencies {
		ordered = append(ordered, word)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if frequencies[ordered[i]] != frequencies[ordered[j]] {
			return frequencies[ordered[i]] > frequencies[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})
	if len(ordered) > cloudLimit {
		ordered = ordered[:cloudLimit]
	}

	maxFrequency := 1
	for _, count := range frequencies {
		if count > maxFrequency {
			maxFrequency = count
		}
	}

	cloud := make([]cloudEntry, 0, len(ordered))
	for _, word := range ordered {
		frequency := frequencies[word]
		size := int(float64(frequency) / float64(maxFrequency) * 100)
		if size < 10 {
			size = 10
		}
		if size > 100 {
			size = 100
		}
		percentage := 0.0
		if totalWords > 0 {
			percentage = math.Round(float64(frequency)/float64(totalWords)*1000) / 10
		}
		cloud = append(cloud, cloudEntry{
			Word:       word,
			Frequency:  frequency,
			Size:       size,
			Percentage: percentage,
		})
	}

	topTen := cloud
	if len(topTen) > 10 {
		topTen = topTen[:10]
	}

	return map[string]any{
		"type":                   "word_cloud_results",
		"prompt":                 w.StringOption("prompt", ""),
		"word_cloud_data":        cloud,
		"word_frequencies":       frequencies,
		"most_common_words":      topTen,
		"unique_word_count":      len(frequencies),
		"total_word_submissions": totalWords,
		"participant_count":      participants,
		"show_live_results":      w.BoolOption("show_live_results", true),
		"allow_phrases":          w.BoolOption("allow_phrases", false),
		"last_updated":           time.Now().UTC().Format(time.RFC3339),
		"submission_timestamps":  timestamps,
	}
}
