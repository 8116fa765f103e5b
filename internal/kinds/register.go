// Package kinds wires the built-in activity kinds into a registry at startup.
package kinds

import (
	"interactive-sessions/internal/common/logger"
	"interactive-sessions/internal/kinds/poll"
	"interactive-sessions/internal/kinds/qna"
	"interactive-sessions/internal/kinds/wordcloud"
	"interactive-sessions/pkg/registry"
)

// RegisterAll registers every built-in kind. It is called once during
// application boot; a registration failure is a programming error and aborts
// startup.
func RegisterAll(reg *registry.Registry, log logger.Logger) error {
	if err := reg.Register(
		poll.KindID,
		poll.New,
		poll.Schema,
		"Polling",
		"Multiple choice polls and surveys where participants vote on options",
		"1.0.0",
	); err != nil {
		return err
	}

	if err := reg.Register(
		qna.KindID,
		qna.New,
		qna.Schema,
		"Q&A Session",
		"Question and answer sessions where participants submit and vote on questions",
		"1.0.0",
	); err != nil {
		return err
	}

	if err := reg.Register(
		wordcloud.KindID,
		wordcloud.New,
		wordcloud.Schema,
		"Word Cloud",
		"Collect words and phrases from participants to create word cloud visualizations",
		"1.0.0",
	); err != nil {
		return err
	}

	log.Info("Activity kind registration complete", map[string]interface{}{
		"registered": len(reg.List()),
	})
	return nil
}
