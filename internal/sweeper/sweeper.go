// Package sweeper schedules the periodic expiry sweep that moves overdue
// active activities into the expired state.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"interactive-sessions/internal/common/logger"
)

// Expirer is the sweep operation; the orchestrator satisfies it.
type Expirer interface {
	ExpireDue(ctx context.Context) (int, error)
}

// Sweeper runs the expiry sweep on a fixed interval.
type Sweeper struct {
	expirer  Expirer
	interval time.Duration
	log      logger.Logger
	cron     *cron.Cron
}

func New(expirer Expirer, interval time.Duration, log logger.Logger) *Sweeper {
	return &Sweeper{
		expirer:  expirer,
		interval: interval,
		log:      log,
		cron:     cron.New(),
	}
}

// Start registers the sweep job and launches the scheduler. The sweep itself
// is bounded by the interval so overlapping runs cannot pile up.
func (s *Sweeper) Start() error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}
	s.cron.Start()
	s.log.Info("expiry sweeper started", map[string]interface{}{
		"interval": s.interval.String(),
	})
	return nil
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("expiry sweeper stopped", nil)
}

func (s *Sweeper) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	expired, err := s.expirer.ExpireDue(ctx)
	if err != nil {
		s.log.WithError(err).Error("expiry sweep failed", nil)
		return
	}
	if expired > 0 {
		s.log.Info("expiry sweep expired activities", map[string]interface{}{
			"count": expired,
		})
	}
}
