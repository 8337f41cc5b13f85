// Package scheduler runs periodic goal-progress recomputation so
// deadline-driven numbers stay fresh without a user action.
package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"budgeteer/internal/services/budget"
)

// Scheduler wraps a cron runner around the recompute pass.
type Scheduler struct {
	cron *cron.Cron
	log  *logrus.Logger
}

// New schedules svc.Recompute on the given cron spec, for example
// "@hourly" or "*/30 * * * *".
func New(svc *budget.Service, log *logrus.Logger, spec string) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		changed, err := svc.Recompute()
		if err != nil {
			log.Warnf("Scheduled recompute failed: %v", err)
			return
		}
		if changed > 0 {
			log.Infof("Scheduled recompute: %d goals refreshed", changed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid recompute schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c, log: log}, nil
}

// Start begins running the schedule in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infof("Recompute scheduler started")
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
