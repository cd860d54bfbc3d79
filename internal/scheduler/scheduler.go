// Package scheduler runs periodic background refreshes.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a refresh run; its error is logged only.
type Job func(ctx context.Context) error

// Scheduler runs one job on a standard cron expression. Overlapping runs
// are skipped.
type Scheduler struct {
	c    *cron.Cron
	expr string
	log  *zap.Logger

	mu      sync.Mutex
	running bool
	runs    int
}

// New parses expr and schedules job. The job receives ctx on every run.
func New(ctx context.Context, expr string, job Job, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Scheduler{c: cron.New(), expr: expr, log: log}
	_, err := s.c.AddFunc(expr, func() { s.run(ctx, job) })
	if err != nil {
		return nil, fmt.Errorf("scheduler: parse %q: %w", expr, err)
	}
	return s, nil
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Debug("refresh still running, skipping tick", zap.String("cron", s.expr))
		return
	}
	s.running = true
	s.mu.Unlock()

	start := time.Now()
	err := job(ctx)

	s.mu.Lock()
	s.running = false
	s.runs++
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("scheduled refresh failed", zap.String("cron", s.expr), zap.Error(err))
		return
	}
	s.log.Info("scheduled refresh done", zap.Duration("took", time.Since(start)))
}

// Start begins firing in the background.
func (s *Scheduler) Start() {
	s.c.Start()
	s.log.Info("refresh scheduled", zap.String("cron", s.expr), zap.Time("next", NextRun(s.expr, time.Now())))
}

// Stop halts the schedule and waits for a running job.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}

// Runs reports how many jobs have completed.
func (s *Scheduler) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// NextRun returns the next fire time after from, or the zero time when expr
// does not parse.
func NextRun(expr string, from time.Time) time.Time {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(from)
}
