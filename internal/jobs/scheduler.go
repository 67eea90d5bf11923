package jobs

import (
	"context"
	"fmt"
	"time"

	"anoa.com/notevault/pkg/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler owns the cron runner and the registered jobs. Schedules use six
// fields with seconds first.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
	log     *logger.Logger
}

func NewScheduler(log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: 5 * time.Minute,
		log:     log,
	}
}

func (s *Scheduler) Register(job Job) error {
	spec := job.Schedule()
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.run(job) }); err != nil {
			return fmt.Errorf("failed to schedule job %s: %w", job.Name(), err)
		}
		s.log.Info("job scheduled", "job", job.Name(), "schedule", spec)
	} else {
		s.log.Info("job registered for on-demand runs", "job", job.Name())
	}

	s.jobs = append(s.jobs, job)
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error("job failed", "job", job.Name(), "error", err)
		return
	}
	s.log.Debug("job completed", "job", job.Name(), "took", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.jobs))
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out with jobs still running")
	}
	s.log.Info("scheduler stopped")
}

// RunByName runs a registered job immediately in the caller's goroutine.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			return job.Run(ctx)
		}
	}
	return fmt.Errorf("job %q not registered", name)
}

func (s *Scheduler) Registered() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
