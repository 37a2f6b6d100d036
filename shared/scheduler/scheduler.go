package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"video-summarizer/shared/monitoring"

	"github.com/robfig/cron/v3"
)

// Job is a periodic background task such as idle session eviction.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobFunc adapts a function to Job.
type JobFunc struct {
	JobName string
	Fn      func(ctx context.Context) error
}

func (f JobFunc) Name() string { return f.JobName }

func (f JobFunc) Run(ctx context.Context) error { return f.Fn(ctx) }

// Scheduler runs jobs on cron schedules
type Scheduler struct {
	monitor *monitoring.Monitor
	cron    *cron.Cron
	ctx     context.Context
}

func New(monitor *monitoring.Monitor) *Scheduler {
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}

	return &Scheduler{
		monitor: monitor,
		// Prevent overlapping runs
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
		ctx:  context.Background(),
	}
}

// Add registers job under a standard five-field spec or a descriptor such as "@every 5m".
func (s *Scheduler) Add(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.RunOnce(s.ctx, job); err != nil {
			log.Printf("Error running scheduled job %s: %v", job.Name(), err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", job.Name(), err)
	}

	log.Printf("Scheduled %s with schedule: %s", job.Name(), schedule)
	return nil
}

// Start blocks until ctx is cancelled, then waits for running jobs.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx
	s.cron.Start()
	log.Printf("Scheduler started with %d job(s)", len(s.cron.Entries()))

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	log.Printf("Scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) RunOnce(ctx context.Context, job Job) error {
	startTime := time.Now()
	name := job.Name()

	if err := job.Run(ctx); err != nil {
		s.monitor.RecordCriticalFailure(name, err, time.Since(startTime))
		return fmt.Errorf("%s run failed: %w", name, err)
	}

	s.monitor.RecordSuccess(name, time.Since(startTime))
	return nil
}
