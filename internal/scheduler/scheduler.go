package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/m-mizutani/goerr/v2"
	log "github.com/sirupsen/logrus"
)

// Job is one scheduled unit of work.
type Job func(ctx context.Context) error

// Scheduler periodically re-runs a job, such as a fetch of the reports API.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ctx       context.Context
	job       Job
	interval  time.Duration
	timeout   time.Duration

	mu      sync.Mutex
	stopped bool
	running sync.WaitGroup
}

// New creates a new Scheduler. Each run gets a context derived from ctx and
// bounded by timeout; a zero timeout leaves runs bounded only by ctx.
func New(ctx context.Context, interval, timeout time.Duration, job Job) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		ctx:       ctx,
		job:       job,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run starts immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return goerr.New("scheduler interval must be positive", goerr.V("interval", s.interval))
	}

	logger := log.WithField("prefix", "scheduler")

	_, err := s.scheduler.Every(s.interval).Do(func() {
		if !s.begin() {
			return
		}
		defer s.running.Done()

		logger.Info("running scheduled job")

		ctx := s.ctx
		if s.timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.timeout)
			defer cancel()
		}

		if err := s.job(ctx); err != nil {
			logger.WithError(err).Error("scheduled job failed")
			return
		}
		logger.Info("completed scheduled job")
	})
	if err != nil {
		return goerr.Wrap(err, "failed to schedule job", goerr.V("interval", s.interval))
	}

	s.scheduler.StartAsync()
	return nil
}

// begin registers a run unless the scheduler is stopping or its context is done.
func (s *Scheduler) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || s.ctx.Err() != nil {
		return false
	}
	s.running.Add(1)
	return true
}

// Stop stops the scheduler and waits for an in-flight run to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.running.Wait()
}
