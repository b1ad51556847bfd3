package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/host_ledger/internal/jobs"
	"github.com/jasonlvhit/gocron"
)

// defaultJobTimeout bounds a single run so a stuck query cannot pile runs up.
const defaultJobTimeout = 10 * time.Minute

// Scheduler runs jobs on gocron schedules. Runs of the same job never overlap.
type Scheduler struct {
	scheduler *gocron.Scheduler
	ctx       context.Context
	logger    *slog.Logger
	timeout   time.Duration
	stopped   chan bool

	mu      sync.Mutex
	running map[string]bool
}

// NewScheduler creates a scheduler whose job runs derive from ctx. Schedules use UTC.
func NewScheduler(ctx context.Context, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	gocron.ChangeLoc(time.UTC)
	return &Scheduler{
		scheduler: gocron.NewScheduler(),
		ctx:       ctx,
		logger:    logger,
		timeout:   defaultJobTimeout,
		running:   make(map[string]bool),
	}
}

// EveryMinutes schedules job every n minutes.
func (s *Scheduler) EveryMinutes(n uint64, job jobs.Job) error {
	if err := s.scheduler.Every(n).Minutes().Do(s.Run, job); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}
	return nil
}

// DailyAt schedules job once a day at the given HH:MM time.
func (s *Scheduler) DailyAt(at string, job jobs.Job) error {
	if err := s.scheduler.Every(1).Day().At(at).Do(s.Run, job); err != nil {
		return fmt.Errorf("failed to schedule %s at %s: %w", job.Name(), at, err)
	}
	return nil
}

// Start begins ticking in the background.
func (s *Scheduler) Start() {
	s.stopped = s.scheduler.Start()
	s.logger.Info("Cron scheduler started", slog.Int("jobs", s.scheduler.Len()))
}

// Stop halts the ticker. Runs already in flight finish on their own.
func (s *Scheduler) Stop() {
	if s.stopped != nil {
		s.stopped <- true
		s.stopped = nil
	}
	s.scheduler.Clear()
	s.logger.Info("Cron scheduler stopped")
}

// Run executes one run of job, skipping it when the previous run has not finished.
func (s *Scheduler) Run(job jobs.Job) {
	name := job.Name()
	if !s.begin(name) {
		s.logger.Warn("Skipping job run, previous run still in progress", slog.String("job", name))
		return
	}
	defer s.end(name)

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	logger := s.logger.With(slog.String("job", name))
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", slog.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := job.Process(ctx); err != nil {
		logger.Error("Job failed", slog.String("error", err.Error()), slog.Duration("duration", time.Since(start)))
		return
	}
	logger.Debug("Job finished", slog.Duration("duration", time.Since(start)))
}

func (s *Scheduler) begin(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running[name] {
		return false
	}
	s.running[name] = true
	return true
}

func (s *Scheduler) end(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.running, name)
}
