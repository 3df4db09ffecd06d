package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobStatus represents the outcome of a task run
type JobStatus string

const (
	JobStatusPending JobStatus = "PENDING"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusSuccess JobStatus = "SUCCESS"
	JobStatusFailed  JobStatus = "FAILED"
)

// Task is a periodic maintenance job, such as purging expired session
// credentials
type Task struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

func (t Task) validate() error {
	if t.Name == "" || t.Interval <= 0 || t.Run == nil {
		return ErrInvalidTask
	}
	return nil
}

// Run records the latest execution of a task
type Run struct {
	Task        string
	Status      JobStatus
	Error       string
	Attempts    int
	StartedAt   time.Time
	CompletedAt time.Time
}

// SchedulerConfig holds scheduler configuration
type SchedulerConfig struct {
	Enabled       bool
	JobTimeout    time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	// RunOnStart executes every task once when the scheduler starts
	RunOnStart bool
}

// DefaultSchedulerConfig returns default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:       true,
		JobTimeout:    time.Minute,
		RetryAttempts: 2,
		RetryDelay:    5 * time.Second,
		RunOnStart:    true,
	}
}

// Scheduler runs registered tasks on their own interval, one goroutine per
// task. A task never overlaps with itself.
type Scheduler struct {
	config SchedulerConfig
	logger *zap.Logger

	tasks     []Task
	last      map[string]Run
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(config SchedulerConfig, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		config: config,
		logger: logger,
		last:   make(map[string]Run),
	}
}

// Add registers a task. Tasks must be added before Start.
func (s *Scheduler) Add(task Task) error {
	if err := task.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return ErrSchedulerRunning
	}
	for _, t := range s.tasks {
		if t.Name == task.Name {
			return ErrDuplicateTask
		}
	}
	s.tasks = append(s.tasks, task)
	s.last[task.Name] = Run{Task: task.Name, Status: JobStatusPending}
	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Maintenance scheduler disabled")
		return nil
	}
	s.isRunning = true
	tasks := append([]Task(nil), s.tasks...)
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, task := range tasks {
		s.wg.Add(1)
		go s.loop(ctx, task)
	}

	s.logger.Info("Maintenance scheduler started",
		zap.Int("tasks", len(tasks)),
		zap.Duration("job_timeout", s.config.JobTimeout),
	)
	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Maintenance scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Maintenance scheduler stop timed out")
		return ctx.Err()
	}
}

// LastRun returns the latest recorded run of the named task
func (s *Scheduler) LastRun(name string) (Run, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.last[name]
	return r, ok
}

func (s *Scheduler) loop(ctx context.Context, task Task) {
	defer s.wg.Done()

	if s.config.RunOnStart {
		s.execute(ctx, task)
	}

	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Task loop stopping", zap.String("task", task.Name))
			return
		case <-ticker.C:
			s.execute(ctx, task)
		}
	}
}

// execute runs one scheduled occurrence of task, retrying failed attempts
// up to RetryAttempts times
func (s *Scheduler) execute(ctx context.Context, task Task) {
	run := Run{Task: task.Name, Status: JobStatusRunning, StartedAt: time.Now()}
	s.record(run)

	var err error
	for attempt := 0; attempt <= s.config.RetryAttempts; attempt++ {
		if attempt > 0 && !sleep(ctx, s.config.RetryDelay) {
			break
		}
		run.Attempts = attempt + 1
		err = s.attempt(ctx, task)
		if err == nil {
			break
		}
		s.logger.Warn("Task attempt failed",
			zap.String("task", task.Name),
			zap.Int("attempt", run.Attempts),
			zap.Error(err),
		)
	}

	run.CompletedAt = time.Now()
	if err != nil {
		run.Status = JobStatusFailed
		run.Error = err.Error()
		s.logger.Error("Task failed", zap.String("task", task.Name), zap.Error(err))
	} else {
		run.Status = JobStatusSuccess
		s.logger.Debug("Task completed",
			zap.String("task", task.Name),
			zap.Duration("duration", run.CompletedAt.Sub(run.StartedAt)),
		)
	}
	s.record(run)
}

func (s *Scheduler) attempt(ctx context.Context, task Task) error {
	if s.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.JobTimeout)
		defer cancel()
	}
	return task.Run(ctx)
}

func (s *Scheduler) record(run Run) {
	s.mu.Lock()
	s.last[run.Task] = run
	s.mu.Unlock()
}

// sleep waits for d and reports false if ctx ended first
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
