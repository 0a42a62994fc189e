package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/jobs/runtime"
	"github.com/yungbote/mentor-backend/internal/observability"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

// ErrBusy is returned by RunOnce when the job is already running.
var ErrBusy = errors.New("job already running")

const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusPanicked  = "panicked"
)

type entry struct {
	jobType string
	every   time.Duration
	running atomic.Bool
	dropped atomic.Int64
}

// Scheduler runs each registered job on its own ticker. Runs of the same job
// never overlap: a tick that finds the previous run still active is dropped.
type Scheduler struct {
	log      *logger.Logger
	registry *runtime.Registry

	mu      sync.Mutex
	entries map[string]*entry
	started bool
	wg      sync.WaitGroup
}

func New(baseLog *logger.Logger, registry *runtime.Registry) *Scheduler {
	return &Scheduler{
		log:      baseLog.With("component", "JobScheduler"),
		registry: registry,
		entries:  map[string]*entry{},
	}
}

// Every schedules a registered job at a fixed interval. Must be called before Run.
func (s *Scheduler) Every(jobType string, every time.Duration) error {
	if _, ok := s.registry.Get(jobType); !ok {
		return fmt.Errorf("no handler registered for job_type=%s", jobType)
	}
	if every <= 0 {
		return fmt.Errorf("job %s: interval must be positive", jobType)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}
	if _, exists := s.entries[jobType]; exists {
		return fmt.Errorf("job %s already scheduled", jobType)
	}
	s.entries[jobType] = &entry{jobType: jobType, every: every}
	return nil
}

// Run blocks until ctx is cancelled, then waits for in-flight runs to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.started = true
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
		s.log.Info("Job scheduled", "job", e.jobType, "every", e.every.String())
	}
	s.mu.Unlock()

	<-ctx.Done()
	s.wg.Wait()
	s.log.Info("Job scheduler stopped")
	return nil
}

func (s *Scheduler) loop(ctx context.Context, e *entry) {
	defer s.wg.Done()
	ticker := time.NewTicker(e.every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.running.CompareAndSwap(false, true) {
				e.dropped.Add(1)
				observability.Current().IncTickDropped(e.jobType)
				s.log.Warn("Job tick dropped, previous run still active", "job", e.jobType)
				continue
			}
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				defer e.running.Store(false)
				_, _ = s.execute(ctx, e.jobType, nil)
			}()
		}
	}
}

// RunOnce runs a job immediately on the caller's goroutine. tx may be nil.
// A job that is also scheduled keeps its non-overlap guarantee.
func (s *Scheduler) RunOnce(ctx context.Context, jobType string, tx *gorm.DB) (map[string]int, error) {
	s.mu.Lock()
	e := s.entries[jobType]
	s.mu.Unlock()
	if e != nil {
		if !e.running.CompareAndSwap(false, true) {
			return nil, ErrBusy
		}
		defer e.running.Store(false)
	}
	return s.execute(ctx, jobType, tx)
}

// Dropped reports how many ticks of jobType were skipped because of overlap.
func (s *Scheduler) Dropped(jobType string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e := s.entries[jobType]; e != nil {
		return e.dropped.Load()
	}
	return 0
}

func (s *Scheduler) execute(ctx context.Context, jobType string, tx *gorm.DB) (counters map[string]int, err error) {
	h, ok := s.registry.Get(jobType)
	if !ok {
		return nil, fmt.Errorf("no handler registered for job_type=%s", jobType)
	}
	ctx, span := observability.StartSpan(ctx, "job."+jobType, attribute.String("job.type", jobType))
	defer span.End()

	jc := runtime.NewContext(ctx, tx, jobType, s.log)
	status := StatusSucceeded
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Job handler panic", "job", jobType, "panic", r)
				status = StatusPanicked
				err = fmt.Errorf("job %s panic: %v", jobType, r)
			}
		}()
		err = h.Run(jc)
	}()
	if err != nil && status == StatusSucceeded {
		status = StatusFailed
	}

	observability.Current().IncJobRun(jobType, status)
	fields := append([]any{"job", jobType, "status", status, "duration_ms", time.Since(jc.StartedAt).Milliseconds()}, jc.Fields()...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Warn("Job run failed", append(fields, "error", err)...)
	} else {
		s.log.Debug("Job run finished", fields...)
	}
	return jc.Counters(), err
}
