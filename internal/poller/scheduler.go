package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TickFunc runs one tick. It receives the scheduler's context, which is
// cancelled when the scheduler stops.
type TickFunc func(ctx context.Context)

// Scheduler invokes a [TickFunc] immediately on start and then on a cron
// schedule.
//
// Ticks never overlap: if a tick is still running when the next one is due,
// the due tick is skipped (and reported through the skip hook) rather than
// queued. The immediate first tick is subject to the same rule.
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	schedule cron.Schedule
	spec     string
	tick     TickFunc
	onSkip   func()
	logger   *slog.Logger
	cron     *cron.Cron
	job      cron.Job
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup

	mu      sync.Mutex
	started bool
	stopped bool
}

// EverySpec returns the cron spec for a fixed interval, e.g. "@every 1m0s".
func EverySpec(interval time.Duration) string {
	return "@every " + interval.String()
}

// ParseSpec validates a schedule spec. Standard 5-field cron expressions and
// descriptors such as "@hourly" or "@every 30s" are accepted.
func ParseSpec(spec string) (cron.Schedule, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return schedule, nil
}

// NewScheduler creates a new [Scheduler].
//
// Parameters:
//   - spec: cron spec, see [ParseSpec] and [EverySpec]
//   - tick: function run on every tick
//   - onSkip: called when a due tick is skipped because one is in flight (may be nil)
//   - logger: logger for scheduler events
//
// Returns an error if the cron expression cannot be parsed. The scheduler must be
// started with [Scheduler.Start] and stopped with [Scheduler.Stop].
func NewScheduler(spec string, tick TickFunc, onSkip func(), logger *slog.Logger) (*Scheduler, error) {
	schedule, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	if onSkip == nil {
		onSkip = func() {}
	}
	return &Scheduler{
		schedule: schedule,
		spec:     spec,
		tick:     tick,
		onSkip:   onSkip,
		logger:   logger,
	}, nil
}

// Start runs the first tick immediately in the background and schedules
// the following ones.
//
// Start is non-blocking. If ctx is nil, context.Background() is used.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.stopped {
		return
	}
	s.started = true

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	tickCtx := s.ctx // capture under lock to avoid race

	s.job = cron.NewChain(skipIfStillRunning(s.onSkip, s.logger)).
		Then(cron.FuncJob(func() { s.tick(tickCtx) }))

	s.cron = cron.New(cron.WithLogger(cronLogger{s.logger}))
	s.cron.Schedule(s.schedule, s.job)
	s.cron.Start()

	s.logger.Debug("scheduler started", "schedule", s.spec)

	// first run is immediate
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.job.Run()
	}()
}

// Stop halts the scheduler and waits for an in-flight tick to return.
//
// The tick context is cancelled first so that pending fetches abort.
// Stop is idempotent and safe to call before Start.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	c := s.cron
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
	s.wg.Wait()
}

// skipIfStillRunning returns a job wrapper that drops a run while the
// previous one is still executing.
func skipIfStillRunning(onSkip func(), logger *slog.Logger) cron.JobWrapper {
	return func(j cron.Job) cron.Job {
		ch := make(chan struct{}, 1)
		ch <- struct{}{}
		return cron.FuncJob(func() {
			select {
			case v := <-ch:
				defer func() { ch <- v }()
				j.Run()
			default:
				logger.Warn("tick skipped, previous tick still running")
				onSkip()
			}
		})
	}
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
