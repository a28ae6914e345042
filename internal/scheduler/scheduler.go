package scheduler

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockPanel/internal/logger"
)

// Timer runs a job on a fixed interval. A tick that arrives while the
// previous run is still in progress is skipped.
type Timer struct {
	Cron *cron.Cron

	mu       sync.Mutex
	job      cron.Job
	entry    cron.EntryID
	interval time.Duration
	logger   *zap.Logger

	// manual tracks RunNow calls, which cron's Stop does not wait for.
	manual sync.WaitGroup
}

// NewTimer wraps fn so that runs never overlap.
func NewTimer(fn func(), log *zap.Logger) *Timer {
	if log == nil {
		log = zap.NewNop()
	}
	cl := logger.NewCronLogger(log)
	wrapped := cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(fn))
	return &Timer{
		Cron:   cron.New(cron.WithLogger(cl)),
		job:    wrapped,
		logger: log,
	}
}

// Start schedules the job every interval and starts the cron loop.
func (t *Timer) Start(interval time.Duration) {
	t.Reset(interval)
	t.Cron.Start()
	t.logger.Info("timer started", zap.Duration("interval", interval))
}

// Reset replaces the schedule. The next tick is a full interval from now.
func (t *Timer) Reset(interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.entry != 0 {
		t.Cron.Remove(t.entry)
	}
	t.interval = interval
	t.entry = t.Cron.Schedule(cron.Every(interval), t.job)
}

// Interval returns the active schedule interval.
func (t *Timer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// RunNow executes the job immediately through the same skip-if-running
// guard as scheduled ticks.
func (t *Timer) RunNow() {
	t.manual.Add(1)
	defer t.manual.Done()
	t.job.Run()
}

// Stop stops the cron loop and waits for running jobs to finish, scheduled
// or started by RunNow.
func (t *Timer) Stop() {
	<-t.Cron.Stop().Done()
	t.manual.Wait()
	t.logger.Info("timer stopped")
}
