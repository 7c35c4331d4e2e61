package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingExecutor struct {
	mu       sync.Mutex
	executed []*Job
	err      error
	done     chan struct{}
}

func newRecordingExecutor(expected int) *recordingExecutor {
	return &recordingExecutor{done: make(chan struct{}, expected)}
}

func (e *recordingExecutor) Execute(_ context.Context, job *Job) error {
	e.mu.Lock()
	e.executed = append(e.executed, job)
	e.mu.Unlock()
	e.done <- struct{}{}
	return e.err
}

func (e *recordingExecutor) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.executed)
}

func TestJobLifecycle(t *testing.T) {
	job := NewJob(2026, time.March, 3)
	assert.Equal(t, JobStatusPending, job.Status)

	job.Start()
	assert.Equal(t, JobStatusRunning, job.Status)
	require.NotNil(t, job.StartedAt)

	job.Complete()
	assert.Equal(t, JobStatusSuccess, job.Status)
	require.NotNil(t, job.CompletedAt)
	assert.False(t, job.ShouldRetry())

	job.Fail("aggregation query failed")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "aggregation query failed", job.Error)
	assert.True(t, job.ShouldRetry())

	job.ScheduleRetry(time.Minute)
	assert.Equal(t, JobStatusPending, job.Status)
	assert.Equal(t, 1, job.RetryCount)
	require.NotNil(t, job.NextRetryAt)
	assert.Empty(t, job.Error)
}

func TestSchedulerExecutesSubmittedJobs(t *testing.T) {
	executor := newRecordingExecutor(2)
	config := DefaultSchedulerConfig()
	config.MaxConcurrentJobs = 1
	s := NewScheduler(config, executor, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = s.Stop(stopCtx)
	}()

	require.NoError(t, s.SubmitJob(NewJob(2026, time.February, 0)))
	require.NoError(t, s.SubmitJob(NewJob(2026, time.March, 0)))

	for i := 0; i < 2; i++ {
		select {
		case <-executor.done:
		case <-time.After(2 * time.Second):
			t.Fatal("job was not executed in time")
		}
	}
	assert.Equal(t, 2, executor.count())
}

func TestSchedulerRejectsWhenNotRunning(t *testing.T) {
	s := NewScheduler(DefaultSchedulerConfig(), newRecordingExecutor(1), zap.NewNop())
	err := s.SubmitJob(NewJob(2026, time.March, 0))
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
}

func TestSchedulerRetriesFailedJobs(t *testing.T) {
	executor := newRecordingExecutor(4)
	executor.err = errors.New("transient failure")

	config := DefaultSchedulerConfig()
	config.MaxConcurrentJobs = 1
	config.RetryDelay = 0
	s := NewScheduler(config, executor, zap.NewNop())

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	defer func() {
		stopCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = s.Stop(stopCtx)
	}()

	require.NoError(t, s.SubmitJob(NewJob(2026, time.March, 1)))

	// Initial attempt plus one retry.
	for i := 0; i < 2; i++ {
		select {
		case <-executor.done:
		case <-time.After(2 * time.Second):
			t.Fatal("expected retry did not happen")
		}
	}
	assert.GreaterOrEqual(t, executor.count(), 2)
}

func TestMonthlyCronSchedulerConfigValidate(t *testing.T) {
	valid := DefaultMonthlyCronSchedulerConfig()
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.DayOfMonth = 31 // not every month has it
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = valid
	bad.Hour = 24
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)

	bad = valid
	bad.Minute = 60
	assert.ErrorIs(t, bad.Validate(), ErrInvalidConfig)
}

func TestMonthlyCronShouldRun(t *testing.T) {
	config := DefaultMonthlyCronSchedulerConfig()
	config.DayOfMonth = 1
	config.Hour = 3
	config.Minute = 0
	s := NewMonthlyCronScheduler(config, newRecordingExecutor(1), nil, zap.NewNop())

	scheduled := time.Date(2026, time.April, 1, 3, 0, 30, 0, time.UTC)
	assert.True(t, s.shouldRun(scheduled))

	assert.False(t, s.shouldRun(scheduled.Add(time.Hour)))
	assert.False(t, s.shouldRun(scheduled.AddDate(0, 0, 1)))
	assert.False(t, s.shouldRun(scheduled.Add(5*time.Minute)))

	// A second tick within the same minute must not fire twice.
	s.lastRunAt = &scheduled
	assert.False(t, s.shouldRun(scheduled.Add(10*time.Second)))
}
