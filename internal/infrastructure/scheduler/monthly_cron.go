package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// cronTickerInterval is the interval at which the cron scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// MonthlyCronSchedulerConfig holds configuration for the cron-based
// profitability scheduler. The recompute runs once a month, shortly
// after the previous month has closed.
type MonthlyCronSchedulerConfig struct {
	// Enabled indicates if the cron scheduler is enabled
	Enabled bool
	// DayOfMonth is the day (1-28) to run the monthly recompute
	DayOfMonth int
	// Hour is the hour (0-23) to run the monthly recompute
	Hour int
	// Minute is the minute (0-59) to run the monthly recompute
	Minute int
	// JobTimeout is the maximum time a single recompute job can run
	JobTimeout time.Duration
	// MaxConcurrentJobs is the maximum number of concurrent jobs
	MaxConcurrentJobs int
	// RetryAttempts is the number of retry attempts for failed jobs
	RetryAttempts int
	// RetryDelay is the delay between retries
	RetryDelay time.Duration
}

// DefaultMonthlyCronSchedulerConfig runs on the 1st at 3:00 AM
func DefaultMonthlyCronSchedulerConfig() MonthlyCronSchedulerConfig {
	return MonthlyCronSchedulerConfig{
		Enabled:           true,
		DayOfMonth:        1,
		Hour:              3,
		Minute:            0,
		JobTimeout:        10 * time.Minute,
		MaxConcurrentJobs: 2,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Minute,
	}
}

// Validate checks the schedule fields
func (c MonthlyCronSchedulerConfig) Validate() error {
	if c.DayOfMonth < 1 || c.DayOfMonth > 28 {
		return ErrInvalidConfig
	}
	if c.Hour < 0 || c.Hour > 23 {
		return ErrInvalidConfig
	}
	if c.Minute < 0 || c.Minute > 59 {
		return ErrInvalidConfig
	}
	return nil
}

// SchedulerJobRecord represents a record of a scheduled job execution
type SchedulerJobRecord struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	Year        int        `gorm:"column:year;not null"`
	Month       int        `gorm:"column:month;not null"`
	Status      string     `gorm:"column:last_run_status;size:20"`
	Error       string     `gorm:"column:last_error;type:text"`
	StartedAt   *time.Time `gorm:"column:last_run_at"`
	CompletedAt *time.Time `gorm:"column:completed_at"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

// TableName returns the table name for GORM
func (SchedulerJobRecord) TableName() string {
	return "profitability_scheduler_jobs"
}

// SchedulerJobRepository handles persistence of scheduler job records
type SchedulerJobRepository struct {
	db *gorm.DB
}

// NewSchedulerJobRepository creates a new SchedulerJobRepository
func NewSchedulerJobRepository(db *gorm.DB) *SchedulerJobRepository {
	return &SchedulerJobRepository{db: db}
}

// RecordJobStart records the start of a job execution
func (r *SchedulerJobRepository) RecordJobStart(ctx context.Context, year int, month time.Month) (uuid.UUID, error) {
	now := time.Now()
	record := &SchedulerJobRecord{
		ID:        uuid.New(),
		Year:      year,
		Month:     int(month),
		Status:    string(JobStatusRunning),
		StartedAt: &now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return uuid.Nil, err
	}
	return record.ID, nil
}

// RecordJobComplete records the completion of a job
func (r *SchedulerJobRepository) RecordJobComplete(ctx context.Context, jobID uuid.UUID, success bool, errMsg string) error {
	now := time.Now()
	status := string(JobStatusSuccess)
	if !success {
		status = string(JobStatusFailed)
	}
	return r.db.WithContext(ctx).
		Model(&SchedulerJobRecord{}).
		Where("id = ?", jobID).
		Updates(map[string]any{
			"last_run_status": status,
			"last_error":      errMsg,
			"completed_at":    now,
			"updated_at":      now,
		}).Error
}

// GetLastJobStatus gets the last job record for a reporting period
func (r *SchedulerJobRepository) GetLastJobStatus(ctx context.Context, year int, month time.Month) (*SchedulerJobRecord, error) {
	var record SchedulerJobRecord
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, int(month)).
		Order("last_run_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MonthlyCronScheduler triggers the previous month's profitability
// recompute on a fixed monthly schedule.
type MonthlyCronScheduler struct {
	config    MonthlyCronSchedulerConfig
	executor  JobExecutor
	jobRepo   *SchedulerJobRepository
	logger    *zap.Logger
	scheduler *Scheduler

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
}

// NewMonthlyCronScheduler creates a new cron-based profitability scheduler
func NewMonthlyCronScheduler(
	config MonthlyCronSchedulerConfig,
	executor JobExecutor,
	jobRepo *SchedulerJobRepository,
	logger *zap.Logger,
) *MonthlyCronScheduler {
	schedulerConfig := SchedulerConfig{
		Enabled:           config.Enabled,
		MaxConcurrentJobs: config.MaxConcurrentJobs,
		JobTimeout:        config.JobTimeout,
		RetryAttempts:     config.RetryAttempts,
		RetryDelay:        config.RetryDelay,
	}
	return &MonthlyCronScheduler{
		config:    config,
		executor:  executor,
		jobRepo:   jobRepo,
		logger:    logger,
		scheduler: NewScheduler(schedulerConfig, executor, logger),
	}
}

// Start starts the cron scheduler
func (s *MonthlyCronScheduler) Start(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	if err := s.scheduler.Start(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Monthly profitability scheduler started",
		zap.Int("day_of_month", s.config.DayOfMonth),
		zap.Int("hour", s.config.Hour),
		zap.Int("minute", s.config.Minute),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *MonthlyCronScheduler) Stop(ctx context.Context) error {
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
		if err := s.scheduler.Stop(ctx); err != nil {
			s.logger.Warn("Error stopping underlying scheduler", zap.Error(err))
		}
		s.logger.Info("Monthly profitability scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Monthly profitability scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop checks every minute whether the scheduled moment has come
func (s *MonthlyCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runMonthlyRecompute(ctx, now)
			}
		}
	}
}

// shouldRun reports whether the recompute is due at the given time
func (s *MonthlyCronScheduler) shouldRun(now time.Time) bool {
	if now.Day() != s.config.DayOfMonth || now.Hour() != s.config.Hour || now.Minute() != s.config.Minute {
		return false
	}
	// The one-minute ticker can land twice in the same minute.
	if s.lastRunAt != nil && now.Sub(*s.lastRunAt) < 2*cronTickerInterval {
		return false
	}
	return true
}

// runMonthlyRecompute submits the previous month's recompute job
func (s *MonthlyCronScheduler) runMonthlyRecompute(ctx context.Context, now time.Time) {
	s.lastRunAt = &now

	prev := now.AddDate(0, -1, 0)
	year, month := prev.Year(), prev.Month()

	recordID, err := s.jobRepo.RecordJobStart(ctx, year, month)
	if err != nil {
		s.logger.Error("Failed to record job start", zap.Error(err))
	}

	job := NewJob(year, month, s.config.RetryAttempts)
	if err := s.scheduler.SubmitJob(job); err != nil {
		s.logger.Error("Failed to submit monthly recompute job",
			zap.Int("year", year),
			zap.Int("month", int(month)),
			zap.Error(err),
		)
		if recordID != uuid.Nil {
			_ = s.jobRepo.RecordJobComplete(ctx, recordID, false, err.Error())
		}
		return
	}

	if recordID != uuid.Nil {
		_ = s.jobRepo.RecordJobComplete(ctx, recordID, true, "")
	}

	s.logger.Info("Monthly recompute submitted",
		zap.Int("year", year),
		zap.Int("month", int(month)),
	)
}

// TriggerManualRun recomputes a specific period immediately. Used by
// the HTTP trigger endpoint and for backfills.
func (s *MonthlyCronScheduler) TriggerManualRun(ctx context.Context, year int, month time.Month) error {
	if year < 2000 || month < time.January || month > time.December {
		return ErrInvalidPeriod
	}

	recordID, err := s.jobRepo.RecordJobStart(ctx, year, month)
	if err != nil {
		s.logger.Error("Failed to record manual run start", zap.Error(err))
	}

	job := NewJob(year, month, 0)
	execErr := s.executor.Execute(ctx, job)

	if recordID != uuid.Nil {
		msg := ""
		if execErr != nil {
			msg = execErr.Error()
		}
		_ = s.jobRepo.RecordJobComplete(ctx, recordID, execErr == nil, msg)
	}
	return execErr
}
