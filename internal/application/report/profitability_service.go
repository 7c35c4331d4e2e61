package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/infrastructure/scheduler"
)

// DefaultReportedStores is the fixed set of stores the monthly rollup
// covers. Stores with no activity in the month still get a zeroed row.
var DefaultReportedStores = []int64{1, 2}

// ProfitabilityService recomputes the monthly per-store profit rows.
// Recompute is idempotent: the row key is derived from the period and
// store, so a re-run overwrites the previous result in place.
type ProfitabilityService struct {
	activityReader report.ActivityReader
	profitRepo     report.Repository
	stores         []int64
	logger         *zap.Logger
}

// NewProfitabilityService creates a new profitability service
func NewProfitabilityService(activityReader report.ActivityReader, profitRepo report.Repository, stores []int64, logger *zap.Logger) *ProfitabilityService {
	if len(stores) == 0 {
		stores = DefaultReportedStores
	}
	return &ProfitabilityService{
		activityReader: activityReader,
		profitRepo:     profitRepo,
		stores:         stores,
		logger:         logger,
	}
}

// RecomputeResult summarizes one recompute run
type RecomputeResult struct {
	Year          int                `json:"year"`
	Month         int                `json:"month"`
	StoresWritten int                `json:"stores_written"`
	StoresFailed  int                `json:"stores_failed"`
	Rows          []ProfitabilityRow `json:"rows"`
}

// ProfitabilityRow is the read view of one computed row
type ProfitabilityRow struct {
	ID           uuid.UUID       `json:"id"`
	StoreID      int64           `json:"store_id"`
	ProfitMonth  time.Time       `json:"profit_month"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetProfit    decimal.Decimal `json:"net_profit"`
}

// Recompute rebuilds the profitability rows for one calendar month.
// Each store is computed independently: a failing store is logged and
// skipped so one bad aggregation cannot sink the whole run.
func (s *ProfitabilityService) Recompute(ctx context.Context, year int, month time.Month) (*RecomputeResult, error) {
	if year < 2000 || month < time.January || month > time.December {
		return nil, scheduler.ErrInvalidPeriod
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	result := &RecomputeResult{Year: year, Month: int(month)}
	for _, storeID := range s.stores {
		row, err := s.recomputeStore(ctx, storeID, year, month, start, end)
		if err != nil {
			result.StoresFailed++
			s.logger.Error("Profitability recompute failed for store",
				zap.Int64("store_id", storeID),
				zap.Int("year", year),
				zap.Int("month", int(month)),
				zap.Error(err),
			)
			continue
		}
		result.StoresWritten++
		result.Rows = append(result.Rows, ProfitabilityRow{
			ID:           row.ID,
			StoreID:      row.StoreID,
			ProfitMonth:  row.ProfitMonth,
			TotalRevenue: row.TotalRevenue,
			TotalExpense: row.TotalExpense,
			NetProfit:    row.NetProfit,
		})
	}

	s.logger.Info("Profitability recompute finished",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Int("stores_written", result.StoresWritten),
		zap.Int("stores_failed", result.StoresFailed),
	)
	return result, nil
}

// recomputeStore aggregates one store's month and upserts its row
func (s *ProfitabilityService) recomputeStore(ctx context.Context, storeID int64, year int, month time.Month, start, end time.Time) (*report.StoreProfitability, error) {
	revenue, err := s.activityReader.RevenueByStore(ctx, storeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("revenue aggregation: %w", err)
	}

	cogs, err := s.activityReader.CostOfGoodsByStore(ctx, storeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("cost of goods aggregation: %w", err)
	}

	opex, err := s.activityReader.OperatingExpenseByStore(ctx, storeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("operating expense aggregation: %w", err)
	}

	row := report.NewStoreProfitability(year, month, storeID, revenue, cogs.Add(opex))
	if err := s.profitRepo.Upsert(ctx, row); err != nil {
		return nil, fmt.Errorf("upsert profitability row: %w", err)
	}
	return row, nil
}

// ListByPeriod returns the stored rows for one month
func (s *ProfitabilityService) ListByPeriod(ctx context.Context, year int, month time.Month) ([]ProfitabilityRow, error) {
	rows, err := s.profitRepo.FindByPeriod(ctx, year, month)
	if err != nil {
		return nil, err
	}
	out := make([]ProfitabilityRow, len(rows))
	for i, row := range rows {
		out[i] = ProfitabilityRow{
			ID:           row.ID,
			StoreID:      row.StoreID,
			ProfitMonth:  row.ProfitMonth,
			TotalRevenue: row.TotalRevenue,
			TotalExpense: row.TotalExpense,
			NetProfit:    row.NetProfit,
		}
	}
	return out, nil
}

// Execute implements scheduler.JobExecutor
func (s *ProfitabilityService) Execute(ctx context.Context, job *scheduler.Job) error {
	_, err := s.Recompute(ctx, job.Year, job.Month)
	return err
}

var _ scheduler.JobExecutor = (*ProfitabilityService)(nil)
