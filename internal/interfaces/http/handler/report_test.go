package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	reportapp "github.com/retail/backend/internal/application/report"
	"github.com/retail/backend/internal/domain/report"
	"github.com/retail/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixedActivityReader struct {
	revenue decimal.Decimal
	cogs    decimal.Decimal
	opex    decimal.Decimal
}

func (r fixedActivityReader) RevenueByStore(context.Context, int64, time.Time, time.Time) (decimal.Decimal, error) {
	return r.revenue, nil
}

func (r fixedActivityReader) CostOfGoodsByStore(context.Context, int64, time.Time, time.Time) (decimal.Decimal, error) {
	return r.cogs, nil
}

func (r fixedActivityReader) OperatingExpenseByStore(context.Context, int64, time.Time, time.Time) (decimal.Decimal, error) {
	return r.opex, nil
}

type mockProfitRepo struct {
	rows map[string]*report.StoreProfitability
}

func (m *mockProfitRepo) Upsert(_ context.Context, row *report.StoreProfitability) error {
	m.rows[row.ID.String()] = row
	return nil
}

func (m *mockProfitRepo) FindByPeriod(_ context.Context, year int, month time.Month) ([]report.StoreProfitability, error) {
	profitMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	var out []report.StoreProfitability
	for _, row := range m.rows {
		if row.ProfitMonth.Equal(profitMonth) {
			out = append(out, *row)
		}
	}
	return out, nil
}

func newReportHandlerFixture(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reader := fixedActivityReader{
		revenue: decimal.NewFromInt(5000),
		cogs:    decimal.NewFromInt(2000),
		opex:    decimal.NewFromInt(500),
	}
	repo := &mockProfitRepo{rows: make(map[string]*report.StoreProfitability)}
	service := reportapp.NewProfitabilityService(reader, repo, nil, zap.NewNop())
	h := NewReportHandler(service)

	router := gin.New()
	router.POST("/api/v1/reports/profitability/recompute", h.Recompute)
	router.GET("/api/v1/reports/profitability", h.List)
	return router
}

func TestReportHandler_Recompute(t *testing.T) {
	router := newReportHandlerFixture(t)

	t.Run("recomputes the period", func(t *testing.T) {
		body, _ := json.Marshal(gin.H{"year": 2026, "month": 7})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/profitability/recompute", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, float64(2), data["stores_written"])
		assert.Equal(t, float64(0), data["stores_failed"])
	})

	t.Run("rejects an out-of-range month", func(t *testing.T) {
		body, _ := json.Marshal(gin.H{"year": 2026, "month": 13})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/profitability/recompute", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects an ancient year", func(t *testing.T) {
		body, _ := json.Marshal(gin.H{"year": 1999, "month": 7})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/profitability/recompute", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReportHandler_List(t *testing.T) {
	router := newReportHandlerFixture(t)

	// Populate via recompute, then read back.
	body, _ := json.Marshal(gin.H{"year": 2026, "month": 7})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reports/profitability/recompute", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("returns stored rows", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/profitability?year=2026&month=7", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp dto.Response
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Data.([]any), 2)
	})

	t.Run("missing year is a 400", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/reports/profitability?month=7", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
