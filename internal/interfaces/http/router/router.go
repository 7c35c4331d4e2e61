package router

import (
	"github.com/gin-gonic/gin"
	"github.com/retail/backend/internal/infrastructure/config"
	"github.com/retail/backend/internal/infrastructure/logger"
	"github.com/retail/backend/internal/interfaces/http/handler"
	"github.com/retail/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Stock  *handler.StockHandler
	Alert  *handler.AlertHandler
	Report *handler.ReportHandler
	System *handler.SystemHandler
}

// New builds the gin engine with the full middleware chain and all routes
func New(cfg *config.Config, log *zap.Logger, h Handlers) (*gin.Engine, error) {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	api := engine.Group("/api/v1")
	{
		api.GET("/health", h.System.Health)

		stock := api.Group("/stock")
		{
			stock.POST("/admissions", h.Stock.Admit)
			stock.POST("/commits", h.Stock.Commit)
			stock.POST("/deliveries", h.Stock.ReceiveDelivery)
			stock.GET("", h.Stock.ListRows)
			stock.GET("/:store_id/:product_id", h.Stock.GetRow)
		}

		alerts := api.Group("/alerts")
		{
			alerts.GET("", h.Alert.List)
			alerts.POST("/reconcile", h.Alert.Reconcile)
		}

		reports := api.Group("/reports")
		{
			reports.POST("/profitability/recompute", h.Report.Recompute)
			reports.GET("/profitability", h.Report.List)
		}
	}

	return engine, nil
}
