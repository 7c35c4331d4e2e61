package handler

import (
	"github.com/gin-gonic/gin"
	alertapp "github.com/retail/backend/internal/application/alert"
)

// AlertHandler exposes the open restock alerts and the reconcile sweep
type AlertHandler struct {
	BaseHandler
	manager *alertapp.Manager
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(manager *alertapp.Manager) *AlertHandler {
	return &AlertHandler{manager: manager}
}

// List returns the open alerts.
// GET /api/v1/alerts
func (h *AlertHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	alerts, err := h.manager.ListOpen(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, alerts, int64(len(alerts)), filter.Page, filter.PageSize)
}

// ReconcileResponse reports how many alerts a sweep closed
type ReconcileResponse struct {
	Closed int `json:"closed"`
}

// Reconcile closes every open alert whose ledger row has recovered.
// POST /api/v1/alerts/reconcile
func (h *AlertHandler) Reconcile(c *gin.Context) {
	closed, err := h.manager.ReconcileSweep(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ReconcileResponse{Closed: closed})
}
