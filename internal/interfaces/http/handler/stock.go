package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/retail/backend/internal/application/inventory"
	"github.com/retail/backend/internal/domain/shared"
)

// StockHandler exposes the stock engine: sale-line admission, sale-line
// commit, delivery intake, and ledger reads.
type StockHandler struct {
	BaseHandler
	stockService *inventoryapp.StockService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *inventoryapp.StockService) *StockHandler {
	return &StockHandler{stockService: stockService}
}

// AdmitRequest asks whether a sale line could be fulfilled right now
type AdmitRequest struct {
	SaleID    string `json:"sale_id" binding:"required,uuid"`
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// Admit checks a proposed sale line against the ledger without
// mutating anything.
// POST /api/v1/stock/admissions
func (h *StockHandler) Admit(c *gin.Context) {
	var req AdmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	admission, err := h.stockService.Admit(c.Request.Context(), inventoryapp.SaleLineProposal{
		SaleID:    uuid.MustParse(req.SaleID),
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, admission)
}

// CommitRequest finalizes a sale line against the ledger
type CommitRequest struct {
	SaleID    string `json:"sale_id" binding:"required,uuid"`
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
}

// Commit re-validates and decrements the ledger row under its lock.
// POST /api/v1/stock/commits
func (h *StockHandler) Commit(c *gin.Context) {
	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.stockService.CommitSaleLine(c.Request.Context(), inventoryapp.SaleLineCommit{
		SaleID:    uuid.MustParse(req.SaleID),
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeliveryRequest merges a vendor shipment into the ledger
type DeliveryRequest struct {
	StoreID      int64  `json:"store_id" binding:"required,gt=0"`
	ProductID    string `json:"product_id" binding:"required,uuid"`
	VendorID     string `json:"vendor_id" binding:"required,uuid"`
	Quantity     int64  `json:"quantity" binding:"required,gt=0"`
	DeliveryDate string `json:"delivery_date" binding:"omitempty"`
}

// ReceiveDelivery records a delivery and accumulates it into the
// ledger, creating the row on first delivery.
// POST /api/v1/stock/deliveries
func (h *StockHandler) ReceiveDelivery(c *gin.Context) {
	var req DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	deliveryDate := time.Now()
	if req.DeliveryDate != "" {
		parsed, err := parseDateTime(req.DeliveryDate)
		if err != nil {
			h.BadRequest(c, "invalid delivery_date: "+err.Error())
			return
		}
		deliveryDate = parsed
	}

	result, err := h.stockService.ReceiveDelivery(c.Request.Context(), inventoryapp.DeliveryReceipt{
		StoreID:      req.StoreID,
		ProductID:    uuid.MustParse(req.ProductID),
		VendorID:     uuid.MustParse(req.VendorID),
		Quantity:     req.Quantity,
		DeliveryDate: deliveryDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if result.Created {
		h.Created(c, result)
		return
	}
	h.Success(c, result)
}

// GetRow returns the ledger row for one store/product pair.
// GET /api/v1/stock/:store_id/:product_id
func (h *StockHandler) GetRow(c *gin.Context) {
	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		h.BadRequest(c, "invalid store_id")
		return
	}
	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		h.BadRequest(c, "invalid product_id")
		return
	}

	row, err := h.stockService.GetRow(c.Request.Context(), storeID, productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// ListRows lists ledger rows with pagination.
// GET /api/v1/stock
func (h *StockHandler) ListRows(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rows, err := h.stockService.ListRows(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, int64(len(rows)), filter.Page, filter.PageSize)
}

// parseDateTime parses a datetime string in the formats clients send
func parseDateTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// bindListFilter binds pagination query params into a shared.Filter
func bindListFilter(c *gin.Context) (shared.Filter, error) {
	filter := shared.DefaultFilter()
	if page := c.Query("page"); page != "" {
		n, err := strconv.Atoi(page)
		if err != nil || n < 1 {
			return filter, errInvalidPage
		}
		filter.Page = n
	}
	if size := c.Query("page_size"); size != "" {
		n, err := strconv.Atoi(size)
		if err != nil || n < 1 || n > 100 {
			return filter, errInvalidPageSize
		}
		filter.PageSize = n
	}
	return filter, nil
}

var (
	errInvalidPage     = shared.NewDomainError("INVALID_INPUT", "page must be a positive integer")
	errInvalidPageSize = shared.NewDomainError("INVALID_INPUT", "page_size must be between 1 and 100")
)
