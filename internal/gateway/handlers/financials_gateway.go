package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"zarmind-system/internal/domain"
	"zarmind-system/internal/services/receivables"
	"zarmind-system/internal/store"
)

type FinancialsHTTPHandler struct {
	receivables *receivables.Service
}

func NewFinancialsHTTPHandler(svc *receivables.Service) *FinancialsHTTPHandler {
	return &FinancialsHTTPHandler{receivables: svc}
}

// Request structs
type CreateReceivableRequest struct {
	CustomerID string          `json:"customer_id" binding:"required"`
	SaleID     *string         `json:"sale_id,omitempty"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	PaidAmount decimal.Decimal `json:"paid_amount"`
	DueDate    *time.Time      `json:"due_date,omitempty"`
	Notes      *string         `json:"notes,omitempty"`
}

type UpdateReceivableRequest struct {
	Amount  *decimal.Decimal `json:"amount,omitempty"`
	DueDate *time.Time       `json:"due_date,omitempty"`
	Notes   *string          `json:"notes,omitempty"`
}

type ReceivablePaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

type ListReceivablesQuery struct {
	Page       int    `form:"page,default=1"`
	PageSize   int    `form:"page_size,default=20"`
	CustomerID string `form:"customer_id,omitempty"`
	Status     string `form:"status,omitempty"`
	Overdue    bool   `form:"overdue,omitempty"`
}

func (h *FinancialsHTTPHandler) CreateReceivable(c *gin.Context) {
	var req CreateReceivableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ar, err := h.receivables.Create(c.Request.Context(), receivables.CreateInput{
		CustomerID: req.CustomerID,
		SaleID:     req.SaleID,
		Amount:     req.Amount,
		PaidAmount: req.PaidAmount,
		DueDate:    req.DueDate,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Receivable created successfully", ar))
}

func (h *FinancialsHTTPHandler) GetReceivable(c *gin.Context) {
	ar, err := h.receivables.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Receivable retrieved successfully", ar))
}

func (h *FinancialsHTTPHandler) ListReceivables(c *gin.Context) {
	var query ListReceivablesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	rows, total, err := h.receivables.List(c.Request.Context(), store.ReceivableFilter{
		CustomerID: query.CustomerID,
		Status:     domain.ReceivableStatus(query.Status),
		Overdue:    query.Overdue,
		Page:       query.Page,
		PageSize:   query.PageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Receivables retrieved successfully", rows, PaginationMeta{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}))
}

func (h *FinancialsHTTPHandler) GetSummary(c *gin.Context) {
	summary, err := h.receivables.Summarize(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Receivables summary retrieved successfully", summary))
}

func (h *FinancialsHTTPHandler) UpdateReceivable(c *gin.Context) {
	var req UpdateReceivableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ar, err := h.receivables.Update(c.Request.Context(), c.Param("id"), receivables.UpdateInput{
		Amount:  req.Amount,
		DueDate: req.DueDate,
		Notes:   req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Receivable updated successfully", ar))
}

func (h *FinancialsHTTPHandler) RecordPayment(c *gin.Context) {
	var req ReceivablePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ar, err := h.receivables.RecordPayment(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Payment recorded successfully", ar))
}

func (h *FinancialsHTTPHandler) DeleteReceivable(c *gin.Context) {
	if err := h.receivables.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Receivable deleted successfully", nil))
}
