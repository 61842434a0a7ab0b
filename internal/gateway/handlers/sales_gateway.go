package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"zarmind-system/internal/domain"
	"zarmind-system/internal/services/sales"
	"zarmind-system/internal/store"
)

type SalesHTTPHandler struct {
	sales *sales.Service
}

func NewSalesHTTPHandler(svc *sales.Service) *SalesHTTPHandler {
	return &SalesHTTPHandler{sales: svc}
}

// Request structs
type SaleItemRequest struct {
	ProductID        string           `json:"product_id" binding:"required"`
	Quantity         int              `json:"quantity" binding:"required,min=1"`
	Weight           *decimal.Decimal `json:"weight,omitempty"`
	GoldPrice        decimal.Decimal  `json:"gold_price"`
	StonePrice       decimal.Decimal  `json:"stone_price"`
	CraftsmanshipFee decimal.Decimal  `json:"craftsmanship_fee"`
	Discount         decimal.Decimal  `json:"discount"`
}

type CreateSaleRequest struct {
	InvoiceNumber  *string           `json:"invoice_number,omitempty"`
	SaleDate       *time.Time        `json:"sale_date,omitempty"`
	Status         *string           `json:"status,omitempty"`
	CustomerID     *string           `json:"customer_id,omitempty"`
	UserID         string            `json:"user_id"`
	BranchID       string            `json:"branch_id" binding:"required"`
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	PaidAmount     decimal.Decimal   `json:"paid_amount"`
	PaymentMethod  string            `json:"payment_method" binding:"required"`
	Notes          *string           `json:"notes,omitempty"`
}

type UpdateSaleRequest struct {
	CustomerID     *string           `json:"customer_id,omitempty"`
	Items          []SaleItemRequest `json:"items,omitempty"`
	TaxAmount      *decimal.Decimal  `json:"tax_amount,omitempty"`
	DiscountAmount *decimal.Decimal  `json:"discount_amount,omitempty"`
	PaymentMethod  *string           `json:"payment_method,omitempty"`
	Notes          *string           `json:"notes,omitempty"`
}

type RecordPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod   string          `json:"payment_method" binding:"required"`
	PaymentDate     *time.Time      `json:"payment_date,omitempty"`
	ReferenceNumber *string         `json:"reference_number,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

type RefundSaleRequest struct {
	Amount *decimal.Decimal `json:"amount,omitempty"`
	Reason *string          `json:"reason,omitempty"`
}

type CompleteSaleRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type CancelSaleRequest struct {
	Reason *string `json:"reason,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type ListSalesQuery struct {
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"page_size,default=20"`
	Status        string `form:"status,omitempty"`
	CustomerID    string `form:"customer_id,omitempty"`
	UserID        string `form:"user_id,omitempty"`
	BranchID      string `form:"branch_id,omitempty"`
	PaymentMethod string `form:"payment_method,omitempty"`
	StartDate     string `form:"start_date,omitempty"`
	EndDate       string `form:"end_date,omitempty"`
	MinAmount     string `form:"min_amount,omitempty"`
	MaxAmount     string `form:"max_amount,omitempty"`
	SortBy        string `form:"sort_by,omitempty"`
	SortOrder     string `form:"sort_order,omitempty"`
}

func toItemInputs(items []SaleItemRequest) []sales.ItemInput {
	out := make([]sales.ItemInput, len(items))
	for i, item := range items {
		out[i] = sales.ItemInput{
			ProductID:        item.ProductID,
			Quantity:         item.Quantity,
			Weight:           item.Weight,
			GoldPrice:        item.GoldPrice,
			StonePrice:       item.StonePrice,
			CraftsmanshipFee: item.CraftsmanshipFee,
			Discount:         item.Discount,
		}
	}
	return out
}

func (q ListSalesQuery) toFilter() (store.SaleFilter, error) {
	f := store.SaleFilter{
		Status:        domain.SaleStatus(q.Status),
		CustomerID:    q.CustomerID,
		UserID:        q.UserID,
		BranchID:      q.BranchID,
		PaymentMethod: domain.PaymentMethod(q.PaymentMethod),
		SortBy:        q.SortBy,
		SortOrder:     q.SortOrder,
		Page:          q.Page,
		PageSize:      q.PageSize,
	}
	if q.Status != "" && !domain.SaleStatus(q.Status).Valid() {
		return f, domain.ErrValidation
	}
	if q.StartDate != "" {
		from, err := time.Parse("2006-01-02", q.StartDate)
		if err != nil {
			return f, domain.ErrValidation
		}
		f.From = &from
	}
	if q.EndDate != "" {
		to, err := time.Parse("2006-01-02", q.EndDate)
		if err != nil {
			return f, domain.ErrValidation
		}
		end := to.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	if q.MinAmount != "" {
		min, err := decimal.NewFromString(q.MinAmount)
		if err != nil {
			return f, domain.ErrValidation
		}
		f.MinAmount = &min
	}
	if q.MaxAmount != "" {
		max, err := decimal.NewFromString(q.MaxAmount)
		if err != nil {
			return f, domain.ErrValidation
		}
		f.MaxAmount = &max
	}
	switch q.SortBy {
	case "", "sale_date", "total_amount", "paid_amount", "created_at", "invoice_number":
	default:
		return f, domain.ErrValidation
	}
	switch strings.ToLower(q.SortOrder) {
	case "", "asc", "desc":
	default:
		return f, domain.ErrValidation
	}
	return f, nil
}

func (h *SalesHTTPHandler) CreateSale(c *gin.Context) {
	var req CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	var status *domain.SaleStatus
	if req.Status != nil {
		s := domain.SaleStatus(*req.Status)
		if !s.Valid() {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid sale status"))
			return
		}
		status = &s
	}

	sale, err := h.sales.Create(c.Request.Context(), sales.CreateInput{
		InvoiceNumber:  req.InvoiceNumber,
		SaleDate:       req.SaleDate,
		Status:         status,
		CustomerID:     req.CustomerID,
		UserID:         actorID(c, req.UserID),
		BranchID:       req.BranchID,
		Items:          toItemInputs(req.Items),
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		PaidAmount:     req.PaidAmount,
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		Notes:          req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse("Sale created successfully", sale))
}

func (h *SalesHTTPHandler) GetSale(c *gin.Context) {
	sale, err := h.sales.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale retrieved successfully", sale))
}

func (h *SalesHTTPHandler) GetSaleByInvoice(c *gin.Context) {
	sale, err := h.sales.GetByInvoice(c.Request.Context(), c.Param("invoiceNumber"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale retrieved successfully", sale))
}

func (h *SalesHTTPHandler) ListSales(c *gin.Context) {
	var query ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	filter, err := query.toFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	salesList, total, err := h.sales.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Sales retrieved successfully", salesList, PaginationMeta{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}))
}

func (h *SalesHTTPHandler) GetSummary(c *gin.Context) {
	var query ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	filter, err := query.toFilter()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	summary, err := h.sales.Summarize(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sales summary retrieved successfully", summary))
}

func (h *SalesHTTPHandler) UpdateSale(c *gin.Context) {
	var req UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	in := sales.UpdateInput{
		CustomerID:     req.CustomerID,
		TaxAmount:      req.TaxAmount,
		DiscountAmount: req.DiscountAmount,
		Notes:          req.Notes,
	}
	if req.Items != nil {
		in.Items = toItemInputs(req.Items)
	}
	if req.PaymentMethod != nil {
		method := domain.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &method
	}

	sale, err := h.sales.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale updated successfully", sale))
}

func (h *SalesHTTPHandler) RecordPayment(c *gin.Context) {
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	sale, err := h.sales.RecordPayment(c.Request.Context(), c.Param("id"), sales.PaymentInput{
		Amount:          req.Amount,
		PaymentMethod:   domain.PaymentMethod(req.PaymentMethod),
		PaymentDate:     req.PaymentDate,
		ReferenceNumber: req.ReferenceNumber,
		Notes:           req.Notes,
		ActorID:         actorID(c, ""),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Payment recorded successfully", sale))
}

func (h *SalesHTTPHandler) CompleteSale(c *gin.Context) {
	// The body is optional: notes, when present, are appended to the sale.
	var req CompleteSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	sale, err := h.sales.Complete(c.Request.Context(), c.Param("id"), sales.CompleteInput{
		Notes: req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale completed successfully", sale))
}

func (h *SalesHTTPHandler) CancelSale(c *gin.Context) {
	// The body is optional: a reason or notes, when present, go into the
	// sale's notes.
	var req CancelSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	sale, err := h.sales.Cancel(c.Request.Context(), c.Param("id"), sales.CancelInput{
		Reason: req.Reason,
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale cancelled successfully", sale))
}

func (h *SalesHTTPHandler) RefundSale(c *gin.Context) {
	// The body is optional: an empty refund request refunds the full
	// unrefunded remainder.
	var req RefundSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	sale, err := h.sales.Refund(c.Request.Context(), c.Param("id"), sales.RefundInput{
		Amount:  req.Amount,
		Reason:  req.Reason,
		ActorID: actorID(c, ""),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale refunded successfully", sale))
}

func (h *SalesHTTPHandler) DeleteSale(c *gin.Context) {
	if err := h.sales.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Sale deleted successfully", nil))
}
