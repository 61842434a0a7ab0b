package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zarmind-system/internal/domain"
	"zarmind-system/internal/services/inventory"
	"zarmind-system/internal/store"
)

type InventoryHTTPHandler struct {
	inventory *inventory.Service
}

func NewInventoryHTTPHandler(svc *inventory.Service) *InventoryHTTPHandler {
	return &InventoryHTTPHandler{inventory: svc}
}

// Request structs
type AdjustQuantityRequest struct {
	BranchID   string  `json:"branch_id" binding:"required"`
	Adjustment int     `json:"adjustment" binding:"required"`
	Notes      *string `json:"notes,omitempty"`
}

type ListMovementsQuery struct {
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
	ProductID string `form:"product_id,omitempty"`
	BranchID  string `form:"branch_id,omitempty"`
	Type      string `form:"type,omitempty"`
}

func (h *InventoryHTTPHandler) AdjustQuantity(c *gin.Context) {
	category, ok := domain.ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid inventory category"))
		return
	}

	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	product, err := h.inventory.AdjustQuantity(c.Request.Context(), inventory.AdjustInput{
		Category:   category,
		ProductID:  c.Param("id"),
		BranchID:   req.BranchID,
		Adjustment: req.Adjustment,
		Notes:      req.Notes,
		ActorID:    actorID(c, ""),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse("Quantity adjusted successfully", product))
}

func (h *InventoryHTTPHandler) LowStock(c *gin.Context) {
	rows, err := h.inventory.LowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Low stock items retrieved successfully", rows))
}

func (h *InventoryHTTPHandler) ListMovements(c *gin.Context) {
	var query ListMovementsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	movements, total, err := h.inventory.Movements(c.Request.Context(), store.MovementFilter{
		ProductID: query.ProductID,
		BranchID:  query.BranchID,
		Type:      domain.MovementType(query.Type),
		Page:      query.Page,
		PageSize:  query.PageSize,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Stock movements retrieved successfully", movements, PaginationMeta{
		Page:     query.Page,
		PageSize: query.PageSize,
		Total:    total,
	}))
}
