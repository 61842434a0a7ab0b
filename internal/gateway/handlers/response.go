package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"zarmind-system/internal/domain"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

type PaginationMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

// respondError maps the domain error taxonomy onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, domain.ErrConstraint):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrOverpayment),
		errors.Is(err, domain.ErrNegativeStock):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("Internal server error"))
	}
}

// actorID returns the authenticated user id the auth middleware stored,
// or the fallback when the route runs unauthenticated.
func actorID(c *gin.Context, fallback string) string {
	if v, ok := c.Get("userId"); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	return fallback
}
