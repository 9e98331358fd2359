package pricing

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/richxcame/bid-pricing/pkg/common"
	"github.com/richxcame/bid-pricing/pkg/logger"
	"github.com/richxcame/bid-pricing/pkg/validation"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for price recommendations
type Handler struct {
	service *Service
}

// NewHandler creates a new pricing handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Recommend validates the order payload, runs the engine, and writes the
// recommendation. Engine failures surface as 502 with the upstream detail.
func (h *Handler) Recommend(c *gin.Context) {
	var order OrderRequest
	if err := c.ShouldBindJSON(&order); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			common.ErrorResponse(c, http.StatusUnprocessableEntity, validation.NewValidationError(fieldErrs).Error())
			return
		}
		common.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	response, err := h.service.Recommend(&order)
	if err != nil {
		logger.Error("Price recommendation failed", zap.Error(err))
		common.ErrorResponse(c, http.StatusBadGateway, fmt.Sprintf("Failed to retrieve recommendation: %v", err))
		return
	}

	common.SuccessResponse(c, response)
}

// RegisterRoutes registers pricing routes on an authenticated group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/orders/price-recommendation", h.Recommend)
}
