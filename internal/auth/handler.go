package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/bid-pricing/pkg/common"
	"github.com/richxcame/bid-pricing/pkg/logger"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for authentication
type Handler struct {
	service *Service
}

// NewHandler creates a new auth handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Token exchanges form-encoded credentials for a bearer token
func (h *Handler) Token(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		common.UnauthorizedResponse(c, ErrInvalidCredentials.Error())
		return
	}

	user, err := h.service.Authenticate(req.Username, req.Password)
	if err != nil {
		common.UnauthorizedResponse(c, ErrInvalidCredentials.Error())
		return
	}

	token, err := h.service.CreateAccessToken(user)
	if err != nil {
		logger.Error("Failed to issue access token", zap.Error(err))
		common.ErrorResponse(c, http.StatusInternalServerError, "Failed to issue access token")
		return
	}

	common.SuccessResponse(c, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// RegisterRoutes registers authentication routes
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.POST("/auth/token", h.Token)
}
