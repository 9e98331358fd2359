package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DetailResponse is the uniform failure body: {"detail": "<human message>"}.
// Every non-2xx response the service emits uses this shape.
type DetailResponse struct {
	Detail string `json:"detail"`
}

// ErrorResponse writes a failure body with the given status code
func ErrorResponse(c *gin.Context, status int, detail string) {
	c.JSON(status, DetailResponse{Detail: detail})
}

// AbortWithError writes a failure body and aborts the handler chain
func AbortWithError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, DetailResponse{Detail: detail})
}

// UnauthorizedResponse writes a 401 with the WWW-Authenticate challenge
// required for bearer-token flows.
func UnauthorizedResponse(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, DetailResponse{Detail: detail})
}

// SuccessResponse writes a 200 with the given payload
func SuccessResponse(c *gin.Context, payload interface{}) {
	c.JSON(http.StatusOK, payload)
}
