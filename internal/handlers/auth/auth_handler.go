// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"loyaltystudio-service/internal/domain/apikey"
	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// IssueToken exchanges an API key for a dashboard session token.
// The merchant comes from the X-Merchant-ID header, the key from the body.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	merchantID := c.GetHeader("X-Merchant-ID")
	if merchantID == "" {
		response.Error(c, http.StatusBadRequest, "missing merchant id header", nil)
		return
	}

	var req apikey.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.authService.IssueToken(
		c.Request.Context(),
		merchantID,
		req.APIKey,
		c.ClientIP(),
		c.Request.UserAgent(),
	)
	if err != nil {
		response.Failure(c, "failed to issue token", err)
		return
	}

	response.Success(c, http.StatusOK, "token issued", result)
}

// RevokeToken logs out the current session.
func (h *AuthHandler) RevokeToken(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	jti, ok := middleware.GetJTI(c)
	if !ok {
		response.Error(c, http.StatusBadRequest, "no session to revoke", nil)
		return
	}

	if err := h.authService.RevokeToken(c.Request.Context(), merchantID, jti); err != nil {
		response.Failure(c, "failed to revoke token", err)
		return
	}

	response.Success(c, http.StatusOK, "token revoked", nil)
}
