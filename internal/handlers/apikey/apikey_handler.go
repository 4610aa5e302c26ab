// internal/handlers/apikey/apikey_handler.go
package apikey

import (
	"net/http"

	"loyaltystudio-service/internal/domain/apikey"
	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type APIKeyHandler struct {
	apiKeyService *service.APIKeyService
}

func NewAPIKeyHandler(apiKeyService *service.APIKeyService) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
	}
}

// Create mints a new API key. The raw key appears in this response only;
// afterwards the list shows the redacted prefix.
func (h *APIKeyHandler) Create(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req apikey.CreateAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.apiKeyService.Create(c.Request.Context(), merchantID, &req)
	if err != nil {
		response.Failure(c, "failed to create api key", err)
		return
	}

	response.Success(c, http.StatusCreated, "api key created", result)
}

// List returns the merchant's keys with redacted prefixes.
func (h *APIKeyHandler) List(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	result, err := h.apiKeyService.List(c.Request.Context(), merchantID)
	if err != nil {
		response.Failure(c, "failed to list api keys", err)
		return
	}

	response.Success(c, http.StatusOK, "api keys retrieved", result)
}

// Revoke permanently disables a key.
func (h *APIKeyHandler) Revoke(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	if err := h.apiKeyService.Revoke(c.Request.Context(), merchantID, c.Param("key_id")); err != nil {
		response.Failure(c, "failed to revoke api key", err)
		return
	}

	response.Success(c, http.StatusOK, "api key revoked", nil)
}
