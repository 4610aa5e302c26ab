// internal/handlers/merchant/merchant_handler.go
package merchant

import (
	"net/http"

	"loyaltystudio-service/internal/domain/merchant"
	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type MerchantHandler struct {
	merchantService *service.MerchantService
}

func NewMerchantHandler(merchantService *service.MerchantService) *MerchantHandler {
	return &MerchantHandler{
		merchantService: merchantService,
	}
}

// Setup onboards a new shop: merchant, shop mapping, and settings in one
// transaction. Public endpoint guarded by Shopify request verification
// upstream.
func (h *MerchantHandler) Setup(c *gin.Context) {
	var req merchant.SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.merchantService.Setup(c.Request.Context(), &req)
	if err != nil {
		response.Failure(c, "failed to set up merchant", err)
		return
	}

	response.Success(c, http.StatusCreated, "merchant setup complete", result)
}

// GetMe returns the authenticated merchant.
func (h *MerchantHandler) GetMe(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	result, err := h.merchantService.Get(c.Request.Context(), merchantID)
	if err != nil {
		response.Failure(c, "failed to get merchant", err)
		return
	}

	response.Success(c, http.StatusOK, "merchant retrieved", result)
}

// GetByShop resolves a shop domain to its merchant, used by the embedded
// app on load to decide whether to show onboarding.
func (h *MerchantHandler) GetByShop(c *gin.Context) {
	shopDomain := c.Query("shop")
	if shopDomain == "" {
		response.Error(c, http.StatusBadRequest, "missing shop parameter", nil)
		return
	}

	result, err := h.merchantService.GetByShopDomain(c.Request.Context(), shopDomain)
	if err != nil {
		response.Failure(c, "shop is not set up", err)
		return
	}

	response.Success(c, http.StatusOK, "merchant retrieved", result)
}

// Update rewrites the authenticated merchant's profile.
func (h *MerchantHandler) Update(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req merchant.UpdateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.merchantService.Update(c.Request.Context(), merchantID, &req)
	if err != nil {
		response.Failure(c, "failed to update merchant", err)
		return
	}

	response.Success(c, http.StatusOK, "merchant updated", result)
}

// GetSettings returns the shop integration settings.
func (h *MerchantHandler) GetSettings(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	result, err := h.merchantService.GetSettings(c.Request.Context(), merchantID)
	if err != nil {
		response.Failure(c, "failed to get settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings retrieved", result)
}

// UpdateSettings replaces the shop integration settings.
func (h *MerchantHandler) UpdateSettings(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req merchant.SettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.merchantService.UpdateSettings(c.Request.Context(), merchantID, &req)
	if err != nil {
		response.Failure(c, "failed to update settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings updated", result)
}
