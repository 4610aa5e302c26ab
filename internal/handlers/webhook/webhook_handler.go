// internal/handlers/webhook/webhook_handler.go
package webhook

import (
	"net/http"

	"loyaltystudio-service/internal/domain/webhook"
	"loyaltystudio-service/internal/middleware"
	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"

	"github.com/gin-gonic/gin"
)

type WebhookHandler struct {
	webhookService *service.WebhookService
}

func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Create registers a webhook endpoint. The signing secret appears in this
// response only; use the reveal endpoint to rotate it later.
func (h *WebhookHandler) Create(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req webhook.CreateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, secret, err := h.webhookService.Create(c.Request.Context(), merchantID, &req)
	if err != nil {
		response.Failure(c, "failed to create webhook", err)
		return
	}

	response.Success(c, http.StatusCreated, "webhook created", gin.H{
		"webhook": result,
		"secret":  secret,
	})
}

// List returns the merchant's webhook endpoints.
func (h *WebhookHandler) List(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	result, err := h.webhookService.List(c.Request.Context(), merchantID)
	if err != nil {
		response.Failure(c, "failed to list webhooks", err)
		return
	}

	response.Success(c, http.StatusOK, "webhooks retrieved", result)
}

// Get retrieves a webhook endpoint.
func (h *WebhookHandler) Get(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	result, err := h.webhookService.Get(c.Request.Context(), merchantID, c.Param("webhook_id"))
	if err != nil {
		response.Failure(c, "failed to get webhook", err)
		return
	}

	response.Success(c, http.StatusOK, "webhook retrieved", result)
}

// Update applies a partial update to a webhook endpoint.
func (h *WebhookHandler) Update(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var req webhook.UpdateWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	result, err := h.webhookService.Update(c.Request.Context(), merchantID, c.Param("webhook_id"), &req)
	if err != nil {
		response.Failure(c, "failed to update webhook", err)
		return
	}

	response.Success(c, http.StatusOK, "webhook updated", result)
}

// RevealSecret rotates the signing secret and returns the new value.
func (h *WebhookHandler) RevealSecret(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	result, err := h.webhookService.RevealSecret(c.Request.Context(), merchantID, c.Param("webhook_id"))
	if err != nil {
		response.Failure(c, "failed to reveal webhook secret", err)
		return
	}

	response.Success(c, http.StatusOK, "webhook secret rotated", result)
}

// Delete removes a webhook endpoint.
func (h *WebhookHandler) Delete(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	if err := h.webhookService.Delete(c.Request.Context(), merchantID, c.Param("webhook_id")); err != nil {
		response.Failure(c, "failed to delete webhook", err)
		return
	}

	response.Success(c, http.StatusOK, "webhook deleted", nil)
}

// ListLogs returns delivery attempts for a webhook endpoint.
func (h *WebhookHandler) ListLogs(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	var filters webhook.LogListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	logs, total, err := h.webhookService.ListLogs(c.Request.Context(), merchantID, c.Param("webhook_id"), &filters)
	if err != nil {
		response.Failure(c, "failed to list webhook logs", err)
		return
	}

	response.Success(c, http.StatusOK, "webhook logs retrieved", gin.H{
		"logs":  logs,
		"total": total,
	})
}

// SendTest queues a test event to the endpoint.
func (h *WebhookHandler) SendTest(c *gin.Context) {
	merchantID := middleware.MustGetMerchantID(c)

	if err := h.webhookService.SendTest(c.Request.Context(), merchantID, c.Param("webhook_id")); err != nil {
		response.Failure(c, "failed to send test event", err)
		return
	}

	response.Success(c, http.StatusOK, "test event queued", nil)
}
