// internal/handlers/shopify/shopify_handler.go
package shopify

import (
	"encoding/json"
	"io"
	"net/http"

	"loyaltystudio-service/internal/pkg/response"
	"loyaltystudio-service/internal/service"
	"loyaltystudio-service/internal/shopify"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ShopifyHandler receives Shopify's outbound webhooks. Shopify retries on
// any non-2xx, so unknown topics and shops we don't know still return 200.
type ShopifyHandler struct {
	intakeService *service.ShopifyIntakeService
	appSecret     string
	logger        *zap.Logger
}

func NewShopifyHandler(intakeService *service.ShopifyIntakeService, appSecret string, logger *zap.Logger) *ShopifyHandler {
	return &ShopifyHandler{
		intakeService: intakeService,
		appSecret:     appSecret,
		logger:        logger,
	}
}

// Receive verifies the HMAC over the raw body and routes by topic.
func (h *ShopifyHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "unreadable body", err)
		return
	}

	hmacHeader := c.GetHeader("X-Shopify-Hmac-Sha256")
	if !shopify.VerifyWebhookHMAC(h.appSecret, body, hmacHeader) {
		response.Unauthorized(c, "invalid webhook signature")
		return
	}

	shopDomain := c.GetHeader("X-Shopify-Shop-Domain")
	topic := c.GetHeader("X-Shopify-Topic")

	switch topic {
	case "orders/create":
		var order shopify.OrderPayload
		if err := json.Unmarshal(body, &order); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid order payload", err)
			return
		}
		if err := h.intakeService.HandleOrderCreated(c.Request.Context(), shopDomain, &order); err != nil {
			h.logger.Error("order intake failed",
				zap.String("shop_domain", shopDomain),
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
			response.Error(c, http.StatusInternalServerError, "failed to process order", err)
			return
		}

	case "orders/updated":
		// Points are granted at creation; an edited order carries no new earn.

	case "orders/cancelled":
		var order shopify.OrderPayload
		if err := json.Unmarshal(body, &order); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid order payload", err)
			return
		}
		if err := h.intakeService.HandleOrderCancelled(c.Request.Context(), shopDomain, &order); err != nil {
			h.logger.Error("order cancellation handling failed",
				zap.String("shop_domain", shopDomain),
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
			response.Error(c, http.StatusInternalServerError, "failed to process cancellation", err)
			return
		}

	case "customers/create", "customers/update":
		var cust shopify.CustomerPayload
		if err := json.Unmarshal(body, &cust); err != nil {
			response.Error(c, http.StatusBadRequest, "invalid customer payload", err)
			return
		}
		if err := h.intakeService.HandleCustomerUpsert(c.Request.Context(), shopDomain, &cust); err != nil {
			h.logger.Error("customer upsert failed",
				zap.String("shop_domain", shopDomain),
				zap.Int64("customer_id", cust.ID),
				zap.Error(err),
			)
			response.Error(c, http.StatusInternalServerError, "failed to process customer", err)
			return
		}

	case "app/uninstalled":
		if err := h.intakeService.HandleAppUninstalled(c.Request.Context(), shopDomain); err != nil {
			h.logger.Error("uninstall handling failed",
				zap.String("shop_domain", shopDomain),
				zap.Error(err),
			)
			response.Error(c, http.StatusInternalServerError, "failed to process uninstall", err)
			return
		}

	default:
		h.logger.Debug("ignoring shopify topic",
			zap.String("topic", topic),
			zap.String("shop_domain", shopDomain),
		)
	}

	response.Success(c, http.StatusOK, "webhook received", nil)
}
