// internal/app/router.go
package app

import (
	apikeyHandler "loyaltystudio-service/internal/handlers/apikey"
	authHandler "loyaltystudio-service/internal/handlers/auth"
	campaignHandler "loyaltystudio-service/internal/handlers/campaign"
	memberHandler "loyaltystudio-service/internal/handlers/member"
	merchantHandler "loyaltystudio-service/internal/handlers/merchant"
	programHandler "loyaltystudio-service/internal/handlers/program"
	rewardHandler "loyaltystudio-service/internal/handlers/reward"
	rulesHandler "loyaltystudio-service/internal/handlers/rules"
	shopifyHandler "loyaltystudio-service/internal/handlers/shopify"
	streamHandler "loyaltystudio-service/internal/handlers/stream"
	transactionHandler "loyaltystudio-service/internal/handlers/transaction"
	webhookHandler "loyaltystudio-service/internal/handlers/webhook"
	"loyaltystudio-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler        *authHandler.AuthHandler
	MerchantHandler    *merchantHandler.MerchantHandler
	ProgramHandler     *programHandler.ProgramHandler
	RulesHandler       *rulesHandler.RulesHandler
	RewardHandler      *rewardHandler.RewardHandler
	CampaignHandler    *campaignHandler.CampaignHandler
	MemberHandler      *memberHandler.MemberHandler
	APIKeyHandler      *apikeyHandler.APIKeyHandler
	WebhookHandler     *webhookHandler.WebhookHandler
	TransactionHandler *transactionHandler.TransactionHandler
	ShopifyHandler     *shopifyHandler.ShopifyHandler
	StreamHandler      *streamHandler.StreamHandler
	AuthMiddleware     *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Event Stream ====================
	stream := r.Group("/ws")
	stream.Use(h.AuthMiddleware.BearerAuth())
	{
		stream.GET("", h.StreamHandler.Connect)
	}

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/token", h.AuthHandler.IssueToken)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.BearerAuth())
	{
		authProtected.POST("/revoke", h.AuthHandler.RevokeToken)
	}

	// ==================== Merchants ====================
	// Setup and shop resolution run before the shop has credentials.
	merchantsPublic := api.Group("/merchants")
	{
		merchantsPublic.POST("/setup", h.MerchantHandler.Setup)
		merchantsPublic.GET("/by-shop", h.MerchantHandler.GetByShop)
	}

	merchants := api.Group("/merchants")
	merchants.Use(h.AuthMiddleware.Auth())
	{
		merchants.GET("/me", h.MerchantHandler.GetMe)
		merchants.PUT("/me", h.MerchantHandler.Update)
		merchants.GET("/me/settings", h.MerchantHandler.GetSettings)
		merchants.PUT("/me/settings", h.MerchantHandler.UpdateSettings)
	}

	// ==================== Shopify Webhook Intake ====================
	// Authenticated by HMAC over the raw body, not by API credentials.
	api.POST("/shopify/webhooks", h.ShopifyHandler.Receive)

	// ==================== Loyalty Programs ====================
	programs := api.Group("/programs")
	programs.Use(h.AuthMiddleware.Auth())
	{
		programs.POST("", h.ProgramHandler.Create)
		programs.GET("", h.ProgramHandler.List)
		programs.GET("/:id", h.ProgramHandler.Get)
		programs.PUT("/:id", h.ProgramHandler.Update)
		programs.DELETE("/:id", h.ProgramHandler.Delete)

		// Tiers
		programs.GET("/:id/tiers", h.ProgramHandler.ListTiers)
		programs.POST("/:id/tiers", h.ProgramHandler.CreateTier)
		programs.PUT("/:id/tiers/:tier_id", h.ProgramHandler.UpdateTier)
		programs.DELETE("/:id/tiers/:tier_id", h.ProgramHandler.DeleteTier)

		// Enhanced rules and the visual rule builder
		programs.GET("/:id/rules", h.RulesHandler.List)
		programs.PUT("/:id/rules", h.RulesHandler.ReplaceAll)
		programs.GET("/:id/rules/graph", h.RulesHandler.GetGraph)
		programs.PUT("/:id/rules/graph", h.RulesHandler.SaveGraph)
		programs.GET("/:id/rules/earning-config", h.RulesHandler.EarningConfig)

		// Reward catalog
		programs.POST("/:id/rewards", h.RewardHandler.Create)
		programs.GET("/:id/rewards", h.RewardHandler.List)
		programs.GET("/:id/rewards/:reward_id", h.RewardHandler.Get)
		programs.PUT("/:id/rewards/:reward_id", h.RewardHandler.Update)
		programs.DELETE("/:id/rewards/:reward_id", h.RewardHandler.Delete)

		// Campaigns
		programs.POST("/:id/campaigns", h.CampaignHandler.Create)
		programs.GET("/:id/campaigns", h.CampaignHandler.List)
		programs.GET("/:id/campaigns/live", h.CampaignHandler.Live)
		programs.GET("/:id/campaigns/stats", h.CampaignHandler.Stats)
		programs.GET("/:id/campaigns/:campaign_id", h.CampaignHandler.Get)
		programs.PUT("/:id/campaigns/:campaign_id", h.CampaignHandler.Update)
		programs.PUT("/:id/campaigns/:campaign_id/activate", h.CampaignHandler.Activate)
		programs.PUT("/:id/campaigns/:campaign_id/deactivate", h.CampaignHandler.Deactivate)
		programs.DELETE("/:id/campaigns/:campaign_id", h.CampaignHandler.Delete)

		// Members
		programs.POST("/:id/members", h.MemberHandler.Create)
		programs.GET("/:id/members", h.MemberHandler.List)
		programs.GET("/:id/members/stats", h.MemberHandler.Stats)
		programs.POST("/:id/members/import", h.MemberHandler.Import)
		programs.GET("/:id/members/:member_id", h.MemberHandler.Get)
		programs.PUT("/:id/members/:member_id", h.MemberHandler.Update)
		programs.DELETE("/:id/members/:member_id", h.MemberHandler.Delete)

		// Transactions
		programs.POST("/:id/transactions/earn", h.TransactionHandler.Earn)
		programs.POST("/:id/transactions/redeem", h.TransactionHandler.Redeem)
		programs.POST("/:id/transactions/adjust", h.TransactionHandler.Adjust)
		programs.GET("/:id/transactions", h.TransactionHandler.List)
		programs.GET("/:id/transactions/stats", h.TransactionHandler.Stats)
	}

	// ==================== API Keys ====================
	keys := api.Group("/api-keys")
	keys.Use(h.AuthMiddleware.Auth())
	{
		keys.POST("", h.APIKeyHandler.Create)
		keys.GET("", h.APIKeyHandler.List)
		keys.DELETE("/:key_id", h.APIKeyHandler.Revoke)
	}

	// ==================== Webhooks ====================
	webhooks := api.Group("/webhooks")
	webhooks.Use(h.AuthMiddleware.Auth())
	{
		webhooks.POST("", h.WebhookHandler.Create)
		webhooks.GET("", h.WebhookHandler.List)
		webhooks.GET("/:webhook_id", h.WebhookHandler.Get)
		webhooks.PUT("/:webhook_id", h.WebhookHandler.Update)
		webhooks.DELETE("/:webhook_id", h.WebhookHandler.Delete)
		webhooks.POST("/:webhook_id/reveal-secret", h.WebhookHandler.RevealSecret)
		webhooks.GET("/:webhook_id/logs", h.WebhookHandler.ListLogs)
		webhooks.POST("/:webhook_id/test", h.WebhookHandler.SendTest)
	}
}
