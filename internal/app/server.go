// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"log"

	"loyaltystudio-service/internal/cache"
	"loyaltystudio-service/internal/config"
	"loyaltystudio-service/internal/db"
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
	"loyaltystudio-service/internal/pkg/session"
	"loyaltystudio-service/internal/pkg/token"
	"loyaltystudio-service/internal/repository/postgres"
	"loyaltystudio-service/internal/service"
	"loyaltystudio-service/internal/shopify"
	"loyaltystudio-service/internal/webhookq"
	"loyaltystudio-service/internal/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Token Manager -----
	tokenManager, err := token.LoadAndBuild(s.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to load token manager: %w", err)
	}

	// ----- Session Manager & Rate Limiter -----
	sessionManager := session.NewManager(redisClient)
	rateLimiter := session.NewRateLimiter(redisClient)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	merchantRepo := postgres.NewMerchantRepository(pool)
	programRepo := postgres.NewProgramRepository(pool)
	tierRepo := postgres.NewTierRepository(pool)
	rulesRepo := postgres.NewRulesRepository(pool)
	rewardRepo := postgres.NewRewardRepository(pool)
	campaignRepo := postgres.NewCampaignRepository(pool)
	memberRepo := postgres.NewMemberRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	apiKeyRepo := postgres.NewAPIKeyRepository(pool)
	webhookRepo := postgres.NewWebhookRepository(pool)

	// ----- Cache -----
	campaignCache := cache.NewCampaignCache(redisClient)

	// ----- WebSocket Hub & Webhook Dispatcher -----
	hub := ws.NewHub(logger)
	dispatcher := webhookq.NewDispatcher(webhookRepo, hub, logger)
	dispatcher.Start()

	// ----- Shopify Admin Client -----
	shopClient := shopify.NewClient(s.cfg.ShopifyAccessToken, logger)

	// ----- Services -----
	merchantService := service.NewMerchantService(
		dbWrapper,
		merchantRepo,
		sessionManager,
		shopClient,
		s.cfg.WebhookCallbackURL,
		logger,
	)
	programService := service.NewProgramService(dbWrapper, programRepo, tierRepo, rewardRepo, dispatcher, logger)
	rulesService := service.NewRulesService(rulesRepo, programRepo, logger)
	rewardService := service.NewRewardService(rewardRepo, programRepo)
	campaignService := service.NewCampaignService(campaignRepo, programRepo, campaignCache, dispatcher, logger)
	memberService := service.NewMemberService(memberRepo, tierRepo, programRepo, rateLimiter, dispatcher, logger)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, logger)
	authService := service.NewAuthService(apiKeyService, tokenManager, sessionManager, rateLimiter, logger)
	webhookService := service.NewWebhookService(webhookRepo, dispatcher, logger)
	transactionService := service.NewTransactionService(
		dbWrapper,
		transactionRepo,
		memberRepo,
		rewardRepo,
		tierRepo,
		programRepo,
		rulesService,
		campaignService,
		dispatcher,
		logger,
	)
	shopifyIntakeService := service.NewShopifyIntakeService(
		merchantService,
		programService,
		memberService,
		transactionService,
		logger,
	)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authService, logger)
	merchantHandlerInst := merchantHandler.NewMerchantHandler(merchantService)
	programHandlerInst := programHandler.NewProgramHandler(programService)
	rulesHandlerInst := rulesHandler.NewRulesHandler(rulesService)
	rewardHandlerInst := rewardHandler.NewRewardHandler(rewardService)
	campaignHandlerInst := campaignHandler.NewCampaignHandler(campaignService)
	memberHandlerInst := memberHandler.NewMemberHandler(memberService, logger)
	apiKeyHandlerInst := apikeyHandler.NewAPIKeyHandler(apiKeyService)
	webhookHandlerInst := webhookHandler.NewWebhookHandler(webhookService)
	transactionHandlerInst := transactionHandler.NewTransactionHandler(transactionService)
	shopifyHandlerInst := shopifyHandler.NewShopifyHandler(shopifyIntakeService, s.cfg.ShopifyAppSecret, logger)
	streamHandlerInst := streamHandler.NewStreamHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authService, apiKeyService)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:        authHandlerInst,
		MerchantHandler:    merchantHandlerInst,
		ProgramHandler:     programHandlerInst,
		RulesHandler:       rulesHandlerInst,
		RewardHandler:      rewardHandlerInst,
		CampaignHandler:    campaignHandlerInst,
		MemberHandler:      memberHandlerInst,
		APIKeyHandler:      apiKeyHandlerInst,
		WebhookHandler:     webhookHandlerInst,
		TransactionHandler: transactionHandlerInst,
		ShopifyHandler:     shopifyHandlerInst,
		StreamHandler:      streamHandlerInst,
		AuthMiddleware:     authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("server running on %s", s.cfg.HTTPAddr)
	defer func() {
		dispatcher.Stop()
		pool.Close()
		redisClient.Close()
	}()
	return s.engine.Run(s.cfg.HTTPAddr)
}
