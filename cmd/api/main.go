package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/shavuson/recruit-api/api/swagger"
	"github.com/shavuson/recruit-api/internal/handler"
	"github.com/shavuson/recruit-api/internal/middleware"
	"github.com/shavuson/recruit-api/internal/models"
	"github.com/shavuson/recruit-api/internal/repository"
	"github.com/shavuson/recruit-api/internal/service"
	"github.com/shavuson/recruit-api/pkg/cache"
	"github.com/shavuson/recruit-api/pkg/config"
	"github.com/shavuson/recruit-api/pkg/database"
	"github.com/shavuson/recruit-api/pkg/insights"
	"github.com/shavuson/recruit-api/pkg/logger"
	corsmiddleware "github.com/shavuson/recruit-api/pkg/middleware/cors"
	reqidmiddleware "github.com/shavuson/recruit-api/pkg/middleware/requestid"
)

// @title Recruit API
// @version 1.0.0
// @description Multi-tenant candidate tracking for educational institutions
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The API degrades to uncached aggregates without Redis.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	candidateRepo := repository.NewCandidateRepository(db)
	interactionRepo := repository.NewInteractionRepository(db)
	institutionRepo := repository.NewInstitutionRepository(db)
	authRepo := repository.NewAuthRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, logr)

	authSvc := service.NewAuthService(institutionRepo, authRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		TrialDays:          cfg.Trial.Days,
		OpenRegistration:   cfg.Registration.Open,
	})
	candidateSvc := service.NewCandidateService(candidateRepo, cacheSvc, validate, logr)
	interactionSvc := service.NewInteractionService(interactionRepo, candidateRepo, validate, logr)
	institutionSvc := service.NewInstitutionService(institutionRepo, cacheSvc, validate, logr, cfg.Trial.AdminExtended)
	dashboardSvc := service.NewDashboardService(candidateRepo, institutionRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	reportSvc := service.NewReportService(candidateRepo, cacheSvc, cfg.Reports.CacheTTL, logr)
	if cfg.Insights.APIKey == "" {
		logr.Warn("GEMINI_API_KEY not set, insight endpoints disabled")
	}
	geminiClient := insights.NewGeminiClient(cfg.Insights.APIKey, cfg.Insights.Model, cfg.Insights.Timeout)
	insightsSvc := service.NewInsightsService(geminiClient, candidateRepo, interactionRepo, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	candidateHandler := handler.NewCandidateHandler(candidateSvc)
	interactionHandler := handler.NewInteractionHandler(interactionSvc)
	institutionHandler := handler.NewInstitutionHandler(institutionSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	insightsHandler := handler.NewInsightsHandler(insightsSvc)
	adminHandler := handler.NewAdminHandler(institutionSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin/login", authHandler.OperatorLogin)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.PUT("/password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	// Tenant surface. The subscription gate sits after JWT so an expired
	// trial gets 402 instead of 401.
	tenantRoutes := api.Group("")
	tenantRoutes.Use(middleware.JWT(authSvc))
	tenantRoutes.Use(middleware.RequireRoles(models.RoleInstitution))
	tenantRoutes.Use(middleware.SubscriptionGate(institutionRepo))
	{
		tenantRoutes.GET("/candidates", candidateHandler.List)
		tenantRoutes.POST("/candidates", candidateHandler.Create)
		tenantRoutes.GET("/candidates/:id", candidateHandler.Get)
		tenantRoutes.PUT("/candidates/:id", candidateHandler.Update)
		tenantRoutes.PATCH("/candidates/:id/stage", candidateHandler.SetStage)
		tenantRoutes.POST("/candidates/:id/enroll", candidateHandler.Enroll)
		tenantRoutes.DELETE("/candidates/:id", candidateHandler.Delete)

		tenantRoutes.GET("/candidates/:id/interactions", interactionHandler.List)
		tenantRoutes.POST("/candidates/:id/interactions", interactionHandler.Log)

		tenantRoutes.GET("/candidates/:id/analysis", insightsHandler.CandidateAnalysis)

		tenantRoutes.GET("/dashboard", dashboardHandler.Overview)
		tenantRoutes.GET("/dashboard/funnel", dashboardHandler.Funnel)
		tenantRoutes.GET("/dashboard/insights", insightsHandler.ManagementInsights)

		tenantRoutes.GET("/reports/conversion", reportHandler.Conversion)
		tenantRoutes.GET("/reports/candidates", reportHandler.ExportCandidates)
	}

	// Account endpoints stay reachable on an expired trial so the tenant can
	// see its status and add a payment method.
	account := api.Group("/institution")
	account.Use(middleware.JWT(authSvc))
	account.Use(middleware.RequireRoles(models.RoleInstitution))
	{
		account.GET("", institutionHandler.Get)
		account.PUT("", institutionHandler.Update)
		account.GET("/subscription", institutionHandler.Subscription)
		account.POST("/payment-method", institutionHandler.AddPaymentMethod)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.JWT(authSvc))
	admin.Use(middleware.RequireRoles(models.RoleSuperAdmin))
	{
		admin.GET("/institutions", adminHandler.ListInstitutions)
		admin.POST("/institutions/:id/extend-trial", adminHandler.ExtendTrial)
		admin.PUT("/institutions/:id/active", adminHandler.SetActive)
		admin.GET("/stats", adminHandler.PlatformStats)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
