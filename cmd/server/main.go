package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	portalapp "github.com/partnerportal/backend/internal/application/portal"
	reconcileapp "github.com/partnerportal/backend/internal/application/reconcile"
	"github.com/partnerportal/backend/internal/infrastructure/auth"
	"github.com/partnerportal/backend/internal/infrastructure/commerce"
	"github.com/partnerportal/backend/internal/infrastructure/config"
	"github.com/partnerportal/backend/internal/infrastructure/event"
	"github.com/partnerportal/backend/internal/infrastructure/logger"
	"github.com/partnerportal/backend/internal/infrastructure/persistence"
	"github.com/partnerportal/backend/internal/interfaces/http/handler"
	"github.com/partnerportal/backend/internal/interfaces/http/middleware"
	"github.com/partnerportal/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting partner portal backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	attributeRepo := persistence.NewGormAttributeRepository(db.DB)

	// Commerce platform gateway
	commerceConfig := commerce.NewConfig(cfg.Commerce.APIBaseURL, cfg.Commerce.AccessToken, cfg.Commerce.WebhookSecret)
	commerceConfig.TimeoutSeconds = cfg.Commerce.TimeoutSeconds
	commerceConfig.PageSize = cfg.Commerce.PageSize
	gateway, err := commerce.NewClient(commerceConfig)
	if err != nil {
		log.Fatal("Failed to initialize commerce client", zap.Error(err))
	}

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	accountService := portalapp.NewAccountService(accountRepo, gateway, eventBus, log)
	reconcileService := reconcileapp.NewService(reconcileapp.ServiceConfig{
		Accounts:   accountRepo,
		Attributes: attributeRepo,
		Gateway:    gateway,
		EventBus:   eventBus,
		Logger:     log,
	})
	webhookService := reconcileapp.NewWebhookService(commerceConfig, reconcileService, log)
	bulkService := reconcileapp.NewBulkService(reconcileService, accountRepo, gateway, cfg.Reconcile.BulkDelay, log)

	// HTTP handlers
	accountHandler := handler.NewAccountHandler(accountService, reconcileService)
	reconcileHandler := handler.NewReconcileHandler(reconcileService, bulkService, attributeRepo)
	webhookHandler := handler.NewWebhookHandler(webhookService, cfg.Reconcile.WebhookMaxBodySize)
	systemHandler := handler.NewSystemHandler(db)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health endpoint outside API versioning
	engine.GET("/health", systemHandler.Health)

	// Webhooks are authenticated by HMAC signature, not JWT, and the
	// platform delivers to a fixed unversioned path.
	engine.POST("/webhooks/commerce", webhookHandler.Receive)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddleware(jwtService, log))

	accountRoutes := router.NewDomainGroup("accounts", "/accounts")
	accountRoutes.POST("", accountHandler.Create)
	accountRoutes.GET("", accountHandler.List)
	accountRoutes.GET("/:id", accountHandler.Get)
	accountRoutes.GET("/:id/detail", accountHandler.GetDetail)
	accountRoutes.PUT("/:id/customer-number", accountHandler.ChangeCustomerNumber)
	accountRoutes.POST("/:id/activate", middleware.RequireRole("admin"), accountHandler.Activate)
	accountRoutes.POST("/:id/block", middleware.RequireRole("admin"), accountHandler.Block)
	accountRoutes.POST("/:id/external", accountHandler.EnsureExternal)

	reconcileRoutes := router.NewDomainGroup("reconcile", "/reconcile")
	reconcileRoutes.Use(middleware.RequireRole("admin"))
	reconcileRoutes.POST("/link", reconcileHandler.Link)
	reconcileRoutes.DELETE("/link/:id", reconcileHandler.Unlink)
	reconcileRoutes.GET("/candidates/:externalId", reconcileHandler.Candidates)
	reconcileRoutes.POST("/pull/:externalId", reconcileHandler.Pull)
	reconcileRoutes.POST("/bulk", reconcileHandler.RunBulk)
	reconcileRoutes.GET("/attributes/:externalId", reconcileHandler.GetAttributes)

	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/ping", systemHandler.Ping)

	r.Register(accountRoutes).
		Register(reconcileRoutes).
		Register(systemRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
