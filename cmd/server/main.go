package main

import (
	"context"
	"time"

	"github.com/fenstri/fieldservice/internal/handler"
	"github.com/fenstri/fieldservice/internal/lifecycle"
	"github.com/fenstri/fieldservice/internal/middleware"
	"github.com/fenstri/fieldservice/internal/model"
	"github.com/fenstri/fieldservice/internal/repository"
	"github.com/fenstri/fieldservice/internal/service"
	"github.com/fenstri/fieldservice/internal/storage"
	"github.com/fenstri/fieldservice/pkg/cache"
	"github.com/fenstri/fieldservice/pkg/config"
	"github.com/fenstri/fieldservice/pkg/database"
	"github.com/fenstri/fieldservice/pkg/jwtutil"
	"github.com/fenstri/fieldservice/pkg/logger"
	"github.com/fenstri/fieldservice/prometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load("fieldservice")
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: cfg.ServiceName,
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting field service...", cfg.LogConfig()...)

	// Initialize database
	db, err := database.InitDB(&cfg.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.MigrateModels(
		&model.Organization{},
		&model.Profile{},
		&model.Property{},
		&model.WorkOrder{},
		&model.WorkOrderItem{},
		&model.Photo{},
		&model.Invoice{},
		&model.Subscription{},
		&model.WebhookEvent{},
	); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connection established")

	// JWT utility
	jwtUtil := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      cfg.JWT.SigningKey,
		ExpirationHours: cfg.JWT.ExpirationHours,
	})

	// Redis backs the webhook dedupe fast path. The service starts
	// without it; the recorded event ids still guard correctness.
	var dedupe *cache.Client
	redisClient := cache.NewClient(&cfg.Redis)
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cache.Ping(pingCtx, redisClient); err != nil {
		log.Warn("Redis unavailable, webhook dedupe fast path disabled", zap.Error(err))
	} else {
		dedupe = redisClient
		log.Info("Redis connection established", zap.String("addr", cfg.Redis.Addr))
	}
	cancel()

	// Repositories
	orgRepo := repository.NewOrganizationRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	orderRepo := repository.NewWorkOrderRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	eventRepo := repository.NewWebhookEventRepository(db)

	// Services
	photoStore := storage.NewDiskStorage(cfg.Storage.PhotoRoot)
	stripeClient := service.NewStripeClient(&cfg.Stripe, log)
	orderSvc := service.NewWorkOrderService(orderRepo, profileRepo, propertyRepo, photoStore, log)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, orderRepo, orgRepo, stripeClient, cfg.Billing, log)
	reconciler := service.NewReconciler(invoiceRepo, subRepo, eventRepo, dedupe, log)

	// Handlers
	authHandler := handler.NewAuthHandler(db, jwtUtil)
	profileHandler := handler.NewProfileHandler(profileRepo)
	propertyHandler := handler.NewPropertyHandler(propertyRepo)
	orderHandler := handler.NewWorkOrderHandler(orderSvc)
	invoiceHandler := handler.NewInvoiceHandler(invoiceSvc)
	subHandler := handler.NewSubscriptionHandler(subRepo)
	webhookHandler := handler.NewWebhookHandler(reconciler, cfg.Stripe)
	healthHandler := handler.NewHealthHandler(db)

	// Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", healthHandler.Health)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Payment provider webhook - authenticated by signature, not JWT
	e.POST("/webhooks/stripe", webhookHandler.HandleStripe)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.JWTAuthMiddleware(jwtUtil))

	api.GET("/me", authHandler.Me)

	// Team management
	officeRoles := middleware.RequireRole(
		string(lifecycle.RoleDispatcher), string(lifecycle.RoleAdmin))
	adminOnly := middleware.RequireRole(string(lifecycle.RoleAdmin))

	profiles := api.Group("/profiles")
	profiles.GET("", profileHandler.List, officeRoles)
	profiles.GET("/technicians", profileHandler.ListTechnicians, officeRoles)
	profiles.POST("", profileHandler.Create, adminOnly)
	profiles.PATCH("/:id", profileHandler.Update, adminOnly)
	profiles.DELETE("/:id", profileHandler.Delete, adminOnly)

	// Properties - owned by the customer role, admins can step in
	propertyWriters := middleware.RequireRole(
		string(lifecycle.RoleCustomer), string(lifecycle.RoleAdmin))

	properties := api.Group("/properties")
	properties.GET("", propertyHandler.List)
	properties.GET("/:id", propertyHandler.Get)
	properties.POST("", propertyHandler.Create, propertyWriters)
	properties.PATCH("/:id", propertyHandler.Update, propertyWriters)
	properties.DELETE("/:id", propertyHandler.Delete, propertyWriters)

	// Work orders - role checks beyond these groups live in the service layer
	orders := api.Group("/work-orders")
	orders.POST("", orderHandler.Create)
	orders.GET("", orderHandler.List)
	orders.GET("/:id", orderHandler.Get)
	orders.POST("/:id/assign", orderHandler.Assign, officeRoles)
	orders.POST("/:id/status", orderHandler.UpdateStatus)
	orders.PUT("/:id/report", orderHandler.SaveReport,
		middleware.RequireRole(string(lifecycle.RoleTechnician)))
	orders.POST("/:id/photos", orderHandler.UploadPhoto)
	orders.GET("/:id/items", orderHandler.Items)

	// Invoices
	invoices := api.Group("/invoices")
	invoices.POST("", invoiceHandler.Issue, officeRoles)
	invoices.GET("", invoiceHandler.List)
	invoices.GET("/export", invoiceHandler.Export, adminOnly)
	invoices.GET("/:id", invoiceHandler.Get)
	invoices.GET("/:id/document", invoiceHandler.Render)

	// Subscriptions
	api.GET("/subscriptions", subHandler.List, officeRoles)

	// Start server
	log.Info("Starting server", zap.String("port", cfg.Server.Port))
	if err := e.Start(":" + cfg.Server.Port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
