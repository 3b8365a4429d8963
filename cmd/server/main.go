package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	analyticsapp "github.com/locallift/backend/internal/application/analytics"
	catalogapp "github.com/locallift/backend/internal/application/catalog"
	identityapp "github.com/locallift/backend/internal/application/identity"
	inventoryapp "github.com/locallift/backend/internal/application/inventory"
	notificationapp "github.com/locallift/backend/internal/application/notification"
	orderapp "github.com/locallift/backend/internal/application/order"
	promotionapp "github.com/locallift/backend/internal/application/promotion"
	reviewapp "github.com/locallift/backend/internal/application/review"
	shoppingapp "github.com/locallift/backend/internal/application/shopping"
	"github.com/locallift/backend/internal/domain/identity"
	"github.com/locallift/backend/internal/infrastructure/auth"
	"github.com/locallift/backend/internal/infrastructure/config"
	"github.com/locallift/backend/internal/infrastructure/event"
	"github.com/locallift/backend/internal/infrastructure/logger"
	"github.com/locallift/backend/internal/infrastructure/notify"
	"github.com/locallift/backend/internal/infrastructure/persistence"
	"github.com/locallift/backend/internal/interfaces/http/handler"
	"github.com/locallift/backend/internal/interfaces/http/middleware"
	"github.com/locallift/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

// notificationRetention is how long inbox entries survive before the
// daily prune removes them.
const notificationRetention = 90 * 24 * time.Hour

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
		_ = logger.Sync(log)
	}()

	log.Info("Starting LocalLift backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Schema migrations run out of band (cmd/migrate) in production;
	// development instances migrate themselves on boot.
	if cfg.App.Env != "production" {
		if err := persistence.AutoMigrate(db.DB); err != nil {
			log.Fatal("Failed to run auto-migration", zap.Error(err))
		}
		log.Info("Auto-migration complete")
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	categoryRepo := persistence.NewGormCategoryRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	vendorEntryRepo := persistence.NewGormVendorOrderEntryRepository(db.DB)
	stockEntryRepo := persistence.NewGormStockEntryRepository(db.DB)
	offerRepo := persistence.NewGormOfferRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	wishlistRepo := persistence.NewGormWishlistRepository(db.DB)
	reviewRepo := persistence.NewGormReviewRepository(db.DB)
	notificationRepo := persistence.NewGormNotificationRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Event serializer, outbox publisher, transactional event saving
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	outboxPublisher := event.NewOutboxPublisher(eventSerializer)
	orderRepo.SetOutboxEventSaver(outboxPublisher)
	productRepo.SetOutboxEventSaver(outboxPublisher)
	userRepo.SetOutboxEventSaver(outboxPublisher)

	// Token blacklist backed by Redis; revoked tokens must be visible to
	// every instance, an in-memory set only works single-node.
	blacklist, err := auth.NewRedisTokenBlacklist(auth.RedisTokenBlacklistConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	var tokenBlacklist auth.TokenBlacklist = blacklist
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to connect to Redis for token blacklist", zap.Error(err))
		}
		log.Warn("Redis unavailable, falling back to in-memory token blacklist", zap.Error(err))
		tokenBlacklist = auth.NewInMemoryTokenBlacklist()
	}

	jwtService := auth.NewJWTService(cfg.JWT)
	mailer := notify.NewLogMailer(log)

	// Application services
	authService := identityapp.NewAuthService(userRepo, jwtService, tokenBlacklist, log)
	userService := identityapp.NewUserService(userRepo, log)
	productService := catalogapp.NewProductService(productRepo, categoryRepo, stockEntryRepo, log)
	checkoutService := orderapp.NewCheckoutService(
		db.DB, orderRepo, productRepo, vendorEntryRepo, stockEntryRepo,
		offerRepo, userRepo, cartRepo, cfg.Checkout, log,
	)
	orderService := orderapp.NewOrderService(orderRepo, vendorEntryRepo, productRepo, stockEntryRepo, log)
	offerService := promotionapp.NewOfferService(offerRepo, log)
	analyticsService := analyticsapp.NewVendorAnalyticsService(vendorEntryRepo, orderRepo, userRepo, log)
	reviewService := reviewapp.NewReviewService(reviewRepo, orderRepo, productRepo, userRepo, log)
	notificationService := notificationapp.NewNotificationService(notificationRepo, log)
	cartService := shoppingapp.NewCartService(cartRepo, productRepo, log)
	wishlistService := shoppingapp.NewWishlistService(wishlistRepo, productRepo, log)
	inventoryService := inventoryapp.NewInventoryService(stockEntryRepo, productRepo, log)

	// Event bus and subscribers
	eventBus := event.NewInMemoryEventBus(log)

	orderEventsHandler := notificationapp.NewOrderEventsHandler(
		notificationRepo, productRepo, userRepo, mailer,
		cfg.Checkout.LowStockThreshold, log,
	)
	eventBus.Subscribe(orderEventsHandler)

	notificationSSE := handler.NewNotificationSSEHandler(
		handler.WithSSELogger(log.Named("notification-sse")),
	)
	eventBus.Subscribe(notificationSSE)
	defer notificationSSE.Stop()

	log.Info("Event handlers registered",
		zap.Strings("order_events", orderEventsHandler.EventTypes()),
	)

	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor relays committed events onto the bus
	outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, event.OutboxProcessorConfig{
		BatchSize:        cfg.Event.BatchSize,
		PollInterval:     cfg.Event.PollInterval,
		CleanupEnabled:   cfg.Event.CleanupEnabled,
		CleanupRetention: cfg.Event.CleanupRetention,
		CleanupInterval:  time.Hour,
	}, log)
	if err := outboxProcessor.Start(context.Background()); err != nil {
		log.Fatal("Failed to start outbox processor", zap.Error(err))
	}
	defer func() {
		if err := outboxProcessor.Stop(context.Background()); err != nil {
			log.Error("Error stopping outbox processor", zap.Error(err))
		}
	}()
	log.Info("Outbox processor started",
		zap.Int("batch_size", cfg.Event.BatchSize),
		zap.Duration("poll_interval", cfg.Event.PollInterval),
	)

	// Daily inbox prune
	pruneCtx, prunesCancel := context.WithCancel(context.Background())
	defer prunesCancel()
	go runNotificationPrune(pruneCtx, notificationService, log)

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)
	orderHandler := handler.NewOrderHandler(checkoutService, orderService)
	offerHandler := handler.NewOfferHandler(offerService)
	reviewHandler := handler.NewReviewHandler(reviewService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	cartHandler := handler.NewCartHandler(cartService)
	wishlistHandler := handler.NewWishlistHandler(wishlistService)
	inventoryHandler := handler.NewInventoryHandler(inventoryService, cfg.Checkout.LowStockThreshold)
	systemHandler := handler.NewSystemHandler(db.DB, version)

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
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(rateLimiter.Middleware())
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.GET("/health", systemHandler.Health)

	authRequired := middleware.JWTAuthMiddleware(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: tokenBlacklist,
		Logger:         log,
	})
	vendorOnly := middleware.RequireRoles(string(identity.RoleBusiness), string(identity.RoleAdmin))
	adminOnly := middleware.RequireRoles(string(identity.RoleAdmin))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Auth: register/login/refresh are public, the rest needs a token.
	// Credential endpoints get their own tighter rate limit.
	authRoutes := router.NewDomainGroup("auth", "/auth")
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		authRoutes.Use(authLimiter.Middleware())
	}
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/logout", authRequired, authHandler.Logout)
	authRoutes.GET("/me", authRequired, authHandler.Me)
	r.Register(authRoutes)

	// Public storefront
	storefrontRoutes := router.NewDomainGroup("storefront", "")
	storefrontRoutes.GET("/products", productHandler.List)
	storefrontRoutes.GET("/products/:id", productHandler.Get)
	storefrontRoutes.GET("/products/:id/reviews", reviewHandler.ListByProduct)
	storefrontRoutes.GET("/categories", productHandler.ListCategories)
	storefrontRoutes.GET("/offers", offerHandler.ListActive)
	storefrontRoutes.POST("/offers/validate", offerHandler.Validate)
	storefrontRoutes.GET("/system/info", systemHandler.Info)
	r.Register(storefrontRoutes)

	// Customer account
	accountRoutes := router.NewDomainGroup("account", "/users/me")
	accountRoutes.Use(authRequired)
	accountRoutes.GET("", userHandler.GetProfile)
	accountRoutes.PUT("", userHandler.UpdateProfile)
	accountRoutes.PUT("/password", userHandler.ChangePassword)
	accountRoutes.POST("/addresses", userHandler.AddAddress)
	accountRoutes.DELETE("/addresses/:id", userHandler.RemoveAddress)
	accountRoutes.PUT("/addresses/:id/default", userHandler.SetDefaultAddress)
	r.Register(accountRoutes)

	// Cart and wishlist
	cartRoutes := router.NewDomainGroup("cart", "/cart")
	cartRoutes.Use(authRequired)
	cartRoutes.GET("", cartHandler.Get)
	cartRoutes.DELETE("", cartHandler.Clear)
	cartRoutes.POST("/items", cartHandler.AddItem)
	cartRoutes.PUT("/items/:id", cartHandler.UpdateItem)
	cartRoutes.DELETE("/items/:id", cartHandler.RemoveItem)
	r.Register(cartRoutes)

	wishlistRoutes := router.NewDomainGroup("wishlist", "/wishlist")
	wishlistRoutes.Use(authRequired)
	wishlistRoutes.GET("", wishlistHandler.List)
	wishlistRoutes.POST("/:productId", wishlistHandler.Add)
	wishlistRoutes.DELETE("/:productId", wishlistHandler.Remove)
	r.Register(wishlistRoutes)

	// Orders: checkout, history and the return/exchange flows. Status
	// updates and decisions stay here, the service checks the actor.
	orderRoutes := router.NewDomainGroup("orders", "/orders")
	orderRoutes.Use(authRequired)
	orderRoutes.POST("", orderHandler.Checkout)
	orderRoutes.GET("", orderHandler.ListMine)
	orderRoutes.GET("/:id", orderHandler.Get)
	orderRoutes.PUT("/:id/status", orderHandler.UpdateStatus)
	orderRoutes.POST("/:id/cancel", orderHandler.Cancel)
	orderRoutes.POST("/:id/return", orderHandler.RequestReturn)
	orderRoutes.PUT("/:id/return", orderHandler.DecideReturn)
	orderRoutes.POST("/:id/exchange", orderHandler.RequestExchange)
	orderRoutes.PUT("/:id/exchange", orderHandler.DecideExchange)
	r.Register(orderRoutes)

	// Reviews: writing requires a delivered purchase, checked in the service
	reviewRoutes := router.NewDomainGroup("reviews", "")
	reviewRoutes.Use(authRequired)
	reviewRoutes.POST("/products/:id/reviews", reviewHandler.Create)
	reviewRoutes.PUT("/reviews/:id", reviewHandler.Update)
	reviewRoutes.DELETE("/reviews/:id", reviewHandler.Delete)
	r.Register(reviewRoutes)

	// Notifications
	notificationRoutes := router.NewDomainGroup("notifications", "/notifications")
	notificationRoutes.Use(authRequired)
	notificationRoutes.GET("", notificationHandler.List)
	notificationRoutes.GET("/unread-count", notificationHandler.UnreadCount)
	notificationRoutes.GET("/stream", notificationSSE.Stream)
	notificationRoutes.PUT("/read-all", notificationHandler.MarkAllRead)
	notificationRoutes.PUT("/:id/read", notificationHandler.MarkRead)
	r.Register(notificationRoutes)

	// Vendor console
	vendorRoutes := router.NewDomainGroup("vendor", "/vendor")
	vendorRoutes.Use(authRequired, vendorOnly)
	vendorRoutes.GET("/dashboard", analyticsHandler.Dashboard)
	vendorRoutes.GET("/orders", orderHandler.ListForVendor)
	vendorRoutes.GET("/products", productHandler.ListMine)
	vendorRoutes.POST("/products", productHandler.Create)
	vendorRoutes.PUT("/products/:id", productHandler.Update)
	vendorRoutes.DELETE("/products/:id", productHandler.Delist)
	vendorRoutes.POST("/products/:id/stock", productHandler.AdjustStock)
	vendorRoutes.GET("/products/:id/ledger", inventoryHandler.LedgerForProduct)
	vendorRoutes.GET("/inventory/low-stock", inventoryHandler.LowStock)
	r.Register(vendorRoutes)

	// Admin console
	adminRoutes := router.NewDomainGroup("admin", "/admin")
	adminRoutes.Use(authRequired, adminOnly)
	adminRoutes.GET("/users", userHandler.ListUsers)
	adminRoutes.GET("/orders", orderHandler.ListAll)
	adminRoutes.GET("/stats", analyticsHandler.Stats)
	adminRoutes.GET("/inventory/ledger", inventoryHandler.Ledger)
	adminRoutes.GET("/vendors/:id/dashboard", analyticsHandler.VendorDashboard)
	adminRoutes.POST("/offers", offerHandler.Create)
	adminRoutes.GET("/offers", offerHandler.List)
	adminRoutes.GET("/offers/:id", offerHandler.Get)
	adminRoutes.PUT("/offers/:id", offerHandler.Update)
	adminRoutes.DELETE("/offers/:id", offerHandler.Delete)
	r.Register(adminRoutes)

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

// runNotificationPrune deletes old inbox entries once a day
func runNotificationPrune(ctx context.Context, svc *notificationapp.NotificationService, log *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := svc.Prune(ctx, notificationRetention)
			if err != nil {
				log.Error("Notification prune failed", zap.Error(err))
				continue
			}
			if deleted > 0 {
				log.Info("Pruned old notifications", zap.Int64("deleted", deleted))
			}
		}
	}
}
