package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/cache"
	"github.com/kinthithe/pos-api/internal/config"
	"github.com/kinthithe/pos-api/internal/database"
	"github.com/kinthithe/pos-api/internal/handler"
	"github.com/kinthithe/pos-api/internal/middleware"
	"github.com/kinthithe/pos-api/internal/repository"
	"github.com/kinthithe/pos-api/internal/service"
	"github.com/kinthithe/pos-api/internal/sse"
	"github.com/kinthithe/pos-api/internal/worker"
	"github.com/kinthithe/pos-api/pkg/lipia"
)

// main is the application entrypoint for the Kinthithe POS backend.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting pos api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := runMigrations(db.DB); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Connect to Redis
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Error().Err(err).Msg("redis connection failed")
		fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected successfully")

	// 3c. Initialize payment session cache with live SSE fan-out
	sessionCache := cache.NewPaymentSessionCache(redisClient)
	sseHub := sse.NewHub()
	sessionCache.SetNotifier(sse.NewHubNotifier(sseHub))

	// 4. Initialize Lipia gateway client
	lipiaClient := lipia.NewClient(cfg.Lipia.BaseURL, cfg.Lipia.APIKey)

	// 5. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	productRepo := repository.NewProductRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	distributorRepo := repository.NewDistributorRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	stockRepo := repository.NewStockRepository(db)
	chargeRepo := repository.NewChargeRepository(db)

	// 6. Initialize workers and services
	pollWatcher := worker.NewPollWatcher(saleRepo, sessionCache, cfg.Worker.PollInterval, cfg.Worker.PollMaxWait)

	authSvc := service.NewAuthService(userRepo, auditRepo)
	saleSvc := service.NewSaleService(ledgerRepo, productRepo, saleRepo, cfg.Store)
	stockSvc := service.NewStockService(ledgerRepo, stockRepo, alertRepo, cfg.Worker.NearExpiryAfter)
	paymentSvc := service.NewPaymentService(lipiaClient, chargeRepo, sessionCache, pollWatcher, cfg.Lipia)
	reconcileSvc := service.NewReconcileService(saleRepo, service.NewAmountMatcher(saleRepo))

	expiryWorker := worker.NewExpiryWorker(stockSvc, cfg.Worker.ExpiryInterval)

	// 7. Initialize handlers
	handlers := &Handlers{
		Health:      handler.NewHealthHandler(db, redisClient),
		Auth:        handler.NewAuthHandler(authSvc),
		Payment:     handler.NewPaymentHandler(paymentSvc),
		Callback:    handler.NewCallbackHandler(reconcileSvc),
		Sale:        handler.NewSaleHandler(saleSvc),
		Product:     handler.NewProductHandler(productRepo),
		Customer:    handler.NewCustomerHandler(customerRepo),
		Distributor: handler.NewDistributorHandler(distributorRepo),
		Stock:       handler.NewStockHandler(stockSvc),
		Alert:       handler.NewAlertHandler(alertRepo),
		SSE:         handler.NewSSEHandler(sseHub),
	}

	// 8. Initialize middleware
	jwtMw := middleware.NewJWTMiddleware()
	loginLimiter := middleware.NewLoginRateLimiter()

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.LoggingMiddleware())
	setupRoutes(router, handlers, jwtMw, loginLimiter)

	// 10. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 11. Start workers
	go pollWatcher.Start(ctx)
	go expiryWorker.Start(ctx)

	// 12. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 13. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 14. Cancel context to stop workers
	cancel()

	// 15. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health      *handler.HealthHandler
	Auth        *handler.AuthHandler
	Payment     *handler.PaymentHandler
	Callback    *handler.CallbackHandler
	Sale        *handler.SaleHandler
	Product     *handler.ProductHandler
	Customer    *handler.CustomerHandler
	Distributor *handler.DistributorHandler
	Stock       *handler.StockHandler
	Alert       *handler.AlertHandler
	SSE         *handler.SSEHandler
}

// setupRoutes registers all routes.
func setupRoutes(router *gin.Engine, handlers *Handlers, jwtMiddleware *middleware.JWTMiddleware, loginLimiter *middleware.LoginRateLimiter) {
	// Gateway-facing endpoints. The terminal UI posts initiate requests here
	// and Lipia posts confirmation callbacks; neither carries a session token.
	router.POST("/api/initiate-payment", handlers.Payment.InitiatePayment)
	router.POST("/api/callback", handlers.Callback.HandleCallback)

	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/v1/events", handlers.SSE.Stream)
	router.POST("/v1/auth/login", loginLimiter.Handle(), handlers.Auth.Login)

	// Terminal routes (protected with operator JWT)
	v1 := router.Group("/v1")
	v1.Use(jwtMiddleware.Handle())
	{
		v1.POST("/auth/logout", handlers.Auth.Logout)

		// User management, admin only
		v1.POST("/users", middleware.RequireRole("admin"), handlers.Auth.CreateUser)

		// Catalog
		v1.GET("/products", handlers.Product.ListProducts)
		v1.POST("/products", handlers.Product.CreateProduct)
		v1.GET("/products/:id", handlers.Product.GetProduct)
		v1.PUT("/products/:id", handlers.Product.UpdateProduct)
		v1.DELETE("/products/:id", handlers.Product.DeleteProduct)

		// Sales
		v1.POST("/sales/checkout", handlers.Sale.Checkout)
		v1.GET("/sales", handlers.Sale.ListSales)
		v1.GET("/sales/receipt/:ref", handlers.Sale.GetReceipt)

		// Payment session tracking
		v1.GET("/payments/:ref/status", handlers.Payment.GetStatus)
		v1.POST("/payments/:ref/cancel", handlers.Payment.CancelPayment)

		// Credit customers
		v1.GET("/customers", handlers.Customer.ListCustomers)
		v1.POST("/customers", handlers.Customer.CreateCustomer)
		v1.DELETE("/customers/:id", handlers.Customer.DeleteCustomer)
		v1.POST("/customers/:id/payments", handlers.Customer.RecordPayment)

		// Distributors
		v1.GET("/distributors", handlers.Distributor.ListDistributors)
		v1.POST("/distributors", handlers.Distributor.CreateDistributor)
		v1.PUT("/distributors/:id", handlers.Distributor.UpdateDistributor)
		v1.DELETE("/distributors/:id", handlers.Distributor.DeleteDistributor)
		v1.POST("/distributors/:id/payments", handlers.Distributor.RecordPayment)

		// Deliveries and batches
		v1.POST("/stock-in", handlers.Stock.RecordStockIn)
		v1.GET("/stock-in", handlers.Stock.ListStockIns)
		v1.GET("/stock-batches", handlers.Stock.ListBatches)

		// Inventory alerts
		v1.GET("/alerts", handlers.Alert.ListAlerts)
		v1.PUT("/alerts/:id/seen", handlers.Alert.MarkSeen)
	}
}

// runMigrations runs database migrations using golang-migrate.
func runMigrations(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
