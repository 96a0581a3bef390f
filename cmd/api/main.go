package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/recifdiscount/storefront/internal/config"
	"github.com/recifdiscount/storefront/internal/handler"
	"github.com/recifdiscount/storefront/internal/payment"
	"github.com/recifdiscount/storefront/internal/repository"
	"github.com/recifdiscount/storefront/internal/service"
	"github.com/recifdiscount/storefront/internal/shipping"
	"github.com/recifdiscount/storefront/internal/validator"
	"github.com/recifdiscount/storefront/pkg/cache"
	"github.com/recifdiscount/storefront/pkg/database"
	"github.com/recifdiscount/storefront/pkg/scheduler"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize zerolog based on configuration
	initLogger(cfg)

	// Create context for startup
	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Initialize the price cache. The shop runs without it if Redis is
	// down, every lookup just goes to the database.
	var priceCache *cache.Cache
	redisClient, err := cache.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, price cache disabled")
	} else {
		priceCache = cache.New(redisClient, time.Duration(cfg.Redis.PriceTTL)*time.Second)
	}

	minCharge, err := decimal.NewFromString(cfg.Payment.MinCharge)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Payment.MinCharge).Msg("invalid PAYMENT_MIN_CHARGE")
	}

	// Initialize Fiber with production-ready configuration
	app := fiber.New(fiber.Config{
		AppName:      "Recif Discount Storefront",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024, // 1MB body limit
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	// Initialize validator
	validate := validator.New()

	// Repositories
	priceRepo := repository.NewPriceRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	promoRepo := repository.NewPromotionRepository(pool)
	thresholdRepo := repository.NewThresholdRepository(pool)
	wheelRepo := repository.NewWheelSettingsRepository(pool)
	carrierRepo := repository.NewCarrierRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	disputeRepo := repository.NewDisputeRepository(pool)

	// External collaborators
	paymentClient := payment.NewClient(cfg.Payment)
	relayClient := shipping.NewRelayClient(cfg.Relay)

	// Services (layered architecture)
	var priceCacheDep service.PriceCache
	if priceCache != nil {
		priceCacheDep = priceCache
	}
	pricingService := service.NewPricingService(priceRepo, priceCacheDep)
	promotionEngine := service.NewPromotionEngine(promoRepo)
	cartService := service.NewCartService(pool, cartRepo, thresholdRepo, wheelRepo, pricingService, promotionEngine)
	checkoutService := service.NewCheckoutService(pool, cartRepo, carrierRepo, orderRepo, promoRepo,
		promotionEngine, pricingService, paymentClient, minCharge)
	disputeService := service.NewDisputeService(orderRepo, disputeRepo)
	wheelMaintenance := service.NewWheelMaintenance(cartRepo, wheelRepo)

	// Handlers
	cartHandler := handler.NewCartHandler(cartService, validate)
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, validate)
	disputeHandler := handler.NewDisputeHandler(disputeService, validate)
	shippingHandler := handler.NewShippingHandler(relayClient)
	var cachePing handler.Pinger
	if priceCache != nil {
		cachePing = priceCache
	}
	healthHandler := handler.NewHealthHandler(pool, cachePing)

	app.Get("/health", healthHandler.Check)

	// Cart routes
	app.Get("/api/carts/:cartID", cartHandler.GetCart)
	app.Post("/api/carts/:cartID/items", cartHandler.AddItem)
	app.Patch("/api/carts/:cartID/items/:itemID", cartHandler.UpdateQuantity)
	app.Delete("/api/carts/:cartID/items/:itemID", cartHandler.RemoveItem)
	app.Post("/api/carts/:cartID/wheel-gift", cartHandler.AddWheelGift)
	app.Post("/api/carts/:cartID/promotion", cartHandler.ApplyPromotion)
	app.Delete("/api/carts/:cartID/promotion", cartHandler.RemovePromotion)

	// Checkout routes
	app.Post("/api/carts/:cartID/checkout", checkoutHandler.Checkout)
	app.Post("/api/checkout/confirm", checkoutHandler.ConfirmPayment)

	// Shipping routes
	app.Get("/api/shipping/carriers", checkoutHandler.Carriers)
	app.Get("/api/shipping/relay-points", shippingHandler.RelayPoints)

	// Dispute routes
	app.Get("/api/orders/:orderID/dispute", disputeHandler.GetThread)
	app.Post("/api/orders/:orderID/dispute/messages", disputeHandler.PostMessage)
	app.Post("/api/orders/:orderID/dispute/close", disputeHandler.CloseDispute)

	// Wheel-gift maintenance loops, torn down with the server
	sweepTask := scheduler.NewTask("wheel-expiry-sweep",
		time.Duration(cfg.Wheel.SweepInterval)*time.Second, wheelMaintenance.SweepExpired)
	pollTask := scheduler.NewTask("wheel-settings-poll",
		time.Duration(cfg.Wheel.PollInterval)*time.Second, wheelMaintenance.PollSettings)
	sweepTask.Start()
	pollTask.Start()

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	// Stop background tasks before draining HTTP
	sweepTask.Stop()
	pollTask.Stop()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Close connections AFTER server shutdown (even if shutdown timed out)
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("error closing redis client")
		}
	}
	log.Info().Msg("closing database connections...")
	pool.Close()
	log.Info().Msg("database connections closed")
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		// JSON output for production
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
