package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	ginTimeout "github.com/gin-contrib/timeout"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/richxcame/bid-pricing/internal/auth"
	"github.com/richxcame/bid-pricing/internal/history"
	"github.com/richxcame/bid-pricing/internal/model"
	"github.com/richxcame/bid-pricing/internal/pricing"
	"github.com/richxcame/bid-pricing/pkg/common"
	"github.com/richxcame/bid-pricing/pkg/config"
	"github.com/richxcame/bid-pricing/pkg/logger"
	"github.com/richxcame/bid-pricing/pkg/middleware"
	"go.uber.org/zap"
)

const landingPage = `<!DOCTYPE html>
<html>
<head><title>Bid Pricing Service</title></head>
<body>
<h1>Bid Pricing Service</h1>
<p>Price recommendation API for driver bids.</p>
<ul>
<li><code>POST /auth/token</code> - obtain a bearer token</li>
<li><code>POST /api/v1/orders/price-recommendation</code> - price recommendation (authenticated)</li>
<li><code>GET /health</code> - health check</li>
<li><code>GET /metrics</code> - Prometheus metrics</li>
</ul>
</body>
</html>`

func main() {
	// Load configuration
	cfg, err := config.Load("pricing")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Auth service with the provisioned demo user
	authService, err := auth.NewService(
		cfg.Auth.SecretKey,
		cfg.Auth.TestUserEmail,
		cfg.Auth.TestUserPassword,
		time.Duration(cfg.Auth.AccessTokenExpireMinutes)*time.Minute,
	)
	if err != nil {
		logger.Fatal("Failed to initialize auth service", zap.Error(err))
	}
	authHandler := auth.NewHandler(authService)

	// History cache and model loader. The artefact itself is loaded lazily on
	// the first recommendation request.
	historyCache := history.Load(cfg.Pricing.UserHistoryPath, cfg.Pricing.DriverHistoryPath)
	logger.Info("History cache ready",
		zap.Int("users", historyCache.UserCount()),
		zap.Int("drivers", historyCache.DriverCount()),
	)

	loader := model.NewLoader(cfg.Pricing.ModelPath)
	loadPredictor := func() (pricing.Predictor, error) {
		artefact, err := loader.Load()
		if err != nil {
			return nil, err
		}
		return artefact, nil
	}

	fuel := pricing.FuelParams{
		ConsumptionPer100Km: cfg.Pricing.FuelConsumptionPer100,
		PricePerLiter:       cfg.Pricing.FuelPricePerLiter,
	}
	builder := pricing.NewFeatureBuilder(historyCache, fuel)
	pricingService := pricing.NewService(
		loadPredictor,
		builder,
		cfg.Pricing.ScanPoints,
		fuel,
		cfg.Pricing.AllowStubFallback,
		nil,
	)
	pricingHandler := pricing.NewHandler(pricingService)

	// Set up Gin router
	router := gin.New()
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))
	router.Use(middleware.SecurityHeaders())

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	origins := cfg.Server.AllowedOrigins()
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	// Per-request deadline
	router.Use(requestTimeout(time.Duration(cfg.Server.RequestTimeout) * time.Second))

	// Landing page, health check and metrics (no auth required)
	router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(landingPage))
	})
	router.GET("/health", common.HealthCheck())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Token endpoint (no auth required)
	authHandler.RegisterRoutes(router)

	// API routes (require authentication)
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(authService))
	pricingHandler.RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("Pricing service starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down pricing service")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}
}

// requestTimeout bounds handler execution and answers 503 when the deadline
// passes before the handler finishes.
func requestTimeout(d time.Duration) gin.HandlerFunc {
	return ginTimeout.New(
		ginTimeout.WithTimeout(d),
		ginTimeout.WithHandler(func(c *gin.Context) {
			c.Next()
		}),
		ginTimeout.WithResponse(func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, common.DetailResponse{Detail: "Request timed out"})
		}),
	)
}
