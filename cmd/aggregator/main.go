package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"position_aggregator/internal/app/service"
	"position_aggregator/internal/infrastructure/configloader"
	networkdefinition "position_aggregator/internal/infrastructure/network/definition"
	"position_aggregator/internal/infrastructure/positionsource"
	"position_aggregator/internal/infrastructure/positionsource/lendingapi"
	"position_aggregator/internal/infrastructure/positionsource/onchain"
	"position_aggregator/internal/infrastructure/restapi"
	"position_aggregator/internal/infrastructure/walletloader"
	"position_aggregator/internal/pkg/logger"
	"position_aggregator/internal/pkg/metrics"
)

const defaultConnectionTimeout = 10 * time.Second

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Startup logger before the real logging stack is configured.
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// Route slog (and everything built on port.Logger) through zap.
	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	logger.SetHandler(slogHandler)

	cfgPath := getEnv("CONFIG_PATH", "config/config.yml")
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	appLogger := logger.NewSlogAdapter()

	networkCatalog := networkdefinition.NewNetworkDefinitionProvider(appLogger, cfg.Networks)

	walletResolver := walletloader.NewWalletFileLoader(cfg.Wallets.FilePath, logger.Info)

	apiSource := lendingapi.NewClient(
		cfg.LendingAPI.BaseURL,
		time.Duration(cfg.LendingAPI.RequestTimeoutMillis)*time.Millisecond,
		cfg.LendingAPI.RateLimitPerSecond,
		cfg.LendingAPI.RateLimitBurst,
		zapLogger,
	)
	zapLogger.Info("Lending data API client initialized")

	onchainSource := onchain.NewEVMSource(
		appLogger,
		defaultConnectionTimeout,
		time.Duration(cfg.Performance.RPCCallTimeoutSeconds)*time.Second,
	)
	zapLogger.Info("On-chain position source initialized")

	cachedSource := positionsource.NewCachedSource(
		positionsource.NewRoutingSource(apiSource, onchainSource),
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		time.Duration(cfg.Cache.PurgeIntervalSeconds)*time.Second,
		appLogger,
	)

	aggregator := service.NewAggregatorService(
		walletResolver,
		networkCatalog,
		cachedSource,
		appLogger,
		cfg.Performance.MaxConcurrentRoutines,
		time.Duration(cfg.Performance.FetchTimeoutSeconds)*time.Second,
	)
	zapLogger.Info("Position aggregator service initialized")

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true // Adjust for production
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))
	router.Use(gin.Recovery())

	positionHandler := restapi.NewPositionHandler(aggregator, cachedSource)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/positions/:walletId", positionHandler.GetPositionsHandler)
		v1.POST("/positions/:walletId/refresh", positionHandler.RefreshPositionsHandler)
	}
	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	zapLogger.Info("Prometheus metrics endpoint enabled", zap.String("path", "/metrics"))

	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
	}
	zapLogger.Info("Pprof endpoints enabled under /debug/pprof")

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
