package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"bidlens.app/resolver/common/id"
	"bidlens.app/resolver/common/logger"
	"bidlens.app/resolver/common/otel"
	"bidlens.app/resolver/core/config"
	"bidlens.app/resolver/core/db"
	"bidlens.app/resolver/internal/cache"
	"bidlens.app/resolver/internal/history"
	"bidlens.app/resolver/internal/http/middleware"
	httprouter "bidlens.app/resolver/internal/http/router"
	"bidlens.app/resolver/internal/repository"
	"bidlens.app/resolver/internal/resolver"
	"bidlens.app/resolver/internal/sam"
	"bidlens.app/resolver/internal/service"
	"bidlens.app/resolver/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "resolver starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Store.Region))
	if err != nil {
		slog.ErrorContext(ctx, "failed to load aws config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Store.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Store.Endpoint)
		}
	})
	contractStore := store.New(dynamoClient, store.Config{
		Table:          cfg.Store.Table,
		CandidateLimit: cfg.Store.CandidateLimit,
	})
	slog.InfoContext(ctx, "primary store configured", "table", cfg.Store.Table)

	remote := sam.New(sam.Config{BaseURL: cfg.Remote.BaseURL, APIKey: cfg.Remote.APIKey})

	var resolutionCache service.ResolutionCache
	if cfg.Cache.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		resolutionCache = cache.New(redisClient, cfg.Cache.TTL)
		slog.InfoContext(ctx, "resolution cache connected", "ttl", cfg.Cache.TTL)
	}

	var auditRepo repository.ResolutionRepository
	if cfg.Audit.Enabled() {
		database, err := db.New(ctx, cfg.Audit)
		if err != nil {
			slog.ErrorContext(ctx, "failed to connect to audit database", "error", err)
			os.Exit(1)
		}
		defer database.Close()
		auditRepo = repository.NewResolutionRepository(database.Pool())
		slog.InfoContext(ctx, "audit database connected")
	}

	pipeline := resolver.New(contractStore, remote, resolver.Config{})
	resolutions := service.NewResolutionService(pipeline, resolutionCache, auditRepo)
	stats := history.NewService(contractStore, remote)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, resolutions, stats)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, resolutions service.ResolutionService, stats *history.Service) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, resolutions, stats)

	return router
}

const banner = `
██████╗ ███████╗███████╗ ██████╗ ██╗    ██╗   ██╗███████╗██████╗
██╔══██╗██╔════╝██╔════╝██╔═══██╗██║    ██║   ██║██╔════╝██╔══██╗
██████╔╝█████╗  ███████╗██║   ██║██║    ██║   ██║█████╗  ██████╔╝
██╔══██╗██╔══╝  ╚════██║██║   ██║██║    ╚██╗ ██╔╝██╔══╝  ██╔══██╗
██║  ██║███████╗███████║╚██████╔╝███████╗╚████╔╝ ███████╗██║  ██║
╚═╝  ╚═╝╚══════╝╚══════╝ ╚═════╝ ╚══════╝ ╚═══╝  ╚══════╝╚═╝  ╚═╝
`
