package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"paystream/internal/core/domain"
	"paystream/internal/core/ports"
	"paystream/internal/core/services"
	httphandlers "paystream/internal/handlers/http"
	"paystream/internal/infrastructure/backup"
	"paystream/internal/infrastructure/events"
	"paystream/internal/infrastructure/ledger"
	"paystream/internal/infrastructure/middleware"
	"paystream/internal/infrastructure/monitoring"
	repositories "paystream/internal/infrastructure/repositories"
	feedserver "paystream/internal/infrastructure/signal"
	pkgbackup "paystream/pkg/backup"
	"paystream/pkg/config"
	"paystream/pkg/logger"
	"paystream/pkg/tracing"
	"paystream/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// .env is optional; environment overrides still apply without it.
	_ = godotenv.Load()

	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/paystream/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}
	if err != nil {
		cfg = config.DefaultConfig()
	}

	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()
	log := zapLogger.Sugar()

	if cfg.Tracing.Enabled {
		tracingCfg := tracing.DefaultConfig()
		tracingCfg.JaegerURL = cfg.Tracing.JaegerURL
		tracingCfg.SampleRate = cfg.Tracing.SampleRate
		if cfg.Tracing.ServiceName != "" {
			tracingCfg.ServiceName = cfg.Tracing.ServiceName
		}
		if err := tracing.Init(tracingCfg); err != nil {
			log.Warnw("failed to initialize tracing, continuing without it", "error", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repoFactory, err := repositories.NewRepositoryFactory(ctx, cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	streamRepo := repoFactory.CreateStreamRepository()
	profileRepo := repoFactory.CreateProfileRepository()
	userRepo := repoFactory.CreateUserRepository()

	var tokenLedger ports.TokenLedger
	switch cfg.Ledger.Backend {
	case "http":
		tokenLedger = ledger.NewHTTPLedger(cfg.Ledger.BaseURL, cfg.Ledger.RequestTimeout, log)
	default:
		tokenLedger = ledger.NewMemoryLedger()
		log.Warn("using in-memory token ledger, balances reset on restart")
	}

	var bus events.Bus
	var publisher ports.EventPublisher
	if client := repoFactory.RedisClient(); client != nil {
		bus = events.NewRedisBus(client, cfg.Events.Channel, log)
		batched := events.NewBatchedPublisher(bus, 64, 200*time.Millisecond, log)
		defer batched.Stop()
		publisher = batched
	} else {
		bus = events.NewMemoryBus()
		publisher = bus
	}

	clock := services.NewSystemClock()
	collector := monitoring.NewPrometheusCollector()

	guards := services.GuardConfig{
		MaxAmount:      cfg.Limits.MaxAmount,
		MaxDuration:    cfg.Limits.MaxDuration,
		MaxStartBehind: cfg.Limits.MaxStartBehind,
		MaxStartAhead:  cfg.Limits.MaxStartAhead,
	}

	streamService := services.NewStreamService(
		streamRepo,
		profileRepo,
		tokenLedger,
		clock,
		publisher,
		collector,
		guards,
		domain.Address(cfg.Ledger.CustodyAccount),
		log,
	)
	if cfg.Storage.CacheTTL > 0 {
		streamService = services.NewCachedStreamService(streamService, cfg.Storage.CacheTTL, cfg.Storage.CacheTTL)
	}
	authService := services.NewAuthService(userRepo, cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, clock)
	log.Debugw("auth configured",
		"jwt_secret", utils.MaskSensitive(cfg.Auth.JWTSecret, 4),
		"access_token_ttl", cfg.Auth.AccessTokenTTL,
	)

	if cfg.Events.Feed {
		feed := feedserver.NewFeedServer(bus, cfg.Events.FeedAddress, log)
		go func() {
			if err := feed.Start(ctx); err != nil {
				log.Errorw("event feed stopped", "error", err)
			}
		}()
	}

	if cfg.Backup.Enabled {
		storage, err := pkgbackup.NewFileStorage(cfg.Backup.Dir)
		if err != nil {
			log.Fatalw("failed to initialize backup storage", "error", err, "dir", cfg.Backup.Dir)
		}
		scheduler := backup.NewScheduler(
			pkgbackup.NewBackupService(storage, "1.0"),
			streamRepo,
			backup.Config{Interval: cfg.Backup.Interval, RetentionDays: cfg.Backup.RetentionDays},
			log,
		)
		go scheduler.Start(ctx)
		defer scheduler.Stop()
		log.Infow("backup scheduler started", "interval", cfg.Backup.Interval, "dir", cfg.Backup.Dir)
	}

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("storage", func(ctx context.Context) (bool, error) {
		if err := repoFactory.HealthCheck(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, 15*time.Second, 2*time.Second)
	healthChecker.StartBackgroundChecks(ctx)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.ErrorHandlerMiddleware(log))
	router.Use(middleware.RateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}

	authHandler := httphandlers.NewAuthHandler(authService)
	authHandler.SetupRoutes(router)

	streamHandler := httphandlers.NewStreamHandler(streamService)
	streamHandler.SetupRoutes(router, middleware.AuthMiddleware(authService))

	startTime := time.Now()
	router.GET("/health", func(c *gin.Context) {
		status := healthChecker.Snapshot()
		code := http.StatusOK
		if status.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status.Status,
			"timestamp": status.Timestamp,
			"uptime":    utils.FormatDuration(time.Since(startTime)),
			"checks":    status.Checks,
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		checkCtx, checkCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer checkCancel()

		if err := repoFactory.HealthCheck(checkCtx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "not_ready",
				"timestamp": time.Now(),
				"error":     err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"timestamp": time.Now(),
		})
	})

	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("prometheus metrics enabled")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("starting paystream server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("server failed", "error", err)
	case sig := <-sigChan:
		log.Infow("received shutdown signal", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error during server shutdown", "error", err)
		if closeErr := srv.Close(); closeErr != nil {
			log.Errorw("error force closing server", "error", closeErr)
		}
	}

	cancel()

	if err := tracing.Shutdown(shutdownCtx); err != nil {
		log.Errorw("error shutting down tracing", "error", err)
	}
	if err := repoFactory.Close(); err != nil {
		log.Errorw("error closing repository factory", "error", err)
	}

	log.Info("paystream server stopped")
}
