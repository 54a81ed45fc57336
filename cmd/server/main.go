package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fidelize/notifyd/internal/api"
	"github.com/fidelize/notifyd/internal/channel"
	"github.com/fidelize/notifyd/internal/config"
	"github.com/fidelize/notifyd/internal/db"
	"github.com/fidelize/notifyd/internal/dispatch"
	"github.com/fidelize/notifyd/internal/domain"
	"github.com/fidelize/notifyd/internal/mailer"
	"github.com/fidelize/notifyd/internal/metrics"
	"github.com/fidelize/notifyd/internal/preference"
	"github.com/fidelize/notifyd/internal/push"
	"github.com/fidelize/notifyd/internal/queue"
	"github.com/fidelize/notifyd/internal/ratelimiter"
	"github.com/fidelize/notifyd/internal/repository"
	"github.com/fidelize/notifyd/internal/service"
	"github.com/fidelize/notifyd/internal/smsprovider"
	"github.com/fidelize/notifyd/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- repositories ----
	users := repository.NewPgUserRepository(pool)
	notifications := repository.NewPgNotificationRepository(pool)
	devices := repository.NewPgDeviceRepository(pool)
	prefRepo := repository.NewPgPreferenceRepository(pool)

	// ---- queue transport ----
	var transport queue.Transport
	switch cfg.QueueTransport {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		transport = queue.NewRedisTransport(client, cfg.QueueKeyPrefix, logger)
		logger.Info("using redis queue transport", zap.String("addr", cfg.RedisAddr))
	default:
		transport = queue.NewMemoryTransport()
		logger.Info("using in-memory queue transport")
	}

	// ---- delivery channels ----
	pm, err := mailer.NewPostmarkMailer(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.EmailFrom, cfg.EmailReplyTo)
	if err != nil {
		logger.Fatal("failed to build postmark mailer", zap.Error(err))
	}
	fcm := push.NewFCMSender(cfg.FCMBaseURL, cfg.FCMServerKey, cfg.PushTimeout)

	var smsProv smsprovider.Provider
	switch cfg.SMSProvider {
	case "vonage":
		smsProv = smsprovider.NewVonageProvider(cfg.VonageBaseURL, cfg.VonageKey, cfg.VonageSecret, cfg.VonageFrom, cfg.SMSTimeout)
	default:
		smsProv = smsprovider.NewTwilioProvider(cfg.TwilioBaseURL, cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, cfg.SMSTimeout)
	}

	registry, err := channel.NewRegistry(
		channel.NewInAppChannel(users, notifications, logger),
		channel.NewPushChannel(devices, fcm, logger),
		channel.NewEmailChannel(pm, logger),
		channel.NewSMSChannel(cfg.SMSEnabled, smsProv, logger),
	)
	if err != nil {
		logger.Fatal("failed to build channel registry", zap.Error(err))
	}

	// ---- dispatch ----
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	checker := preference.NewDatabaseChecker(prefRepo, logger)
	limiter := ratelimiter.New(cfg.RateLimit,
		domain.ChannelInApp, domain.ChannelPush, domain.ChannelEmail, domain.ChannelSMS)
	dispatcher := dispatch.New(registry, checker, limiter, m.DispatchEvents(), logger)

	svc := service.NewNotificationService(dispatcher, transport, notifications, logger)

	// ---- worker pool ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	retryer := worker.NewRetryScheduler(transport, cfg.RetryBackoff, cfg.MaxAttempts, logger)
	workerPool := worker.NewPool(cfg.Workers, transport, dispatcher, retryer, logger, m.WorkerHooks())
	workerPool.Start(workerCtx)

	// Periodic queue-depth gauge refresh.
	go func() {
		ticker := time.NewTicker(cfg.DepthInterval)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				high, normal, low := transport.Depths(workerCtx)
				m.ObserveQueueDepths(high, normal, low)
			}
		}
	}()

	// ---- HTTP server ----
	router := api.NewRouter(svc, transport, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Drop pending retry timers and signal workers to stop.
	retryer.Stop()
	cancelWorkers()

	// 3. Wait for in-flight workers to finish their current envelope.
	workerPool.Wait()

	logger.Info("server stopped cleanly")
}
