package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tourbook/internal/backend"
	"tourbook/internal/config"
	"tourbook/internal/domain"
	"tourbook/internal/events"
	"tourbook/internal/logging"
	"tourbook/internal/metrics"
	"tourbook/internal/repository"
	"tourbook/internal/service"
	"tourbook/internal/web"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer (func() { _ = repository.Close(redisClient) })()
	}
	guard := initSubmissionGuard(cfg, redisClient, logger)

	eventBus := events.NewEventBus()
	subscribeBookingEvents(eventBus, logging.Component(logger, "events"))

	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout, logging.Component(logger, "backend"))
	logger.Info().Str("backend", client.BaseURL()).Msg("booking backend configured")

	srv, err := web.NewServer(cfg.Web, web.Deps{
		Backend: client,
		Guard:   guard,
		Events:  eventBus,
		Logger:  logging.Component(logger, "web"),
	})
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}

	startMetrics(ctx, cfg, logger)

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("web server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("web server shutdown")
	}

	logger.Info().Msg("storefront stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logging.Component(baseLogger, "web-main"), closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := repository.Ping(pingCtx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func initSubmissionGuard(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *service.SubmissionGuard {
	memory := repository.NewMemoryStateRepository(cfg.Booking.GuardTTL)

	var stateRepo domain.FlowStateRepository = memory
	if redisClient != nil {
		primary := repository.NewRedisStateRepository(redisClient, cfg.Booking.GuardTTL)
		stateRepo = repository.NewFailoverStateRepository(primary, memory, logging.Component(logger, "state"))
	}

	return service.NewSubmissionGuard(
		stateRepo,
		cfg.Booking.GuardTTL,
		cfg.Booking.SubmitRateLimit,
		cfg.Booking.SubmitRateWindow,
		logging.Component(logger, "guard"),
	)
}

func subscribeBookingEvents(bus *events.EventBus, logger *zerolog.Logger) {
	bus.Subscribe(func(ev *events.Event) error {
		p, err := ev.DecodeBooking()
		if err != nil {
			return err
		}

		var le *zerolog.Event
		switch ev.Type {
		case events.EventBookingFailed:
			metrics.IncSubmission("failed")
			le = logger.Warn().Str("error", p.Error)
		case events.EventBookingSucceeded:
			metrics.IncSubmission("succeeded")
			le = logger.Info().Str("booking_id", p.BookingID)
		default:
			le = logger.Debug()
		}
		le.Int64("event_id", ev.ID).
			Str("event", ev.Type).
			Str("flow_id", p.FlowID).
			Str("experience_id", p.ExperienceID).
			Int("quantity", p.Quantity).
			Str("date", p.Date).
			Msg("booking event")
		return nil
	}, events.EventBookingSubmitted, events.EventBookingSucceeded, events.EventBookingFailed)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
