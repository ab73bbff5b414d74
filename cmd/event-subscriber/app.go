package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"payadmin/internal/config"
	"payadmin/internal/constants"
	"payadmin/internal/enrich"
	"payadmin/internal/ledger"
	"payadmin/internal/logger"
	"payadmin/internal/notify"
	"payadmin/internal/queue"
	"payadmin/internal/store"
	"payadmin/internal/subscriber"
	"payadmin/pkg/circuitbreaker"
	"payadmin/pkg/health"
	"payadmin/pkg/metrics"
)

type App struct {
	cfg        *config.Config
	logger     logger.Logger
	postgresDB *sql.DB
	redis      *redis.Client
	consumer   *queue.JetStreamConsumer
	subscriber *subscriber.Subscriber
	server     *http.Server
}

func NewApp(cfg *config.Config, log logger.Logger) *App {
	if sugaredLogger, ok := log.(*logger.SugaredLogger); ok {
		sugaredLogger.SetServiceName("event-subscriber")
	}
	return &App{
		cfg:    cfg,
		logger: log,
	}
}

func (a *App) Initialize(ctx context.Context) error {
	if err := a.initPostgres(ctx); err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}

	if err := a.initRedis(ctx); err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}

	if err := a.initQueue(ctx); err != nil {
		return fmt.Errorf("failed to initialize queue consumer: %w", err)
	}

	if err := a.initPipeline(); err != nil {
		return fmt.Errorf("failed to initialize pipeline: %w", err)
	}

	metrics.RegisterSubscriberMetrics()
	if a.cfg.CircuitBreaker.Enabled {
		metrics.RegisterCircuitBreakerMetrics()
	}

	a.initHTTPServer()

	return nil
}

func (a *App) initPostgres(ctx context.Context) error {
	pg := a.cfg.Database.Postgres
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		pg.Host, pg.Port, pg.User, pg.Password, pg.DBName, pg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.postgresDB = db
	return nil
}

func (a *App) initRedis(ctx context.Context) error {
	if !a.cfg.Cache.Enabled {
		a.logger.InfowCtx(ctx, "Ledger transaction cache disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", a.cfg.Cache.Redis.Host, a.cfg.Cache.Redis.Port),
		Password: a.cfg.Cache.Redis.Password,
		DB:       a.cfg.Cache.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}

	a.redis = rdb
	return nil
}

func (a *App) initQueue(ctx context.Context) error {
	drainTimeout := time.Duration(a.cfg.Subscriber.DrainTimeoutSeconds) * time.Second
	consumer, err := queue.NewJetStreamConsumer(ctx, a.cfg.Queue, drainTimeout, a.logger)
	if err != nil {
		return err
	}
	a.consumer = consumer
	return nil
}

func (a *App) initPipeline() error {
	ledgerClient := ledger.NewClient(a.cfg.Ledger, a.logger)
	if a.cfg.CircuitBreaker.Enabled {
		ledgerClient = ledgerClient.WithBreaker(circuitbreaker.NewWrapper(circuitbreaker.Config{
			Name:         "ledger",
			MaxRequests:  a.cfg.CircuitBreaker.MaxRequests,
			Interval:     a.cfg.CircuitBreaker.Interval,
			Timeout:      a.cfg.CircuitBreaker.Timeout,
			FailureRatio: a.cfg.CircuitBreaker.FailureRatio,
			MinRequests:  a.cfg.CircuitBreaker.MinRequests,
		}))
	}

	userStore := store.NewPostgresStore(a.postgresDB)
	cacheTTL := time.Duration(a.cfg.Cache.TTLSeconds) * time.Second
	enricher := enrich.NewEnricher(ledgerClient, userStore, a.redis, cacheTTL, a.logger)

	composer, err := notify.NewComposer(a.cfg.Notify, a.logger)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(notify.NewClient(a.cfg.Notify, a.logger), a.logger)

	processor := subscriber.NewProcessor(enricher, composer, dispatcher, a.logger)
	a.subscriber = subscriber.New(a.consumer, processor, a.cfg.Subscriber, a.logger)

	return nil
}

func (a *App) initHTTPServer() {
	mux := http.NewServeMux()

	healthRegistry := health.NewCheckerRegistry()
	healthRegistry.Register(health.NewPostgreSQLChecker(a.postgresDB))
	healthRegistry.Register(health.NewQueueChecker(a.consumer.Conn()))
	if a.redis != nil {
		healthRegistry.Register(health.NewRedisChecker(a.redis))
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		h := healthRegistry.Check(r.Context())
		statusCode := http.StatusOK
		if h.Status == health.StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		fmt.Fprintf(w, `{"status":"%s","timestamp":"%s"}`, h.Status, h.Timestamp.Format(time.RFC3339))
	})

	mux.Handle("/metrics", promhttp.Handler())

	a.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler: mux,
	}
}

func (a *App) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.InfowCtx(ctx, "HTTP server starting", "port", a.cfg.Server.Port)
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return a.subscriber.Run(gCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (a *App) Shutdown(ctx context.Context) {
	a.logger.InfowCtx(ctx, "Shutting down event subscriber")

	if a.consumer != nil {
		if err := a.consumer.Close(); err != nil {
			a.logger.ErrorwCtx(ctx, "Failed to close queue consumer", "error", err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.ErrorwCtx(ctx, "Failed to close redis client", "error", err)
		}
	}

	if a.postgresDB != nil {
		if err := a.postgresDB.Close(); err != nil {
			a.logger.ErrorwCtx(ctx, "Failed to close postgres connection", "error", err)
		}
	}
}
