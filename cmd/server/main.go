package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iho/bankledger/internal/adapter/clock"
	httpAdapter "github.com/iho/bankledger/internal/adapter/http"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	"github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/adapter/idgen"
	memoryRepo "github.com/iho/bankledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/bankledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/infrastructure/auth"
	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
	"github.com/iho/bankledger/internal/infrastructure/logger"
	"github.com/iho/bankledger/internal/infrastructure/metrics"
	"github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/infrastructure/redis"
	"github.com/iho/bankledger/internal/usecase"
)

const rateLimiterCleanupInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.New(logger.Config{Level: "info", Format: "console"})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// storage is the set of repositories behind the use cases.
type storage struct {
	txManager    usecase.TransactionManager
	accounts     usecase.AccountRepository
	transactions usecase.TransactionRepository
	outbox       usecase.OutboxRepository
	users        usecase.UserRepository
	ledger       usecase.LedgerRepository
	retrier      usecase.Retrier
	checks       []handler.Check
	close        func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return newMemoryStorage(), nil
	}

	if cfg.AutoMigrate {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return nil, err
		}
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPoolWithConfig(connectCtx, postgres.PoolConfig{
		DatabaseURL:     cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		MinConns:        cfg.DatabaseMinConns,
		MaxConnLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return newPostgresStorage(pool), nil
}

func newPostgresStorage(pool *pgxpool.Pool) *storage {
	return &storage{
		txManager:    postgresRepo.NewTxManager(pool),
		accounts:     postgresRepo.NewAccountRepository(pool),
		transactions: postgresRepo.NewTransactionRepository(pool),
		outbox:       postgresRepo.NewOutboxRepository(pool),
		users:        postgresRepo.NewUserRepository(pool),
		ledger:       postgresRepo.NewLedgerRepository(pool),
		retrier:      postgresRepo.NewRetrier(),
		checks:       []handler.Check{{Name: "postgres", Ping: pool.Ping}},
		close:        pool.Close,
	}
}

func newMemoryStorage() *storage {
	store := memoryRepo.NewStore()
	return &storage{
		txManager:    memoryRepo.NewTxManager(store),
		accounts:     memoryRepo.NewAccountRepository(store),
		transactions: memoryRepo.NewTransactionRepository(store),
		outbox:       memoryRepo.NewOutboxRepository(store),
		users:        memoryRepo.NewUserRepository(store),
		ledger:       memoryRepo.NewLedgerRepository(store),
		close:        func() {},
	}
}

// newPublisher returns the Kafka publisher when brokers are configured and a
// log-only publisher otherwise, plus a function releasing it.
func newPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, func() error) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(log), func() error { return nil }
	}

	kp := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing transfer events to kafka")
	return kp, kp.Close
}

func newRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewWithRegisterer(reg)
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	policy, err := cfg.LimitPolicy()
	if err != nil {
		return err
	}

	reg, m := newRegistry()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	var (
		cache       usecase.Cache
		idempotency usecase.IdempotencyStore
		checks      = store.checks
	)
	if cfg.RedisEnabled {
		redisClient, err := redis.NewClient(ctx, redis.Config{
			URL:      cfg.RedisURL,
			PoolSize: cfg.RedisPoolSize,
			Timeout:  cfg.RedisTimeout,
		})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		cache = redisRepo.NewCache(redisClient, "lookup")
		idempotency = redisRepo.NewIdempotencyStore(redisClient)
		checks = append(checks, redisCheck(redisClient))
	}

	clk := clock.New()
	idGen := idgen.NewULIDGenerator()
	limits := usecase.NewLimitTracker(store.accounts, policy)

	opts := []usecase.TransferOption{
		usecase.WithObserver(m),
		usecase.WithTransactionTimeout(cfg.TransactionTimeout),
	}
	if store.retrier != nil {
		opts = append(opts, usecase.WithRetrier(store.retrier))
	}

	transferUC := usecase.NewTransferUseCase(
		store.txManager, store.accounts, store.transactions, store.outbox,
		limits, idGen, idgen.NewTrackingCodeGenerator(), clk, opts...,
	)
	accountUC := usecase.NewAccountUseCase(store.accounts, limits, idGen, clk)
	ledgerUC := usecase.NewLedgerUseCase(store.accounts, store.transactions, store.ledger, cache)
	reconciliationUC := usecase.NewReconciliationUseCase(store.accounts, store.transactions, ledgerUC, clk)

	routerCfg := httpAdapter.RouterConfig{
		TransferHandler:  handler.NewTransferHandler(transferUC),
		AccountHandler:   handler.NewAccountHandler(accountUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, reconciliationUC),
		HealthHandler:    handler.NewHealthHandler(checks...),
		IdempotencyStore: idempotency,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		Metrics:          m,
		MetricsHandler:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:           log,
		AdminRoutes:      cfg.AdminRoutesEnabled,
	}

	if cfg.AuthEnabled {
		jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		sessionUC := usecase.NewSessionUseCase(store.users, jwtManager, idGen, clk)
		routerCfg.SessionHandler = handler.NewSessionHandler(sessionUC)
		routerCfg.Authenticator = jwtManager
	} else {
		log.Warn().Msg("authentication disabled, customer routes are open")
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		rateLimiter.Rejected = m.RateLimitHits
		routerCfg.RateLimiter = rateLimiter
	}

	publisher, closePublisher := newPublisher(cfg, log)
	defer func() {
		if err := closePublisher(); err != nil {
			log.Warn().Err(err).Msg("failed to close event publisher")
		}
	}()

	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  publisher,
		Observer:   m,
		Logger:     log,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
		Retention:  cfg.OutboxRetention,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.Store).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return ignoreCanceled(outbox.Start(gctx))
	})

	if rateLimiter != nil {
		g.Go(func() error {
			return rateLimiter.Run(gctx, rateLimiterCleanupInterval)
		})
	}

	return g.Wait()
}

func redisCheck(client *goredis.Client) handler.Check {
	return handler.Check{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
