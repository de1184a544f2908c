// Command server runs the webhook relay HTTP API.
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
	"github.com/rs/zerolog"

	_ "github.com/datapusher/webhook-relay/docs"
	"github.com/datapusher/webhook-relay/internal/api"
	"github.com/datapusher/webhook-relay/internal/api/handler"
	"github.com/datapusher/webhook-relay/internal/api/metrics"
	"github.com/datapusher/webhook-relay/internal/core/ports"
	"github.com/datapusher/webhook-relay/internal/core/service"
	"github.com/datapusher/webhook-relay/internal/infrastructure/config"
	mongostore "github.com/datapusher/webhook-relay/internal/infrastructure/db/mongo"
	redisstore "github.com/datapusher/webhook-relay/internal/infrastructure/db/redis"
	sqlstore "github.com/datapusher/webhook-relay/internal/infrastructure/db/sql"
	"github.com/datapusher/webhook-relay/internal/infrastructure/queue"
	"github.com/datapusher/webhook-relay/internal/infrastructure/webhook"
	"github.com/datapusher/webhook-relay/pkg/logger"
)

// store bundles the directories of the configured backend.
type store struct {
	accounts     ports.AccountRepository
	destinations ports.DestinationRepository
	pinger       handler.Pinger
	close        func(context.Context) error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty || cfg.IsDevelopment(),
		Service: "webhook-relay",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info().Str("driver", cfg.Store.Driver).Msg("store connected")

	healthChecks := []handler.Pinger{st.pinger}
	accounts := st.accounts

	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()

		accounts = redisstore.NewCachedAccountRepository(accounts, rdb, cfg.Redis.CacheTTL, logger.Component("account_cache"))
		healthChecks = append(healthChecks, redisstore.NewPinger(rdb))
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", cfg.Redis.CacheTTL).Msg("token cache enabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	opts := []service.DispatchOption{service.WithRecorder(m)}
	var pool *queue.Pool
	if cfg.Delivery.Workers > 0 {
		pool = queue.NewPool(cfg.Delivery.Workers, cfg.Delivery.QueueSize, m.QueueDepth, logger.Component("delivery_pool"))
		pool.Start()
		opts = append(opts, service.WithTaskRunner(pool))
	}

	sender := webhook.NewSender(webhook.Config{
		Timeout:   cfg.Delivery.Timeout,
		UserAgent: cfg.Delivery.UserAgent,
	})

	e := api.NewRouter(api.Deps{
		Logger:         logger.Component("http"),
		Accounts:       service.NewAccountService(accounts, st.destinations, logger.Component("accounts")),
		Destinations:   service.NewDestinationService(st.destinations, accounts, logger.Component("destinations")),
		Dispatch:       service.NewDispatchService(accounts, st.destinations, sender, logger.Component("dispatch"), opts...),
		HealthChecks:   healthChecks,
		AdminJWTSecret: cfg.AdminJWTSecret,
		TokenHeader:    cfg.TokenHeader,
		BodyLimit:      cfg.BodyLimit,
		ExposeErrors:   cfg.ExposeErrors || cfg.IsDevelopment(),
	})

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	if pool != nil {
		if err := pool.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("delivery pool did not drain")
		}
	}
	if err := st.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store close failed")
	}

	log.Info().Msg("server gracefully stopped")
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (*store, error) {
	switch cfg.Store.Driver {
	case sqlstore.DriverSQLite, sqlstore.DriverPostgres:
		db, err := sqlstore.Open(ctx, sqlstore.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN})
		if err != nil {
			return nil, err
		}
		if err := sqlstore.CreateSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &store{
			accounts:     sqlstore.NewAccountStore(db),
			destinations: sqlstore.NewDestinationStore(db),
			pinger:       sqlstore.NewPinger(db),
			close:        func(context.Context) error { return db.Close() },
		}, nil
	default:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		accounts := mongostore.NewAccountRepository(db)
		destinations := mongostore.NewDestinationRepository(db)

		indexCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := mongostore.EnsureIndexes(indexCtx, accounts, destinations); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &store{
			accounts:     accounts,
			destinations: destinations,
			pinger:       mongostore.NewPinger(db),
			close:        client.Disconnect,
		}, nil
	}
}
