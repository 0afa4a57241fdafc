package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/captable-simulator/internal/api"
	"github.com/sheikh-saqib/captable-simulator/internal/config"
	"github.com/sheikh-saqib/captable-simulator/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/captable-simulator/internal/interfaces"
	"github.com/sheikh-saqib/captable-simulator/internal/scenario"
	"github.com/sheikh-saqib/captable-simulator/internal/storage/memory"
	"github.com/sheikh-saqib/captable-simulator/internal/storage/postgres"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := cfg.NewLogger(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server stopped")
		stop()
		os.Exit(1)
	}
}

// run serves until ctx is cancelled, then shuts the server down.
func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	srv, cleanup, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", cfg.ListenAddr).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newServer wires the store, the optional publisher and the HTTP handler.
// cleanup releases the database and the kafka writer.
func newServer(ctx context.Context, cfg config.Config, log zerolog.Logger) (*http.Server, func(), error) {
	var closers []func() error
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Error().Err(err).Msg("close")
			}
		}
	}

	var store interfaces.SimulationStore = memory.NewMemorySimulationStore()
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		closers = append(closers, db.Close)
		pg := postgres.NewPostgresSimulationStore(db)
		if err := pg.Migrate(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		store = pg
		log.Info().Msg("using postgres simulation store")
	} else {
		log.Info().Msg("using in-memory simulation store")
	}

	opts := []scenario.Option{scenario.WithLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := kafka.NewPublisher(cfg.KafkaBrokers)
		closers = append(closers, publisher.Close)
		opts = append(opts, scenario.WithPublisher(publisher, cfg.KafkaTopic))
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing simulation events")
	}
	service := scenario.NewService(store, opts...)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.NewRouter(api.NewHandler(service, log, cfg.DefaultLocale, cfg.DefaultCurrency)),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv, cleanup, nil
}
