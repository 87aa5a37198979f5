package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rishi-Mehta1/surplus-saver/internal/ai"
	"github.com/Rishi-Mehta1/surplus-saver/internal/app"
	"github.com/Rishi-Mehta1/surplus-saver/internal/clock"
	"github.com/Rishi-Mehta1/surplus-saver/internal/config"
	"github.com/Rishi-Mehta1/surplus-saver/internal/notify"
	"github.com/Rishi-Mehta1/surplus-saver/internal/storage/postgres"
	transporthttp "github.com/Rishi-Mehta1/surplus-saver/internal/transport/http"
	"github.com/Rishi-Mehta1/surplus-saver/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	serviceName     = "surplus-saver-api"
	startupTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", serviceName).Logger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal().Err(err).Msg("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			logger.Warn().Err(err).Msg("redis unreachable, change events stay process-local")
			rdb = nil
		}
	}

	hub := notify.NewHub(logger)
	go hub.Run()
	notifier := notify.NewNotifier(hub, rdb, cfg.Redis.Channel, logger)

	offerRepo := postgres.NewOfferRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)
	reservationSvc := app.NewReservationService(offerRepo, reservationRepo, notifier, clock.NewSystem(), logger)
	offerSvc := app.NewOfferService(offerRepo, notifier, clock.NewSystem())

	var completer ai.Completer
	if cfg.AI.APIKey != "" {
		completer = ai.NewClient(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model)
	} else {
		logger.Warn().Msg("no AI api key configured, assistant replies are canned")
		completer = ai.Static{Reply: "The assistant is offline right now. Browse the offers list for today's surplus bags."}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/offers", transporthttp.HandleOffers(offerSvc))
	mux.Handle("/offers/", transporthttp.HandleOfferActions(offerSvc))
	mux.Handle("/reservations", transporthttp.HandleCreateReservation(reservationSvc))
	mux.Handle("/reservations/", transporthttp.HandleReservationTransition(reservationSvc))
	mux.Handle("/users/", transporthttp.HandleUserReservations(reservationSvc))
	mux.Handle("/assistant", transporthttp.HandleAssistant(completer))
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.Handle("/", transporthttp.NotFoundHandler())

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.HTTP.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: handler,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return notifier.RunBridge(gCtx)
	})
	g.Go(func() error {
		return reservationSvc.RunSweeper(gCtx, cfg.Sweep.Interval)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("service stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("service stopped")
}
