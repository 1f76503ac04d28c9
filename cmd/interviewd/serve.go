package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	api "github.com/mind-engage/interview-console/internal/api/http"
	authmw "github.com/mind-engage/interview-console/internal/auth/middleware"
	"github.com/mind-engage/interview-console/internal/cache"
	"github.com/mind-engage/interview-console/internal/config"
	"github.com/mind-engage/interview-console/internal/db"
	"github.com/mind-engage/interview-console/internal/events"
	"github.com/mind-engage/interview-console/internal/interview"
	"github.com/mind-engage/interview-console/internal/logging"
	"github.com/mind-engage/interview-console/internal/scoring"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.Init(cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return errors.Wrap(err, "db open failed")
	}
	defer dbh.Close()

	statsCache, err := cache.New(openCtx, cache.Options{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		Namespace: cfg.RedisNamespace,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := statsCache.Close(); err != nil {
			log.Warn("stats cache close failed", zap.Error(err))
		}
	}()

	store := interview.NewSQLStore(dbh, cfg.DBDriver)
	engine, err := scoring.New(
		scoring.WithMaxValue(cfg.ScoreMaxValue),
		scoring.WithResolution(cfg.ScoreResolution),
	)
	if err != nil {
		return err
	}

	pub := events.NewPublisher(cfg.AMQPURL, cfg.AMQPQueue, cfg.AMQPExpirationMS, log)
	rec := events.NewRecorder(events.NewRepo(dbh), pub, log, events.TypeEvaluationSaved)

	h := api.NewRouter(api.Deps{
		Config:    cfg,
		DB:        dbh,
		Store:     store,
		Evaluator: interview.NewEvaluator(store, engine, rec, log, cfg.DefaultMinimalRate),
		Events:    rec,
		Cache:     statsCache,
		Auth:      authmw.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL),
		Log:       log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("db", cfg.DBDriver),
			zap.String("resolution", string(cfg.ScoreResolution)),
			zap.Bool("auth", cfg.AuthEnabled),
			zap.Bool("amqp", cfg.AMQPURL != ""),
			zap.Bool("redis", cfg.RedisAddr != ""))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, stopWait := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopWait()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
}
