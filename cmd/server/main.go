package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bevanwhite/QuestionandAnswer1/internal/avatar"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/config"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/db"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/logging"
	"github.com/Bevanwhite/QuestionandAnswer1/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.New("info", "local").Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.App.LogLevel, cfg.App.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("open database")
	}
	defer database.Close()

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.Avatar.Backend).Msg("avatar storage")
	}

	srv, err := server.New(cfg, database, avatar.NewIngestor(storage), logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build server")
	}
	if err := srv.Prepare(ctx); err != nil {
		logger.Fatal().Err(err).Msg("prepare server")
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTPAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.App.HTTPAddr).Str("env", cfg.App.Env).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	shutdown(httpServer, cfg.App.ShutdownTimeout, logger)
}

func newStorage(ctx context.Context, cfg *config.Config) (avatar.Storage, error) {
	if cfg.Avatar.Backend == "b2" {
		s, err := avatar.NewB2Storage(ctx, cfg.B2.KeyID, cfg.B2.AppKey, cfg.B2.Bucket, cfg.B2.BaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := avatar.NewDiskStorage(cfg.Avatar.Dir, cfg.Avatar.URLPrefix)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func shutdown(s *http.Server, timeout time.Duration, logger zerolog.Logger) {
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}
