package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"movieapi/httpserver"
	"movieapi/movie"
	"movieapi/pkg/config"
	"movieapi/pkg/sentry"
	"movieapi/postgres"

	sentrygo "github.com/getsentry/sentry-go"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Cannot load config", "error", err)
		os.Exit(1)
	}

	if err := sentry.Init(cfg); err != nil {
		slog.Error("Cannot init sentry", "error", err)
		os.Exit(1)
	}
	defer sentrygo.Flush(sentry.FlushTime)

	moviesDB, err := postgres.NewConnection(postgres.OptionsFrom(cfg.MoviesDatabase()))
	if err != nil {
		slog.Error("Cannot open movies connection", "error", err)
		os.Exit(1)
	}
	ratingsDB, err := postgres.NewConnection(postgres.OptionsFrom(cfg.RatingsDatabase()))
	if err != nil {
		slog.Error("Cannot open ratings connection", "error", err)
		os.Exit(1)
	}

	locale, err := language.Parse(cfg.Locale)
	if err != nil {
		slog.Warn("Unknown locale, using English", "locale", cfg.Locale, "error", err)
		sentry.Warningf("unknown locale %q, budgets use English grouping", cfg.Locale)
		locale = language.English
	}

	server := httpserver.Default(cfg)
	server.MovieService = movie.NewUsecase(
		postgres.NewMovieRepository(moviesDB),
		postgres.NewRatingRepository(ratingsDB),
		movie.NewPresenter(locale),
	)
	server.HealthChecks = map[string]httpserver.HealthCheck{
		"movies":  pingCheck(moviesDB),
		"ratings": pingCheck(ratingsDB),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server started!", "addr", server.Addr)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.Fatal(err)
			slog.Error("server stopped with error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

func pingCheck(db *gorm.DB) httpserver.HealthCheck {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
