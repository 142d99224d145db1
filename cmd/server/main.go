// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/uno/internal/api"
	"github.com/jason-s-yu/uno/internal/config"
	"github.com/jason-s-yu/uno/internal/handlers"
	"github.com/jason-s-yu/uno/internal/middleware"
	"github.com/jason-s-yu/uno/internal/session"
	"github.com/jason-s-yu/uno/internal/settings"
	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := settings.Open(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to open settings store: %v", err)
	}
	defer store.Close()

	srv := handlers.NewServer(store, session.Options{
		API:              api.NewClient(cfg.GameAPIURL, cfg.GameAPITimeout, logger),
		SettleDelay:      cfg.SettleDelay,
		ColorSettleDelay: cfg.ColorSettleDelay,
		UnoGrace:         cfg.UnoGrace,
		NoticeDuration:   cfg.NoticeDuration,
		ColorNotice:      cfg.ColorNotice,
		RequestTimeout:   cfg.GameAPITimeout,
		Logger:           logger,
	}, cfg.AllowedOrigins, logger)

	mux := http.NewServeMux()
	srv.Routes(mux, middleware.LogMiddleware(logger))

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: middleware.CORS(cfg.AllowedOrigins)(mux),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.WithFields(logrus.Fields{
			"addr":     cfg.Addr(),
			"gameApi":  cfg.GameAPIURL,
			"settings": cfg.SettingsBackend,
		}).Info("Running")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		srv.Sessions.CloseAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
