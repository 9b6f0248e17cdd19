package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi"
	"go.uber.org/zap"

	"github.com/sauerbraten/shortcodes"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := shortcodes.LoadConfig()
	if err != nil {
		return err
	}

	logger, err := shortcodes.NewLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	i, err := shortcodes.OpenIndex(cfg.StorageDSN)
	if err != nil {
		return err
	}
	defer i.Close()

	if err := i.Init(ctx); err != nil {
		return err
	}

	if cfg.CacheTTL > 0 {
		i = shortcodes.NewCachedIndex(i, cfg.CacheTTL)
	}

	sh, err := shortcodes.NewShortener(i, cfg, logger, shortcodes.NewMetrics())
	if err != nil {
		return err
	}

	s := shortcodes.NewServer(sh, logger)

	r := chi.NewRouter()

	s.SetupRoutes(r)

	srv := &http.Server{Addr: cfg.Addr, Handler: r}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server running", zap.String("addr", cfg.Addr), zap.String("base_url", cfg.BaseURL))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
