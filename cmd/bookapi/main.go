package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bookapi/internal/auth"
	"bookapi/internal/config"
	"bookapi/internal/db"
	httpx "bookapi/internal/http"
	"bookapi/internal/jobs"
	"bookapi/internal/logger"
)

func main() {
	cfg, err := config.Load()
	log := logger.New("bookapi", logger.ParseLevel(cfg.LogLevel))
	if err != nil {
		log.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stores, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}

	jwtSvc := auth.NewJWT(cfg.JWTSecret, cfg.TokenTTL)
	hasher := auth.NewHasher(auth.DefaultCost)
	r := httpx.NewRouter(cfg, stores, jwtSvc, hasher, log)

	purger := &jobs.PurgeWorker{Denylist: stores.Denylist, Interval: cfg.PurgeInterval, Log: log}
	go purger.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	if err := stores.Close(shutdownCtx); err != nil {
		log.Error("close stores", "error", err)
	}
}
