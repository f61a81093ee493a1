package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docuisine/internal/app"
	"docuisine/internal/core/config"
	"docuisine/internal/core/server"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, ring, cleanup := app.NewLogger(cfg)
	defer cleanup()

	// fails fast on database or config errors
	a, err := app.New(context.Background(), cfg, log, ring)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	h := cfg.App.HTTP
	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(addr, a.APIEngine(), h.ReadTimeout(), h.WriteTimeout(), h.IdleTimeout())

	baseURL := server.HumanURL(h.Host, h.Port)
	log.Info("api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.String("metrics", baseURL+"/metrics"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("api start FAILED", zap.Error(err))
		}
	}()
	log.Info("api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("api shutdown", zap.Error(err))
	}
	log.Info("api stopped gracefully")
}
