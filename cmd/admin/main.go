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

	a, err := app.New(context.Background(), cfg, log, ring)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer a.Close()

	// the admin listener binds to loopback by default; http timeouts are shared
	h := cfg.App.HTTP
	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	srv := server.BuildServer(addr, a.AdminEngine(), h.ReadTimeout(), h.WriteTimeout(), h.IdleTimeout())

	baseURL := server.HumanURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}
