package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"haulage/internal/config"
	"haulage/internal/infrastructure/database"
	"haulage/internal/infrastructure/logger"
	"haulage/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.RequireSecrets(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		zapLogger.Fatal("connecting to database", zap.Error(err))
	}
	defer db.Close()
	zapLogger.Info("database connected", zap.String("driver", cfg.Database.Driver))

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	handler, err := server.NewHandler(startCtx, db, cfg, zapLogger)
	cancelStart()
	if err != nil {
		zapLogger.Fatal("building handler", zap.Error(err))
	}

	srv := server.New(cfg.Server.Port, handler, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
