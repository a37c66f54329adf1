package main

import (
	"fmt"
	"log"
	"os"

	"haulage/internal/config"
	"haulage/internal/infrastructure/logger"
	"haulage/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.NewConsole(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	a := newApp(cfg, zapLogger, func() (*session.Store, error) {
		return session.Open(session.Config{Path: cfg.Client.SessionDir}, zapLogger)
	})

	err = newRootCmd(a).Execute()
	a.teardown()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
