package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"moviedash/internal/config"
	"moviedash/internal/listener"
	"moviedash/internal/logger"
	"moviedash/internal/pipeline"
	"moviedash/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)
	if !cfg.ListenerEnabled {
		fmt.Println("listener disabled (LISTENER_ENABLED=false)")
		return
	}

	log := logger.New(cfg.LogLevel)
	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	svc := listener.NewService(pipeline.NewProcessingService(db, cfg, log), cfg, log)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
