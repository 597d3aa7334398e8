package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/J-Olejnik/arepas/internal/server"
)

func main() {
	var (
		addr   = flag.String("addr", "127.0.0.1:5000", "HTTP listen address")
		dbPath = flag.String("db", "arepas.db", "path to the review database")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	store, err := server.OpenStore(*dbPath)
	if err != nil {
		logger.Error("open store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	srv := server.New(store, server.NewStubScorer(), logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := srv.Serve(ctx, *addr); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
