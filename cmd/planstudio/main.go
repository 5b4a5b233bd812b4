package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.uber.org/zap"

	"plan-annotator/internal/commands"
	"plan-annotator/internal/common/config"
	"plan-annotator/internal/common/logger"
	"plan-annotator/internal/imageref"
)

// ============================================================
// Plan Studio
// ============================================================

func main() {
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "planstudio")
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, closeStore, err := commands.OpenStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("store close failed", zap.Error(err))
		}
	}()
	log.Debug("store ready", zap.String("backend", cfg.Store.Backend), zap.String("env", cfg.Environment))

	images := imageref.NewIngestor(
		imageref.NewBlobStorage(cfg.Images.Dir),
		imageref.Options{MaxBytes: cfg.Images.MaxBytes, Inline: cfg.Images.Inline},
		log.Named("images"),
	)

	app := commands.NewApp(kv, images, log)
	return commands.NewRootCmd(app).ExecuteContext(ctx)
}
