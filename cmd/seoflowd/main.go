// Command seoflowd runs the pipeline daemon: the workflow trigger API and
// its SQLite-backed record store.
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"seoflow/internal/config"
	"seoflow/internal/daemon"
	"seoflow/internal/logging"
	"seoflow/internal/sheet"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := sheet.Open(cfg)
	if err != nil {
		logger.Error("open record store", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		_ = store.Close()
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("start daemon", logging.Error(err))
		return
	}

	<-ctx.Done()
	d.Stop()
}
