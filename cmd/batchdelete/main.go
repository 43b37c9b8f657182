// Command batchdelete removes every product registered for the configured
// merchant, page by page.
package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"shopfeed/internal/config"
	"shopfeed/internal/content"
	"shopfeed/internal/infrastructure/logger"
	"shopfeed/internal/purge"
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

	client := content.New(cfg.API, zapLogger)
	purger := purge.New(client, cfg.API.MerchantID, zapLogger)

	deleted, err := purger.Run(context.Background())
	if err != nil {
		zapLogger.Fatal("purge aborted",
			zap.Int("deleted", deleted),
			zap.Error(err))
	}
	zapLogger.Info("purge finished", zap.Int("deleted", deleted))
}
