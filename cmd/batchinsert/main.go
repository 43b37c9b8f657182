// Command batchinsert reads a product CSV file and inserts its rows into
// the catalog with concurrent batch requests.
//
// Usage:
//
//	batchinsert <csv file> <separator> <workers> <max products per batch>
//
// The API account is configured through the API_* environment variables.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"go.uber.org/zap"

	"shopfeed/internal/batch"
	"shopfeed/internal/config"
	"shopfeed/internal/content"
	"shopfeed/internal/csvfeed"
	"shopfeed/internal/infrastructure/logger"
	"shopfeed/internal/uploader"
)

func main() {
	if len(os.Args) != 5 {
		fmt.Fprintf(os.Stderr, "usage: %s <csv file> <separator> <workers> <max products per batch>\n", os.Args[0])
		os.Exit(2)
	}

	csvPath := os.Args[1]
	separator := os.Args[2]
	workers, err := positiveInt(os.Args[3], "workers")
	if err != nil {
		log.Fatal(err)
	}
	batchSize, err := positiveInt(os.Args[4], "max products per batch")
	if err != nil {
		log.Fatal(err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.NewConsole(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	file, err := os.Open(csvPath)
	if err != nil {
		zapLogger.Fatal("could not open input file", zap.Error(err))
	}
	defer file.Close()

	source := csvfeed.New(file, separator, cfg.API.Homepage)
	client := content.New(cfg.API, zapLogger)
	sink := batch.NewCollector()

	u := uploader.New(client, cfg.API.MerchantID, workers, batchSize, sink, zapLogger)
	err = u.Run(context.Background(), source)

	uploader.ReportParseErrors(zapLogger, source.ParseErrors())
	uploader.ReportBatchErrors(zapLogger, sink.Errors())

	if err != nil {
		zapLogger.Fatal("upload did not complete", zap.Error(err))
	}
}

func positiveInt(arg, name string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, arg)
	}
	return n, nil
}
