// Package uploader drives the concurrent batch insert pipeline: workers
// pull fixed size slices from a shared product source, send each slice as
// one batch and reconcile the per-item results.
package uploader

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"shopfeed/internal/atom"
	"shopfeed/internal/batch"
	apperrors "shopfeed/internal/errors"
	"shopfeed/internal/csvfeed"
)

// BatchExecutor is the slice of the API client the uploader needs.
type BatchExecutor interface {
	ExecuteBatch(ctx context.Context, feed *atom.Feed) (*atom.Feed, error)
}

type Uploader struct {
	client     BatchExecutor
	merchantID string
	workers    int
	batchSize  int
	sink       batch.Sink
	logger     *zap.Logger

	// ReportDir is where bug report files are written on transport
	// failures. Defaults to the working directory.
	ReportDir string
}

func New(client BatchExecutor, merchantID string, workers, batchSize int, sink batch.Sink, logger *zap.Logger) *Uploader {
	return &Uploader{
		client:     client,
		merchantID: merchantID,
		workers:    workers,
		batchSize:  batchSize,
		sink:       sink,
		logger:     logger,
		ReportDir:  ".",
	}
}

// Run pulls every product out of the source and uploads it. It always
// waits for all workers; a worker that hits a transport failure aborts
// alone and its error is part of the joined result.
func (u *Uploader) Run(ctx context.Context, src *csvfeed.Source) error {
	u.logger.Info("starting upload",
		zap.Int("workers", u.workers),
		zap.Int("maxProductsInBatch", u.batchSize))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures []error
	)
	for i := 0; i < u.workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			if err := u.runWorker(ctx, worker, src); err != nil {
				u.logger.Error("worker failed", zap.Int("worker", worker), zap.Error(err))
				mu.Lock()
				failures = append(failures, fmt.Errorf("worker %d: %w", worker, err))
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	return errors.Join(failures...)
}

func (u *Uploader) runWorker(ctx context.Context, worker int, src *csvfeed.Source) error {
	for {
		products, err := src.NextBatch(u.batchSize)
		if err != nil {
			return fmt.Errorf("reading products: %w", err)
		}
		if len(products) == 0 {
			return nil
		}
		if err := u.sendBatch(ctx, worker, products); err != nil {
			return err
		}
	}
}

// sendBatch tags the products for insertion and executes them as one batch.
// The batch ID of every entry is its product ID, so failures can be traced
// back to the source row.
func (u *Uploader) sendBatch(ctx context.Context, worker int, products []*atom.Product) error {
	for _, p := range products {
		batch.ConfigureForInsert(p, p.ExternalID)
	}
	feed := atom.NewBatchFeed(products)

	processed, err := u.client.ExecuteBatch(ctx, feed)
	if err != nil {
		if re, ok := apperrors.IsRequestError(err); ok {
			u.reportTransportFailure(feed, re)
		}
		return err
	}

	interrupted := batch.Reconcile(feed.Entries, processed.Entries, u.sink)
	u.logger.Debug("batch processed",
		zap.Int("worker", worker),
		zap.Int("products", len(products)),
		zap.Bool("interrupted", interrupted))
	return nil
}

// reportTransportFailure dumps the request and the raw response to a file.
// A whole-batch HTTP error should not happen per the protocol; when it
// does, the dump is the only way to investigate offline.
func (u *Uploader) reportTransportFailure(sent *atom.Feed, re *apperrors.RequestError) {
	u.logger.Error("server returned an HTTP error for a batch request",
		zap.Int("status", re.StatusCode))

	path, err := WriteBugReport(u.ReportDir, u.merchantID, sent, re)
	if err != nil {
		u.logger.Error("could not create bug report file", zap.Error(err))
		return
	}
	u.logger.Error("bug report file created; it contains the request sent, "+
		"the server response, the current time and the merchant ID",
		zap.String("path", path))
}
