// Package purge removes every product registered for a merchant, one
// listing page at a time.
package purge

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"shopfeed/internal/atom"
	"shopfeed/internal/batch"
	apperrors "shopfeed/internal/errors"
	"shopfeed/internal/uploader"
)

// Client is the slice of the API client the purger needs.
type Client interface {
	ListProducts(ctx context.Context) (*atom.Feed, error)
	ExecuteBatch(ctx context.Context, feed *atom.Feed) (*atom.Feed, error)
}

type Purger struct {
	client     Client
	merchantID string
	logger     *zap.Logger

	// ReportDir is where bug report files are written on transport
	// failures. Defaults to the working directory.
	ReportDir string
}

func New(client Client, merchantID string, logger *zap.Logger) *Purger {
	return &Purger{
		client:     client,
		merchantID: merchantID,
		logger:     logger,
		ReportDir:  ".",
	}
}

// Run deletes products page by page until the listing comes back empty.
// It returns the number of products deleted. A product that fails to
// delete would show up again on the next listing, so any per-item error
// or interruption aborts the run instead of looping forever.
func (p *Purger) Run(ctx context.Context) (int, error) {
	deleted := 0
	for {
		page, err := p.client.ListProducts(ctx)
		if err != nil {
			return deleted, fmt.Errorf("listing products: %w", err)
		}
		if len(page.Entries) == 0 {
			p.logger.Info("all products deleted", zap.Int("deleted", deleted))
			return deleted, nil
		}

		n, err := p.deletePage(ctx, page)
		deleted += n
		if err != nil {
			return deleted, err
		}
	}
}

// deletePage turns one listing page into a delete batch. The edit link of
// each listed entry becomes the Atom ID of the delete request; that is the
// address the server removes.
func (p *Purger) deletePage(ctx context.Context, page *atom.Feed) (int, error) {
	feed := atom.NewBatchFeed(nil)
	for _, e := range page.Entries {
		edit := atom.FindLink(e.Links, "edit")
		if edit == "" {
			return 0, fmt.Errorf("listed product %s has no edit link", e.ExternalID)
		}
		entry := batch.ConfigureForDelete(&atom.Product{AtomID: edit}, e.ExternalID)
		feed.Entries = append(feed.Entries, entry)
	}

	processed, err := p.client.ExecuteBatch(ctx, feed)
	if err != nil {
		if re, ok := apperrors.IsRequestError(err); ok {
			p.reportTransportFailure(feed, re)
		}
		return 0, err
	}

	deleted := 0
	for _, e := range processed.Entries {
		if e.BatchInterrupted != nil {
			return deleted, fmt.Errorf("delete batch interrupted: %s", e.BatchInterrupted.Reason)
		}
		if e.BatchStatus == nil || !atom.IsSuccessStatus(e.BatchStatus.Code) {
			return deleted, fmt.Errorf("could not delete product %s: %s", e.BatchID, batchReason(e))
		}
		deleted++
	}

	p.logger.Info("page deleted", zap.Int("products", deleted))
	return deleted, nil
}

func batchReason(e *atom.Product) string {
	if e.BatchStatus == nil {
		return "no batch status in response entry"
	}
	return fmt.Sprintf("%d %s", e.BatchStatus.Code, e.BatchStatus.Reason)
}

func (p *Purger) reportTransportFailure(sent *atom.Feed, re *apperrors.RequestError) {
	p.logger.Error("server returned an HTTP error for a delete batch",
		zap.Int("status", re.StatusCode))

	path, err := uploader.WriteBugReport(p.ReportDir, p.merchantID, sent, re)
	if err != nil {
		p.logger.Error("could not create bug report file", zap.Error(err))
		return
	}
	p.logger.Error("bug report file created", zap.String("path", path))
}
