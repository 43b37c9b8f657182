package purge

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"shopfeed/internal/atom"
	apperrors "shopfeed/internal/errors"
)

type mockClient struct {
	ListProductsFunc func(ctx context.Context) (*atom.Feed, error)
	ExecuteBatchFunc func(ctx context.Context, feed *atom.Feed) (*atom.Feed, error)
}

func (m *mockClient) ListProducts(ctx context.Context) (*atom.Feed, error) {
	return m.ListProductsFunc(ctx)
}

func (m *mockClient) ExecuteBatch(ctx context.Context, feed *atom.Feed) (*atom.Feed, error) {
	return m.ExecuteBatchFunc(ctx, feed)
}

func listedProduct(id string) *atom.Product {
	return &atom.Product{
		ExternalID: id,
		Lang:       "en",
		Country:    "US",
		Links: []atom.Link{
			{Rel: "edit", Href: "http://api.example.com/items/products/schema/online:en:US:" + id},
		},
	}
}

func deleteAll(feed *atom.Feed) *atom.Feed {
	out := &atom.Feed{}
	for _, e := range feed.Entries {
		out.Entries = append(out.Entries, &atom.Product{
			BatchID:     e.BatchID,
			BatchStatus: &atom.BatchStatus{Code: 200, Reason: "Success"},
		})
	}
	return out
}

func TestRun_DeletesUntilEmpty(t *testing.T) {
	// Two listing pages, then an empty one.
	pages := []*atom.Feed{
		{Entries: []*atom.Product{listedProduct("a"), listedProduct("b")}},
		{Entries: []*atom.Product{listedProduct("c")}},
		{},
	}

	var batches []*atom.Feed
	client := &mockClient{
		ListProductsFunc: func(ctx context.Context) (*atom.Feed, error) {
			page := pages[0]
			pages = pages[1:]
			return page, nil
		},
		ExecuteBatchFunc: func(ctx context.Context, feed *atom.Feed) (*atom.Feed, error) {
			batches = append(batches, feed)
			return deleteAll(feed), nil
		},
	}

	deleted, err := New(client, "1234567", zap.NewNop()).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 delete batches, got %d", len(batches))
	}

	first := batches[0].Entries[0]
	if first.BatchOperation == nil || first.BatchOperation.Type != atom.OperationDelete {
		t.Errorf("entry not configured for delete: %+v", first.BatchOperation)
	}
	if !strings.HasSuffix(first.AtomID, "online:en:US:a") {
		t.Errorf("delete entry must address the edit link, got %q", first.AtomID)
	}
	if first.BatchID != "a" {
		t.Errorf("unexpected batch id %q", first.BatchID)
	}
}

func TestRun_ItemErrorAborts(t *testing.T) {
	lists := 0
	client := &mockClient{
		ListProductsFunc: func(ctx context.Context) (*atom.Feed, error) {
			lists++
			return &atom.Feed{Entries: []*atom.Product{listedProduct("stuck")}}, nil
		},
		ExecuteBatchFunc: func(ctx context.Context, feed *atom.Feed) (*atom.Feed, error) {
			return &atom.Feed{Entries: []*atom.Product{{
				BatchID:     "stuck",
				BatchStatus: &atom.BatchStatus{Code: 400, Reason: "Bad Request"},
			}}}, nil
		},
	}

	deleted, err := New(client, "1234567", zap.NewNop()).Run(context.Background())
	if err == nil {
		t.Fatal("expected an error for the undeletable product")
	}
	if deleted != 0 {
		t.Errorf("expected 0 deleted, got %d", deleted)
	}
	if lists != 1 {
		t.Errorf("run must not list again after a failed delete, got %d listings", lists)
	}
	if !strings.Contains(err.Error(), "stuck") {
		t.Errorf("error does not name the product: %v", err)
	}
}

func TestRun_InterruptionAborts(t *testing.T) {
	client := &mockClient{
		ListProductsFunc: func(ctx context.Context) (*atom.Feed, error) {
			return &atom.Feed{Entries: []*atom.Product{listedProduct("a"), listedProduct("b")}}, nil
		},
		ExecuteBatchFunc: func(ctx context.Context, feed *atom.Feed) (*atom.Feed, error) {
			return &atom.Feed{Entries: []*atom.Product{
				{BatchID: "a", BatchStatus: &atom.BatchStatus{Code: 200, Reason: "Success"}},
				{BatchInterrupted: &atom.BatchInterrupted{Reason: "quota"}},
			}}, nil
		},
	}

	deleted, err := New(client, "1234567", zap.NewNop()).Run(context.Background())
	if err == nil {
		t.Fatal("expected an error on interruption")
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted before the interruption, got %d", deleted)
	}
}

func TestRun_TransportErrorWritesBugReport(t *testing.T) {
	client := &mockClient{
		ListProductsFunc: func(ctx context.Context) (*atom.Feed, error) {
			return &atom.Feed{Entries: []*atom.Product{listedProduct("a")}}, nil
		},
		ExecuteBatchFunc: func(ctx context.Context, feed *atom.Feed) (*atom.Feed, error) {
			return nil, apperrors.NewRequestError(500, "500 Internal Server Error", []byte("boom"))
		},
	}

	p := New(client, "1234567", zap.NewNop())
	p.ReportDir = t.TempDir()

	_, err := p.Run(context.Background())
	if _, ok := apperrors.IsRequestError(err); !ok {
		t.Fatalf("expected the request error to surface, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(p.ReportDir, "bugreport.scapi.txt")); err != nil {
		t.Errorf("bug report not written: %v", err)
	}
}
