// Command demo walks through the per-product endpoints: it inserts a
// generated catalog, pages through the listing, reads and rewrites single
// products and finally deletes everything it created.
package main

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"go.uber.org/zap"

	"shopfeed/internal/atom"
	"shopfeed/internal/config"
	"shopfeed/internal/content"
	"shopfeed/internal/infrastructure/logger"
)

const demoProducts = 30

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
	ctx := context.Background()

	if err := run(ctx, client, cfg.API.Homepage, zapLogger); err != nil {
		zapLogger.Fatal("demo failed", zap.Error(err))
	}
}

func run(ctx context.Context, client *content.Client, homepage string, logger *zap.Logger) error {
	logger.Info("inserting products", zap.Int("count", demoProducts))
	var inserted []*atom.Product
	for i := 0; i < demoProducts; i++ {
		created, err := client.InsertProduct(ctx, demoProduct(i, homepage))
		if err != nil {
			return fmt.Errorf("inserting product %d: %w", i, err)
		}
		inserted = append(inserted, created)
	}

	all, err := client.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}
	logger.Info("listed products", zap.Int("count", len(all)))

	one, err := client.GetProduct(ctx, inserted[0].RemoteID())
	if err != nil {
		return fmt.Errorf("reading product back: %w", err)
	}
	logger.Info("read single product", zap.String("id", one.ExternalID), zap.String("title", one.Title))

	for _, p := range all {
		quantity := 1
		p.Quantity = &quantity
		if _, err := client.UpdateProduct(ctx, p); err != nil {
			return fmt.Errorf("updating product %s: %w", p.ExternalID, err)
		}
	}
	logger.Info("updated all products", zap.Int("count", len(all)))

	one.Title = one.Title + " (updated)"
	if _, err := client.UpdateProduct(ctx, one); err != nil {
		return fmt.Errorf("retitling product: %w", err)
	}
	logger.Info("retitled product", zap.String("id", one.ExternalID))

	for _, p := range inserted {
		if err := client.DeleteProduct(ctx, p.RemoteID()); err != nil {
			return fmt.Errorf("deleting product %s: %w", p.ExternalID, err)
		}
	}

	remaining, err := client.AllProducts(ctx)
	if err != nil {
		return fmt.Errorf("listing after delete: %w", err)
	}
	logger.Info("deleted demo products", zap.Int("remaining", len(remaining)))
	return nil
}

func demoProduct(i int, homepage string) *atom.Product {
	id := "demo-" + strconv.Itoa(i)
	quantity := 10 + i
	return &atom.Product{
		ExternalID: id,
		Lang:       "en",
		Country:    "US",
		Title:      "Demo product " + strconv.Itoa(i),
		Content:    &atom.Content{Type: "text", Value: "A generated demo product"},
		Links: []atom.Link{{
			Rel:  "alternate",
			Type: "text/html",
			Href: homepage + id,
		}},
		Condition: "new",
		Price:     &atom.Price{Unit: "USD", Value: strconv.Itoa(5 + i)},
		Quantity:  &quantity,
		Brand:     "ACME",
	}
}
