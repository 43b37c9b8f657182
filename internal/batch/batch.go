// Package batch tags entries for batch requests and reconciles the server's
// answer against what was sent.
package batch

import (
	"fmt"
	"sync"

	"shopfeed/internal/atom"
)

// ConfigureForInsert marks the product as an insert operation and sets its
// batch ID. The batch ID is what correlates the entry with its result, so
// it must be unique within the batch.
func ConfigureForInsert(p *atom.Product, batchID string) *atom.Product {
	return configure(p, atom.OperationInsert, batchID)
}

func ConfigureForUpdate(p *atom.Product, batchID string) *atom.Product {
	return configure(p, atom.OperationUpdate, batchID)
}

func ConfigureForDelete(p *atom.Product, batchID string) *atom.Product {
	return configure(p, atom.OperationDelete, batchID)
}

func configure(p *atom.Product, operation, batchID string) *atom.Product {
	p.BatchOperation = &atom.BatchOperation{Type: operation}
	if batchID != "" {
		p.BatchID = batchID
	}
	return p
}

// Error is one failed item of a batch: either a rejection the server
// reported, or a synthesized entry for an item the server never reached.
type Error struct {
	ID     string
	Code   int
	Reason string
	Errors *atom.ServiceErrors
}

func (e Error) Error() string {
	return fmt.Sprintf("code %d in item %s: %s", e.Code, e.ID, e.Reason)
}

// Sink receives batch errors. Implementations must tolerate concurrent Add
// calls from multiple workers.
type Sink interface {
	Add(Error)
}

// Collector is a Sink backed by a mutex guarded slice.
type Collector struct {
	mu     sync.Mutex
	errors []Error
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(err Error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, err)
}

func (c *Collector) Errors() []Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Error, len(c.errors))
	copy(out, c.errors)
	return out
}

// Discard drops every error. Valid for callers that do not care about
// per-item failures.
type Discard struct{}

func (Discard) Add(Error) {}
