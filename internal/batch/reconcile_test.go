package batch

import (
	"sync"
	"testing"

	"shopfeed/internal/atom"
)

func sentProduct(id string) *atom.Product {
	return ConfigureForInsert(&atom.Product{ExternalID: id}, id)
}

func returnedProduct(id string, code int, reason string) *atom.Product {
	return &atom.Product{
		BatchID:     id,
		BatchStatus: &atom.BatchStatus{Code: code, Reason: reason},
	}
}

func interruptedMarker() *atom.Product {
	return &atom.Product{
		BatchInterrupted: &atom.BatchInterrupted{Reason: "quota"},
	}
}

func TestReconcile_AllSucceeded(t *testing.T) {
	sent := []*atom.Product{sentProduct("A"), sentProduct("B"), sentProduct("C")}
	returned := []*atom.Product{
		returnedProduct("A", 201, "Created"),
		returnedProduct("B", 201, "Created"),
		returnedProduct("C", 200, "Updated"),
	}

	sink := NewCollector()
	interrupted := Reconcile(sent, returned, sink)

	if interrupted {
		t.Error("batch should not be interrupted")
	}
	if errs := sink.Errors(); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestReconcile_ItemError(t *testing.T) {
	sent := []*atom.Product{sentProduct("A"), sentProduct("B")}
	failed := returnedProduct("B", 400, "Invalid product")
	failed.Content = &atom.Content{
		Errors: &atom.ServiceErrors{
			Errors: []atom.ServiceError{{Code: "validation", InternalReason: "missing condition"}},
		},
	}
	returned := []*atom.Product{returnedProduct("A", 201, "Created"), failed}

	sink := NewCollector()
	interrupted := Reconcile(sent, returned, sink)

	if interrupted {
		t.Error("batch should not be interrupted")
	}
	errs := sink.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if errs[0].ID != "B" || errs[0].Code != 400 {
		t.Errorf("unexpected error %+v", errs[0])
	}
	if errs[0].Errors == nil || len(errs[0].Errors.Errors) != 1 {
		t.Errorf("expected nested service errors, got %+v", errs[0].Errors)
	}
}

func TestReconcile_InterruptedSynthesizesMissing(t *testing.T) {
	sent := []*atom.Product{sentProduct("A"), sentProduct("B"), sentProduct("C")}
	returned := []*atom.Product{
		returnedProduct("A", 201, "Created"),
		returnedProduct("B", 201, "Created"),
		interruptedMarker(),
	}

	sink := NewCollector()
	interrupted := Reconcile(sent, returned, sink)

	if !interrupted {
		t.Fatal("batch should be interrupted")
	}
	errs := sink.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 synthesized error, got %d: %v", len(errs), errs)
	}
	if errs[0].ID != "C" || errs[0].Code != 500 || errs[0].Reason != InterruptedReason {
		t.Errorf("unexpected synthesized error %+v", errs[0])
	}
}

func TestReconcile_InterruptedCountsFailedAsProcessed(t *testing.T) {
	// A failed entry was still processed: only the item the server never
	// reached gets the synthesized error.
	sent := []*atom.Product{sentProduct("A"), sentProduct("B"), sentProduct("C")}
	returned := []*atom.Product{
		returnedProduct("A", 400, "Invalid product"),
		returnedProduct("B", 201, "Created"),
		interruptedMarker(),
	}

	sink := NewCollector()
	Reconcile(sent, returned, sink)

	errs := sink.Errors()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d: %v", len(errs), errs)
	}
	byID := map[string]Error{}
	for _, e := range errs {
		byID[e.ID] = e
	}
	if byID["A"].Code != 400 {
		t.Errorf("expected item error for A, got %+v", byID["A"])
	}
	if byID["C"].Code != 500 || byID["C"].Reason != InterruptedReason {
		t.Errorf("expected synthesized error for C, got %+v", byID["C"])
	}
}

func TestReconcile_DuplicateIDsConsumedOnce(t *testing.T) {
	// Two sent entries share an ID but only one came back: the extra
	// occurrence is reported as unprocessed.
	sent := []*atom.Product{sentProduct("A"), sentProduct("A"), sentProduct("B")}
	returned := []*atom.Product{
		returnedProduct("A", 201, "Created"),
		returnedProduct("B", 201, "Created"),
		interruptedMarker(),
	}

	sink := NewCollector()
	Reconcile(sent, returned, sink)

	errs := sink.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	if errs[0].ID != "A" || errs[0].Code != 500 {
		t.Errorf("unexpected error %+v", errs[0])
	}
}

func TestReconcile_DiscardSink(t *testing.T) {
	sent := []*atom.Product{sentProduct("A"), sentProduct("B")}
	returned := []*atom.Product{
		returnedProduct("A", 400, "Invalid product"),
		interruptedMarker(),
	}

	// Must not panic: errors are silently dropped.
	if !Reconcile(sent, returned, Discard{}) {
		t.Error("batch should be interrupted")
	}
}

func TestCollector_ConcurrentAdd(t *testing.T) {
	sink := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				sink.Add(Error{ID: "x", Code: 500})
			}
		}()
	}
	wg.Wait()

	if got := len(sink.Errors()); got != 800 {
		t.Errorf("expected 800 errors, got %d", got)
	}
}

func TestConfigure(t *testing.T) {
	p := &atom.Product{ExternalID: "sku-9"}

	ConfigureForDelete(p, "sku-9")
	if p.BatchOperation == nil || p.BatchOperation.Type != atom.OperationDelete {
		t.Errorf("unexpected operation %+v", p.BatchOperation)
	}
	if p.BatchID != "sku-9" {
		t.Errorf("unexpected batch id %q", p.BatchID)
	}

	// An empty batch ID leaves the existing one in place.
	ConfigureForUpdate(p, "")
	if p.BatchID != "sku-9" {
		t.Errorf("batch id should be preserved, got %q", p.BatchID)
	}
	if p.BatchOperation.Type != atom.OperationUpdate {
		t.Errorf("unexpected operation %+v", p.BatchOperation)
	}
}
