package batch

import "shopfeed/internal/atom"

// InterruptedReason is the reason attached to errors synthesized for items
// the server never reached.
const InterruptedReason = "Not processed because batch was interrupted"

// Reconcile compares the entries sent in a batch with the entries the
// server returned and classifies every item that did not succeed into the
// sink. It reports whether the server interrupted the batch partway
// through.
//
// A batch:interrupted entry is a marker, not a product result: it sets the
// interrupted flag and is excluded from correlation. Entries with a non
// success batch:status are recorded as item errors. When the batch was
// interrupted, every sent entry whose batch ID was not echoed back gets a
// synthesized code 500 error.
//
// Reconciliation never fails; it only classifies. Duplicate batch IDs among
// the sent entries are matched best effort: each echoed ID absorbs one sent
// occurrence, the rest are reported as unprocessed.
func Reconcile(sent, returned []*atom.Product, sink Sink) bool {
	interrupted := false
	for _, p := range returned {
		if p.BatchInterrupted != nil {
			interrupted = true
			continue
		}
		if p.BatchStatus != nil && !atom.IsSuccessStatus(p.BatchStatus.Code) {
			sink.Add(Error{
				ID:     p.BatchID,
				Code:   p.BatchStatus.Code,
				Reason: p.BatchStatus.Reason,
				Errors: serviceErrors(p),
			})
		}
	}

	if interrupted {
		reportUnprocessed(sent, returned, sink)
	}
	return interrupted
}

// reportUnprocessed synthesizes an error for every sent entry that has no
// counterpart among the returned ones. Failed entries still count as
// processed: the server answered for them.
func reportUnprocessed(sent, returned []*atom.Product, sink Sink) {
	processed := make(map[string]int, len(returned))
	for _, p := range returned {
		if p.BatchInterrupted == nil {
			processed[p.BatchID]++
		}
	}

	for _, p := range sent {
		if processed[p.BatchID] > 0 {
			processed[p.BatchID]--
			continue
		}
		sink.Add(Error{
			ID:     p.BatchID,
			Code:   500,
			Reason: InterruptedReason,
		})
	}
}

func serviceErrors(p *atom.Product) *atom.ServiceErrors {
	if p.Content == nil {
		return nil
	}
	return p.Content.Errors
}
