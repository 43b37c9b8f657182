// Package mockapi is an in-memory stand-in for the products endpoint of
// the Content API. It speaks the same Atom dialect as the real server,
// including batch feeds and partial failures, which makes it usable both
// as a test double and as a standalone stub server.
package mockapi

import (
	"sync"

	"shopfeed/internal/atom"
)

// Store keeps products keyed by their remote ID. Insertion order is
// preserved so paged listings are stable.
type Store struct {
	mu       sync.Mutex
	products map[string]*atom.Product
	order    []string
}

func NewStore() *Store {
	return &Store{products: map[string]*atom.Product{}}
}

// Put inserts or replaces a product and returns whether it existed before.
func (s *Store) Put(p *atom.Product) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := p.RemoteID()
	_, existed := s.products[id]
	if !existed {
		s.order = append(s.order, id)
	}
	s.products[id] = p
	return existed
}

func (s *Store) Get(remoteID string) (*atom.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[remoteID]
	return p, ok
}

func (s *Store) Delete(remoteID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[remoteID]; !ok {
		return false
	}
	delete(s.products, remoteID)
	for i, id := range s.order {
		if id == remoteID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Page returns the slice [start, start+max) of the stored products in
// insertion order, start being 1-based, plus the total count.
func (s *Store) Page(start, max int) ([]*atom.Product, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.order)
	if start < 1 {
		start = 1
	}
	if start > total {
		return nil, total
	}
	end := start - 1 + max
	if end > total {
		end = total
	}

	page := make([]*atom.Product, 0, end-start+1)
	for _, id := range s.order[start-1 : end] {
		page = append(page, s.products[id])
	}
	return page, total
}
