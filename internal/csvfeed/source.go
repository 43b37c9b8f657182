// Package csvfeed turns a separator delimited product file into atom
// products. One Source is shared by all upload workers: retrieval is mutex
// guarded, so every row is handed out exactly once.
package csvfeed

import (
	"bufio"
	"io"
	"sync"

	"shopfeed/internal/atom"
	apperrors "shopfeed/internal/errors"
)

// Source reads products line by line. The first line of the input is
// dropped at construction: it holds the human readable column headers.
type Source struct {
	mu        sync.Mutex
	scanner   *bufio.Scanner
	separator string
	homepage  string
	row       int
	parseErrs []*apperrors.ParseError
}

// New wraps a reader producing one product per line. The separator is
// matched literally, so it must not occur inside any field. homepage is
// prepended to the relative product page link of every row.
func New(r io.Reader, separator, homepage string) *Source {
	s := &Source{
		scanner:   bufio.NewScanner(r),
		separator: separator,
		homepage:  homepage,
	}
	if s.scanner.Scan() {
		s.row = 1
	}
	return s
}

// Next parses and returns the next product. Rows that fail to parse are
// recorded and skipped. Returns nil, nil when the input is exhausted.
func (s *Source) Next() (*atom.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next()
}

// NextBatch returns up to max products. The whole pull happens under the
// source lock, so concurrent workers never receive the same row. An empty
// slice means the input is exhausted.
func (s *Source) NextBatch(max int) ([]*atom.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]*atom.Product, 0, max)
	for i := 0; i < max; i++ {
		p, err := s.next()
		if err != nil {
			return nil, err
		}
		if p == nil {
			break
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Source) next() (*atom.Product, error) {
	for s.scanner.Scan() {
		s.row++
		line := s.scanner.Text()
		p, err := s.parseProduct(line)
		if err != nil {
			if pe, ok := apperrors.IsParseError(err); ok {
				pe.Row = s.row
				s.parseErrs = append(s.parseErrs, pe)
				continue
			}
			return nil, err
		}
		return p, nil
	}
	return nil, s.scanner.Err()
}

// ParseErrors returns the rows that could not be parsed so far.
func (s *Source) ParseErrors() []*apperrors.ParseError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*apperrors.ParseError, len(s.parseErrs))
	copy(out, s.parseErrs)
	return out
}
