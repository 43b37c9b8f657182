package mockapi

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"shopfeed/internal/atom"
)

const defaultPageSize = 25

// Faults makes the handler misbehave on purpose. Zero values mean normal
// operation.
type Faults struct {
	// TransportFailures answers that many batch calls with a plain 503
	// before going back to normal.
	TransportFailures int
	// InterruptAfter processes that many entries of each batch and then
	// appends a batch:interrupted entry, dropping the rest.
	InterruptAfter int
}

type Handler struct {
	store     *Store
	authToken string
	logger    *zap.Logger

	mu     sync.Mutex
	faults Faults
}

// NewHandler builds a handler around the store. An empty authToken
// disables the Authorization check.
func NewHandler(store *Store, authToken string, logger *zap.Logger) *Handler {
	return &Handler{
		store:     store,
		authToken: authToken,
		logger:    logger,
	}
}

// SetFaults swaps the active fault plan. Safe to call while serving.
func (h *Handler) SetFaults(f Faults) {
	h.mu.Lock()
	h.faults = f
	h.mu.Unlock()
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(h.authorize)
	r.Route("/{merchantID}/items/products/schema", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.insertProduct)
		r.Post("/batch", h.executeBatch)
		r.Get("/{productID}", h.getProduct)
		r.Put("/{productID}", h.updateProduct)
		r.Delete("/{productID}", h.deleteProduct)
	})
	return r
}

func (h *Handler) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.authToken != "" && r.Header.Get("Authorization") != "Bearer "+h.authToken {
			h.writeServiceError(w, http.StatusUnauthorized, "GData", "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) insertProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}
	if !h.validateIdentity(w, p) {
		return
	}

	h.decorate(r, p)
	h.store.Put(p)
	h.writeEntry(w, http.StatusCreated, p)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Get(chi.URLParam(r, "productID"))
	if !ok {
		h.writeServiceError(w, http.StatusNotFound, "GData", "Product not found")
		return
	}
	h.writeEntry(w, http.StatusOK, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := h.decodeEntry(w, r)
	if !ok {
		return
	}
	if !h.validateIdentity(w, p) {
		return
	}

	remoteID := chi.URLParam(r, "productID")
	if _, exists := h.store.Get(remoteID); !exists {
		h.writeServiceError(w, http.StatusNotFound, "GData", "Product not found")
		return
	}
	if p.RemoteID() != remoteID {
		h.writeServiceError(w, http.StatusBadRequest, "GData",
			"Entry does not match the requested product")
		return
	}

	h.decorate(r, p)
	h.store.Put(p)
	h.writeEntry(w, http.StatusOK, p)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(chi.URLParam(r, "productID")) {
		h.writeServiceError(w, http.StatusNotFound, "GData", "Product not found")
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	start := queryInt(r, "start-index", 1)
	max := queryInt(r, "max-results", defaultPageSize)

	page, total := h.store.Page(start, max)
	feed := &atom.Feed{
		ID:           baseURL(r) + r.URL.Path,
		Title:        "Products",
		TotalResults: total,
		StartIndex:   start,
		ItemsPerPage: max,
		Entries:      page,
	}
	if start+max <= total {
		feed.Links = append(feed.Links, atom.Link{
			Rel:  "next",
			Type: atom.ContentType,
			Href: fmt.Sprintf("%s%s?start-index=%d&max-results=%d", baseURL(r), r.URL.Path, start+max, max),
		})
	}

	h.writeXML(w, http.StatusOK, feed)
}

func (h *Handler) executeBatch(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.faults.TransportFailures > 0 {
		h.faults.TransportFailures--
		h.mu.Unlock()
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
		return
	}
	interruptAfter := h.faults.InterruptAfter
	h.mu.Unlock()

	var feed atom.Feed
	if err := xml.NewDecoder(r.Body).Decode(&feed); err != nil {
		h.writeServiceError(w, http.StatusBadRequest, "GData", "Invalid batch feed")
		return
	}

	out := &atom.Feed{Title: "Batch results"}
	success, failed := 0, 0
	for i, entry := range feed.Entries {
		if interruptAfter > 0 && i >= interruptAfter {
			out.Entries = append(out.Entries, &atom.Product{
				BatchInterrupted: &atom.BatchInterrupted{
					Reason:      "Batch processing was interrupted",
					Success:     success,
					Parsed:      i,
					Error:       failed,
					Unprocessed: len(feed.Entries) - i,
				},
			})
			break
		}

		result := h.applyBatchEntry(r, entry)
		if atom.IsSuccessStatus(result.BatchStatus.Code) {
			success++
		} else {
			failed++
		}
		out.Entries = append(out.Entries, result)
	}

	h.writeXML(w, http.StatusOK, out)
}

// applyBatchEntry executes one batch entry against the store and builds
// the response entry for it.
func (h *Handler) applyBatchEntry(r *http.Request, entry *atom.Product) *atom.Product {
	// decorate wipes the batch fields on stored entries, so the echoed ID
	// has to be taken off the entry first.
	batchID := entry.BatchID

	if entry.BatchOperation == nil {
		return batchFailure(batchID, http.StatusBadRequest, "Missing batch operation", nil)
	}

	switch entry.BatchOperation.Type {
	case atom.OperationInsert:
		if err := identityErrors(entry); err != nil {
			return batchFailure(batchID, http.StatusBadRequest, "Invalid entry", err)
		}
		h.decorate(r, entry)
		h.store.Put(entry)
		return batchSuccess(batchID, http.StatusCreated, "Created")

	case atom.OperationUpdate:
		if err := identityErrors(entry); err != nil {
			return batchFailure(batchID, http.StatusBadRequest, "Invalid entry", err)
		}
		if _, exists := h.store.Get(entry.RemoteID()); !exists {
			return batchFailure(batchID, http.StatusNotFound, "Product not found", nil)
		}
		h.decorate(r, entry)
		h.store.Put(entry)
		return batchSuccess(batchID, http.StatusOK, "Success")

	case atom.OperationDelete:
		// Delete entries address the product by its edit URL.
		remoteID := entry.AtomID[strings.LastIndex(entry.AtomID, "/")+1:]
		if !h.store.Delete(remoteID) {
			return batchFailure(batchID, http.StatusNotFound, "Product not found", nil)
		}
		return batchSuccess(batchID, http.StatusOK, "Success")

	default:
		return batchFailure(batchID, http.StatusBadRequest,
			"Unknown batch operation "+entry.BatchOperation.Type, nil)
	}
}

func batchSuccess(batchID string, code int, reason string) *atom.Product {
	return &atom.Product{
		BatchID:     batchID,
		BatchStatus: &atom.BatchStatus{Code: code, Reason: reason},
	}
}

func batchFailure(batchID string, code int, reason string, errs *atom.ServiceErrors) *atom.Product {
	p := &atom.Product{
		BatchID:     batchID,
		BatchStatus: &atom.BatchStatus{Code: code, Reason: reason},
	}
	if errs != nil {
		p.Content = &atom.Content{Type: "application/vnd.google.gdata.error+xml", Errors: errs}
	}
	return p
}

// identityErrors checks the fields that make up the remote ID.
func identityErrors(p *atom.Product) *atom.ServiceErrors {
	var errs atom.ServiceErrors
	for field, value := range map[string]string{
		"id":               p.ExternalID,
		"content_language": p.Lang,
		"target_country":   p.Country,
	} {
		if value == "" {
			errs.Errors = append(errs.Errors, atom.ServiceError{
				Domain:         "GData",
				Code:           "required",
				Location:       field,
				InternalReason: "Missing " + field,
			})
		}
	}
	if len(errs.Errors) == 0 {
		return nil
	}
	return &errs
}

func (h *Handler) validateIdentity(w http.ResponseWriter, p *atom.Product) bool {
	if errs := identityErrors(p); errs != nil {
		h.writeXML(w, http.StatusBadRequest, errorsDocument{Errors: errs.Errors})
		return false
	}
	return true
}

// decorate fills in the server-assigned parts of a stored entry: the Atom
// ID and the self and edit links.
func (h *Handler) decorate(r *http.Request, p *atom.Product) {
	merchantID := chi.URLParam(r, "merchantID")
	url := fmt.Sprintf("%s/%s/items/products/schema/%s", baseURL(r), merchantID, p.RemoteID())

	p.AtomID = url
	p.Links = append(trimLinks(p.Links),
		atom.Link{Rel: "self", Type: atom.ContentType, Href: url},
		atom.Link{Rel: "edit", Type: atom.ContentType, Href: url},
	)
	p.BatchOperation = nil
	p.BatchID = ""
}

// trimLinks drops previously assigned self and edit links so decorate
// stays idempotent across updates.
func trimLinks(links []atom.Link) []atom.Link {
	kept := links[:0]
	for _, l := range links {
		if l.Rel == "self" || l.Rel == "edit" {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

func (h *Handler) decodeEntry(w http.ResponseWriter, r *http.Request) (*atom.Product, bool) {
	var p atom.Product
	if err := xml.NewDecoder(r.Body).Decode(&p); err != nil {
		h.writeServiceError(w, http.StatusBadRequest, "GData", "Invalid entry")
		return nil, false
	}
	return &p, true
}

func (h *Handler) writeEntry(w http.ResponseWriter, status int, p *atom.Product) {
	h.writeXML(w, status, p)
}

// errorsDocument is the standalone gd:errors body of a failed request.
type errorsDocument struct {
	XMLName xml.Name            `xml:"http://schemas.google.com/g/2005 errors"`
	Errors  []atom.ServiceError `xml:"http://schemas.google.com/g/2005 error"`
}

func (h *Handler) writeServiceError(w http.ResponseWriter, status int, domain, reason string) {
	h.writeXML(w, status, errorsDocument{Errors: []atom.ServiceError{{
		Domain:         domain,
		Code:           strconv.Itoa(status),
		InternalReason: reason,
	}}})
}

func (h *Handler) writeXML(w http.ResponseWriter, status int, doc interface{}) {
	encoded, err := xml.Marshal(doc)
	if err != nil {
		h.logger.Error("could not encode response", zap.Error(err))
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", atom.ContentType)
	w.WriteHeader(status)
	if _, err := w.Write([]byte(xml.Header + string(encoded))); err != nil {
		h.logger.Error("could not write response", zap.Error(err))
	}
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
