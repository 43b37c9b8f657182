// Package content is the HTTP client for the structured content API. It
// builds Atom requests, follows pagination links and executes batch feeds;
// everything above it works with parsed feeds only.
package content

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopfeed/internal/atom"
	"shopfeed/internal/config"
	apperrors "shopfeed/internal/errors"
)

const userAgent = "shopfeed/1.0"

type Client struct {
	rootURL    string
	merchantID string
	authToken  string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(cfg config.APIConfig, logger *zap.Logger) *Client {
	return &Client{
		rootURL:    strings.TrimSuffix(cfg.RootURL, "/"),
		merchantID: cfg.MerchantID,
		authToken:  cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// MerchantID returns the account the client operates on.
func (c *Client) MerchantID() string {
	return c.merchantID
}

func (c *Client) schemaURL() string {
	return fmt.Sprintf("%s/%s/items/products/schema", c.rootURL, c.merchantID)
}

func (c *Client) batchURL() string {
	return c.schemaURL() + "/batch"
}

func (c *Client) productURL(remoteID string) string {
	return c.schemaURL() + "/" + remoteID
}

// InsertProduct sends one product and returns the server's echo of it.
func (c *Client) InsertProduct(ctx context.Context, p *atom.Product) (*atom.Product, error) {
	var inserted atom.Product
	if err := c.do(ctx, http.MethodPost, c.schemaURL(), p, &inserted); err != nil {
		return nil, err
	}
	return &inserted, nil
}

// UpdateProduct replaces the stored product addressed by its remote ID.
func (c *Client) UpdateProduct(ctx context.Context, p *atom.Product) (*atom.Product, error) {
	var updated atom.Product
	if err := c.do(ctx, http.MethodPut, c.productURL(p.RemoteID()), p, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) DeleteProduct(ctx context.Context, remoteID string) error {
	return c.do(ctx, http.MethodDelete, c.productURL(remoteID), nil, nil)
}

func (c *Client) GetProduct(ctx context.Context, remoteID string) (*atom.Product, error) {
	var p atom.Product
	if err := c.do(ctx, http.MethodGet, c.productURL(remoteID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProducts retrieves the first page of the product list.
func (c *Client) ListProducts(ctx context.Context) (*atom.Feed, error) {
	return c.ListPage(ctx, c.schemaURL())
}

// ListPage retrieves one page of the product list from the given URL,
// usually taken from a rel="next" link.
func (c *Client) ListPage(ctx context.Context, url string) (*atom.Feed, error) {
	var feed atom.Feed
	if err := c.do(ctx, http.MethodGet, url, nil, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// AllProducts retrieves the complete product list by following the
// rel="next" links until the last page.
func (c *Client) AllProducts(ctx context.Context) ([]*atom.Product, error) {
	feed, err := c.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	products := feed.Entries

	for next := feed.NextLink(); next != ""; next = feed.NextLink() {
		if feed, err = c.ListPage(ctx, next); err != nil {
			return nil, err
		}
		products = append(products, feed.Entries...)
	}
	return products, nil
}

// ExecuteBatch posts a batch feed and returns the feed of results. A non-2xx
// response comes back as *errors.RequestError with the raw body attached;
// deciding what to do with it is the caller's job.
func (c *Client) ExecuteBatch(ctx context.Context, feed *atom.Feed) (*atom.Feed, error) {
	var processed atom.Feed
	if err := c.do(ctx, http.MethodPost, c.batchURL(), feed, &processed); err != nil {
		return nil, err
	}
	return &processed, nil
}

func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := xml.Marshal(body)
		if err != nil {
			return apperrors.NewInternalError("encoding request body", err)
		}
		reader = strings.NewReader(xml.Header + string(encoded))
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("GData-Version", "1")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", atom.ContentType)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	c.logger.Debug("sending request",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("requestId", requestID))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if !atom.IsSuccessStatus(resp.StatusCode) {
		return apperrors.NewRequestError(resp.StatusCode, resp.Status, respBody)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := xml.Unmarshal(respBody, out); err != nil {
		return apperrors.NewInternalError("decoding response", err)
	}
	return nil
}

// ParseServiceErrors tries to interpret an error response body as the
// server's structured error document.
func ParseServiceErrors(body []byte) (*atom.ServiceErrors, bool) {
	var errs atom.ServiceErrors
	if err := xml.Unmarshal(body, &errs); err != nil || len(errs.Errors) == 0 {
		return nil, false
	}
	return &errs, true
}
