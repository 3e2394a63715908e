// Package catalog is the HTTP client for the external product catalog.
// It only reads product data; stock is checked but never reserved here.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnavailable       = errors.New("product service unavailable")
)

// Product is a read-only snapshot of a catalog entry.
type Product struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Client looks up products over HTTP with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a catalog client against the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch retrieves one product by id. Network failures and unexpected
// responses surface as ErrUnavailable; a 404 as ErrProductNotFound.
// There is no retry at this layer.
func (c *Client) Fetch(ctx context.Context, productID int64) (*Product, error) {
	url := fmt.Sprintf("%s/api/products/%d", c.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for product %d", productID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "fetch product %d: %v", productID, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(ErrProductNotFound, "product %d", productID)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Wrapf(ErrUnavailable, "product service returned %d for product %d", resp.StatusCode, productID)
	}

	var payload struct {
		Product *Product `json:"product"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrapf(ErrUnavailable, "decode product %d: %v", productID, err)
	}
	if payload.Product == nil {
		return nil, errors.Wrapf(ErrUnavailable, "product service returned no product for %d", productID)
	}
	return payload.Product, nil
}
