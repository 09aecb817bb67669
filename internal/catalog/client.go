package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
)

type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
	VendorID string `json:"vendor_id"`
}

type Center struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client reads product and center display data from the marketplace API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var p Product
	if err := c.get(ctx, "GetProduct", "product", id, "/products/"+url.PathEscape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetCenter(ctx context.Context, id string) (*Center, error) {
	var center Center
	if err := c.get(ctx, "GetCenter", "center", id, "/centers/"+url.PathEscape(id), &center); err != nil {
		return nil, err
	}
	return &center, nil
}

func (c *Client) get(ctx context.Context, op, entity, id, path string, out any) error {
	logger.ExternalServiceCall("catalog", op, "id", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return c.boundary(op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.boundary(op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		logger.ExternalServiceResult("catalog", op, nil, "id", id, "status", resp.StatusCode)
		return domain.NewNotFoundError(entity, id)
	case resp.StatusCode >= 300:
		return c.boundary(op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.boundary(op, fmt.Errorf("decode response: %w", err))
	}
	logger.ExternalServiceResult("catalog", op, nil, "id", id)
	return nil
}

func (c *Client) boundary(op string, err error) error {
	logger.ExternalServiceResult("catalog", op, err)
	return &domain.ExternalBoundaryError{Service: "catalog", Op: op, Err: err}
}
