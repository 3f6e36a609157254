package chec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// DefaultBaseURL is the public Commerce.js API host.
const DefaultBaseURL = "https://api.chec.io"

// maxBody guards against runaway responses; a page of 200 products with
// assets stays well below it.
const maxBody = 32 << 20

// Client reads catalog pages from the Chec (Commerce.js) REST API.
type Client struct {
	key     string
	baseURL string
	http    *retryablehttp.Client
}

// NewClient constructs a Client authenticated with the store's secret key.
func NewClient(baseURL, secretKey string, logger *slog.Logger) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	if logger != nil {
		rc.Logger = logger
	} else {
		rc.Logger = slog.Default()
	}

	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		key:     secretKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    rc,
	}
}

// FetchPage implements ports.PageSource.
// Docs: GET /v1/{products|categories}?limit=200&page=n
func (c *Client) FetchPage(ctx context.Context, kind domain.EntityKind, page int) (*domain.Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("page must be >= 1, got %d", page)
	}
	q := url.Values{}
	q.Set("limit", strconv.Itoa(domain.PageSize))
	q.Set("page", strconv.Itoa(page))
	u := fmt.Sprintf("%s/v1/%s?%s", c.baseURL, url.PathEscape(string(kind)), q.Encode())

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-Authorization", c.key)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chec %s page %d: %w", kind, page, err)
	}
	defer resp.Body.Close()

	raw, err := readAllLimit(resp.Body, maxBody)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("chec error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out domain.Page
	if err := domain.DecodeJSON(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s page %d: %w", kind, page, err)
	}
	return &out, nil
}

func readAllLimit(r io.Reader, limit int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errors.New("payload too large")
	}
	return b, nil
}

var _ ports.PageSource = (*Client)(nil)
