package algolia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// Options tunes the HTTP behaviour of a Sink.
type Options struct {
	// Host overrides the write host, e.g. for a proxy. Defaults to
	// https://{applicationID}.algolia.net.
	Host     string
	RetryMax int
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Sink implements ports.IndexSink against the Algolia REST API.
type Sink struct {
	appID   string
	apiKey  string
	baseURL string
	http    *retryablehttp.Client
}

// NewSink constructs a Sink for one application.
func NewSink(appID, apiKey string, opts Options) *Sink {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 900 * time.Millisecond
	rc.RetryMax = opts.RetryMax
	rc.HTTPClient.Timeout = opts.Timeout
	if rc.HTTPClient.Timeout <= 0 {
		rc.HTTPClient.Timeout = 30 * time.Second
	}
	if opts.Logger != nil {
		rc.Logger = opts.Logger
	} else {
		rc.Logger = slog.Default()
	}

	base := strings.TrimRight(opts.Host, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.algolia.net", appID)
	}

	return &Sink{
		appID:   appID,
		apiKey:  apiKey,
		baseURL: base,
		http:    rc,
	}
}

// NewSinkFactory returns a ports.SinkFactory building one Sink per invocation.
func NewSinkFactory(opts Options) ports.SinkFactory {
	return func(cfg domain.IntegrationConfig) (ports.IndexSink, error) {
		if !cfg.HasCredentials() {
			return nil, fmt.Errorf("algolia: application id and admin api key are required")
		}
		return NewSink(cfg.ApplicationID, cfg.AdminAPIKey, opts), nil
	}
}

// Upsert replaces the object stored under the document's objectID.
func (s *Sink) Upsert(ctx context.Context, index string, doc domain.Document) (domain.UpsertResult, error) {
	id, ok := doc.ObjectID()
	if !ok {
		return domain.UpsertResult{}, domain.ErrMissingObjectID
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("encode document: %w", err)
	}

	resp, err := s.do(ctx, http.MethodPut, s.objectURL(index, id), body)
	if err != nil {
		return domain.UpsertResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return domain.UpsertResult{}, apiError(resp)
	}

	var res domain.UpsertResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return domain.UpsertResult{}, fmt.Errorf("decode save response: %w", err)
	}
	return res, nil
}

// Delete removes an object. Deleting an unknown object is not an error.
func (s *Sink) Delete(ctx context.Context, index string, objectID string) error {
	resp, err := s.do(ctx, http.MethodDelete, s.objectURL(index, objectID), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= 400 {
		return apiError(resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *Sink) objectURL(index, objectID string) string {
	return fmt.Sprintf("%s/1/indexes/%s/%s", s.baseURL, url.PathEscape(index), url.PathEscape(objectID))
}

func (s *Sink) do(ctx context.Context, method, u string, body []byte) (*http.Response, error) {
	var raw any
	if body != nil {
		raw = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, u, raw)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-Algolia-Application-Id", s.appID)
	req.Header.Set("X-Algolia-API-Key", s.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("algolia %s: %w", method, err)
	}
	return resp, nil
}

func apiError(resp *http.Response) error {
	var body struct {
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)
	if body.Message == "" {
		body.Message = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("algolia error %d: %s", resp.StatusCode, body.Message)
}

var _ ports.IndexSink = (*Sink)(nil)
