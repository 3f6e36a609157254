package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// Error values returned by the sink for callers to react to.
var (
	ErrTooManyRequests = fmt.Errorf("elasticsearch: too many requests (429)")
	ErrServerError     = fmt.Errorf("elasticsearch: server error (5xx)")
)

// Sink implements ports.IndexSink on top of the Elasticsearch document APIs.
// The objectID is used as the document _id so writes are idempotent.
type Sink struct {
	client *elasticsearch.Client
}

// NewSink constructs a new Sink.
func NewSink(client *elasticsearch.Client) (*Sink, error) {
	if client == nil {
		return nil, fmt.Errorf("client must not be nil")
	}
	return &Sink{client: client}, nil
}

// NewSinkFactory returns a ports.SinkFactory that builds a client per invocation
// for the given cluster addresses. The admin API key authenticates requests and
// the application ID is sent as X-Opaque-Id.
func NewSinkFactory(addresses []string) ports.SinkFactory {
	return func(cfg domain.IntegrationConfig) (ports.IndexSink, error) {
		header := http.Header{}
		header.Set("X-Opaque-Id", cfg.ApplicationID)
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: addresses,
			APIKey:    cfg.AdminAPIKey,
			Header:    header,
		})
		if err != nil {
			return nil, fmt.Errorf("create elasticsearch client: %w", err)
		}
		return NewSink(client)
	}
}

type indexResponse struct {
	ID    string `json:"_id"`
	SeqNo int64  `json:"_seq_no"`
}

// Upsert implements ports.IndexSink using the Index API. The returned TaskID
// is the document's sequence number.
func (s *Sink) Upsert(ctx context.Context, index string, doc domain.Document) (domain.UpsertResult, error) {
	id, ok := doc.ObjectID()
	if !ok {
		return domain.UpsertResult{}, domain.ErrMissingObjectID
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return domain.UpsertResult{}, fmt.Errorf("encode document: %w", err)
	}

	res, err := s.client.Index(
		index,
		&buf,
		s.client.Index.WithDocumentID(id),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return domain.UpsertResult{}, fmt.Errorf("index request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if err := statusError(res.StatusCode); err != nil {
		return domain.UpsertResult{}, err
	}
	if res.IsError() {
		return domain.UpsertResult{}, fmt.Errorf("index error: %s", res.String())
	}

	var body indexResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return domain.UpsertResult{}, fmt.Errorf("decode index response: %w", err)
	}
	return domain.UpsertResult{ObjectID: body.ID, TaskID: body.SeqNo}, nil
}

// Delete implements ports.IndexSink. A missing document is not an error.
func (s *Sink) Delete(ctx context.Context, index string, objectID string) error {
	res, err := s.client.Delete(index, objectID, s.client.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if err := statusError(res.StatusCode); err != nil {
		return err
	}
	if res.IsError() {
		return fmt.Errorf("delete error: %s", res.String())
	}
	return nil
}

func statusError(code int) error {
	switch {
	case code == http.StatusTooManyRequests:
		return ErrTooManyRequests
	case code >= 500 && code <= 599:
		return ErrServerError
	}
	return nil
}

var _ ports.IndexSink = (*Sink)(nil)
