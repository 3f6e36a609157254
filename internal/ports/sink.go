package ports

import (
	"context"

	"github.com/nimafallahian/catalog-sync/internal/domain"
)

// IndexSink is the write side of the search index. Both operations must be
// idempotent at the index level: re-upserting an objectID replaces the
// document and deleting an unknown id is not an error.
type IndexSink interface {
	// Upsert creates or replaces the document keyed by its objectID.
	Upsert(ctx context.Context, index string, doc domain.Document) (domain.UpsertResult, error)

	// Delete removes the document with the given objectID.
	Delete(ctx context.Context, index string, objectID string) error
}

// SinkFactory builds a fresh IndexSink from the integration configuration.
// It is called once per invocation so no client outlives a single event.
type SinkFactory func(cfg domain.IntegrationConfig) (IndexSink, error)
