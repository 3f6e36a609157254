package ports

import (
	"context"

	"github.com/nimafallahian/catalog-sync/internal/domain"
)

// PageSource is the platform's paginated read API.
type PageSource interface {
	// FetchPage returns page number page (1-indexed) of the given kind.
	FetchPage(ctx context.Context, kind domain.EntityKind, page int) (*domain.Page, error)
}
