package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

type fakeSource struct {
	mu    sync.Mutex
	pages map[domain.EntityKind][]*domain.Page
	calls []string
	err   error
}

func (f *fakeSource) FetchPage(_ context.Context, kind domain.EntityKind, page int) (*domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fmt.Sprintf("%s:%d", kind, page))
	if f.err != nil {
		return nil, f.err
	}
	pages := f.pages[kind]
	if page-1 < len(pages) {
		return pages[page-1], nil
	}
	return &domain.Page{}, nil
}

func (f *fakeSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// buildPages returns total pages of perPage records each. When withTotal is
// false, meta.pagination is omitted.
func buildPages(kind domain.EntityKind, total, perPage int, withTotal bool) []*domain.Page {
	pages := make([]*domain.Page, 0, total)
	for p := 1; p <= total; p++ {
		page := &domain.Page{}
		for i := 0; i < perPage; i++ {
			page.Data = append(page.Data, domain.Entity{
				"id":     fmt.Sprintf("%s-%d-%d", kind, p, i),
				"name":   fmt.Sprintf("record %d/%d", p, i),
				"hidden": "never indexed",
			})
		}
		if withTotal {
			n := total
			page.Meta.Pagination = &domain.Pagination{TotalPages: &n}
		}
		pages = append(pages, page)
	}
	return pages
}

// memorySink is an in-memory index keyed by index name and objectID.
type memorySink struct {
	mu      sync.Mutex
	docs    map[string]map[string]domain.Document
	upserts int
	failOn  string
	failErr error
}

func newMemorySink() *memorySink {
	return &memorySink{docs: map[string]map[string]domain.Document{}}
}

func (m *memorySink) Upsert(_ context.Context, index string, doc domain.Document) (domain.UpsertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := doc.ObjectID()
	if !ok {
		return domain.UpsertResult{}, domain.ErrMissingObjectID
	}
	m.upserts++
	if m.docs[index] == nil {
		m.docs[index] = map[string]domain.Document{}
	}
	m.docs[index][id] = doc
	if id == m.failOn {
		return domain.UpsertResult{}, m.failErr
	}
	return domain.UpsertResult{ObjectID: id, TaskID: int64(m.upserts)}, nil
}

func (m *memorySink) Delete(_ context.Context, index, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs[index], id)
	return nil
}

func (m *memorySink) Count(index string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs[index])
}

func (m *memorySink) factory() ports.SinkFactory {
	return func(domain.IntegrationConfig) (ports.IndexSink, error) { return m, nil }
}

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Upsert(ctx context.Context, index string, doc domain.Document) (domain.UpsertResult, error) {
	args := m.Called(ctx, index, doc)
	return args.Get(0).(domain.UpsertResult), args.Error(1)
}

func (m *mockSink) Delete(ctx context.Context, index string, objectID string) error {
	args := m.Called(ctx, index, objectID)
	return args.Error(0)
}
