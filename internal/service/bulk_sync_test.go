package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nimafallahian/catalog-sync/internal/domain"
)

func productTarget() SyncTarget {
	return SyncTarget{Kind: domain.KindProducts, Index: "products", Map: domain.MapProduct}
}

func TestBulkSyncer_VisitsEveryPageOnce(t *testing.T) {
	source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{
		domain.KindProducts: buildPages(domain.KindProducts, 3, 5, true),
	}}
	sink := newMemorySink()

	added, err := NewBulkSyncer(source, nil).Sync(context.Background(), sink, productTarget())
	require.NoError(t, err)
	require.Equal(t, 15, added)
	require.Equal(t, 15, sink.Count("products"))
	require.Equal(t, []string{"products:1", "products:2", "products:3"}, source.Calls())
}

func TestBulkSyncer_EmptyFirstPage(t *testing.T) {
	source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{
		domain.KindProducts: {{Data: []domain.Entity{}}},
	}}
	sink := newMemorySink()

	added, err := NewBulkSyncer(source, nil).Sync(context.Background(), sink, productTarget())
	require.NoError(t, err)
	require.Zero(t, added)
	require.Equal(t, []string{"products:1"}, source.Calls())
}

func TestBulkSyncer_EmptyPageMidway(t *testing.T) {
	pages := buildPages(domain.KindProducts, 3, 2, true)
	pages[1] = &domain.Page{}
	source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{domain.KindProducts: pages}}

	added, err := NewBulkSyncer(source, nil).Sync(context.Background(), newMemorySink(), productTarget())
	require.NoError(t, err)
	require.Equal(t, 2, added)
	require.Equal(t, []string{"products:1", "products:2"}, source.Calls())
}

func TestBulkSyncer_MissingTotalPagesStopsAfterFirstPage(t *testing.T) {
	source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{
		domain.KindProducts: buildPages(domain.KindProducts, 2, 4, false),
	}}

	added, err := NewBulkSyncer(source, nil).Sync(context.Background(), newMemorySink(), productTarget())
	require.NoError(t, err)
	require.Equal(t, 4, added)
	require.Equal(t, []string{"products:1"}, source.Calls())
}

func TestBulkSyncer_ProjectsAllowListedFields(t *testing.T) {
	source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{
		domain.KindProducts: buildPages(domain.KindProducts, 1, 1, true),
	}}
	sink := newMemorySink()

	_, err := NewBulkSyncer(source, nil).Sync(context.Background(), sink, productTarget())
	require.NoError(t, err)

	doc := sink.docs["products"]["products-1-0"]
	require.Equal(t, "products-1-0", doc["objectID"])
	require.NotContains(t, doc, "hidden")
}

func TestBulkSyncer_RerunConverges(t *testing.T) {
	source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{
		domain.KindProducts: buildPages(domain.KindProducts, 2, 3, true),
	}}
	sink := newMemorySink()
	syncer := NewBulkSyncer(source, nil)

	_, err := syncer.Sync(context.Background(), sink, productTarget())
	require.NoError(t, err)
	first := sink.docs["products"]
	snapshot := make(map[string]domain.Document, len(first))
	for k, v := range first {
		snapshot[k] = v
	}

	added, err := syncer.Sync(context.Background(), sink, productTarget())
	require.NoError(t, err)
	require.Equal(t, 6, added)
	require.Equal(t, snapshot, sink.docs["products"])
}

func TestBulkSyncer_UpsertFailureFailsPageWithoutCancellingSiblings(t *testing.T) {
	source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{
		domain.KindProducts: buildPages(domain.KindProducts, 2, 4, true),
	}}
	boom := errors.New("index unavailable")
	sink := newMemorySink()
	sink.failOn = "products-1-2"
	sink.failErr = boom

	_, err := NewBulkSyncer(source, nil).Sync(context.Background(), sink, productTarget())
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "products page 1")

	// Every write of the failing page was attempted; page 2 was never fetched.
	require.Equal(t, 4, sink.upserts)
	require.Equal(t, []string{"products:1"}, source.Calls())
}

func TestBulkSyncer_FetchError(t *testing.T) {
	boom := errors.New("platform down")
	source := &fakeSource{err: boom}

	_, err := NewBulkSyncer(source, nil).Sync(context.Background(), newMemorySink(), productTarget())
	require.ErrorIs(t, err, boom)
}

func TestBulkSyncer_TotalPagesAtOrBelowCurrentPageStops(t *testing.T) {
	tests := []struct {
		name  string
		total int
	}{
		{name: "total below real page count", total: 1},
		{name: "zero total", total: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := buildPages(domain.KindProducts, 3, 2, true)
			for _, p := range pages {
				n := tt.total
				p.Meta.Pagination = &domain.Pagination{TotalPages: &n}
			}
			source := &fakeSource{pages: map[domain.EntityKind][]*domain.Page{domain.KindProducts: pages}}

			added, err := NewBulkSyncer(source, nil).Sync(context.Background(), newMemorySink(), productTarget())
			require.NoError(t, err)
			require.Equal(t, 2, added)
			require.Equal(t, []string{"products:1"}, source.Calls())
		})
	}
}
