package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// SyncTarget describes one entity kind to mirror into one index.
type SyncTarget struct {
	Kind  domain.EntityKind
	Index string
	Map   domain.Mapper
}

// BulkSyncer copies every record of an entity kind from the platform into
// the index, one page at a time.
type BulkSyncer struct {
	source ports.PageSource
	logger *slog.Logger
}

// NewBulkSyncer constructs a new BulkSyncer.
func NewBulkSyncer(source ports.PageSource, logger *slog.Logger) *BulkSyncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &BulkSyncer{source: source, logger: logger}
}

// Sync walks all pages of target.Kind starting at page 1 and upserts every
// record into target.Index. All upserts of a page run concurrently and the
// next page is only fetched once the whole page has been written.
//
// An empty page ends the walk without error. The first failed upsert fails
// the page; its siblings are not cancelled and may still land in the index.
func (s *BulkSyncer) Sync(ctx context.Context, sink ports.IndexSink, target SyncTarget) (int, error) {
	log := s.logger.With("sync_id", uuid.NewString(), "kind", target.Kind, "index", target.Index)
	log.Info("bulk sync started")

	added := 0
	for page := 1; page >= 1; {
		batch, err := s.source.FetchPage(ctx, target.Kind, page)
		if err != nil {
			return added, fmt.Errorf("fetch %s page %d: %w", target.Kind, page, err)
		}
		if batch == nil || len(batch.Data) == 0 {
			log.Warn("unable to fetch records, there might not be any", "page", page)
			break
		}

		n, err := s.syncPage(ctx, sink, target, batch.Data)
		if err != nil {
			return added, fmt.Errorf("sync %s page %d: %w", target.Kind, page, err)
		}
		added += n
		log.Debug("page synced", "page", page, "records", n)

		total, ok := batch.TotalPages()
		if !ok || page >= total {
			page = 0
		} else {
			page++
		}
	}

	log.Info("bulk sync finished", "added", added)
	return added, nil
}

func (s *BulkSyncer) syncPage(ctx context.Context, sink ports.IndexSink, target SyncTarget, records []domain.Entity) (int, error) {
	var (
		g     errgroup.Group
		added atomic.Int64
	)
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			doc := target.Map(rec)
			if _, err := sink.Upsert(ctx, target.Index, doc); err != nil {
				id, _ := rec.ID()
				return fmt.Errorf("upsert %s: %w", domain.FormatID(id), err)
			}
			added.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(added.Load()), nil
}
