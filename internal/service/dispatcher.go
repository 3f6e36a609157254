package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// Dispatcher routes webhook events to the bulk sync or to a single index write.
// It keeps no state between calls: every event gets a fresh sink.
type Dispatcher struct {
	sinks  ports.SinkFactory
	syncer *BulkSyncer
	logger *slog.Logger
}

// NewDispatcher constructs a new Dispatcher.
func NewDispatcher(source ports.PageSource, sinks ports.SinkFactory, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		sinks:  sinks,
		syncer: NewBulkSyncer(source, logger),
		logger: logger,
	}
}

type syncSummary struct {
	Message    string `json:"message"`
	Products   int    `json:"products"`
	Categories int    `json:"categories"`
}

// Dispatch handles one event. Sink and source failures are returned as errors
// and are not translated into a Response.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg domain.IntegrationConfig, evt domain.WebhookEvent) (domain.Response, error) {
	if !cfg.HasCredentials() {
		d.logger.Warn("integration credentials missing", "event", evt.Event)
		return domain.ConfigErrorResponse(), nil
	}
	cfg = cfg.WithDefaults()

	switch evt.Event {
	case domain.EventIntegrationReady:
		return d.syncAll(ctx, cfg)
	case domain.EventProductCreate:
		return d.save(ctx, cfg, domain.KindProducts, evt.Payload, http.StatusCreated)
	case domain.EventProductUpdate:
		return d.save(ctx, cfg, domain.KindProducts, evt.Payload, http.StatusOK)
	case domain.EventProductDelete:
		return d.remove(ctx, cfg, domain.KindProducts, evt)
	case domain.EventCategoryCreate:
		return d.save(ctx, cfg, domain.KindCategories, evt.Payload, http.StatusCreated)
	case domain.EventCategoryUpdate:
		return d.save(ctx, cfg, domain.KindCategories, evt.Payload, http.StatusOK)
	case domain.EventCategoryDelete:
		return d.remove(ctx, cfg, domain.KindCategories, evt)
	}

	d.logger.Debug("ignoring webhook event", "event", evt.Event)
	return domain.NoopResponse(), nil
}

func (d *Dispatcher) syncAll(ctx context.Context, cfg domain.IntegrationConfig) (domain.Response, error) {
	sink, err := d.sinks(cfg)
	if err != nil {
		return domain.Response{}, fmt.Errorf("create index sink: %w", err)
	}

	summary := syncSummary{Message: "Sync completed!"}
	summary.Products, err = d.syncer.Sync(ctx, sink, SyncTarget{
		Kind:  domain.KindProducts,
		Index: cfg.ProductsIndex,
		Map:   domain.MapProduct,
	})
	if err != nil {
		return domain.Response{}, err
	}
	summary.Categories, err = d.syncer.Sync(ctx, sink, SyncTarget{
		Kind:  domain.KindCategories,
		Index: cfg.CategoriesIndex,
		Map:   domain.MapCategory,
	})
	if err != nil {
		return domain.Response{}, err
	}

	return domain.JSONResponse(http.StatusCreated, summary)
}

func (d *Dispatcher) save(ctx context.Context, cfg domain.IntegrationConfig, kind domain.EntityKind, payload domain.Entity, status int) (domain.Response, error) {
	sink, err := d.sinks(cfg)
	if err != nil {
		return domain.Response{}, fmt.Errorf("create index sink: %w", err)
	}
	index := cfg.IndexFor(kind)
	res, err := sink.Upsert(ctx, index, domain.MapperFor(kind)(payload))
	if err != nil {
		return domain.Response{}, fmt.Errorf("upsert into %s: %w", index, err)
	}
	return domain.JSONResponse(status, res)
}

func (d *Dispatcher) remove(ctx context.Context, cfg domain.IntegrationConfig, kind domain.EntityKind, evt domain.WebhookEvent) (domain.Response, error) {
	id, err := evt.FirstModelID()
	if err != nil {
		return domain.Response{}, fmt.Errorf("%s: %w", evt.Event, err)
	}
	sink, err := d.sinks(cfg)
	if err != nil {
		return domain.Response{}, fmt.Errorf("create index sink: %w", err)
	}
	index := cfg.IndexFor(kind)
	if err := sink.Delete(ctx, index, id); err != nil {
		return domain.Response{}, fmt.Errorf("delete %s from %s: %w", id, index, err)
	}
	return domain.Response{StatusCode: http.StatusNoContent, Body: ""}, nil
}
