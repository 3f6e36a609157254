package throttle

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// Sink caps the write rate of an underlying IndexSink.
type Sink struct {
	next    ports.IndexSink
	limiter *rate.Limiter
}

// NewSink wraps next so that at most perSecond writes start per second, with
// bursts of up to burst writes.
func NewSink(next ports.IndexSink, perSecond float64, burst int) *Sink {
	if burst <= 0 {
		burst = 1
	}
	return &Sink{next: next, limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wrap decorates a SinkFactory with a throttle. A non-positive perSecond
// leaves the factory untouched. Each invocation gets its own limiter.
func Wrap(factory ports.SinkFactory, perSecond float64, burst int) ports.SinkFactory {
	if perSecond <= 0 {
		return factory
	}
	return func(cfg domain.IntegrationConfig) (ports.IndexSink, error) {
		next, err := factory(cfg)
		if err != nil {
			return nil, err
		}
		return NewSink(next, perSecond, burst), nil
	}
}

// Upsert waits for a write slot, then forwards to the wrapped sink.
func (s *Sink) Upsert(ctx context.Context, index string, doc domain.Document) (domain.UpsertResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return domain.UpsertResult{}, err
	}
	return s.next.Upsert(ctx, index, doc)
}

// Delete waits for a write slot, then forwards to the wrapped sink.
func (s *Sink) Delete(ctx context.Context, index string, objectID string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.next.Delete(ctx, index, objectID)
}

var _ ports.IndexSink = (*Sink)(nil)
