package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// IntegrationConfigFunc reads the integration configuration for one invocation.
type IntegrationConfigFunc func() (domain.IntegrationConfig, error)

// EventService reads webhook events from Kafka, dispatches them and
// acknowledges offsets.
type EventService struct {
	consumer    ports.MessageConsumer
	dispatcher  ports.EventDispatcher
	config      IntegrationConfigFunc
	workerCount int
	retryMin    time.Duration
	retryMax    time.Duration
	logger      *slog.Logger
}

// Default backoff bounds between attempts at an unacknowledged event.
const (
	DefaultRetryMin = time.Second
	DefaultRetryMax = time.Minute
)

// NewEventService constructs a new EventService.
func NewEventService(consumer ports.MessageConsumer, dispatcher ports.EventDispatcher, config IntegrationConfigFunc, workerCount int, logger *slog.Logger) *EventService {
	if workerCount <= 0 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		consumer:    consumer,
		dispatcher:  dispatcher,
		config:      config,
		workerCount: workerCount,
		retryMin:    DefaultRetryMin,
		retryMax:    DefaultRetryMax,
		logger:      logger,
	}
}

// WithRetryBackoff sets the backoff bounds used while an event is retried.
func (s *EventService) WithRetryBackoff(minWait, maxWait time.Duration) *EventService {
	if minWait > 0 {
		s.retryMin = minWait
	}
	if maxWait >= s.retryMin {
		s.retryMax = maxWait
	}
	return s
}

// Start begins consuming messages and processing them with a worker pool.
// It blocks until the context is cancelled.
func (s *EventService) Start(ctx context.Context) {
	msgCh, errCh := s.consumer.Consume(ctx)

	var wg sync.WaitGroup
	wg.Add(s.workerCount)

	for i := 0; i < s.workerCount; i++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgCh:
					if !ok {
						return
					}
					s.handleMessage(ctx, msg)
				}
			}
		}()
	}

	go func() {
		for err := range errCh {
			s.logger.Error("kafka consumer error", "error", err)
		}
	}()

	<-ctx.Done()
	wg.Wait()
}

// handleMessage retries msg in place until it is acknowledged or ctx ends.
// Kafka commits are per-partition offsets, so committing a later message
// would also commit this one; the worker must not move on without it.
func (s *EventService) handleMessage(ctx context.Context, msg ports.KafkaMessage) {
	log := s.logger.With("event", msg.Event.Event)

	for attempt := 0; ; attempt++ {
		if s.process(ctx, log, msg) {
			break
		}

		wait := retryablehttp.DefaultBackoff(s.retryMin, s.retryMax, attempt, nil)
		log.Warn("event not acknowledged, retrying", "attempt", attempt+1, "backoff", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Warn("shutting down with unacknowledged event")
			return
		case <-timer.C:
		}
	}

	if msg.Commit != nil {
		if err := msg.Commit(ctx); err != nil {
			log.Error("commit offset", "error", err)
		}
	}
}

// process reports whether msg is finished with and may be committed.
func (s *EventService) process(ctx context.Context, log *slog.Logger, msg ports.KafkaMessage) bool {
	cfg, err := s.config()
	if err != nil {
		log.Error("load integration config", "error", err)
		return false
	}

	resp, err := s.dispatcher.Dispatch(ctx, cfg, msg.Event)
	if err != nil {
		if isPermanent(err) {
			log.Error("dropping event that cannot succeed", "error", err)
			return true
		}
		log.Error("dispatch failed", "error", err)
		return false
	}
	if !resp.ShouldAcknowledge() {
		log.Warn("dispatch not acknowledged", "status", resp.StatusCode, "body", resp.Body)
		return false
	}

	log.Info("event dispatched", "status", resp.StatusCode)
	return true
}

// isPermanent reports errors caused by the event itself; redelivery cannot fix them.
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrMissingModelID) || errors.Is(err, domain.ErrMissingObjectID)
}
