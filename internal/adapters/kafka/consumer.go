package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/nimafallahian/catalog-sync/internal/domain"
	"github.com/nimafallahian/catalog-sync/internal/ports"
)

// Consumer implements ports.MessageConsumer using segmentio/kafka-go.
// Message values are webhook bodies as the platform would POST them.
type Consumer struct {
	reader *kafkago.Reader
}

// NewConsumer constructs a new Consumer configured for manual offset commits.
func NewConsumer(brokers []string, topic, groupID string) (*Consumer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("brokers must not be empty")
	}
	if topic == "" {
		return nil, fmt.Errorf("topic must not be empty")
	}
	if groupID == "" {
		return nil, fmt.Errorf("groupID must not be empty")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		CommitInterval: 0, // manual commits only
	})

	return &Consumer{reader: reader}, nil
}

// Stream starts a goroutine that continuously reads from Kafka and pushes
// decoded webhook events onto a channel until the context is cancelled.
// Undecodable messages are committed and reported on the error channel
// without stopping the stream, since redelivery cannot fix them.
func (c *Consumer) Stream(ctx context.Context) (<-chan ports.KafkaMessage, <-chan error) {
	msgCh := make(chan ports.KafkaMessage)
	errCh := make(chan error, 1)

	go func() {
		defer close(msgCh)
		defer close(errCh)

		for {
			m, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
					return
				}
				errCh <- err
				return
			}

			event, err := domain.ParseWebhookEvent(m.Value)
			if err != nil {
				c.report(ctx, errCh, fmt.Errorf("decode offset %d: %w", m.Offset, err))
				if cerr := c.reader.CommitMessages(ctx, m); cerr != nil {
					c.report(ctx, errCh, cerr)
				}
				continue
			}

			kmsg := ports.KafkaMessage{
				Event: event,
				Commit: func(commitCtx context.Context) error {
					return c.reader.CommitMessages(commitCtx, m)
				},
			}

			select {
			case <-ctx.Done():
				return
			case msgCh <- kmsg:
			}
		}
	}()

	return msgCh, errCh
}

func (c *Consumer) report(ctx context.Context, errCh chan<- error, err error) {
	select {
	case errCh <- err:
	case <-ctx.Done():
	}
}

// Consume satisfies the ports.MessageConsumer interface by delegating to Stream.
func (c *Consumer) Consume(ctx context.Context) (<-chan ports.KafkaMessage, <-chan error) {
	return c.Stream(ctx)
}

// Close releases the underlying reader resources.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
