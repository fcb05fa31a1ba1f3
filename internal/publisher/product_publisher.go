package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
)

const (
	ProductFetchedQueue = "product.fetched"
	ProductLookupQueue  = "product.lookup"
)

// Broker is the part of messaging.RabbitMQ the publisher needs.
type Broker interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue, messageID string, message []byte) error
}

type ProductPublisher struct {
	mq Broker
}

func NewProductPublisher(mq Broker) (*ProductPublisher, error) {
	for _, q := range []string{ProductFetchedQueue, ProductLookupQueue} {
		if err := mq.DeclareQueue(q); err != nil {
			return nil, err
		}
	}

	return &ProductPublisher{mq: mq}, nil
}

// PublishProductFetched publishes a product.fetched event
func (p *ProductPublisher) PublishProductFetched(ctx context.Context, event models.ProductFetchedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.mq.Publish(ctx, ProductFetchedQueue, event.RequestID, data)
}

// PublishLookup queues a lookup for the consumer.
func (p *ProductPublisher) PublishLookup(ctx context.Context, req models.LookupRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal lookup: %w", err)
	}

	return p.mq.Publish(ctx, ProductLookupQueue, req.RequestID, data)
}
