package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/catalog"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

type Looker interface {
	Lookup(ctx context.Context, req models.LookupRequest) (*opencatalog.Product, error)
}

// LookupConsumer works through queued lookups, throttled so queued bursts
// stay inside the catalog's request quota.
type LookupConsumer struct {
	service Looker
	limiter *rate.Limiter
}

// NewLookupConsumer allows requestsPerMinute lookups; zero or less means
// unlimited.
func NewLookupConsumer(service Looker, requestsPerMinute int) *LookupConsumer {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &LookupConsumer{service: service, limiter: limiter}
}

// Start runs ProcessLookups in the background. The returned stop cancels it
// and blocks until the lookup in flight has been acked or nacked.
func (c *LookupConsumer) Start(ctx context.Context, messages <-chan amqp.Delivery) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.ProcessLookups(ctx, messages)
	}()

	return func() {
		cancel()
		<-done
	}
}

// ProcessLookups handles product.lookup messages until the channel closes or
// ctx is done.
func (c *LookupConsumer) ProcessLookups(ctx context.Context, messages <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				log.Info().Msg("lookup queue closed")
				return
			}
			if err := c.limiter.Wait(ctx); err != nil {
				_ = msg.Nack(false, true)
				return
			}
			c.handle(ctx, msg)
		}
	}
}

func (c *LookupConsumer) handle(ctx context.Context, msg amqp.Delivery) {
	var req models.LookupRequest
	if err := json.Unmarshal(msg.Body, &req); err != nil {
		log.Error().Err(err).Msg("failed to parse lookup request")
		_ = msg.Nack(false, false) // Don't requeue bad messages
		return
	}
	if req.RequestID == "" {
		req.RequestID = msg.MessageId
	}

	logger := log.With().Str("request_id", req.RequestID).Logger()

	_, err := c.service.Lookup(ctx, req)
	var parseErr *opencatalog.ParseError
	switch {
	case err == nil:
		logger.Info().Msg("lookup processed")
		_ = msg.Ack(false)
	case errors.Is(err, catalog.ErrNotFound):
		logger.Info().Err(err).Msg("product not found")
		_ = msg.Ack(false)
	case errors.Is(err, catalog.ErrInvalidLookup):
		logger.Warn().Err(err).Msg("dropping invalid lookup")
		_ = msg.Nack(false, false)
	case errors.As(err, &parseErr):
		logger.Error().Err(err).Msg("catalog returned unreadable xml")
		_ = msg.Nack(false, false)
	default:
		logger.Warn().Err(err).Msg("lookup failed, requeued")
		_ = msg.Nack(false, true)
	}
}
