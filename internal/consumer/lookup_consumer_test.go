package consumer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/catalog"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/models"
	"github.com/prudhivi99/Distributed-Systems/opencatalog/internal/opencatalog"
)

type ackResult struct {
	tag     uint64
	acked   bool
	requeue bool
}

type mockAcknowledger struct {
	results []ackResult
}

func (m *mockAcknowledger) Ack(tag uint64, multiple bool) error {
	m.results = append(m.results, ackResult{tag: tag, acked: true})
	return nil
}

func (m *mockAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	m.results = append(m.results, ackResult{tag: tag, requeue: requeue})
	return nil
}

func (m *mockAcknowledger) Reject(tag uint64, requeue bool) error {
	return m.Nack(tag, false, requeue)
}

type MockLooker struct {
	LookupFunc func(ctx context.Context, req models.LookupRequest) (*opencatalog.Product, error)
	requests   []models.LookupRequest
}

func (m *MockLooker) Lookup(ctx context.Context, req models.LookupRequest) (*opencatalog.Product, error) {
	m.requests = append(m.requests, req)
	return m.LookupFunc(ctx, req)
}

func deliveries(ack amqp.Acknowledger, bodies ...string) chan amqp.Delivery {
	ch := make(chan amqp.Delivery, len(bodies))
	for i, body := range bodies {
		ch <- amqp.Delivery{
			Acknowledger: ack,
			DeliveryTag:  uint64(i + 1),
			MessageId:    fmt.Sprintf("msg-%d", i+1),
			Body:         []byte(body),
		}
	}
	close(ch)
	return ch
}

func TestProcessLookupsAcksAndNacks(t *testing.T) {
	looker := &MockLooker{
		LookupFunc: func(_ context.Context, req models.LookupRequest) (*opencatalog.Product, error) {
			switch req.GTIN {
			case "found":
				return &opencatalog.Product{}, nil
			case "missing":
				return nil, fmt.Errorf("%w: not present", catalog.ErrNotFound)
			case "garbled":
				return nil, &opencatalog.ParseError{Err: errors.New("unexpected EOF")}
			case "":
				return nil, catalog.ErrInvalidLookup
			default:
				return nil, errors.New("connection reset by peer")
			}
		},
	}
	ack := &mockAcknowledger{}
	c := NewLookupConsumer(looker, 0)

	c.ProcessLookups(context.Background(), deliveries(ack,
		`{"gtin":"found"}`,
		`{"gtin":"missing"}`,
		`{"gtin":"garbled"}`,
		`{"lang":"en"}`,
		`{"gtin":"flaky"}`,
		`not json`,
	))

	want := []ackResult{
		{tag: 1, acked: true},
		{tag: 2, acked: true},
		{tag: 3},
		{tag: 4},
		{tag: 5, requeue: true},
		{tag: 6},
	}
	if len(ack.results) != len(want) {
		t.Fatalf("results got=%v want=%v", ack.results, want)
	}
	for i := range want {
		if ack.results[i] != want[i] {
			t.Errorf("delivery %d got=%+v want=%+v", i+1, ack.results[i], want[i])
		}
	}

	if len(looker.requests) != 5 {
		t.Fatalf("lookups got=%d want=5", len(looker.requests))
	}
	if looker.requests[0].RequestID != "msg-1" {
		t.Errorf("request id should default to the message id, got %q", looker.requests[0].RequestID)
	}
}

func TestProcessLookupsStopsOnCancel(t *testing.T) {
	looker := &MockLooker{
		LookupFunc: func(context.Context, models.LookupRequest) (*opencatalog.Product, error) {
			return &opencatalog.Product{}, nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	messages := make(chan amqp.Delivery)

	done := make(chan struct{})
	go func() {
		NewLookupConsumer(looker, 60).ProcessLookups(ctx, messages)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}

func TestStopWaitsForLookupInFlight(t *testing.T) {
	started := make(chan struct{})
	looker := &MockLooker{
		LookupFunc: func(ctx context.Context, _ models.LookupRequest) (*opencatalog.Product, error) {
			close(started)
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			return nil, ctx.Err()
		},
	}
	ack := &mockAcknowledger{}
	messages := make(chan amqp.Delivery, 1)
	messages <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(`{"gtin":"1"}`)}

	stop := NewLookupConsumer(looker, 0).Start(context.Background(), messages)
	<-started
	stop()

	if len(ack.results) != 1 {
		t.Fatalf("stop returned before the delivery was settled, results=%v", ack.results)
	}
	if ack.results[0] != (ackResult{tag: 1, requeue: true}) {
		t.Errorf("interrupted lookup got=%+v want requeued", ack.results[0])
	}
}
