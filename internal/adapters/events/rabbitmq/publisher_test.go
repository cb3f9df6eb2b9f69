package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ogurasousui/hrlink/internal/core/event"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	declared   []string
	kind       string
	published  []published
	publishErr error
	closed     bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name)
	f.kind = kind
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.published = append(f.published, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	p, err := New(ch, "hrlink.events", "hrlink")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if len(ch.declared) != 1 || ch.kind != amqp.ExchangeTopic {
		t.Fatalf("expected topic exchange declaration, got %v %q", ch.declared, ch.kind)
	}

	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	e := event.New(event.TypeContractApproved, "contract-1", "person-1", "company-1", "company-admin", at)

	if err := p.Publish(context.Background(), e); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("expected 1 message, got %d", len(ch.published))
	}
	got := ch.published[0]
	if got.exchange != "hrlink.events" || got.key != "hrlink.contract.approved" {
		t.Fatalf("unexpected routing %s %s", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp.Persistent || got.msg.MessageId != e.ID {
		t.Fatalf("unexpected publishing %+v", got.msg)
	}

	var decoded event.Event
	if err := json.Unmarshal(got.msg.Body, &decoded); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if decoded.ContractID != "contract-1" || decoded.Type != event.TypeContractApproved {
		t.Fatalf("unexpected body %+v", decoded)
	}
}

func TestPublisher_PublishError(t *testing.T) {
	t.Parallel()

	boom := errors.New("channel closed")
	ch := &fakeChannel{publishErr: boom}
	p, err := New(ch, "hrlink.events", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	err = p.Publish(context.Background(), event.New(event.TypeSyncFailed, "contract-1", "", "", "", time.Now()))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestNew_RequiresExchange(t *testing.T) {
	t.Parallel()

	if _, err := New(&fakeChannel{}, "", "hrlink"); err == nil {
		t.Fatal("expected error for empty exchange")
	}
}

func TestPublisher_Close(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{}
	p, err := New(ch, "hrlink.events", "hrlink")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if !ch.closed {
		t.Fatal("expected channel to be closed")
	}
}
