// Package rabbitmq はドメインイベントを RabbitMQ の topic exchange へ送信します。
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ogurasousui/hrlink/internal/core/event"
)

// Channel は Publisher が利用する amqp.Channel のメソッドです。
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher は event.Publisher の RabbitMQ 実装です。
// ルーティングキーは "<prefix>.<type>" になります。
type Publisher struct {
	conn     *amqp.Connection
	ch       Channel
	exchange string
	prefix   string
}

// Dial は RabbitMQ に接続し、exchange を宣言した Publisher を返します。
func Dial(url, exchange, prefix string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}

	p, err := New(ch, exchange, prefix)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// New は既存のチャネルから Publisher を生成します。
func New(ch Channel, exchange, prefix string) (*Publisher, error) {
	if exchange == "" {
		return nil, fmt.Errorf("rabbitmq: exchange is required")
	}
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("rabbitmq: declare exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, prefix: prefix}, nil
}

// Publish はイベントを JSON で送信します。
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("rabbitmq: encode event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx, p.exchange, p.routingKey(e.Type), false, false, amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    e.ID,
		Type:         string(e.Type),
		Timestamp:    e.OccurredAt,
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("rabbitmq: publish %s: %w", e.Type, err)
	}
	return nil
}

func (p *Publisher) routingKey(t event.Type) string {
	if p.prefix == "" {
		return string(t)
	}
	return p.prefix + "." + string(t)
}

// Close はチャネルと接続を閉じます。
func (p *Publisher) Close() error {
	err := p.ch.Close()
	if p.conn != nil {
		if cerr := p.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
