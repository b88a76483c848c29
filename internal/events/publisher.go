// Package events публикует учебные события в RabbitMQ.
package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/cl-scripter/learning-api/internal/lib/rabbitmq"
)

// Publisher публикует событие с ключом маршрутизации routingKey.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AMQPPublisher публикует события в topic-обменник.
//
// Канал AMQP не потокобезопасен, поэтому публикации сериализуются мьютексом.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       rabbitmq.Channel
	exchange string
	closers  []func() error
}

// NewAMQPPublisher создаёт издателя поверх готового канала.
func NewAMQPPublisher(ch rabbitmq.Channel, exchange string) *AMQPPublisher {
	return &AMQPPublisher{ch: ch, exchange: exchange}
}

// Dial подключается к брокеру и объявляет обменник.
func Dial(url, exchange string, retries int, delay time.Duration) (*AMQPPublisher, error) {
	const op = "events.Dial"

	conn, err := rabbitmq.Connect(url, retries, delay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupExchange(conn, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := NewAMQPPublisher(ch, exchange)
	p.closers = []func() error{ch.Close, conn.Close}
	return p, nil
}

// Publish отправляет payload в обменник.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	const op = "events.Publish"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.Publish(p.ch, p.exchange, rabbitmq.Message{RoutingKey: routingKey, Payload: payload}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал и соединение, если они были открыты через Dial.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, c := range p.closers {
		if err := c(); err != nil && err != amqp.ErrClosed && firstErr == nil {
			firstErr = err
		}
	}
	p.closers = nil
	return firstErr
}

// Noop издатель, который ничего не отправляет. Используется, когда брокер не настроен.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, string, any) error { return nil }
