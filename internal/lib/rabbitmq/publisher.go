package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const appID = "learning-api"

// Channel часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Message событие для публикации. Пустые ID и At заполняются при отправке.
type Message struct {
	RoutingKey string
	Payload    any
	ID         string
	At         time.Time
}

// Publish кодирует Payload в JSON и отправляет постоянное сообщение в exchange.
// Тип сообщения совпадает с ключом маршрутизации.
func Publish(ch Channel, exchange string, msg Message) error {
	const op = "rabbitmq.Publish"

	body, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("%s: encode %s: %w", op, msg.RoutingKey, err)
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.At.IsZero() {
		msg.At = time.Now()
	}

	publishing := amqp.Publishing{
		AppId:        appID,
		MessageId:    msg.ID,
		Type:         msg.RoutingKey,
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    msg.At.UTC(),
		Body:         body,
	}
	if err := ch.Publish(exchange, msg.RoutingKey, false, false, publishing); err != nil {
		return fmt.Errorf("%s: %s: %w", op, msg.RoutingKey, err)
	}
	return nil
}
