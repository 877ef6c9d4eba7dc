// Package notify публикует события жизненного цикла аренды в обменник
// уведомлений. Ключ маршрутизации совпадает с типом события.
package notify

import (
	"context"

	"github.com/streadway/amqp"

	"github.com/askchiwa/chajipoa-core/internal/lib/rabbitmq"
	"github.com/askchiwa/chajipoa-core/internal/models"
)

// Publisher отправляет события аренды через канал RabbitMQ.
type Publisher struct {
	ch *amqp.Channel
}

// New создает новый Publisher.
func New(ch *amqp.Channel) *Publisher {
	return &Publisher{ch: ch}
}

// Publish публикует событие с ключом маршрутизации по его типу.
func (p *Publisher) Publish(_ context.Context, event models.RentalEvent) error {
	return rabbitmq.PublishMessage(p.ch, rabbitmq.Exchange, event.Type, event)
}
