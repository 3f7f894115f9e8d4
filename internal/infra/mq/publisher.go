package mq

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher 向指定队列投递 JSON 消息，每次投递独立开 channel
type Publisher struct {
	conn  *amqp.Connection
	queue string
}

// NewPublisher 创建队列发布者
func NewPublisher(conn *amqp.Connection, queue string) *Publisher {
	return &Publisher{conn: conn, queue: queue}
}

func (p *Publisher) Publish(ctx context.Context, body []byte) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = DeclareQueue(ch, p.queue); err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// DeclareQueue 声明持久化队列，生产者与消费者共用同一参数
func DeclareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	return ch.QueueDeclare(name, true, false, false, false, nil)
}
