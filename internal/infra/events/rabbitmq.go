package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/m04kA/SMC-VenueBooking/internal/domain"
)

// RabbitPublisher публикует события жизненного цикла в durable topic exchange.
// Routing key совпадает с типом события (reservation.created, reservation.approved, ...).
type RabbitPublisher struct {
	url      string
	exchange string
	log      Logger

	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// NewRabbitPublisher подключается к брокеру и объявляет exchange
func NewRabbitPublisher(url, exchange string, log Logger) (*RabbitPublisher, error) {
	p := &RabbitPublisher{url: url, exchange: exchange, log: log}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// Publish отправляет события по одному сообщению на событие.
// При разорванном соединении выполняется одна попытка переподключения.
func (p *RabbitPublisher) Publish(ctx context.Context, events ...domain.LifecycleEvent) error {
	if len(events) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}

	for _, event := range events {
		body, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("%w: marshal event %s: %v", ErrPublish, event.ID, err)
		}

		msg := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Type:         string(event.Type),
			Timestamp:    event.OccurredAt.UTC(),
			Body:         body,
		}

		if err := p.publish(ctx, event.RoutingKey(), msg); err != nil {
			p.log.Warn("RabbitPublisher: publish failed, reconnecting: %v", err)
			if err := p.reconnect(); err != nil {
				return err
			}
			if err := p.publish(ctx, event.RoutingKey(), msg); err != nil {
				return fmt.Errorf("%w: %s for reservation id=%d: %v", ErrPublish, event.Type, event.ReservationID, err)
			}
		}
	}

	return nil
}

// Close закрывает канал и соединение
func (p *RabbitPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	p.release()
	return nil
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	if p.ch == nil {
		return ErrClosed
	}
	return p.ch.PublishWithContext(ctx,
		p.exchange, // exchange
		routingKey, // routing key
		false,      // mandatory
		false,      // immediate
		msg,
	)
}

func (p *RabbitPublisher) connect() error {
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(5 * time.Second),
	})
	if err != nil {
		return fmt.Errorf("%w: dial: %v", ErrConnect, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("%w: open channel: %v", ErrConnect, err)
	}

	// Durable, чтобы exchange переживал рестарт брокера
	if err := ch.ExchangeDeclare(
		p.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("%w: declare exchange %s: %v", ErrConnect, p.exchange, err)
	}

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *RabbitPublisher) reconnect() error {
	p.release()
	if err := p.connect(); err != nil {
		p.log.Error("RabbitPublisher: reconnect failed: %v", err)
		return err
	}
	p.log.Info("RabbitPublisher: reconnected to broker")
	return nil
}

func (p *RabbitPublisher) release() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil && !p.conn.IsClosed() {
		_ = p.conn.Close()
	}
	p.conn = nil
}
