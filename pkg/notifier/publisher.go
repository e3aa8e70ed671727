package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"
	"github.com/walletfy/walletfy/internal/event_bus"
)

const publishTimeout = 5 * time.Second

// Topics lists the bus events forwarded to the broker.
var Topics = []event_bus.EventType{
	event_bus.WalletEventCreated,
	event_bus.WalletEventUpdated,
	event_bus.WalletEventDeleted,
	event_bus.WalletEventsImport,
	event_bus.ThemeChanged,
}

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Message is the JSON body of every published notification.
type Message struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Publisher forwards bus events to a durable topic exchange. The routing key
// is the event type, e.g. "wallet.event.created".
type Publisher struct {
	conn     *amqp.Connection
	channel  Channel
	exchange string
	unsubs   []func()
}

// Dial connects to the broker at url and declares the exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	publisher, err := NewPublisher(channel, exchange)
	if err != nil {
		conn.Close()
		return nil, err
	}
	publisher.conn = conn
	return publisher, nil
}

func NewPublisher(channel Channel, exchange string) (*Publisher, error) {
	err := channel.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{channel: channel, exchange: exchange}, nil
}

// Attach subscribes the publisher to every topic on bus. Failures to publish
// are logged and never returned to the bus, so the originating request is
// not affected.
func (p *Publisher) Attach(bus *event_bus.EventBus) {
	for _, topic := range Topics {
		p.unsubs = append(p.unsubs, bus.Subscribe(topic, func(e event_bus.Event) error {
			if err := p.Publish(e); err != nil {
				log.WithFields(log.Fields{
					"type":     e.Type,
					"exchange": p.exchange,
				}).Errorf("failed to forward event: %v", err)
			}
			return nil
		}))
	}
}

func (p *Publisher) Publish(e event_bus.Event) error {
	data, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	body, err := json.Marshal(Message{Type: string(e.Type), Timestamp: e.Timestamp, Data: data})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(e.Context()), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		string(e.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    e.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}
	log.Debugf("published %s to %s", e.Type, p.exchange)
	return nil
}

func (p *Publisher) Close() error {
	for _, unsub := range p.unsubs {
		unsub()
	}
	p.unsubs = nil
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
