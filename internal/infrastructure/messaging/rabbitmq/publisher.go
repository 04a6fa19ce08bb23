package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jiayou/auth-service/internal/application/auth"
	"github.com/jiayou/auth-service/internal/application/caregiver"
	ctxpkg "github.com/jiayou/auth-service/internal/pkg/context"
)

const (
	DefaultExchange = "jiayou.events"

	RoutingIdentityRegistered       = "identity.registered"
	RoutingIdentityDeactivated      = "identity.deactivated"
	RoutingBackgroundCheckRequested = "caregiver.background_check.requested"

	// HeaderRequestID carries the HTTP request id so consumers can correlate.
	HeaderRequestID = "x-request-id"

	confirmTimeout = 2 * time.Second
	// The broker sends basic.return before the ack of an unroutable message,
	// but the two arrive on different Go channels.
	returnGrace = 50 * time.Millisecond
)

var errNotConnected = errors.New("rabbitmq: not connected")

// Publisher sends domain events to a durable topic exchange with publisher
// confirms and the mandatory flag, so an event nobody is bound to is an
// error rather than a silent drop. Publishes are serialised on one channel.
type Publisher struct {
	url      string
	exchange string

	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	confirms <-chan amqp.Confirmation
	returns  <-chan amqp.Return
}

// NewPublisher dials url and declares exchange. An empty exchange means
// DefaultExchange.
func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{url: url, exchange: exchange}
	if err := p.dial(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.teardown()
	return nil
}

func (p *Publisher) PublishIdentityRegistered(ctx context.Context, evt auth.IdentityRegisteredEvent) error {
	return p.publish(ctx, RoutingIdentityRegistered, evt)
}

func (p *Publisher) PublishIdentityDeactivated(ctx context.Context, evt auth.IdentityDeactivatedEvent) error {
	return p.publish(ctx, RoutingIdentityDeactivated, evt)
}

func (p *Publisher) PublishBackgroundCheckRequested(ctx context.Context, evt caregiver.BackgroundCheckRequestedEvent) error {
	return p.publish(ctx, RoutingBackgroundCheckRequested, evt)
}

// envelope is the body of every event.
type envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func newPublishing(routingKey string, payload any, now time.Time) (amqp.Publishing, error) {
	env := envelope{
		ID:         uuid.NewString(),
		Type:       routingKey,
		OccurredAt: now.UTC(),
		Data:       payload,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("rabbitmq: encode %s: %w", routingKey, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Type:         routingKey,
		Timestamp:    env.OccurredAt,
		Body:         body,
	}, nil
}

func tagRequest(ctx context.Context, msg *amqp.Publishing) {
	rid := ctxpkg.GetRequestID(ctx)
	if rid == "" {
		return
	}
	if msg.Headers == nil {
		msg.Headers = amqp.Table{}
	}
	msg.Headers[HeaderRequestID] = rid
}

func (p *Publisher) publish(ctx context.Context, routingKey string, payload any) error {
	msg, err := newPublishing(routingKey, payload, time.Now())
	if err != nil {
		return err
	}
	tagRequest(ctx, &msg)

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, confirmTimeout)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensure(); err != nil {
		return err
	}
	p.discardStale()

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, true, false, msg); err != nil {
		p.teardown()
		return fmt.Errorf("rabbitmq: publish %s: %w", routingKey, err)
	}
	return p.awaitConfirm(ctx, routingKey)
}

// awaitConfirm waits for the broker's verdict on the last publish.
func (p *Publisher) awaitConfirm(ctx context.Context, routingKey string) error {
	select {
	case ret := <-p.returns:
		return unroutable(routingKey, ret)

	case conf, ok := <-p.confirms:
		if !ok {
			p.teardown()
			return fmt.Errorf("rabbitmq: publish %s: channel closed before confirm", routingKey)
		}
		select {
		case ret := <-p.returns:
			return unroutable(routingKey, ret)
		case <-time.After(returnGrace):
		}
		if !conf.Ack {
			return fmt.Errorf("rabbitmq: publish %s: nacked (delivery tag %d)", routingKey, conf.DeliveryTag)
		}
		return nil

	case <-ctx.Done():
		return fmt.Errorf("rabbitmq: publish %s: %w", routingKey, ctx.Err())
	}
}

// discardStale drops confirms and returns left over from a publish whose
// caller gave up, so they are not attributed to the next message.
func (p *Publisher) discardStale() {
	for {
		select {
		case <-p.confirms:
		case <-p.returns:
		default:
			return
		}
	}
}

func unroutable(routingKey string, ret amqp.Return) error {
	return fmt.Errorf("rabbitmq: publish %s: unroutable (%d %s)", routingKey, ret.ReplyCode, ret.ReplyText)
}

// ensure reconnects after a broker restart or a channel error.
func (p *Publisher) ensure() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	p.teardown()
	if err := p.dial(); err != nil {
		return errors.Join(errNotConnected, err)
	}
	return nil
}

func (p *Publisher) dial() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq: dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	if err := declareTopology(ch, p.exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn, p.ch = conn, ch
	p.confirms = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returns = ch.NotifyReturn(make(chan amqp.Return, 1))
	return nil
}

func declareTopology(ch *amqp.Channel, exchange string) error {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: declare exchange %s: %w", exchange, err)
	}
	if err := ch.Confirm(false); err != nil {
		return fmt.Errorf("rabbitmq: enable confirms: %w", err)
	}
	return nil
}

func (p *Publisher) teardown() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
