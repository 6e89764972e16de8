package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
)

const (
	discoveryQoS      byte = 1
	discoveryRetained      = true
)

// Client is the part of mqtt.Client the publisher needs.
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type PublisherOptions struct {
	DiscoveryPrefix string
	StatePrefix     string
	PublishTimeout  time.Duration // per message, zero waits indefinitely
}

// Publisher announces entities through Home Assistant MQTT discovery.
type Publisher struct {
	client Client
	opts   PublisherOptions
	log    logrus.FieldLogger
}

func NewPublisher(c Client, opts PublisherOptions, log logrus.FieldLogger) *Publisher {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Publisher{client: c, opts: opts, log: log}
}

// PublishAll publishes a retained config message per entry and waits for
// each one to be acknowledged before sending the next. The first failure
// aborts the run.
func (p *Publisher) PublishAll(ctx context.Context, entries []Entry) error {
	p.log.Info("Adding CollectD Discovery Topics")

	msgs, err := Plan(p.opts.DiscoveryPrefix, p.opts.StatePrefix, entries)
	if err != nil {
		return err
	}

	for _, m := range msgs {
		if err := p.publish(ctx, m); err != nil {
			p.log.WithError(err).WithField("topic", m.Topic).Error("Failed to publish discovery config")
			return err
		}
		p.log.WithField("topic", m.Topic).Debug("Published discovery config")
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, m Message) error {
	token := p.client.Publish(m.Topic, discoveryQoS, discoveryRetained, m.Payload)

	var timeout <-chan time.Time
	if p.opts.PublishTimeout > 0 {
		timer := time.NewTimer(p.opts.PublishTimeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-token.Done():
	case <-ctx.Done():
		return fmt.Errorf("publish %s: %w", m.Topic, ctx.Err())
	case <-timeout:
		return fmt.Errorf("publish %s: %w", m.Topic, ErrPublishTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.Topic, err)
	}
	return nil
}

var ErrPublishTimeout = errors.New("timed out waiting for publish")

// Dial connects a paho client to broker.
func Dial(ctx context.Context, broker, clientID, username, password string, timeout time.Duration) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetUsername(username).
		SetPassword(password).
		SetConnectTimeout(timeout).
		SetAutoReconnect(false)

	client := mqtt.NewClient(opts)
	token := client.Connect()

	select {
	case <-token.Done():
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to connect to %s: %w", broker, ctx.Err())
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", broker, err)
	}
	return client, nil
}
