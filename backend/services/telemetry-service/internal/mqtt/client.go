package mqtt

import (
	"context"
	"errors"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

const (
	defaultBuffer         = 256
	defaultConnectTimeout = 10 * time.Second
	disconnectQuiesceMs   = 250
)

// Message is a raw payload delivered from the broker.
type Message struct {
	Topic   string
	Payload []byte
}

// Options configures the broker connection.
type Options struct {
	BrokerURL string
	ClientID  string
	Username  string
	Password  string
	Topic     string
	QoS       byte
	Buffer    int
}

// Client subscribes to a telemetry topic and feeds payloads to a channel.
// The broker callback only enqueues; consumers drain Messages() on their own
// loop so transport and application logic never share a stack.
type Client struct {
	client   paho.Client
	topic    string
	qos      byte
	messages chan Message
	logger   *zap.Logger
}

// NewClient builds a broker client with automatic reconnect. Subscription is
// (re)established from the connect hook, so a dropped connection resumes
// delivery without intervention.
func NewClient(opts Options, logger *zap.Logger) *Client {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	c := &Client{
		topic:    opts.Topic,
		qos:      opts.QoS,
		messages: make(chan Message, buffer),
		logger:   logger,
	}

	pahoOpts := paho.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(c.onConnectionLost)

	c.client = paho.NewClient(pahoOpts)
	return c
}

// Connect establishes the initial broker connection. A broker that is down at
// startup is not fatal: the retry loop keeps attempting in the background and
// the error is reported for logging only.
func (c *Client) Connect(ctx context.Context) error {
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		return errors.New("mqtt: broker connection still pending")
	}
	if err := token.Error(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	return nil
}

func (c *Client) onConnect(client paho.Client) {
	c.logger.Info("mqtt broker connected", zap.String("topic", c.topic))
	token := client.Subscribe(c.topic, c.qos, c.handleMessage)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			c.logger.Error("mqtt subscribe failed", zap.String("topic", c.topic), zap.Error(err))
		}
	}()
}

func (c *Client) onConnectionLost(_ paho.Client, err error) {
	c.logger.Warn("mqtt broker connection lost", zap.Error(err))
}

func (c *Client) handleMessage(_ paho.Client, msg paho.Message) {
	payload := make([]byte, len(msg.Payload()))
	copy(payload, msg.Payload())

	select {
	case c.messages <- Message{Topic: msg.Topic(), Payload: payload}:
	default:
		c.logger.Warn("dropping telemetry message, buffer full", zap.String("topic", msg.Topic()))
	}
}

// Messages returns the delivery channel.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Connected reports broker connectivity for health checks.
func (c *Client) Connected() bool {
	return c.client.IsConnectionOpen()
}

// Close unsubscribes and disconnects from the broker.
func (c *Client) Close() {
	if c.client.IsConnectionOpen() {
		if token := c.client.Unsubscribe(c.topic); token.WaitTimeout(defaultConnectTimeout) {
			if err := token.Error(); err != nil {
				c.logger.Warn("mqtt unsubscribe failed", zap.Error(err))
			}
		}
	}
	c.client.Disconnect(disconnectQuiesceMs)
}
