package telemetry

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/practicebook/internal/models"
	"github.com/desertthunder/practicebook/internal/shared"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const connectTimeout = 10 * time.Second

// Ingestor subscribes to the device topic and publishes parsed samples to a [Broker].
type Ingestor struct {
	config shared.MQTTConfig
	broker *Broker
	logger *log.Logger
	client mqtt.Client
}

// NewIngestor creates an ingestor. A nil logger falls back to [log.Default].
func NewIngestor(config shared.MQTTConfig, broker *Broker, logger *log.Logger) *Ingestor {
	if logger == nil {
		logger = log.Default()
	}
	return &Ingestor{
		config: config,
		broker: broker,
		logger: shared.WithLogger(logger, "component", "mqtt"),
	}
}

// ClientOptions builds the paho options for the configured broker.
func (i *Ingestor) ClientOptions() *mqtt.ClientOptions {
	keepAlive := time.Duration(i.config.KeepAliveSeconds) * time.Second
	if keepAlive <= 0 {
		keepAlive = 5 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(i.config.Broker).
		SetClientID(i.config.ClientID).
		SetKeepAlive(keepAlive).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout).
		SetOnConnectHandler(i.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			i.logger.Warn("connection lost", "broker", i.config.Broker, "error", err)
		})

	if i.config.Username != "" {
		opts.SetUsername(i.config.Username)
		opts.SetPassword(i.config.Password)
	}
	return opts
}

// Start connects to the broker and blocks until ctx is cancelled.
func (i *Ingestor) Start(ctx context.Context) error {
	i.client = mqtt.NewClient(i.ClientOptions())

	token := i.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("%w: connecting to %s", shared.ErrTimeout, i.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	<-ctx.Done()
	i.client.Disconnect(250)
	i.logger.Info("disconnected", "broker", i.config.Broker)
	return nil
}

// onConnect (re)subscribes whenever paho establishes a session.
func (i *Ingestor) onConnect(client mqtt.Client) {
	i.logger.Info("connected", "broker", i.config.Broker, "topic", i.config.Topic)

	token := client.Subscribe(i.config.Topic, byte(i.config.QoS), i.HandleMessage)
	go func() {
		if !token.WaitTimeout(connectTimeout) {
			i.logger.Error("subscribe timed out", "topic", i.config.Topic)
			return
		}
		if err := token.Error(); err != nil {
			i.logger.Error("subscribe failed", "topic", i.config.Topic, "error", err)
		}
	}()
}

// HandleMessage is the paho message handler.
func (i *Ingestor) HandleMessage(_ mqtt.Client, msg mqtt.Message) {
	i.HandlePayload(msg.Topic(), msg.Payload())
}

// HandlePayload parses payload and publishes it, reporting whether it was accepted.
func (i *Ingestor) HandlePayload(topic string, payload []byte) bool {
	bpm, err := ParseBPM(payload)
	if err != nil {
		i.logger.Warn("dropping sample", "topic", topic, "error", err)
		return false
	}
	i.broker.Publish(bpm)
	i.logger.Debug("sample", "topic", topic, "bpm", bpm)
	return true
}

// ParseBPM decodes a device payload into a BPM sample.
func ParseBPM(payload []byte) (float64, error) {
	if !utf8.Valid(payload) {
		return 0, fmt.Errorf("%w: payload is not UTF-8", shared.ErrInvalidPayload)
	}

	text := strings.TrimSpace(string(payload))
	bpm, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", shared.ErrInvalidPayload, text)
	}
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return 0, fmt.Errorf("%w: %q is not finite", shared.ErrInvalidPayload, text)
	}
	if !models.ValidBPM(bpm) {
		return 0, fmt.Errorf("%w: %v is negative", shared.ErrInvalidPayload, bpm)
	}
	return bpm, nil
}
