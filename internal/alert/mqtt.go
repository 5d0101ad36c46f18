package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"
)

// MQTTNotifier mirrors alert messages onto an MQTT topic for site-local
// consumers (a base-station dashboard, a home-automation hook). It is an
// optional second sink next to Telegram.
type MQTTNotifier struct {
	client mqtt.Client
	topic  string
	qos    byte
	logger *zap.Logger
}

// MQTTOptions configures the broker connection.
type MQTTOptions struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// NewMQTTNotifier connects to the broker and returns a notifier publishing to
// the configured topic.
func NewMQTTNotifier(opts MQTTOptions, logger *zap.Logger) (*MQTTNotifier, error) {
	clientOpts := mqtt.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	if opts.Username != "" {
		clientOpts.SetUsername(opts.Username)
	}
	if opts.Password != "" {
		clientOpts.SetPassword(opts.Password)
	}
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetCleanSession(true)

	client := mqtt.NewClient(clientOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", opts.Broker, token.Error())
	}

	return &MQTTNotifier{
		client: client,
		topic:  opts.Topic,
		qos:    opts.QoS,
		logger: logger,
	}, nil
}

// mqttAlert is the JSON payload published to the alert topic.
type mqttAlert struct {
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

func encodeMQTTAlert(message string, sentAt time.Time) ([]byte, error) {
	return json.Marshal(mqttAlert{Message: message, SentAt: sentAt})
}

// Notify publishes the message to the alert topic as a JSON payload.
func (n *MQTTNotifier) Notify(ctx context.Context, message string) error {
	payload, err := encodeMQTTAlert(message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("encoding alert payload: %w", err)
	}
	token := n.client.Publish(n.topic, n.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", n.topic, err)
	}
	n.logger.Debug("alert published to MQTT", zap.String("topic", n.topic))
	return nil
}

// Close disconnects from the broker.
func (n *MQTTNotifier) Close() {
	n.client.Disconnect(250)
}
