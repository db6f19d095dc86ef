package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/lubetrack/workshop-backend/internal/models"
)

const stockAlertTopic = "lubetrack/alerts/low-stock"

// Publisher emits stock alerts to interested listeners. Delivery is best
// effort: callers log failures and move on, a lost alert never fails the
// service that triggered it.
type Publisher interface {
	PublishStockAlert(alert models.StockAlert) error
	Close()
}

// NoopPublisher drops every alert. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishStockAlert(models.StockAlert) error { return nil }
func (NoopPublisher) Close()                                    {}

// MQTTPublisher publishes stock alerts to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
}

// NewMQTTPublisher connects to the broker named by the MQTT_BROKER
// environment variable. An empty value yields a NoopPublisher so
// deployments without a broker run unchanged.
func NewMQTTPublisher() (Publisher, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		return NoopPublisher{}, nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("lubetrack-backend").
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	log.WithField("broker", broker).Info("Connected to MQTT broker")
	return &MQTTPublisher{client: client}, nil
}

// PublishStockAlert sends the alert on lubetrack/alerts/low-stock with
// QoS 1.
func (p *MQTTPublisher) PublishStockAlert(alert models.StockAlert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal stock alert: %w", err)
	}

	token := p.client.Publish(stockAlertTopic, 1, false, payload)
	token.Wait()
	return token.Error()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
