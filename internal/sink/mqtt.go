// Package sink forwards simulated sensor readings to an MQTT broker, the way
// the Wokwi ESP32 would uplink them.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/eclipse/paho.golang/paho"
	"go.uber.org/zap"

	"microcasa/internal/telemetry"
)

// publisher is the subset of *paho.Client the sink needs.
type publisher interface {
	Publish(ctx context.Context, p *paho.Publish) (*paho.PublishResponse, error)
	Disconnect(d *paho.Disconnect) error
}

// Message is the JSON payload published per reading.
type Message struct {
	SessionID   string    `json:"session_id,omitempty"`
	Seq         int       `json:"seq"`
	Latitude    float64   `json:"lat"`
	Longitude   float64   `json:"lon"`
	Temperature float64   `json:"temp"`
	Humidity    float64   `json:"humidity"`
	Time        time.Time `json:"time"`
	Origin      string    `json:"origin"`
	Status      string    `json:"status"`
	Location    string    `json:"location,omitempty"`
}

type MQTT struct {
	client  publisher
	topic   string
	timeout time.Duration
	log     *zap.Logger
}

// Dial connects to broker (host:port) and returns a ready sink.
func Dial(ctx context.Context, broker, clientID, topic string, log *zap.Logger) (*MQTT, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", broker)
	if err != nil {
		return nil, fmt.Errorf("dial mqtt broker %s: %w", broker, err)
	}

	client := paho.NewClient(paho.ClientConfig{
		ClientID: clientID,
		Conn:     conn,
	})

	ack, err := client.Connect(ctx, &paho.Connect{
		ClientID:   clientID,
		KeepAlive:  30,
		CleanStart: true,
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	if ack.ReasonCode != 0 {
		conn.Close()
		return nil, fmt.Errorf("mqtt connect refused: reason %d", ack.ReasonCode)
	}

	log.Info("mqtt sink connected", zap.String("broker", broker), zap.String("topic", topic))
	return newMQTT(client, topic, log), nil
}

func newMQTT(client publisher, topic string, log *zap.Logger) *MQTT {
	return &MQTT{client: client, topic: topic, timeout: 5 * time.Second, log: log}
}

// Observer returns a telemetry observer publishing readings of one session.
// Seed rows are synthetic background and are not uplinked.
func (m *MQTT) Observer(sessionID string) telemetry.Observer {
	return func(r telemetry.Reading) {
		if r.Origin == telemetry.OriginSeed {
			return
		}
		if err := m.Publish(sessionID, r); err != nil {
			m.log.Warn("mqtt publish failed", zap.String("session", sessionID), zap.Int("seq", r.Seq), zap.Error(err))
		}
	}
}

// Publish sends one reading at QoS 1.
func (m *MQTT) Publish(sessionID string, r telemetry.Reading) error {
	payload, err := json.Marshal(Message{
		SessionID:   sessionID,
		Seq:         r.Seq,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Time:        r.Time,
		Origin:      string(r.Origin),
		Status:      string(telemetry.Classify(r.Temperature)),
		Location:    r.Location,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	_, err = m.client.Publish(ctx, &paho.Publish{
		QoS:     1,
		Topic:   m.topic,
		Payload: payload,
		Properties: &paho.PublishProperties{
			ContentType: "application/json",
		},
	})
	return err
}

func (m *MQTT) Close() error {
	return m.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
}
