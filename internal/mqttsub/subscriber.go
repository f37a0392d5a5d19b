// Package mqttsub ingests readings published by devices on an MQTT topic.
package mqttsub

import (
	"context"
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/metrics"
	"aeroponic_tower/internal/service"
)

const (
	retryInterval   = 5 * time.Second
	disconnectQuiet = 250 // ms
	ingestTimeout   = 5 * time.Second
)

// Options configures the broker connection.
type Options struct {
	Broker   string
	Topic    string
	ClientID string
	QoS      byte
}

// Subscriber feeds every message on the topic through the ingestion service,
// exactly as a POST /update body.
type Subscriber struct {
	client mqtt.Client
	topic  string
	qos    byte
	ingest service.Ingestion
	log    *logger.Logger
}

// New builds a subscriber; nothing connects until Run.
func New(opts Options, ingest service.Ingestion, log *logger.Logger) *Subscriber {
	if log == nil {
		log = logger.Nop()
	}
	s := &Subscriber{topic: opts.Topic, qos: opts.QoS, ingest: ingest, log: log}

	// Random suffix keeps client ids unique on the broker.
	mo := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID + "-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(retryInterval).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			s.log.Warnw("mqtt_connection_lost", "err", err)
		})
	s.client = mqtt.NewClient(mo)
	return s
}

// Run connects and keeps the subscription until ctx is done. Subscriptions are
// renewed on every reconnect.
func (s *Subscriber) Run(ctx context.Context) error {
	// With connect retry on, the token completes only once connected.
	token := s.client.Connect()
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return err
		}
	case <-ctx.Done():
	}

	<-ctx.Done()
	s.client.Disconnect(disconnectQuiet)
	s.log.Infow("mqtt_disconnected")
	return nil
}

func (s *Subscriber) onConnect(c mqtt.Client) {
	token := c.Subscribe(s.topic, s.qos, s.handle)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			s.log.Errorw("mqtt_subscribe_failed", "topic", s.topic, "err", err)
			return
		}
		s.log.Infow("mqtt_subscribed", "topic", s.topic, "qos", s.qos)
	}()
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	p, err := service.DecodePayload(msg.Payload())
	if err != nil {
		s.log.Warnw("mqtt_invalid_payload", "topic", msg.Topic(), "err", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
	defer cancel()
	r, err := s.ingest.Ingest(service.WithSource(ctx, metrics.SourceMQTT), p)
	switch {
	case errors.Is(err, service.ErrMissingFields):
		s.log.Warnw("mqtt_missing_fields", "topic", msg.Topic(), "err", err)
	case err != nil:
		s.log.Errorw("mqtt_ingest_failed", "topic", msg.Topic(), "err", err)
	default:
		s.log.Debugw("mqtt_reading_stored", "topic", msg.Topic(), "temperature", r.Temperature, "humidity", r.Humidity, "light", r.Light)
	}
}
