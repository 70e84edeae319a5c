package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"coffee-quality-api/config"
	"coffee-quality-api/models"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const PredictionChannel = "coffee:predictions"

type PredictionEvent struct {
	SessionID     string                    `json:"session_id"`
	Record        models.HistoryRecord      `json:"record"`
	Probabilities []models.ClassProbability `json:"probabilities"`
}

type EventPublisher interface {
	PublishPrediction(ctx context.Context, ev PredictionEvent) error
}

type RedisPublisher struct {
	cache *CacheService
}

func NewRedisPublisher(cache *CacheService) *RedisPublisher {
	return &RedisPublisher{cache: cache}
}

func (p *RedisPublisher) PublishPrediction(ctx context.Context, ev PredictionEvent) error {
	if !p.cache.Available() {
		return nil
	}
	if err := p.cache.Publish(ctx, PredictionChannel, ev); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	eventsPublished.WithLabelValues("redis").Inc()
	return nil
}

// mqttRetryInterval is how often a broker that is not up yet is retried.
var mqttRetryInterval = 2 * time.Second

type MQTTPublisher struct {
	client mqtt.Client
	topic  string
}

func NewMQTTPublisher(cfg config.MQTTConfig) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.BrokerURL)
	opts.SetClientID("coffee-quality-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(mqttRetryInterval)
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	}

	timeout := cfg.ConnectTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	// A failed connect disconnects so the client stops retrying.
	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s timed out after %v", cfg.BrokerURL, timeout)
	}
	if token.Error() != nil {
		client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}
	log.Printf("mqtt connected: broker=%s topic=%s", cfg.BrokerURL, cfg.Topic)
	return &MQTTPublisher{client: client, topic: cfg.Topic}, nil
}

func (p *MQTTPublisher) PublishPrediction(ctx context.Context, ev PredictionEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	token := p.client.Publish(p.topic, 0, false, data)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if token.Error() != nil {
		return fmt.Errorf("mqtt publish: %w", token.Error())
	}
	eventsPublished.WithLabelValues("mqtt").Inc()
	return nil
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}

// MultiPublisher fans an event out to every sink and joins their errors.
type MultiPublisher []EventPublisher

func (m MultiPublisher) PublishPrediction(ctx context.Context, ev PredictionEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishPrediction(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
