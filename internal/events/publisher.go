package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	commonredis "via-fatto-painel/common/redis"
	"via-fatto-painel/internal/tenancy"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ResolutionEvent is the diagnostic record of one tenant resolution.
type ResolutionEvent struct {
	EventID    string    `json:"event_id"`
	ClientID   string    `json:"client_id,omitempty"`
	Hostname   string    `json:"hostname"`
	Reason     string    `json:"reason"`
	ErrorCode  string    `json:"error_code,omitempty"`
	TenantID   string    `json:"tenant_id,omitempty"`
	DomainID   string    `json:"domain_id,omitempty"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// NewResolutionEvent builds an event for res with a fresh event id.
func NewResolutionEvent(res tenancy.Result, clientID string) ResolutionEvent {
	ev := ResolutionEvent{
		EventID:    uuid.NewString(),
		ClientID:   clientID,
		Hostname:   res.Hostname,
		Reason:     string(res.Reason),
		ErrorCode:  string(res.Error),
		TenantID:   res.TenantID(),
		ResolvedAt: res.ResolvedAt,
	}
	if res.Domain != nil {
		ev.DomainID = res.Domain.ID
	}
	return ev
}

// Publisher delivers resolution events somewhere durable.
type Publisher interface {
	Publish(ctx context.Context, ev ResolutionEvent) error
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, ResolutionEvent) error { return nil }

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, ev ResolutionEvent) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RedisStreamPublisher appends events to a Redis stream.
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(client *redis.Client, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, ev ResolutionEvent) error {
	if _, err := commonredis.PublishJSONToStream(ctx, p.client, p.stream, p.maxLen, ev); err != nil {
		return fmt.Errorf("publish to stream %s: %w", p.stream, err)
	}
	return nil
}

// MQTTClient is the subset of common/mqtt.Client used here.
type MQTTClient interface {
	Publish(topic string, qos byte, retained bool, payload []byte) error
}

// MQTTPublisher publishes events as JSON on one topic.
type MQTTPublisher struct {
	client MQTTClient
	topic  string
	qos    byte
}

func NewMQTTPublisher(client MQTTClient, topic string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, qos: qos}
}

func (p *MQTTPublisher) Publish(_ context.Context, ev ResolutionEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.Publish(p.topic, p.qos, false, payload)
}
