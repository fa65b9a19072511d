package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"via-fatto-painel/internal/domain"
	"via-fatto-painel/internal/tenancy"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var resolvedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleResult() tenancy.Result {
	return tenancy.Result{
		Tenant:     &domain.Tenant{ID: "t-1", Name: "Via Fatto", Status: domain.TenantStatusActive},
		Domain:     &domain.Domain{ID: "d-1", TenantID: "t-1", Hostname: "painel.viafatto.com.br", Type: domain.DomainTypeAdmin},
		Reason:     tenancy.ReasonDomains,
		Hostname:   "painel.viafatto.com.br",
		ResolvedAt: resolvedAt,
	}
}

func TestNewResolutionEvent(t *testing.T) {
	ev := NewResolutionEvent(sampleResult(), "client-1")
	assert.NotEmpty(t, ev.EventID)
	assert.Equal(t, "client-1", ev.ClientID)
	assert.Equal(t, "t-1", ev.TenantID)
	assert.Equal(t, "d-1", ev.DomainID)
	assert.Equal(t, "domains", ev.Reason)
	assert.Empty(t, ev.ErrorCode)

	failed := NewResolutionEvent(tenancy.Result{
		Error:    tenancy.CodeDomainNotFound,
		Reason:   tenancy.ReasonError,
		Hostname: "x.com.br",
	}, "")
	assert.Equal(t, "DOMAIN_NOT_FOUND", failed.ErrorCode)
	assert.Empty(t, failed.TenantID)
	assert.Empty(t, failed.DomainID)
	assert.NotEqual(t, ev.EventID, failed.EventID)
}

func TestRedisStreamPublisher(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	p := NewRedisStreamPublisher(client, "painel:tenancy:resolutions", 100)
	require.NoError(t, p.Publish(ctx, NewResolutionEvent(sampleResult(), "client-1")))

	msgs, err := client.XRange(ctx, "painel:tenancy:resolutions", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	raw, ok := msgs[0].Values["data"].(string)
	require.True(t, ok)
	var got ResolutionEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &got))
	assert.Equal(t, "t-1", got.TenantID)
	assert.Equal(t, "painel.viafatto.com.br", got.Hostname)
	assert.True(t, resolvedAt.Equal(got.ResolvedAt))
}

func TestRedisStreamPublisher_Error(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	p := NewRedisStreamPublisher(client, "s", 0)
	err := p.Publish(context.Background(), NewResolutionEvent(sampleResult(), ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to stream s")
}

type fakeMQTT struct {
	topic   string
	qos     byte
	payload []byte
	err     error
}

func (f *fakeMQTT) Publish(topic string, qos byte, retained bool, payload []byte) error {
	f.topic, f.qos, f.payload = topic, qos, payload
	return f.err
}

func TestMQTTPublisher(t *testing.T) {
	client := &fakeMQTT{}
	p := NewMQTTPublisher(client, "painel/tenancy/resolutions", 1)

	require.NoError(t, p.Publish(context.Background(), NewResolutionEvent(sampleResult(), "client-1")))
	assert.Equal(t, "painel/tenancy/resolutions", client.topic)
	assert.Equal(t, byte(1), client.qos)

	var got map[string]any
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, "domains", got["reason"])
	assert.NotContains(t, got, "error_code")
}

type countingPublisher struct {
	n   int
	err error
}

func (c *countingPublisher) Publish(context.Context, ResolutionEvent) error {
	c.n++
	return c.err
}

func TestMulti(t *testing.T) {
	ok := &countingPublisher{}
	bad := &countingPublisher{err: errors.New("broker down")}
	m := Multi{ok, nil, bad}

	err := m.Publish(context.Background(), NewResolutionEvent(sampleResult(), ""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, 1, ok.n, "a failing publisher does not stop the others")
	assert.Equal(t, 1, bad.n)

	assert.NoError(t, Multi(nil).Publish(context.Background(), ResolutionEvent{}))
	assert.NoError(t, Nop{}.Publish(context.Background(), ResolutionEvent{}))
}
