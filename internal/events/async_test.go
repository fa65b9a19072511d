package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// blockingPublisher holds every Publish until release is closed.
type blockingPublisher struct {
	release chan struct{}

	mu  sync.Mutex
	got []string
}

func (b *blockingPublisher) Publish(_ context.Context, ev ResolutionEvent) error {
	<-b.release
	b.mu.Lock()
	b.got = append(b.got, ev.EventID)
	b.mu.Unlock()
	return nil
}

func (b *blockingPublisher) delivered() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.got...)
}

func TestAsync_PublishDoesNotWaitForBroker(t *testing.T) {
	slow := &blockingPublisher{release: make(chan struct{})}
	a := NewAsync(slow, 4, zap.NewNop())

	start := time.Now()
	require.NoError(t, a.Publish(context.Background(), ResolutionEvent{EventID: "e-1"}))
	assert.Less(t, time.Since(start), time.Second)
	assert.Empty(t, slow.delivered())

	close(slow.release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, []string{"e-1"}, slow.delivered())
}

func TestAsync_DropsWhenQueueFull(t *testing.T) {
	slow := &blockingPublisher{release: make(chan struct{})}
	a := NewAsync(slow, 1, zap.NewNop())
	ctx := context.Background()

	// the worker takes the first event and blocks on it; the second fills the queue
	require.NoError(t, a.Publish(ctx, ResolutionEvent{EventID: "e-1"}))
	require.Eventually(t, func() bool {
		return a.Publish(ctx, ResolutionEvent{EventID: "e-2"}) == nil
	}, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, a.Publish(ctx, ResolutionEvent{EventID: "e-3"}), ErrQueueFull)

	close(slow.release)
	closeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	require.NoError(t, a.Close(closeCtx))
	assert.Equal(t, []string{"e-1", "e-2"}, slow.delivered())
}

func TestAsync_FailuresAreLoggedNotReturned(t *testing.T) {
	bad := &countingPublisher{err: errors.New("broker down")}
	a := NewAsync(bad, 2, nil)

	require.NoError(t, a.Publish(context.Background(), ResolutionEvent{EventID: "e-1"}))
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))
	assert.Equal(t, 1, bad.n)
}

func TestAsync_PublishAfterClose(t *testing.T) {
	a := NewAsync(Nop{}, 1, nil)
	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()), "close is idempotent")
	assert.ErrorIs(t, a.Publish(context.Background(), ResolutionEvent{}), ErrClosed)
}

func TestAsync_CloseHonorsContext(t *testing.T) {
	slow := &blockingPublisher{release: make(chan struct{})}
	defer close(slow.release)
	a := NewAsync(slow, 1, nil)
	require.NoError(t, a.Publish(context.Background(), ResolutionEvent{EventID: "e-1"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Close(ctx), context.DeadlineExceeded)
}
