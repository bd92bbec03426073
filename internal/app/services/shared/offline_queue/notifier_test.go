package offline_queue

import (
	"context"
	"primarycare-identity-service/internal/app/models"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeConfirmation struct {
	done chan struct{}
	ack  bool
}

func newFakeConfirmation() *fakeConfirmation {
	return &fakeConfirmation{done: make(chan struct{})}
}

func (c *fakeConfirmation) resolve(ack bool) {
	c.ack = ack
	close(c.done)
}

func (c *fakeConfirmation) WaitContext(ctx context.Context) (bool, error) {
	select {
	case <-c.done:
		return c.ack, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// fakeChannel hands out one confirmation per publish, in order.
type fakeChannel struct {
	mu            sync.Mutex
	confirmations []*fakeConfirmation
	published     []amqp.Publishing
}

func (f *fakeChannel) Publish(_ context.Context, _ string, msg amqp.Publishing) (publishConfirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	confirmation := f.confirmations[len(f.published)]
	f.published = append(f.published, msg)
	return confirmation, nil
}

func (f *fakeChannel) Close() error {
	return nil
}

func TestNotify(t *testing.T) {
	t.Run("Acked publish", func(t *testing.T) {
		confirmation := newFakeConfirmation()
		confirmation.resolve(true)
		channel := &fakeChannel{confirmations: []*fakeConfirmation{confirmation}}
		notifier := newNotifier(channel, "offline", time.Second, zap.NewNop())

		err := notifier.Notify(context.Background(), &models.OfflineTransactionEvent{UUID: "a-1"})

		require.NoError(t, err)
		require.Len(t, channel.published, 1)
		assert.Equal(t, "a-1", channel.published[0].MessageId)
	})

	t.Run("Nacked publish", func(t *testing.T) {
		confirmation := newFakeConfirmation()
		confirmation.resolve(false)
		notifier := newNotifier(&fakeChannel{confirmations: []*fakeConfirmation{confirmation}}, "offline", time.Second, zap.NewNop())

		assert.Error(t, notifier.Notify(context.Background(), &models.OfflineTransactionEvent{UUID: "a-1"}))
	})

	t.Run("Late confirmation is not read by the next publish", func(t *testing.T) {
		late := newFakeConfirmation()
		next := newFakeConfirmation()
		channel := &fakeChannel{confirmations: []*fakeConfirmation{late, next}}
		notifier := newNotifier(channel, "offline", 20*time.Millisecond, zap.NewNop())

		err := notifier.Notify(context.Background(), &models.OfflineTransactionEvent{UUID: "a-1"})
		require.Error(t, err)

		late.resolve(true)
		next.resolve(false)

		err = notifier.Notify(context.Background(), &models.OfflineTransactionEvent{UUID: "a-2"})
		assert.Error(t, err, "the nack for a-2 must not be masked by the ack for a-1")

		third := newFakeConfirmation()
		third.resolve(true)
		channel.confirmations = append(channel.confirmations, third)

		start := time.Now()
		require.NoError(t, notifier.Notify(context.Background(), &models.OfflineTransactionEvent{UUID: "a-3"}))
		assert.Less(t, time.Since(start), 20*time.Millisecond)
	})
}
