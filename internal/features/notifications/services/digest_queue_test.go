package notifications_services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listBackend struct {
	lists map[string][][]byte
}

func (b *listBackend) EnqueueBatch(_ context.Context, queueKey string, items [][]byte) error {
	b.lists[queueKey] = append(b.lists[queueKey], items...)
	return nil
}

func (b *listBackend) DequeueBatch(_ context.Context, queueKey string, maxCount int) ([][]byte, error) {
	items := b.lists[queueKey]
	if len(items) > maxCount {
		items = items[:maxCount]
	}
	b.lists[queueKey] = b.lists[queueKey][len(items):]

	return items, nil
}

func Test_ValkeyDigestQueue_WhenDrained_ReturnsEntriesAndSkipsMalformed(t *testing.T) {
	backend := &listBackend{lists: map[string][][]byte{}}
	queue := NewValkeyDigestQueue(backend, slog.New(slog.NewTextHandler(io.Discard, nil)))

	entries := make([]DigestEntry, 0, digestDequeueBatchSize+10)
	for i := 0; i < digestDequeueBatchSize+10; i++ {
		entries = append(entries, DigestEntry{
			NotificationID: uuid.New(),
			UserID:         uuid.New(),
			Excerpt:        "hi",
			CreatedAt:      time.Now().UTC(),
		})
	}
	require.NoError(t, queue.Enqueue(context.Background(), entries))
	require.NoError(t, backend.EnqueueBatch(context.Background(), digestQueueKey, [][]byte{[]byte("{broken")}))

	drained, err := queue.Drain(context.Background())
	require.NoError(t, err)

	assert.Len(t, drained, len(entries))
	assert.Equal(t, entries[0].NotificationID, drained[0].NotificationID)
	assert.Empty(t, backend.lists[digestQueueKey])
}
