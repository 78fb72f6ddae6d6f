package cache_utils

import (
	"context"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyQueueService treats a list as a FIFO: producers push on the left,
// consumers pop from the right.
type ValkeyQueueService struct {
	client  valkey.Client
	timeout time.Duration
}

func NewValkeyQueueService(client valkey.Client) *ValkeyQueueService {
	return &ValkeyQueueService{
		client:  client,
		timeout: DefaultQueueTimeout,
	}
}

// EnqueueBatch appends all items with a single LPUSH so they land atomically.
func (q *ValkeyQueueService) EnqueueBatch(ctx context.Context, queueKey string, items [][]byte) error {
	if len(items) == 0 {
		return nil
	}

	elements := make([]string, len(items))
	for i, item := range items {
		elements[i] = string(item)
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	return q.client.Do(ctx, q.client.B().Lpush().Key(queueKey).Element(elements...).Build()).Error()
}

// DequeueBatch pops up to maxCount of the oldest items. An empty or missing
// list yields no items and no error.
func (q *ValkeyQueueService) DequeueBatch(ctx context.Context, queueKey string, maxCount int) ([][]byte, error) {
	if maxCount <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	defer cancel()

	popped, err := q.client.Do(ctx, q.client.B().Rpop().Key(queueKey).Count(int64(maxCount)).Build()).AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, err
	}

	items := make([][]byte, len(popped))
	for i, element := range popped {
		items[i] = []byte(element)
	}

	return items, nil
}
