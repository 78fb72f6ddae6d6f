package cache_utils

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"
)

const lockKeyPrefix = "lock:"

// deletes the key only while it still holds the caller's token, so a holder
// whose TTL ran out cannot release a lock taken over by another instance
var releaseLockScript = valkey.NewLuaScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// ValkeyRunLock keeps a job to one instance at a time with SET NX PX.
type ValkeyRunLock struct {
	client  valkey.Client
	timeout time.Duration
}

func NewValkeyRunLock(client valkey.Client) *ValkeyRunLock {
	return &ValkeyRunLock{
		client:  client,
		timeout: DefaultCacheTimeout,
	}
}

// TryLock reports false without error when another holder owns name. The
// returned release must be called once the job is done.
func (l *ValkeyRunLock) TryLock(
	ctx context.Context,
	name string,
	ttl time.Duration,
) (release func(context.Context) error, acquired bool, err error) {
	key := lockKeyPrefix + name
	token := uuid.NewString()

	setCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	err = l.client.Do(setCtx, l.client.B().Set().Key(key).Value(token).Nx().PxMilliseconds(ttl.Milliseconds()).Build()).
		Error()
	if valkey.IsValkeyNil(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", name, err)
	}

	release = func(releaseCtx context.Context) error {
		releaseCtx, cancel := context.WithTimeout(releaseCtx, l.timeout)
		defer cancel()

		if err := releaseLockScript.Exec(releaseCtx, l.client, []string{key}, []string{token}).Error(); err != nil {
			return fmt.Errorf("failed to release lock %s: %w", name, err)
		}

		return nil
	}

	return release, true, nil
}
