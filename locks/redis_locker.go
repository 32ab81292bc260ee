package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "walletpass:lock:"

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker hands out exclusive, expiring locks keyed by name.
type RedisLocker struct {
	rdb redis.Cmdable
	ttl time.Duration

	newToken func() string
}

func NewRedisLocker(rdb redis.Cmdable, ttl time.Duration) RedisLocker {
	if rdb == nil {
		panic("missing redis client")
	}

	return RedisLocker{
		rdb:      rdb,
		ttl:      ttl,
		newToken: uuid.NewString,
	}
}

// TryLock returns ok=false when the lock is held by someone else. The returned release func
// removes the lock only if it is still owned by this caller.
func (l RedisLocker) TryLock(ctx context.Context, name string) (release func(context.Context) error, ok bool, err error) {
	key := keyPrefix + name
	token := l.newToken()

	acquired, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("could not acquire lock %s: %w", name, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release = func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("could not release lock %s: %w", name, err)
		}
		return nil
	}

	return release, true, nil
}

// PassLockName names the lock guarding pass creation for one attendee of an order.
func PassLockName(orderID, attendeeID string) string {
	return "pass:" + orderID + ":" + attendeeID
}
