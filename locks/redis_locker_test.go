package locks

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (RedisLocker, redismock.ClientMock) {
	t.Helper()

	rdb, mock := redismock.NewClientMock()
	locker := NewRedisLocker(rdb, time.Minute)
	locker.newToken = func() string { return "token-1" }

	return locker, mock
}

func TestRedisLocker_TryLock(t *testing.T) {
	locker, mock := newTestLocker(t)
	ctx := context.Background()

	mock.ExpectSetNX("walletpass:lock:pass:order-1:att-1", "token-1", time.Minute).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{"walletpass:lock:pass:order-1:att-1"}, "token-1").SetVal(int64(1))

	release, ok, err := locker.TryLock(ctx, PassLockName("order-1", "att-1"))
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, release(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_TryLock_held(t *testing.T) {
	locker, mock := newTestLocker(t)

	mock.ExpectSetNX("walletpass:lock:pass:order-1:att-1", "token-1", time.Minute).SetVal(false)

	release, ok, err := locker.TryLock(context.Background(), PassLockName("order-1", "att-1"))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, release)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisLocker_TryLock_redis_error(t *testing.T) {
	locker, mock := newTestLocker(t)

	mock.ExpectSetNX("walletpass:lock:pass:order-1:att-1", "token-1", time.Minute).SetErr(assert.AnError)

	_, ok, err := locker.TryLock(context.Background(), PassLockName("order-1", "att-1"))
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, ok)
}
