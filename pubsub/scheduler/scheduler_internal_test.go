package scheduler

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletpass/entity"
)

type eventBusStub struct {
	lock   sync.Mutex
	events []any
	err    error
}

func (b *eventBusStub) Publish(ctx context.Context, event any) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.err != nil {
		return b.err
	}
	b.events = append(b.events, event)
	return nil
}

var now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newScheduler(t *testing.T) (*RecheckScheduler, redismock.ClientMock, *eventBusStub) {
	t.Helper()

	rdb, mock := redismock.NewClientMock()
	bus := &eventBusStub{}

	s := NewRecheckScheduler(rdb, bus, time.Second)
	s.now = func() time.Time { return now }

	return s, mock, bus
}

func TestRecheckScheduler_Schedule(t *testing.T) {
	s, mock, _ := newScheduler(t)

	at := now.Add(10 * time.Second)
	mock.ExpectZAdd(recheckKey, redis.Z{Score: float64(at.UnixMilli()), Member: "100"}).SetVal(1)

	require.NoError(t, s.Schedule(context.Background(), "100", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecheckScheduler_FireDue_claims_before_publishing(t *testing.T) {
	s, mock, bus := newScheduler(t)

	mock.ExpectZRangeByScore(recheckKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: batchSize,
	}).SetVal([]string{"100", "200"})
	mock.ExpectZRem(recheckKey, "100").SetVal(1)
	mock.ExpectZRem(recheckKey, "200").SetVal(0)

	fired, err := s.FireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, bus.events, 1)
	event, ok := bus.events[0].(entity.DelayedRecheckDue)
	require.True(t, ok)
	assert.Equal(t, "100", event.OrderID)
}

func TestRecheckScheduler_FireDue_drops_on_publish_failure(t *testing.T) {
	s, mock, bus := newScheduler(t)
	bus.err = errors.New("redis is down")

	mock.ExpectZRangeByScore(recheckKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: batchSize,
	}).SetVal([]string{"100"})
	mock.ExpectZRem(recheckKey, "100").SetVal(1)

	fired, err := s.FireDue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecheckScheduler_FireDue_read_error(t *testing.T) {
	s, mock, _ := newScheduler(t)

	mock.ExpectZRangeByScore(recheckKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(now.UnixMilli(), 10),
		Count: batchSize,
	}).SetErr(errors.New("connection refused"))

	_, err := s.FireDue(context.Background())
	assert.Error(t, err)
}
