package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/redis/go-redis/v9"

	"walletpass/entity"
	"walletpass/metrics"
)

const (
	recheckKey = "walletpass:recheck"
	batchSize  = 100
)

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

// RecheckScheduler keeps delayed re-checks of orders in a Redis sorted set scored by due time.
// Every instance polls the set; a re-check fires on the instance that removes it from the set.
type RecheckScheduler struct {
	rdb          redis.Cmdable
	eventBus     EventBus
	pollInterval time.Duration

	now func() time.Time
}

func NewRecheckScheduler(rdb redis.Cmdable, eventBus EventBus, pollInterval time.Duration) *RecheckScheduler {
	if rdb == nil {
		panic("missing redis client")
	}
	if eventBus == nil {
		panic("missing eventBus")
	}

	return &RecheckScheduler{
		rdb:          rdb,
		eventBus:     eventBus,
		pollInterval: pollInterval,
		now:          time.Now,
	}
}

// Schedule sets the re-check of orderID at the given time. Scheduling it again moves it.
func (s *RecheckScheduler) Schedule(ctx context.Context, orderID string, at time.Time) error {
	err := s.rdb.ZAdd(ctx, recheckKey, redis.Z{
		Score:  float64(at.UnixMilli()),
		Member: orderID,
	}).Err()
	if err != nil {
		return fmt.Errorf("could not schedule re-check of order %s: %w", orderID, err)
	}

	return nil
}

func (s *RecheckScheduler) Run(ctx context.Context) error {
	log.FromContext(ctx).WithField("poll_interval", s.pollInterval).Info("[Scheduler] polling for due re-checks")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := s.FireDue(ctx); err != nil && ctx.Err() == nil {
				log.FromContext(ctx).WithError(err).Error("Could not fire due re-checks")
			}
		}
	}
}

// FireDue publishes DelayedRecheckDue for every claimed re-check that is due and returns how
// many were published. A re-check whose publish fails is dropped.
func (s *RecheckScheduler) FireDue(ctx context.Context) (int, error) {
	due, err := s.rdb.ZRangeByScore(ctx, recheckKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(s.now().UnixMilli(), 10),
		Count: batchSize,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("could not read due re-checks: %w", err)
	}

	fired := 0
	for _, orderID := range due {
		removed, err := s.rdb.ZRem(ctx, recheckKey, orderID).Result()
		if err != nil {
			return fired, fmt.Errorf("could not claim re-check of order %s: %w", orderID, err)
		}
		if removed == 0 {
			// claimed by another instance
			continue
		}

		logger := log.FromContext(ctx).WithField("order_id", orderID)

		err = s.eventBus.Publish(ctx, entity.DelayedRecheckDue{
			Header:  entity.NewEventHeaderWithIdempotencyKey("recheck-" + orderID),
			OrderID: orderID,
		})
		if err != nil {
			logger.WithError(err).Error("Could not publish re-check, dropping it")
			continue
		}

		metrics.RechecksFired.Inc()
		logger.Debug("Re-check fired")
		fired++
	}

	return fired, nil
}
