package pubsub

import (
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"

	"walletpass/tracing"
)

func NewRedisPublisher(rdb *redis.Client, watermillLogger watermill.LoggerAdapter) (message.Publisher, error) {
	var publisher message.Publisher
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client: rdb,
	}, watermillLogger)
	if err != nil {
		return nil, err
	}

	publisher = tracing.PublisherDecorator{Publisher: publisher}
	publisher = log.CorrelationPublisherDecorator{Publisher: publisher}

	return publisher, nil
}

// NewRedisSubscriber subscribes the handlers of the events topic. Each one gets all messages
// because each handler has its own consumer group.
func NewRedisSubscriber(rdb *redis.Client, consumerGroup string, watermillLogger watermill.LoggerAdapter) (message.Subscriber, error) {
	return redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        rdb,
		ConsumerGroup: consumerGroup,
	}, watermillLogger)
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}
