package pubsub

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"

	"walletpass/entity"
	"walletpass/pubsub/bus"
	"walletpass/pubsub/event"
	"walletpass/pubsub/outbox"
)

type DataLake interface {
	StoreEvent(ctx context.Context, dataLakeEvent entity.DataLakeEvent) error
}

func NewWatermillRouter(
	postgresSubscriber message.Subscriber,
	redisPublisher message.Publisher,
	splitterSubscriber message.Subscriber,
	dataLakeSubscriber message.Subscriber,
	eventProcessorConfig cqrs.EventProcessorConfig,
	eventHandler event.Handler,
	dataLake DataLake,
	watermillLogger watermill.LoggerAdapter,
) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("could not create router: %w", err)
	}

	useMiddlewares(router, watermillLogger)

	err = outbox.AddForwarderHandler(postgresSubscriber, redisPublisher, router, watermillLogger)
	if err != nil {
		return nil, err
	}

	eventProcessor, err := cqrs.NewEventProcessorWithConfig(router, eventProcessorConfig)
	if err != nil {
		return nil, fmt.Errorf("could not create event processor: %w", err)
	}

	err = eventProcessor.AddHandlers(eventHandler.Handlers()...)
	if err != nil {
		return nil, fmt.Errorf("could not add handlers to event processor: %w", err)
	}

	router.AddNoPublisherHandler(
		"events_splitter",
		bus.EventsTopic,
		splitterSubscriber,
		func(msg *message.Message) error {
			eventName := eventProcessorConfig.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("could not get event name from message")
			}

			return redisPublisher.Publish(bus.EventTopic(eventName), msg)
		},
	)

	router.AddNoPublisherHandler(
		"store_to_data_lake",
		bus.EventsTopic,
		dataLakeSubscriber,
		func(msg *message.Message) error {
			eventName := eventProcessorConfig.Marshaler.NameFromMessage(msg)
			if eventName == "" {
				return fmt.Errorf("could not get event name from message")
			}

			// header and order are enough to index the event, the payload is stored as is
			var event struct {
				Header  entity.EventHeader `json:"header"`
				OrderID string             `json:"order_id"`
			}
			if err := eventProcessorConfig.Marshaler.Unmarshal(msg, &event); err != nil {
				return fmt.Errorf("could not unmarshal event: %w", err)
			}

			return dataLake.StoreEvent(
				msg.Context(),
				entity.DataLakeEvent{
					ID:            event.Header.ID,
					PublishedAt:   event.Header.PublishedAt,
					Name:          eventName,
					OrderID:       event.OrderID,
					CorrelationID: msg.Metadata.Get("correlation_id"),
					Payload:       msg.Payload,
				},
			)
		},
	)

	return router, nil
}
