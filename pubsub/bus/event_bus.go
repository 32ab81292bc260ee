package bus

import (
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/message"
)

// EventsTopic receives every event first, so it can be stored in the data lake before it is
// split into per-event topics.
const EventsTopic = "events"

var Marshaler = cqrs.JSONMarshaler{
	GenerateName: cqrs.StructName,
}

func NewEventBus(pub message.Publisher) (*cqrs.EventBus, error) {
	return cqrs.NewEventBusWithConfig(pub, cqrs.EventBusConfig{
		GeneratePublishTopic: func(params cqrs.GenerateEventPublishTopicParams) (string, error) {
			return EventsTopic, nil
		},
		Marshaler: Marshaler,
	})
}

func EventTopic(eventName string) string {
	return EventsTopic + "." + eventName
}
