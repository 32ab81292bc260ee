package outbox

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	watermillSQL "github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"

	"walletpass/pubsub/bus"
	"walletpass/tracing"
)

const Topic = "events_to_forward"

// NewPublisherForDb returns a publisher that writes messages into the transaction. They are
// forwarded to Redis by the forwarder once the transaction commits.
func NewPublisherForDb(ctx context.Context, tx *sqlx.Tx) (message.Publisher, error) {
	var publisher message.Publisher

	logger := log.NewWatermill(log.FromContext(ctx))

	publisher, err := watermillSQL.NewPublisher(
		tx,
		watermillSQL.PublisherConfig{
			SchemaAdapter: watermillSQL.DefaultPostgreSQLSchema{},
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create outbox publisher: %w", err)
	}

	publisher = forwarder.NewPublisher(publisher, forwarder.PublisherConfig{
		ForwarderTopic: Topic,
	})
	publisher = log.CorrelationPublisherDecorator{Publisher: publisher}
	publisher = tracing.PublisherDecorator{Publisher: publisher}

	return publisher, nil
}

// NewEventBusForTx is the event bus used to publish events atomically with a database change.
func NewEventBusForTx(ctx context.Context, tx *sqlx.Tx) (*cqrs.EventBus, error) {
	publisher, err := NewPublisherForDb(ctx, tx)
	if err != nil {
		return nil, err
	}

	eventBus, err := bus.NewEventBus(publisher)
	if err != nil {
		return nil, fmt.Errorf("could not create outbox event bus: %w", err)
	}

	return eventBus, nil
}
