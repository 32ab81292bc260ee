package outbox

import (
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-sql/v2/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

func NewPostgresSubscriber(db *sqlx.DB, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	sub, err := sql.NewSubscriber(db, sql.SubscriberConfig{
		SchemaAdapter:    sql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   sql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("could not create postgres subscriber: %w", err)
	}

	if err := sub.SubscribeInitialize(Topic); err != nil {
		return nil, fmt.Errorf("could not initialize outbox topic: %w", err)
	}

	return sub, nil
}

// AddForwarderHandler moves messages stored by NewPublisherForDb to the Redis publisher,
// running as a handler of the given router.
func AddForwarderHandler(
	postgresSubscriber message.Subscriber,
	redisPublisher message.Publisher,
	router *message.Router,
	logger watermill.LoggerAdapter,
) error {
	_, err := forwarder.NewForwarder(postgresSubscriber, redisPublisher, logger, forwarder.Config{
		ForwarderTopic: Topic,
		Router:         router,
		Middlewares: []message.HandlerMiddleware{
			func(h message.HandlerFunc) message.HandlerFunc {
				return func(msg *message.Message) ([]*message.Message, error) {
					log.FromContext(msg.Context()).WithFields(logrus.Fields{
						"message_id": msg.UUID,
						"payload":    string(msg.Payload),
						"metadata":   msg.Metadata,
					}).Info("Forwarding message")

					return h(msg)
				}
			},
		},
	})
	if err != nil {
		return fmt.Errorf("could not create forwarder: %w", err)
	}

	return nil
}
