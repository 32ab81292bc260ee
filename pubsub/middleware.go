package pubsub

import (
	"time"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/lithammer/shortuuid/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"walletpass/entity"
	"walletpass/metrics"
	"walletpass/pubsub/bus"
)

func useMiddlewares(router *message.Router, watermillLogger watermill.LoggerAdapter) {
	router.AddMiddleware(middleware.Recoverer)
	router.AddMiddleware(propagateCorrelationIDMiddleware)

	router.AddMiddleware(middleware.Retry{
		MaxRetries:      10,
		InitialInterval: time.Millisecond * 100,
		MaxInterval:     time.Second,
		Multiplier:      2,
		Logger:          watermillLogger,
	}.Middleware)

	// runs inside Retry
	router.AddMiddleware(ackPermanentFailuresMiddleware)
	router.AddMiddleware(tracingMiddleware)
	router.AddMiddleware(loggingMiddleware)
	router.AddMiddleware(metricsMiddleware)
}

func propagateCorrelationIDMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		correlationID := msg.Metadata.Get("correlation_id")
		if correlationID == "" {
			correlationID = shortuuid.New()
		}

		ctx := log.ContextWithCorrelationID(msg.Context(), correlationID)
		ctx = log.ToContext(ctx, logrus.WithFields(logrus.Fields{"correlation_id": correlationID}))
		msg.SetContext(ctx)

		return next(msg)
	}
}

// ackPermanentFailuresMiddleware acks messages whose handler failed with a classified pass
// error. Only internal errors are worth retrying.
func ackPermanentFailuresMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		msgs, err := next(msg)
		if err == nil {
			return msgs, nil
		}

		kind := entity.ErrorKind(err)
		if kind == entity.ErrorKindInternal {
			return msgs, err
		}

		log.FromContext(msg.Context()).WithFields(logrus.Fields{
			"message_id": msg.UUID,
			"error_kind": kind,
		}).WithError(err).Warn("Dropping message after permanent failure")

		return nil, nil
	}
}

func tracingMiddleware(h message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) (events []*message.Message, err error) {
		ctx := otel.GetTextMapPropagator().Extract(msg.Context(), propagation.MapCarrier(msg.Metadata))
		topic := message.SubscribeTopicFromCtx(msg.Context())
		handler := message.HandlerNameFromCtx(msg.Context())
		ctx, span := otel.Tracer("").Start(ctx, "message handling: "+topic+"/"+handler)
		span.SetAttributes(
			attribute.String("topic", topic),
			attribute.String("handler", handler),
			attribute.String("event_name", bus.Marshaler.NameFromMessage(msg)),
		)
		defer span.End()
		msg.SetContext(ctx)

		messages, err := h(msg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return messages, err
	}
}

func loggingMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) ([]*message.Message, error) {
		traceID := trace.SpanFromContext(msg.Context()).SpanContext().TraceID().String()
		fields := logrus.Fields{
			"message_id": msg.UUID,
			"handler":    message.HandlerNameFromCtx(msg.Context()),
			"trace_id":   traceID,
		}
		if eventName := bus.Marshaler.NameFromMessage(msg); eventName != "" {
			fields["event_name"] = eventName
		}
		logger := log.FromContext(msg.Context()).WithFields(fields)

		logger.WithField("payload", string(msg.Payload)).Debug("Handling a message")

		msgs, err := next(msg)
		if err != nil {
			logger.WithError(err).WithField("error_kind", entity.ErrorKind(err)).Error("Error while handling a message")
		}

		return msgs, err
	}
}

func metricsMiddleware(next message.HandlerFunc) message.HandlerFunc {
	return func(msg *message.Message) (msgs []*message.Message, err error) {
		now := time.Now()
		labels := prometheus.Labels{
			"topic":   message.SubscribeTopicFromCtx(msg.Context()),
			"handler": message.HandlerNameFromCtx(msg.Context()),
		}

		defer func() {
			if err != nil {
				metrics.MessagesProcessingFailed.With(labels).Inc()
			}
			metrics.MessagesProcessed.With(labels).Inc()
			metrics.MessagesProcessingDuration.With(labels).Observe(time.Since(now).Seconds())
		}()

		return next(msg)
	}
}
