package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"
	"github.com/sirupsen/logrus"

	"walletpass/entity"
	"walletpass/metrics"
)

// CreatePassHandler creates the pass of one attendee. Failures of the pass creation are reported
// with PassCreationFailed and never retried, only infrastructure errors are returned.
func (h Handler) CreatePassHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"CreatePassHandler",
		func(ctx context.Context, event *entity.TicketDataExtracted) error {
			logger := log.FromContext(ctx).WithFields(logrus.Fields{
				"order_id":    event.OrderID,
				"attendee_id": event.TicketData.AttendeeID,
			})

			if !event.TicketData.IsValid() {
				logger.Warn("Ignoring incomplete ticket data")
				return nil
			}

			settings, err := h.settingsRepo.Get(ctx)
			if err != nil {
				return fmt.Errorf("could not get settings: %w", err)
			}

			passURL, err := h.passService.CreateOrGetPass(ctx, settings, event.TicketData, event.OrderID)
			if err == nil {
				metrics.PassesResolved.Inc()
				logger.WithField("pass_url", passURL).Info("Pass ready")
				return nil
			}

			kind := entity.ErrorKind(err)
			if kind == entity.ErrorKindInternal {
				return err
			}

			metrics.PassCreationFailures.WithLabelValues(kind).Inc()

			if errors.Is(err, entity.ErrPassCreationInProgress) {
				logger.Info("Pass is being created by another handler")
				return nil
			}

			logger.WithError(err).WithField("error_kind", kind).Error("Could not create pass")

			return h.eventBus.Publish(ctx, entity.PassCreationFailed{
				Header:     entity.NewEventHeaderWithIdempotencyKey(event.Header.IdempotencyKey),
				OrderID:    event.OrderID,
				AttendeeID: event.TicketData.AttendeeID,
				ErrorKind:  kind,
				Reason:     err.Error(),
			})
		},
	)
}
