package event

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"walletpass/entity"
)

func (h Handler) ExtractOnCheckoutHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ExtractOnCheckoutHandler",
		func(ctx context.Context, event *entity.CheckoutCompleted) error {
			log.FromContext(ctx).WithField("order_id", event.OrderID).Info("Extracting tickets of completed checkout")

			// tickets of the host may not be generated yet, look again later
			dueAt := event.Header.PublishedAt.Add(h.recheckDelay)
			if err := h.scheduler.Schedule(ctx, event.OrderID, dueAt); err != nil {
				return fmt.Errorf("could not schedule re-check of order %s: %w", event.OrderID, err)
			}

			_, err := h.extractAndPublish(ctx, event.OrderID)
			return err
		},
	)
}

func (h Handler) ExtractOnOrderCompletedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ExtractOnOrderCompletedHandler",
		func(ctx context.Context, event *entity.OrderStatusCompleted) error {
			log.FromContext(ctx).WithField("order_id", event.OrderID).Info("Extracting tickets of completed order")
			_, err := h.extractAndPublish(ctx, event.OrderID)
			return err
		},
	)
}

func (h Handler) ExtractOnThankYouHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ExtractOnThankYouHandler",
		func(ctx context.Context, event *entity.ThankYouPageViewed) error {
			logger := log.FromContext(ctx).WithField("order_id", event.OrderID)

			order, err := h.ordersRepo.Get(ctx, event.OrderID)
			if errors.Is(err, entity.ErrNotFound) {
				logger.Info("Order of thank-you page not found, skipping")
				return nil
			}
			if err != nil {
				return fmt.Errorf("could not get order %s: %w", event.OrderID, err)
			}
			if order.PassesProcessedAt != nil {
				logger.Debug("Passes of order already processed")
				return nil
			}

			extracted, err := h.extractAndPublish(ctx, event.OrderID)
			if err != nil {
				return err
			}
			if !extracted {
				// left unmarked so the next view extracts again
				return nil
			}

			if _, err := h.ordersRepo.MarkPassesProcessed(ctx, event.OrderID); err != nil {
				return fmt.Errorf("could not mark passes of order %s as processed: %w", event.OrderID, err)
			}

			return nil
		},
	)
}

func (h Handler) ExtractOnDelayedRecheckHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ExtractOnDelayedRecheckHandler",
		func(ctx context.Context, event *entity.DelayedRecheckDue) error {
			log.FromContext(ctx).WithField("order_id", event.OrderID).Info("Re-checking tickets of order")
			_, err := h.extractAndPublish(ctx, event.OrderID)
			return err
		},
	)
}

// extractAndPublish publishes TicketDataExtracted for every resolved attendee and reports
// whether there was any. An order without resolvable tickets is not an error: a later trigger
// extracts it again.
func (h Handler) extractAndPublish(ctx context.Context, orderID string) (bool, error) {
	logger := log.FromContext(ctx).WithField("order_id", orderID)

	ticketsData, err := h.extractor.ExtractOrder(ctx, orderID)
	if errors.Is(err, entity.ErrExtractionEmpty) {
		logger.WithError(err).Info("No ticket data to extract")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not extract ticket data of order %s: %w", orderID, err)
	}

	for _, ticketData := range ticketsData {
		err := h.eventBus.Publish(ctx, entity.TicketDataExtracted{
			Header:     entity.NewEventHeaderWithIdempotencyKey(orderID + "-" + ticketData.AttendeeID),
			OrderID:    orderID,
			TicketData: ticketData,
		})
		if err != nil {
			return false, fmt.Errorf("could not publish TicketDataExtracted for attendee %s: %w", ticketData.AttendeeID, err)
		}
	}

	logger.WithField("tickets", len(ticketsData)).Info("Ticket data extracted")

	return true, nil
}
