package extractor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"walletpass/entity"
)

const defaultTicketType = "Standard Ticket"

type OrdersRepository interface {
	Get(ctx context.Context, orderID string) (entity.Order, error)
	Items(ctx context.Context, orderID string) ([]entity.OrderItem, error)
	Attendees(ctx context.Context, orderID string) ([]entity.Attendee, error)
}

type CatalogRepository interface {
	GetEvent(ctx context.Context, eventID string) (entity.Event, error)
	GetTicketType(ctx context.Context, ticketID string) (entity.TicketType, error)
}

// Extractor assembles TicketData from the host records. It never writes.
type Extractor struct {
	orders  OrdersRepository
	catalog CatalogRepository

	dateLayout     string
	timeLayout     string
	purchaseLayout string
}

func NewExtractor(orders OrdersRepository, catalog CatalogRepository) Extractor {
	if orders == nil {
		panic("missing orders repository")
	}
	if catalog == nil {
		panic("missing catalog repository")
	}

	return Extractor{
		orders:         orders,
		catalog:        catalog,
		dateLayout:     DefaultDateLayout,
		timeLayout:     DefaultTimeLayout,
		purchaseLayout: DefaultPurchaseLayout,
	}
}

// WithLayouts overrides the display layouts of the event date.
func (e Extractor) WithLayouts(dateLayout, timeLayout string) Extractor {
	e.dateLayout = dateLayout
	e.timeLayout = timeLayout
	return e
}

// ExtractOrder returns ticket data for every attendee of the order that can be resolved.
// It returns entity.ErrExtractionEmpty when the order has no ticket lines or no resolvable attendee.
func (e Extractor) ExtractOrder(ctx context.Context, orderID string) ([]entity.TicketData, error) {
	logger := log.FromContext(ctx).WithField("order_id", orderID)

	if _, err := e.orders.Get(ctx, orderID); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, fmt.Errorf("order %s not found: %w", orderID, entity.ErrExtractionEmpty)
		}
		return nil, fmt.Errorf("could not get order %s: %w", orderID, err)
	}

	items, err := e.orders.Items(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not get items of order %s: %w", orderID, err)
	}

	hasTickets := lo.SomeBy(items, func(item entity.OrderItem) bool {
		return item.EventID != ""
	})
	if !hasTickets {
		return nil, fmt.Errorf("order %s has no ticket items: %w", orderID, entity.ErrExtractionEmpty)
	}

	attendees, err := e.orders.Attendees(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("could not get attendees of order %s: %w", orderID, err)
	}
	attendees = lo.UniqBy(attendees, func(a entity.Attendee) string {
		return a.AttendeeID
	})
	if len(attendees) == 0 {
		return nil, fmt.Errorf("no attendees found for order %s: %w", orderID, entity.ErrExtractionEmpty)
	}

	tickets := make([]entity.TicketData, 0, len(attendees))
	for _, attendee := range attendees {
		ticket, err := e.ExtractAttendee(ctx, attendee)
		if errors.Is(err, entity.ErrExtractionEmpty) {
			logger.WithFields(logrus.Fields{
				"attendee_id": attendee.AttendeeID,
				"reason":      err.Error(),
			}).Debug("Skipping attendee without ticket data")
			continue
		}
		if err != nil {
			return nil, err
		}

		tickets = append(tickets, ticket)
	}

	if len(tickets) == 0 {
		return nil, fmt.Errorf("no ticket data for order %s: %w", orderID, entity.ErrExtractionEmpty)
	}

	return tickets, nil
}

func (e Extractor) ExtractAttendee(ctx context.Context, attendee entity.Attendee) (entity.TicketData, error) {
	if attendee.AttendeeID == "" || attendee.EventID == "" {
		return entity.TicketData{}, fmt.Errorf("attendee %q has no event: %w", attendee.AttendeeID, entity.ErrExtractionEmpty)
	}

	event, err := e.catalog.GetEvent(ctx, attendee.EventID)
	if errors.Is(err, entity.ErrNotFound) {
		return entity.TicketData{}, fmt.Errorf("event %s not found: %w", attendee.EventID, entity.ErrExtractionEmpty)
	}
	if err != nil {
		return entity.TicketData{}, fmt.Errorf("could not get event %s: %w", attendee.EventID, err)
	}

	ticketType, err := e.ticketType(ctx, attendee.TicketID)
	if err != nil {
		return entity.TicketData{}, err
	}

	return entity.TicketData{
		EventID:          event.EventID,
		EventTitle:       event.Title,
		EventDate:        FormatEventDate(event, e.dateLayout, e.timeLayout),
		EventLocation:    eventLocation(event),
		EventDescription: describeEvent(event.Excerpt, event.Content),
		AttendeeID:       attendee.AttendeeID,
		AttendeeName:     attendeeName(attendee),
		TicketType:       ticketType,
		PurchaseDate:     attendee.CreatedAt.Format(e.purchaseLayout),
		QRCode:           attendee.QRCode,
	}, nil
}

func (e Extractor) ticketType(ctx context.Context, ticketID string) (string, error) {
	if ticketID == "" {
		return defaultTicketType, nil
	}

	ticketType, err := e.catalog.GetTicketType(ctx, ticketID)
	if errors.Is(err, entity.ErrNotFound) {
		return defaultTicketType, nil
	}
	if err != nil {
		return "", fmt.Errorf("could not get ticket type %s: %w", ticketID, err)
	}

	if ticketType.Title == "" {
		return defaultTicketType, nil
	}
	return ticketType.Title, nil
}

func eventLocation(event entity.Event) string {
	if event.Venue != "" {
		return event.Venue
	}
	return strings.Join(event.Locations, ", ")
}

func attendeeName(attendee entity.Attendee) string {
	if attendee.FirstName != "" || attendee.LastName != "" {
		return strings.TrimSpace(attendee.FirstName + " " + attendee.LastName)
	}
	return attendee.Name
}
