package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"walletpass/entity"
)

type putEventRequest struct {
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"`
	Venue     string   `json:"venue"`
	Locations []string `json:"locations"`
	StartDate string   `json:"start_date"`
	StartTime string   `json:"start_time"`
	EndDate   string   `json:"end_date"`
	EndTime   string   `json:"end_time"`
}

type putTicketTypeRequest struct {
	Title string `json:"title"`
}

type checkoutRequest struct {
	OrderID   string             `json:"order_id"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Items     []checkoutItem     `json:"items"`
	Attendees []checkoutAttendee `json:"attendees"`
}

type checkoutItem struct {
	ItemID  string `json:"item_id"`
	EventID string `json:"event_id"`
}

type checkoutAttendee struct {
	AttendeeID string    `json:"attendee_id"`
	EventID    string    `json:"event_id"`
	TicketID   string    `json:"ticket_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Name       string    `json:"name"`
	QRCode     string    `json:"qr_code"`
	CreatedAt  time.Time `json:"created_at"`
}

type orderStatusRequest struct {
	Status string `json:"status"`
}

func (s Server) PutEvent(c echo.Context) error {
	var request putEventRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	err := s.catalogRepo.StoreEvent(c.Request().Context(), entity.Event{
		EventID:   c.Param("event_id"),
		Title:     request.Title,
		Excerpt:   request.Excerpt,
		Content:   request.Content,
		Venue:     request.Venue,
		Locations: request.Locations,
		StartDate: request.StartDate,
		StartTime: request.StartTime,
		EndDate:   request.EndDate,
		EndTime:   request.EndTime,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (s Server) PutTicketType(c echo.Context) error {
	var request putTicketTypeRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	err := s.catalogRepo.StoreTicketType(c.Request().Context(), entity.TicketType{
		TicketID: c.Param("ticket_id"),
		Title:    request.Title,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// PostCheckout stores the completed checkout. Storing it again is a no-op answered with 200.
func (s Server) PostCheckout(c echo.Context) error {
	var request checkoutRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id is required")
	}

	checkout := entity.Checkout{
		Order: entity.Order{
			OrderID:   request.OrderID,
			Status:    request.Status,
			CreatedAt: request.CreatedAt,
		},
	}
	for _, item := range request.Items {
		checkout.Items = append(checkout.Items, entity.OrderItem{
			OrderID: request.OrderID,
			ItemID:  item.ItemID,
			EventID: item.EventID,
		})
	}
	for _, attendee := range request.Attendees {
		checkout.Attendees = append(checkout.Attendees, entity.Attendee{
			AttendeeID: attendee.AttendeeID,
			OrderID:    request.OrderID,
			EventID:    attendee.EventID,
			TicketID:   attendee.TicketID,
			FirstName:  attendee.FirstName,
			LastName:   attendee.LastName,
			Name:       attendee.Name,
			QRCode:     attendee.QRCode,
			CreatedAt:  attendee.CreatedAt,
		})
	}

	created, err := s.ordersRepo.StoreCheckout(c.Request().Context(), checkout)
	if err != nil {
		return err
	}

	if !created {
		return c.NoContent(http.StatusOK)
	}

	return c.NoContent(http.StatusCreated)
}

func (s Server) PostOrderStatus(c echo.Context) error {
	var request orderStatusRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "status is required")
	}

	orderID := c.Param("order_id")
	ctx := c.Request().Context()

	if err := s.ordersRepo.UpdateStatus(ctx, orderID, request.Status); err != nil {
		return err
	}

	return c.NoContent(http.StatusAccepted)
}

func (s Server) PostThankYou(c echo.Context) error {
	orderID := c.Param("order_id")

	err := s.eventBus.Publish(c.Request().Context(), entity.ThankYouPageViewed{
		Header:  entity.NewEventHeader(),
		OrderID: orderID,
	})
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusAccepted)
}
