package event_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletpass/entity"
	"walletpass/pubsub/bus"
	"walletpass/pubsub/event"
)

type publisherStub struct {
	lock     sync.Mutex
	messages []*message.Message
}

func (p *publisherStub) Publish(topic string, messages ...*message.Message) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.messages = append(p.messages, messages...)
	return nil
}

func (p *publisherStub) Close() error {
	return nil
}

func (p *publisherStub) eventNames() []string {
	p.lock.Lock()
	defer p.lock.Unlock()

	var names []string
	for _, msg := range p.messages {
		names = append(names, bus.Marshaler.NameFromMessage(msg))
	}
	return names
}

func (p *publisherStub) unmarshal(t *testing.T, i int, v any) {
	t.Helper()
	require.NoError(t, bus.Marshaler.Unmarshal(p.messages[i], v))
}

type extractorStub struct {
	tickets []entity.TicketData
	err     error
	calls   int
}

func (e *extractorStub) ExtractOrder(ctx context.Context, orderID string) ([]entity.TicketData, error) {
	e.calls++
	return e.tickets, e.err
}

type ordersStub struct {
	order  entity.Order
	marked int
}

func (o *ordersStub) Get(ctx context.Context, orderID string) (entity.Order, error) {
	if o.order.OrderID != orderID {
		return entity.Order{}, entity.ErrNotFound
	}
	return o.order, nil
}

func (o *ordersStub) MarkPassesProcessed(ctx context.Context, orderID string) (bool, error) {
	o.marked++
	now := time.Now()
	o.order.PassesProcessedAt = &now
	return true, nil
}

type settingsStub struct {
	settings entity.Settings
}

func (s settingsStub) Get(ctx context.Context) (entity.Settings, error) {
	return s.settings, nil
}

type passServiceStub struct {
	passURL string
	err     error
	calls   int
}

func (p *passServiceStub) CreateOrGetPass(ctx context.Context, settings entity.Settings, ticketData entity.TicketData, orderID string) (string, error) {
	p.calls++
	return p.passURL, p.err
}

type schedulerStub struct {
	scheduled map[string]time.Time
}

func (s *schedulerStub) Schedule(ctx context.Context, orderID string, at time.Time) error {
	s.scheduled[orderID] = at
	return nil
}

type deps struct {
	publisher *publisherStub
	extractor *extractorStub
	orders    *ordersStub
	passes    *passServiceStub
	scheduler *schedulerStub
}

func newHandler(t *testing.T) (event.Handler, deps) {
	t.Helper()

	d := deps{
		publisher: &publisherStub{},
		extractor: &extractorStub{tickets: []entity.TicketData{
			{EventID: "42", AttendeeID: "7"},
			{EventID: "42", AttendeeID: "8"},
		}},
		orders:    &ordersStub{order: entity.Order{OrderID: "100", Status: entity.StatusCompleted}},
		passes:    &passServiceStub{passURL: "https://x/y"},
		scheduler: &schedulerStub{scheduled: map[string]time.Time{}},
	}

	eventBus, err := bus.NewEventBus(d.publisher)
	require.NoError(t, err)

	h := event.NewHandler(
		eventBus,
		d.extractor,
		d.orders,
		settingsStub{settings: entity.Settings{ClientHash: "c", TemplateHash: "t"}},
		d.passes,
		d.scheduler,
		10*time.Second,
	)

	return h, d
}

func TestExtractOnCheckoutHandler(t *testing.T) {
	h, d := newHandler(t)

	header := entity.NewEventHeader()
	err := h.ExtractOnCheckoutHandler().Handle(context.Background(), &entity.CheckoutCompleted{
		Header:  header,
		OrderID: "100",
	})
	require.NoError(t, err)

	assert.Equal(t, header.PublishedAt.Add(10*time.Second), d.scheduler.scheduled["100"])
	assert.Equal(t, []string{"TicketDataExtracted", "TicketDataExtracted"}, d.publisher.eventNames())

	var extracted entity.TicketDataExtracted
	d.publisher.unmarshal(t, 1, &extracted)
	assert.Equal(t, "100", extracted.OrderID)
	assert.Equal(t, "8", extracted.TicketData.AttendeeID)
}

func TestExtractOnOrderCompletedHandler_empty_extraction_is_acked(t *testing.T) {
	h, d := newHandler(t)
	d.extractor.tickets = nil
	d.extractor.err = entity.ErrExtractionEmpty

	err := h.ExtractOnOrderCompletedHandler().Handle(context.Background(), &entity.OrderStatusCompleted{
		Header:  entity.NewEventHeader(),
		OrderID: "100",
	})
	require.NoError(t, err)
	assert.Empty(t, d.publisher.eventNames())
}

func TestExtractOnThankYouHandler_runs_once(t *testing.T) {
	h, d := newHandler(t)

	for i := 0; i < 2; i++ {
		err := h.ExtractOnThankYouHandler().Handle(context.Background(), &entity.ThankYouPageViewed{
			Header:  entity.NewEventHeader(),
			OrderID: "100",
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 1, d.extractor.calls)
	assert.Equal(t, 1, d.orders.marked)
	assert.Len(t, d.publisher.eventNames(), 2)
}

func TestExtractOnThankYouHandler_order_without_tickets_stays_unmarked(t *testing.T) {
	h, d := newHandler(t)
	d.extractor.tickets = nil
	d.extractor.err = entity.ErrExtractionEmpty

	err := h.ExtractOnThankYouHandler().Handle(context.Background(), &entity.ThankYouPageViewed{
		Header:  entity.NewEventHeader(),
		OrderID: "100",
	})
	require.NoError(t, err)

	assert.Equal(t, 0, d.orders.marked)
	assert.Empty(t, d.publisher.eventNames())
}

func TestExtractOnDelayedRecheckHandler(t *testing.T) {
	h, d := newHandler(t)

	err := h.ExtractOnDelayedRecheckHandler().Handle(context.Background(), &entity.DelayedRecheckDue{
		Header:  entity.NewEventHeader(),
		OrderID: "100",
	})
	require.NoError(t, err)
	assert.Len(t, d.publisher.eventNames(), 2)
}

func TestCreatePassHandler(t *testing.T) {
	ticketEvent := &entity.TicketDataExtracted{
		Header:     entity.NewEventHeaderWithIdempotencyKey("100-7"),
		OrderID:    "100",
		TicketData: entity.TicketData{EventID: "42", AttendeeID: "7"},
	}

	t.Run("success", func(t *testing.T) {
		h, d := newHandler(t)

		require.NoError(t, h.CreatePassHandler().Handle(context.Background(), ticketEvent))
		assert.Equal(t, 1, d.passes.calls)
		assert.Empty(t, d.publisher.eventNames())
	})

	t.Run("api_failure_is_reported", func(t *testing.T) {
		h, d := newHandler(t)
		d.passes.err = entity.ApiStatusError{Op: "create pass", StatusCode: 500}

		require.NoError(t, h.CreatePassHandler().Handle(context.Background(), ticketEvent))
		require.Equal(t, []string{"PassCreationFailed"}, d.publisher.eventNames())

		var failed entity.PassCreationFailed
		d.publisher.unmarshal(t, 0, &failed)
		assert.Equal(t, entity.ErrorKindApiStatus, failed.ErrorKind)
		assert.Equal(t, "7", failed.AttendeeID)
	})

	t.Run("in_progress_is_acked", func(t *testing.T) {
		h, d := newHandler(t)
		d.passes.err = entity.ErrPassCreationInProgress

		require.NoError(t, h.CreatePassHandler().Handle(context.Background(), ticketEvent))
		assert.Empty(t, d.publisher.eventNames())
	})

	t.Run("internal_error_is_returned", func(t *testing.T) {
		h, d := newHandler(t)
		d.passes.err = errors.New("connection reset")

		assert.Error(t, h.CreatePassHandler().Handle(context.Background(), ticketEvent))
		assert.Empty(t, d.publisher.eventNames())
	})

	t.Run("invalid_ticket_data_is_ignored", func(t *testing.T) {
		h, d := newHandler(t)

		err := h.CreatePassHandler().Handle(context.Background(), &entity.TicketDataExtracted{
			Header:  entity.NewEventHeader(),
			OrderID: "100",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, d.passes.calls)
	})
}
