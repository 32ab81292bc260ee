package event

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"walletpass/entity"
)

type TicketExtractor interface {
	ExtractOrder(ctx context.Context, orderID string) ([]entity.TicketData, error)
}

type OrdersRepository interface {
	Get(ctx context.Context, orderID string) (entity.Order, error)
	MarkPassesProcessed(ctx context.Context, orderID string) (bool, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (entity.Settings, error)
}

type PassService interface {
	CreateOrGetPass(ctx context.Context, settings entity.Settings, ticketData entity.TicketData, orderID string) (string, error)
}

type RecheckScheduler interface {
	Schedule(ctx context.Context, orderID string, at time.Time) error
}

type Handler struct {
	eventBus     *cqrs.EventBus
	extractor    TicketExtractor
	ordersRepo   OrdersRepository
	settingsRepo SettingsRepository
	passService  PassService
	scheduler    RecheckScheduler
	recheckDelay time.Duration
}

func NewHandler(
	eventBus *cqrs.EventBus,
	extractor TicketExtractor,
	ordersRepo OrdersRepository,
	settingsRepo SettingsRepository,
	passService PassService,
	scheduler RecheckScheduler,
	recheckDelay time.Duration,
) Handler {
	if eventBus == nil {
		panic("missing eventBus")
	}
	if extractor == nil {
		panic("missing extractor")
	}
	if ordersRepo == nil {
		panic("missing ordersRepo")
	}
	if settingsRepo == nil {
		panic("missing settingsRepo")
	}
	if passService == nil {
		panic("missing passService")
	}
	if scheduler == nil {
		panic("missing scheduler")
	}

	return Handler{
		eventBus:     eventBus,
		extractor:    extractor,
		ordersRepo:   ordersRepo,
		settingsRepo: settingsRepo,
		passService:  passService,
		scheduler:    scheduler,
		recheckDelay: recheckDelay,
	}
}

func (h Handler) Handlers() []cqrs.EventHandler {
	return []cqrs.EventHandler{
		h.ExtractOnCheckoutHandler(),
		h.ExtractOnOrderCompletedHandler(),
		h.ExtractOnThankYouHandler(),
		h.ExtractOnDelayedRecheckHandler(),
		h.CreatePassHandler(),
	}
}
