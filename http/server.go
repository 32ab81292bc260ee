package http

import (
	"context"
	"errors"
	"net/http"

	echoHTTP "github.com/ThreeDotsLabs/go-event-driven/common/http"
	"github.com/ThreeDotsLabs/go-event-driven/common/log"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"walletpass/diagnostics"
	"walletpass/entity"
	"walletpass/render"
	"walletpass/tracing"
)

type EventBus interface {
	Publish(ctx context.Context, event any) error
}

type CatalogRepository interface {
	StoreEvent(ctx context.Context, event entity.Event) error
	StoreTicketType(ctx context.Context, ticketType entity.TicketType) error
}

type OrdersRepository interface {
	StoreCheckout(ctx context.Context, checkout entity.Checkout) (bool, error)
	UpdateStatus(ctx context.Context, orderID, status string) error
}

type PassRecords interface {
	FindOrderPassURL(ctx context.Context, orderID string) (string, error)
	FindByOrder(ctx context.Context, orderID string) ([]entity.PassRecord, error)
}

type SettingsRepository interface {
	Get(ctx context.Context) (entity.Settings, error)
	Save(ctx context.Context, settings entity.Settings) error
}

type Diagnostics interface {
	Run(ctx context.Context) (diagnostics.Report, error)
}

type Server struct {
	addr         string
	e            *echo.Echo
	eventBus     EventBus
	catalogRepo  CatalogRepository
	ordersRepo   OrdersRepository
	passRecords  PassRecords
	settingsRepo SettingsRepository
	renderer     render.Renderer
	diagnostics  Diagnostics
}

func NewServer(
	addr string,
	eventBus EventBus,
	catalogRepo CatalogRepository,
	ordersRepo OrdersRepository,
	passRecords PassRecords,
	settingsRepo SettingsRepository,
	renderer render.Renderer,
	diagnostics Diagnostics,
) *Server {
	e := echoHTTP.NewEcho()
	e.Use(otelecho.Middleware(tracing.ServiceName))
	e.HTTPErrorHandler = errorHandler(e.HTTPErrorHandler)

	server := &Server{
		addr:         addr,
		e:            e,
		eventBus:     eventBus,
		catalogRepo:  catalogRepo,
		ordersRepo:   ordersRepo,
		passRecords:  passRecords,
		settingsRepo: settingsRepo,
		renderer:     renderer,
		diagnostics:  diagnostics,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.PUT("/events/:event_id", server.PutEvent)
	e.PUT("/ticket-types/:ticket_id", server.PutTicketType)
	e.POST("/checkout", server.PostCheckout)
	e.POST("/orders/:order_id/status", server.PostOrderStatus)
	e.POST("/orders/:order_id/thank-you", server.PostThankYou)

	e.GET("/orders/:order_id/wallet-buttons", server.GetWalletButtons)
	e.POST("/orders/:order_id/email-content", server.PostEmailContent)
	e.GET("/orders/:order_id/passes", server.GetOrderPasses)

	e.GET("/settings", server.GetSettings)
	e.PUT("/settings", server.PutSettings)
	e.GET("/diagnostics", server.GetDiagnostics)

	return server
}

// errorHandler maps ErrNotFound to 404 before calling next.
func errorHandler(next echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if errors.Is(err, entity.ErrNotFound) {
			err = echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		next(err, c)
	}
}

func (s Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		err := s.e.Shutdown(context.Background())
		if err != nil {
			log.FromContext(ctx).WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	log.FromContext(ctx).WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
