package diagnostics

import (
	"context"
	"errors"

	"github.com/ThreeDotsLabs/go-event-driven/common/log"

	"walletpass/entity"
	"walletpass/render"
)

// SamplePassURL is rendered when the inspected order has no pass yet.
const SamplePassURL = "https://www.passsource.com/pass/sample"

type SettingsRepository interface {
	Get(ctx context.Context) (entity.Settings, error)
}

type PassService interface {
	VerifyCredentials(ctx context.Context, settings entity.Settings) (entity.VerifyResult, error)
	CreateOrGetPass(ctx context.Context, settings entity.Settings, ticketData entity.TicketData, orderID string) (string, error)
}

type OrdersRepository interface {
	MostRecentWithTickets(ctx context.Context) (entity.Order, error)
}

type TicketExtractor interface {
	ExtractOrder(ctx context.Context, orderID string) ([]entity.TicketData, error)
}

type PassRecords interface {
	FindOrderPassURL(ctx context.Context, orderID string) (string, error)
}

type SettingsCheck struct {
	OK                   bool               `json:"ok"`
	Missing              []string           `json:"missing,omitempty"`
	EnableCheckoutButton entity.Toggle      `json:"enable_checkout_button"`
	EnableEmailButton    entity.Toggle      `json:"enable_email_button"`
	ButtonStyle          entity.ButtonStyle `json:"button_style"`
	DebugMode            entity.Toggle      `json:"debug_mode"`
	CustomTerms          bool               `json:"custom_terms"`
}

type ConnectionCheck struct {
	OK           bool           `json:"ok"`
	Message      string         `json:"message"`
	ErrorKind    string         `json:"error_kind,omitempty"`
	TemplateInfo map[string]any `json:"template_info,omitempty"`
}

type ExtractionCheck struct {
	OK      bool                `json:"ok"`
	OrderID string              `json:"order_id,omitempty"`
	Message string              `json:"message"`
	Tickets []entity.TicketData `json:"tickets,omitempty"`
}

type PassGenerationCheck struct {
	OK         bool   `json:"ok"`
	OrderID    string `json:"order_id,omitempty"`
	AttendeeID string `json:"attendee_id,omitempty"`
	PassURL    string `json:"pass_url,omitempty"`
	Message    string `json:"message"`
	ErrorKind  string `json:"error_kind,omitempty"`
}

type RenderingCheck struct {
	OK         bool   `json:"ok"`
	PassURL    string `json:"pass_url"`
	SamplePass bool   `json:"sample_pass"`
	PageBytes  int    `json:"page_bytes"`
	EmailBytes int    `json:"email_bytes"`
	Message    string `json:"message,omitempty"`
}

type Report struct {
	Settings   SettingsCheck       `json:"settings"`
	Connection ConnectionCheck     `json:"connection"`
	Extraction ExtractionCheck     `json:"extraction"`
	Generation PassGenerationCheck `json:"generation"`
	Rendering  RenderingCheck      `json:"rendering"`
}

func (r Report) OK() bool {
	return r.Settings.OK && r.Connection.OK && r.Extraction.OK && r.Generation.OK && r.Rendering.OK
}

type Diagnostics struct {
	settingsRepo SettingsRepository
	passService  PassService
	ordersRepo   OrdersRepository
	extractor    TicketExtractor
	passRecords  PassRecords
	renderer     render.Renderer
}

func New(
	settingsRepo SettingsRepository,
	passService PassService,
	ordersRepo OrdersRepository,
	extractor TicketExtractor,
	passRecords PassRecords,
	renderer render.Renderer,
) Diagnostics {
	if settingsRepo == nil {
		panic("missing settingsRepo")
	}
	if passService == nil {
		panic("missing passService")
	}
	if ordersRepo == nil {
		panic("missing ordersRepo")
	}
	if extractor == nil {
		panic("missing extractor")
	}
	if passRecords == nil {
		panic("missing passRecords")
	}

	return Diagnostics{
		settingsRepo: settingsRepo,
		passService:  passService,
		ordersRepo:   ordersRepo,
		extractor:    extractor,
		passRecords:  passRecords,
		renderer:     renderer,
	}
}

// Run executes every check. Failing checks are reported, only a failure to read the settings
// is returned as an error.
func (d Diagnostics) Run(ctx context.Context) (Report, error) {
	settings, err := d.settingsRepo.Get(ctx)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Settings:   d.CheckSettings(settings),
		Connection: d.CheckConnection(ctx, settings),
	}

	report.Extraction = d.CheckExtraction(ctx)
	report.Generation = d.CheckPassGeneration(ctx, settings, report.Extraction)
	report.Rendering = d.CheckRendering(ctx, settings, report.Extraction.OrderID)

	log.FromContext(ctx).WithField("ok", report.OK()).Info("Diagnostics finished")

	return report, nil
}

func (d Diagnostics) CheckSettings(settings entity.Settings) SettingsCheck {
	missing := settings.MissingCredentials()
	return SettingsCheck{
		OK:                   len(missing) == 0,
		Missing:              missing,
		EnableCheckoutButton: settings.EnableCheckoutButton,
		EnableEmailButton:    settings.EnableEmailButton,
		ButtonStyle:          settings.ButtonStyle,
		DebugMode:            settings.DebugMode,
		CustomTerms:          settings.TermsText != "",
	}
}

func (d Diagnostics) CheckConnection(ctx context.Context, settings entity.Settings) ConnectionCheck {
	result, err := d.passService.VerifyCredentials(ctx, settings)
	if err != nil {
		return ConnectionCheck{
			Message:   err.Error(),
			ErrorKind: entity.ErrorKind(err),
		}
	}

	return ConnectionCheck{
		OK:           result.OK,
		Message:      result.Message,
		TemplateInfo: result.TemplateInfo,
	}
}

func (d Diagnostics) CheckExtraction(ctx context.Context) ExtractionCheck {
	order, err := d.ordersRepo.MostRecentWithTickets(ctx)
	if errors.Is(err, entity.ErrNotFound) {
		return ExtractionCheck{Message: "no orders with tickets found"}
	}
	if err != nil {
		return ExtractionCheck{Message: err.Error()}
	}

	tickets, err := d.extractor.ExtractOrder(ctx, order.OrderID)
	if err != nil {
		return ExtractionCheck{OrderID: order.OrderID, Message: err.Error()}
	}

	return ExtractionCheck{
		OK:      true,
		OrderID: order.OrderID,
		Message: "ticket data extracted",
		Tickets: tickets,
	}
}

// CheckPassGeneration creates, or fetches when it exists, the pass of the first extracted
// ticket.
func (d Diagnostics) CheckPassGeneration(
	ctx context.Context,
	settings entity.Settings,
	extraction ExtractionCheck,
) PassGenerationCheck {
	if !extraction.OK || len(extraction.Tickets) == 0 {
		return PassGenerationCheck{OrderID: extraction.OrderID, Message: "no ticket data to generate a pass from"}
	}

	ticketData := extraction.Tickets[0]
	check := PassGenerationCheck{
		OrderID:    extraction.OrderID,
		AttendeeID: ticketData.AttendeeID,
	}

	passURL, err := d.passService.CreateOrGetPass(ctx, settings, ticketData, extraction.OrderID)
	if err != nil {
		check.Message = err.Error()
		check.ErrorKind = entity.ErrorKind(err)
		return check
	}

	check.OK = true
	check.PassURL = passURL
	check.Message = "pass generated"

	return check
}

// CheckRendering renders both variants for the pass of orderID, or for a sample pass when
// the order has none.
func (d Diagnostics) CheckRendering(ctx context.Context, settings entity.Settings, orderID string) RenderingCheck {
	check := RenderingCheck{PassURL: SamplePassURL, SamplePass: true}

	if orderID != "" {
		passURL, err := d.passRecords.FindOrderPassURL(ctx, orderID)
		switch {
		case err == nil:
			check.PassURL = passURL
			check.SamplePass = false
		case !errors.Is(err, entity.ErrNotFound):
			check.Message = err.Error()
			return check
		}
	}

	check.PageBytes = len(d.renderer.Render(check.PassURL, settings.ButtonStyle, render.VariantPage))
	check.EmailBytes = len(d.renderer.Render(check.PassURL, settings.ButtonStyle, render.VariantEmail))
	check.OK = check.PageBytes > 0 && check.EmailBytes > 0

	return check
}
