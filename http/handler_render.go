package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"walletpass/entity"
	"walletpass/render"
)

// GetWalletButtons returns the buttons for the checkout success page. It answers 204 when the
// buttons are disabled or the order has no pass yet.
func (s Server) GetWalletButtons(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.EnableCheckoutButton.Enabled() {
		return c.NoContent(http.StatusNoContent)
	}

	passURL, err := s.passRecords.FindOrderPassURL(ctx, c.Param("order_id"))
	if errors.Is(err, entity.ErrNotFound) {
		return c.NoContent(http.StatusNoContent)
	}
	if err != nil {
		return err
	}

	return c.HTML(http.StatusOK, s.renderer.Render(passURL, settings.ButtonStyle, render.VariantPage))
}

// PostEmailContent filters the order email body. The body is returned unchanged when the email
// buttons are disabled or the order has no pass.
func (s Server) PostEmailContent(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	content := string(body)

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.EnableEmailButton.Enabled() {
		return c.HTML(http.StatusOK, content)
	}

	passURL, err := s.passRecords.FindOrderPassURL(ctx, c.Param("order_id"))
	if errors.Is(err, entity.ErrNotFound) {
		return c.HTML(http.StatusOK, content)
	}
	if err != nil {
		return err
	}

	buttons := s.renderer.Render(passURL, settings.ButtonStyle, render.VariantEmail)

	return c.HTML(http.StatusOK, render.SpliceIntoEmail(content, buttons))
}

func (s Server) GetOrderPasses(c echo.Context) error {
	records, err := s.passRecords.FindByOrder(c.Request().Context(), c.Param("order_id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, records)
}
