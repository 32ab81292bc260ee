package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"walletpass/db/settings"
)

func (s Server) GetSettings(c echo.Context) error {
	current, err := s.settingsRepo.Get(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, current)
}

// PutSettings updates the fields present in the body and keeps the others.
func (s Server) PutSettings(c echo.Context) error {
	ctx := c.Request().Context()

	request, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return err
	}
	if err := c.Bind(&request); err != nil {
		return err
	}

	err = s.settingsRepo.Save(ctx, request)
	var validationErr settings.ValidationError
	if errors.As(err, &validationErr) {
		return echo.NewHTTPError(http.StatusBadRequest, validationErr.Error())
	}
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (s Server) GetDiagnostics(c echo.Context) error {
	report, err := s.diagnostics.Run(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}
