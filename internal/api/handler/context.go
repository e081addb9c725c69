package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/postboard/postboard-api/internal/core/domain"
)

// AccountIDKey is the echo context key the auth middleware stores the
// verified token subject under.
const AccountIDKey = "account_id"

// actorID returns the authenticated account id, or ErrUnauthenticated when
// the route was reached without the auth middleware.
func actorID(c echo.Context) (string, error) {
	id, _ := c.Get(AccountIDKey).(string)
	if id == "" {
		return "", domain.ErrUnauthenticated
	}
	return id, nil
}

// bindAndValidate decodes the body into req and runs the registered validator.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload").SetInternal(err)
	}
	if c.Echo().Validator == nil {
		return nil
	}
	return c.Validate(req)
}
