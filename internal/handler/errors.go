package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tutoplus/internal/middleware"
	"github.com/iliyamo/tutoplus/internal/repository"
	"github.com/iliyamo/tutoplus/internal/service"
)

// errStatus maps domain errors to HTTP statuses. The first match wins.
var errStatus = []struct {
	err    error
	status int
	detail bool // include err.Error() instead of the fixed message
	msg    string
}{
	{service.ErrUnauthorized, http.StatusUnauthorized, false, "Unauthorized"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, false, "invalid credentials"},
	{service.ErrSelfLockout, http.StatusForbidden, false, "cannot change your own account"},
	{service.ErrForbidden, http.StatusForbidden, true, ""},
	{service.ErrValidation, http.StatusBadRequest, true, ""},
	{service.ErrUnknownCollection, http.StatusBadRequest, true, ""},
	{repository.ErrUnknownColumn, http.StatusBadRequest, true, ""},
	{repository.ErrInvalidValue, http.StatusBadRequest, true, ""},
	{repository.ErrEmailExists, http.StatusConflict, false, "email already exists"},
	{repository.ErrConflict, http.StatusConflict, false, "conflict"},
	{repository.ErrNotFound, http.StatusNotFound, false, "not found"},
}

// writeErr renders err as {"error": ...}. Unmapped errors are logged and
// reported as 500 without details.
func writeErr(c echo.Context, log *zap.Logger, v *Validator, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && v != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "fields": v.Fields(verrs)})
	}
	for _, m := range errStatus {
		if errors.Is(err, m.err) {
			msg := m.msg
			if m.detail {
				msg = err.Error()
			}
			return c.JSON(m.status, echo.Map{"error": msg})
		}
	}
	log.Error("unhandled error",
		zap.String("path", c.Path()),
		zap.String("user_id", middleware.UserID(c)),
		zap.Error(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// actor builds the service caller from the claims JWTAuth stored.
func actor(c echo.Context) service.Actor {
	return service.Actor{ID: middleware.UserID(c), Email: middleware.Email(c), Role: middleware.Role(c)}
}

func invalidBody(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
}
