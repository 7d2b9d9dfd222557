package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mbenitez/tienda/internal/service"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func respondOK(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, Response{Status: "success", Message: message})
}

func respondError(c echo.Context, code int, message string) error {
	return c.JSON(code, Response{Status: "error", Message: message})
}

// errorStatus maps service sentinels onto HTTP statuses and a message
// safe to hand to clients.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInsufficientStock):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateEmail):
		return http.StatusConflict, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid email or password"
	case errors.Is(err, service.ErrAuthExpired):
		return http.StatusUnauthorized, "token expired"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondServiceError(c echo.Context, err error) error {
	code, message := errorStatus(err)
	return respondError(c, code, message)
}
