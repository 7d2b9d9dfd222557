package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mbenitez/tienda/internal/service"
)

type MessageHTTP struct {
	Svc *service.MessageService
}

func (h *MessageHTTP) List(c echo.Context) error {
	messages, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": messages})
}

func (h *MessageHTTP) Create(c echo.Context) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	message, err := h.Svc.Create(c.Request().Context(), p.Email, req.Body)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"status": "success", "data": message})
}

func (h *MessageHTTP) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid message id")
	}

	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, "message deleted")
}
