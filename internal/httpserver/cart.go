package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/service"
)

type CartHTTP struct {
	Svc      *service.CartService
	Purchase *service.PurchaseService
}

// cartAccess loads the cart and checks that it belongs to the caller.
// Admins may touch any cart. On failure the response is already
// written and ok is false.
func (h *CartHTTP) cartAccess(c echo.Context) (uuid.UUID, *models.Cart, bool) {
	cartID, err := uuid.Parse(c.Param("cid"))
	if err != nil {
		_ = respondError(c, http.StatusBadRequest, "invalid cart id")
		return uuid.Nil, nil, false
	}

	p, ok := GetPrincipal(c)
	if !ok {
		_ = respondError(c, http.StatusUnauthorized, "unauthorized")
		return uuid.Nil, nil, false
	}

	cart, err := h.Svc.GetCart(c.Request().Context(), cartID)
	if err != nil {
		_ = respondServiceError(c, err)
		return uuid.Nil, nil, false
	}
	if p.Role != models.RoleAdmin && cart.UserID != p.ID {
		_ = respondError(c, http.StatusForbidden, "cart belongs to another user")
		return uuid.Nil, nil, false
	}
	return cartID, cart, true
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	_, cart, ok := h.cartAccess(c)
	if !ok {
		return nil
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": cart})
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	cartID, _, ok := h.cartAccess(c)
	if !ok {
		return nil
	}

	productID, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	item, err := h.Svc.AddItem(ctx, cartID, productID, req.Quantity)
	if err != nil {
		l.Warn("add_to_cart_failed", "product_id", productID, "error", err)
		return respondServiceError(c, err)
	}

	l.Info("product added to cart", "product_id", productID, "quantity", item.Quantity)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "product added to cart", "data": item})
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	cartID, _, ok := h.cartAccess(c)
	if !ok {
		return nil
	}

	productID, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}

	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdateItemQuantity(ctx, cartID, productID, req.Quantity); err != nil {
		l.Warn("update_quantity_failed", "product_id", productID, "error", err)
		return respondServiceError(c, err)
	}
	return respondOK(c, "quantity updated")
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	cartID, _, ok := h.cartAccess(c)
	if !ok {
		return nil
	}

	productID, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}

	if err := h.Svc.RemoveItem(ctx, cartID, productID); err != nil {
		return respondServiceError(c, err)
	}
	return respondOK(c, "product removed from cart")
}

func (h *CartHTTP) ClearItems(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	cartID, _, ok := h.cartAccess(c)
	if !ok {
		return nil
	}

	if err := h.Svc.ClearItems(ctx, cartID); err != nil {
		l.Error("clear_cart_failed", "error", err)
		return respondServiceError(c, err)
	}

	l.Info("cart cleared")
	return respondOK(c, "cart cleared")
}

func (h *CartHTTP) PurchaseCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.purchase")

	cartID, _, ok := h.cartAccess(c)
	if !ok {
		return nil
	}

	p, _ := GetPrincipal(c)
	result, err := h.Purchase.Purchase(ctx, cartID, p.ID)
	if err != nil {
		l.Error("purchase_failed", "error", err)
		return respondServiceError(c, err)
	}

	if result.Ticket == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"status":               "error",
			"message":              "no items could be purchased",
			"unavailable_products": result.Unavailable,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":               "success",
		"message":              "purchase completed",
		"ticket":               result.Ticket,
		"unavailable_products": result.Unavailable,
	})
}

func (h *CartHTTP) ListTickets(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid user id")
	}
	if !selfOrAdmin(c, userID) {
		return nil
	}

	tickets, err := h.Purchase.TicketsForUser(c.Request().Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": tickets})
}

func (h *CartHTTP) GetTicket(c echo.Context) error {
	id, err := uuid.Parse(c.Param("tid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid ticket id")
	}

	ticket, err := h.Purchase.Ticket(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	p, ok := GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}
	if p.Role != models.RoleAdmin && ticket.UserID != p.ID {
		return respondError(c, http.StatusForbidden, "ticket belongs to another user")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "data": ticket})
}
