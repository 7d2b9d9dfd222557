package httpserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/service"
)

type SessionHTTP struct {
	Svc *service.UserService
}

func createCookie(name, value, path string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  exp,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (h *SessionHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.register")

	var req struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Age       int    `json:"age"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	user, cart, err := h.Svc.Register(ctx, service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Age:       req.Age,
	})
	if err != nil {
		l.Warn("register_failed", "email", req.Email, "error", err)
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":  "success",
		"message": "user registered",
		"user":    user,
		"cart_id": cart.ID,
	})
}

func (h *SessionHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	result, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn("login_failed", "email", req.Email, "error", err)
		return respondServiceError(c, err)
	}

	c.SetCookie(createCookie("accessToken", result.AccessToken, "/", result.AccessExp))
	c.SetCookie(createCookie("refreshToken", result.RefreshToken, "/", result.RefreshExp))

	return c.JSON(http.StatusOK, echo.Map{
		"status":        "success",
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"is_admin":      result.User.Role == models.RoleAdmin,
	})
}

// Refresh trades a live refresh token for a fresh access token.
func (h *SessionHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.refresh")

	var token string
	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		token = cookie.Value
	} else {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.Bind(&req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}

	result, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		l.Warn("refresh_failed", "error", err)
		return respondServiceError(c, err)
	}

	c.SetCookie(createCookie("accessToken", result.AccessToken, "/", result.AccessExp))
	return c.JSON(http.StatusOK, echo.Map{
		"status":       "success",
		"access_token": result.AccessToken,
	})
}

func (h *SessionHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if cookie, err := c.Cookie("refreshToken"); err == nil && cookie.Value != "" {
		if err := h.Svc.Logout(ctx, cookie.Value); err != nil {
			return respondServiceError(c, err)
		}
	}

	expired := time.Now().Add(-time.Hour)
	c.SetCookie(createCookie("accessToken", "", "/", expired))
	c.SetCookie(createCookie("refreshToken", "", "/", expired))
	return respondOK(c, "logged out")
}

func (h *SessionHTTP) Current(c echo.Context) error {
	p, ok := GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Svc.GetUser(c.Request().Context(), p.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "user": user})
}

// TogglePremium flips the target between user and premium. Users can
// flip themselves, admins anyone.
func (h *SessionHTTP) TogglePremium(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.premium")

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid user id")
	}

	p, ok := GetPrincipal(c)
	if !ok {
		return respondError(c, http.StatusUnauthorized, "unauthorized")
	}
	if p.Role != models.RoleAdmin && p.ID != userID {
		return respondError(c, http.StatusForbidden, "forbidden")
	}

	user, err := h.Svc.TogglePremium(ctx, userID)
	if err != nil {
		l.Warn("toggle_premium_failed", "user_id", userID, "error", err)
		return respondServiceError(c, err)
	}

	l.Info("role toggled", "user_id", userID, "role", user.Role)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "role updated", "role": user.Role})
}

func (h *SessionHTTP) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.forgot_password")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	// Unknown addresses get the same answer as known ones, so the
	// endpoint cannot be used to enumerate accounts.
	baseURL := c.Scheme() + "://" + c.Request().Host
	if err := h.Svc.RequestPasswordReset(ctx, req.Email, baseURL); err != nil && !errors.Is(err, service.ErrNotFound) {
		l.Warn("password_reset_request_failed", "email", req.Email, "error", err)
		return respondServiceError(c, err)
	}
	return respondOK(c, "reset email sent")
}

func (h *SessionHTTP) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.reset_password")

	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.ResetPassword(ctx, c.Param("token"), req.Password, req.ConfirmPassword); err != nil {
		l.Warn("password_reset_failed", "error", err)
		return respondServiceError(c, err)
	}
	return respondOK(c, "password updated")
}
