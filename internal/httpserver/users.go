package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

// selfOrAdmin authorizes a request targeting uid.
func selfOrAdmin(c echo.Context, uid uuid.UUID) bool {
	p, ok := GetPrincipal(c)
	if !ok {
		_ = respondError(c, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if p.Role != models.RoleAdmin && p.ID != uid {
		_ = respondError(c, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}

func (h *UserHTTP) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid user id")
	}
	if !selfOrAdmin(c, userID) {
		return nil
	}

	var req struct {
		FirstName    *string `json:"first_name"`
		LastName     *string `json:"last_name"`
		Age          *int    `json:"age"`
		ProfileImage *string `json:"profile_image"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.UpdateProfile(ctx, userID, service.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Age:          req.Age,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "profile updated", "user": user})
}

// UpdateDocuments records uploaded verification documents. The upload
// boundary supplies stored-file references; only the references are
// kept here.
func (h *UserHTTP) UpdateDocuments(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.documents")

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid user id")
	}
	if !selfOrAdmin(c, userID) {
		return nil
	}

	var req struct {
		Documents map[string]string `json:"documents"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	user, premium, err := h.Svc.UpdateDocuments(ctx, userID, req.Documents)
	if err != nil {
		l.Warn("update_documents_failed", "user_id", userID, "error", err)
		return respondServiceError(c, err)
	}

	message := "documents updated"
	if premium {
		message = "documents updated, user promoted to premium"
	}
	l.Info("documents updated", "user_id", userID, "role", user.Role)
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": message, "role": user.Role})
}

func (h *UserHTTP) SetRole(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.set_role")

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid user id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.SetRole(ctx, userID, req.Role)
	if err != nil {
		l.Warn("set_role_failed", "user_id", userID, "error", err)
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "role updated", "role": user.Role})
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	userID, err := uuid.Parse(c.Param("uid"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid user id")
	}

	if err := h.Svc.DeleteUser(ctx, userID); err != nil {
		l.Warn("delete_user_failed", "user_id", userID, "error", err)
		return respondServiceError(c, err)
	}

	l.Info("user deleted", "user_id", userID)
	return respondOK(c, "user and associated data deleted")
}

func (h *UserHTTP) DeleteInactive(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete_inactive")

	deleted, err := h.Svc.DeleteInactive(ctx)
	if err != nil {
		l.Error("delete_inactive_failed", "error", err)
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "message": "inactive users deleted", "deleted": deleted})
}
