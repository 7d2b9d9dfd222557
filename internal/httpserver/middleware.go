package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mbenitez/tienda/internal/logging"
	"github.com/mbenitez/tienda/internal/tokens"
)

const principalKey = "principal"

// Principal is the authenticated identity attached to the request.
// Handlers trust it without re-verifying credentials.
type Principal struct {
	ID    uuid.UUID
	Role  string
	Email string
}

func GetPrincipal(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

func accessTokenFrom(c echo.Context) string {
	if cookie, err := c.Cookie("accessToken"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireAuth resolves the access token into a Principal or rejects the
// request. Expiry is detected at use time, there is no background
// eviction.
func RequireAuth(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := accessTokenFrom(c)
			if token == "" {
				return respondError(c, http.StatusUnauthorized, "unauthorized")
			}

			claims, err := tokens.ParseAccessClaims(token, secret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return respondError(c, http.StatusUnauthorized, "token expired")
				}
				return respondError(c, http.StatusUnauthorized, "unauthorized")
			}

			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				return respondError(c, http.StatusUnauthorized, "unauthorized")
			}

			c.Set(principalKey, Principal{
				ID:    userID,
				Role:  claims.Role,
				Email: claims.Email,
			})
			return next(c)
		}
	}
}

// RequireRoles guards a route group to the given roles.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := GetPrincipal(c)
			if !ok {
				return respondError(c, http.StatusUnauthorized, "unauthorized")
			}
			for _, role := range roles {
				if p.Role == role {
					return next(c)
				}
			}
			return respondError(c, http.StatusForbidden, "forbidden")
		}
	}
}

// RequestLogger injects the logger into the request context and logs
// one line per request.
func RequestLogger(l *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			ctx := logging.IntoContext(req.Context(), l)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			l.Info("request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}
