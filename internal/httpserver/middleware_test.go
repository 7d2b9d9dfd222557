package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbenitez/tienda/internal/models"
	"github.com/mbenitez/tienda/internal/tokens"
)

var testSecret = []byte("test-secret")

func authedRequest(t *testing.T, token string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	userID := uuid.New()
	token, err := tokens.NewAccessToken(testSecret, userID.String(), models.RolePremium, "ana@example.com", time.Now().Add(time.Minute))
	require.NoError(t, err)

	c, _ := authedRequest(t, token)

	var got Principal
	next := func(c echo.Context) error {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		got = p
		return c.NoContent(http.StatusOK)
	}
	require.NoError(t, RequireAuth(testSecret)(next)(c))

	assert.Equal(t, userID, got.ID)
	assert.Equal(t, models.RolePremium, got.Role)
	assert.Equal(t, "ana@example.com", got.Email)
}

func TestRequireAuthReadsCookie(t *testing.T) {
	userID := uuid.New()
	token, err := tokens.NewAccessToken(testSecret, userID.String(), models.RoleUser, "a@b.com", time.Now().Add(time.Minute))
	require.NoError(t, err)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "accessToken", Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	require.NoError(t, RequireAuth(testSecret)(next)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuthRejects(t *testing.T) {
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	c, rec := authedRequest(t, "")
	require.NoError(t, RequireAuth(testSecret)(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = authedRequest(t, "garbage")
	require.NoError(t, RequireAuth(testSecret)(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := tokens.NewAccessToken(testSecret, uuid.NewString(), models.RoleUser, "a@b.com", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	c, rec = authedRequest(t, expired)
	require.NoError(t, RequireAuth(testSecret)(next)(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token expired")
}

func TestRequireRoles(t *testing.T) {
	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(principalKey, Principal{ID: uuid.New(), Role: models.RoleUser})

	require.NoError(t, RequireRoles(models.RoleAdmin)(next)(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(principalKey, Principal{ID: uuid.New(), Role: models.RoleAdmin})

	require.NoError(t, RequireRoles(models.RoleAdmin, models.RolePremium)(next)(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
