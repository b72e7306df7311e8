package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefire/storefront-api/internal/model"
)

func newTestContext(t *testing.T, method, path string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func okHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/")
	c.Set("admin_role", model.RoleAdmin)

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleAllowsAnyListedRole(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/")
	c.Set("admin_role", model.RoleContentEditor)

	err := RequireRole(model.RoleAdmin, model.RoleContentEditor)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsWrongRole(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/")
	c.Set("admin_role", model.RoleContentEditor)

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "required_role")
	assert.Contains(t, rec.Body.String(), model.RoleAdmin)
}

func TestRequireRoleRejectsUnauthenticated(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/")

	err := RequireRole(model.RoleAdmin)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequirePermissionChecksGrants(t *testing.T) {
	key := &model.APIKey{Name: "test", Permissions: []string{model.PermAIQuery}}

	c, rec := newTestContext(t, http.MethodPost, "/")
	c.Set("api_key", key)
	err := RequirePermission(model.PermAIQuery)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newTestContext(t, http.MethodPost, "/")
	c.Set("api_key", key)
	err = RequirePermission(model.PermProductsRead)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), model.PermProductsRead)
}

func TestRequirePermissionWildcard(t *testing.T) {
	key := &model.APIKey{Name: "root", Permissions: []string{model.PermAll}}

	c, rec := newTestContext(t, http.MethodGet, "/")
	c.Set("api_key", key)
	err := RequirePermission(model.PermProductsRead)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequirePermissionWithoutKey(t *testing.T) {
	c, rec := newTestContext(t, http.MethodGet, "/")

	err := RequirePermission(model.PermAIQuery)(okHandler)(c)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
