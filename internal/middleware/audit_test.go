package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefire/storefront-api/internal/repository"
)

type stubRecorder struct {
	entries []repository.Entry
}

func (s *stubRecorder) Record(_ context.Context, e repository.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

func TestAuditLogRecordsOnSuccess(t *testing.T) {
	rec := &stubRecorder{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/admin/products/prime-peptide/price",
		strings.NewReader(`{"dosage_index":0,"price_usd":59.99,"price_eur":54.99}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("prime-peptide")
	c.Set("admin_id", uint64(3))
	c.Set("admin_email", "ops@example.com")

	handler := AuditLog(rec, "product.price_update", "product")(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})
	require.NoError(t, handler(c))

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, "product.price_update", entry.Action)
	assert.Equal(t, "product", entry.EntityType)
	assert.Equal(t, "prime-peptide", entry.EntityID)
	assert.Equal(t, uint64(3), entry.UserID)
	assert.Equal(t, "ops@example.com", entry.UserEmail)

	changes, ok := entry.Changes.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, changes, "body")
	assert.Contains(t, changes, "params")
}

func TestAuditLogSkipsNon2xx(t *testing.T) {
	rec := &stubRecorder{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/admin/products/missing", nil)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.SetParamNames("id")
	c.SetParamValues("missing")

	handler := AuditLog(rec, "product.delete", "product")(func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	})
	require.NoError(t, handler(c))

	assert.Empty(t, rec.entries)
}

func TestAuditLogHandlerBodyStillReadable(t *testing.T) {
	rec := &stubRecorder{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/products",
		strings.NewReader(`{"id":"new-product","name":"New"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)

	var bound struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	handler := AuditLog(rec, "product.create", "product")(func(c echo.Context) error {
		if err := c.Bind(&bound); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "bind failed"})
		}
		return c.JSON(http.StatusCreated, echo.Map{"id": bound.ID})
	})
	require.NoError(t, handler(c))

	assert.Equal(t, "new-product", bound.ID)
	require.Len(t, rec.entries, 1)
	// no :id param on create, so the id comes from the body
	assert.Equal(t, "new-product", rec.entries[0].EntityID)
}

func TestRecordManualCapturesIdentity(t *testing.T) {
	rec := &stubRecorder{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/admin/bulk/apply", nil)
	req.Header.Set("User-Agent", "test-agent")
	res := httptest.NewRecorder()
	c := e.NewContext(req, res)
	c.Set("admin_id", uint64(1))
	c.Set("admin_email", "admin@example.com")

	RecordManual(c, rec, "bulk.price_update", "product", "batch", echo.Map{"applied": 3})

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, "bulk.price_update", entry.Action)
	assert.Equal(t, "batch", entry.EntityID)
	assert.Equal(t, "admin@example.com", entry.UserEmail)
	assert.Equal(t, "test-agent", entry.UserAgent)
}
