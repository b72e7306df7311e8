package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonRequest(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestHealth(t *testing.T) {
	c, rec := jsonRequest(t, http.MethodGet, "/health", "")
	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestOrderCreateValidation(t *testing.T) {
	h := &OrderHandler{}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty items", `{"items":[]}`, "at least one item"},
		{"missing product id", `{"items":[{"quantity":1}]}`, "product_id"},
		{"zero quantity", `{"items":[{"product_id":"x","quantity":0}]}`, "positive quantity"},
		{"bad currency", `{"items":[{"product_id":"x","quantity":1}],"currency":"GBP"}`, "unsupported currency"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := jsonRequest(t, http.MethodPost, "/api/orders", tt.body)
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestOrderStatusValidation(t *testing.T) {
	h := &OrderHandler{}

	c, rec := jsonRequest(t, http.MethodPatch, "/api/orders/PF-X/status", `{}`)
	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing to update")

	c, rec = jsonRequest(t, http.MethodPatch, "/api/orders/PF-X/status", `{"status":"teleported"}`)
	require.NoError(t, h.UpdateStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid status")
}

func TestAIQueryBatchValidation(t *testing.T) {
	h := &AIHandler{}

	c, rec := jsonRequest(t, http.MethodPost, "/api/ai/query/batch", `{"product_ids":[]}`)
	require.NoError(t, h.QueryBatch(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ids := make([]string, 0, maxBatchIDs+1)
	for i := 0; i <= maxBatchIDs; i++ {
		ids = append(ids, `"p"`)
	}
	body := `{"product_ids":[` + strings.Join(ids, ",") + `]}`
	c, rec = jsonRequest(t, http.MethodPost, "/api/ai/query/batch", body)
	require.NoError(t, h.QueryBatch(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at most 50")
}

func TestProductCreateValidation(t *testing.T) {
	h := &ProductHandler{}

	tests := []struct {
		name string
		body string
		want string
	}{
		{"missing fields", `{"name":"X"}`, "required"},
		{"bad slug", `{"id":"Not A Slug","name":"X","category":"c","dosage_options":[{"size":"10mg","price_usd":1,"price_eur":1}]}`, "lowercase slug"},
		{"no dosages", `{"id":"x","name":"X","category":"c"}`, "dosage option"},
		{"bad type", `{"id":"x","name":"X","category":"c","product_type":"gadget","dosage_options":[{"size":"10mg","price_usd":1,"price_eur":1}]}`, "invalid product_type"},
		{"negative price", `{"id":"x","name":"X","category":"c","dosage_options":[{"size":"10mg","price_usd":-1,"price_eur":1}]}`, "non-negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := jsonRequest(t, http.MethodPost, "/api/admin/products", tt.body)
			require.NoError(t, h.Create(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}
}

func TestAPIKeyCreateValidation(t *testing.T) {
	h := &APIKeyHandler{}

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/api-keys", `{"name":"bot"}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "at least one permission")

	c, rec = jsonRequest(t, http.MethodPost, "/api/admin/api-keys",
		`{"name":"bot","permissions":["orders:write"]}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid permission")

	c, rec = jsonRequest(t, http.MethodPost, "/api/admin/api-keys",
		`{"name":"bot","permissions":["ai:query"],"expires_in_days":0}`)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "expires_in_days")
}

func TestBulkPreviewRequiresCSV(t *testing.T) {
	h := &BulkHandler{}

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/bulk/preview", `{}`)
	require.NoError(t, h.Preview(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "csv content required")
}
