package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
)

type stubBulkStore struct {
	catalog map[string]bool
	applied [][]repository.BulkUpdate
}

func (s *stubBulkStore) Exists(_ context.Context, id string) (bool, error) {
	return s.catalog[id], nil
}

func (s *stubBulkStore) List(context.Context) ([]model.Product, error) { return nil, nil }

func (s *stubBulkStore) ApplyBulk(_ context.Context, updates []repository.BulkUpdate) error {
	s.applied = append(s.applied, updates)
	return nil
}

func bulkBody(csv string, force bool) string {
	return fmt.Sprintf(`{"csv":%q,"force":%t}`, csv, force)
}

const mixedDoc = "id,price_usd,price_eur,in_stock\n" +
	"prime-peptide-protect,59.99,55.99,true\n" +
	"ghost-product,10.00,9.00,true\n"

func TestBulkApplyBlocksOnErrorsWithoutForce(t *testing.T) {
	store := &stubBulkStore{catalog: map[string]bool{"prime-peptide-protect": true}}
	h := NewBulkHandler(config.Config{}, store, &stubRecorder{})

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/bulk/apply", bulkBody(mixedDoc, false))

	require.NoError(t, h.Apply(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "set force")
	assert.Contains(t, rec.Body.String(), "not found")
	assert.Empty(t, store.applied, "nothing may be written when validation fails without force")
}

func TestBulkApplyForceAppliesValidSubset(t *testing.T) {
	store := &stubBulkStore{catalog: map[string]bool{"prime-peptide-protect": true}}
	audit := &stubRecorder{}
	h := NewBulkHandler(config.Config{}, store, audit)

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/bulk/apply", bulkBody(mixedDoc, true))

	require.NoError(t, h.Apply(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"applied_count":1`)
	assert.Contains(t, rec.Body.String(), `"skipped_count":1`)

	require.Len(t, store.applied, 1)
	require.Len(t, store.applied[0], 1)
	u := store.applied[0][0]
	assert.Equal(t, "prime-peptide-protect", u.ID)
	require.NotNil(t, u.PriceUSD)
	assert.Equal(t, 59.99, *u.PriceUSD)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, "bulk.price_update", audit.entries[0].Action)
}

func TestBulkApplyCleanDocumentNeedsNoForce(t *testing.T) {
	doc := "id,price_usd,price_eur,in_stock\n" +
		"prime-peptide-protect,59.99,55.99,true\n" +
		"prime-peptide-brain,44.99,41.99,false\n"
	store := &stubBulkStore{catalog: map[string]bool{
		"prime-peptide-protect": true,
		"prime-peptide-brain":   true,
	}}
	h := NewBulkHandler(config.Config{}, store, &stubRecorder{})

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/bulk/apply", bulkBody(doc, false))

	require.NoError(t, h.Apply(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, store.applied, 1)
	assert.Len(t, store.applied[0], 2)
}

func TestBulkApplyForceWithNothingValid(t *testing.T) {
	doc := "id,price_usd,price_eur,in_stock\n" +
		"ghost-product,10.00,9.00,true\n"
	store := &stubBulkStore{catalog: map[string]bool{}}
	h := NewBulkHandler(config.Config{}, store, &stubRecorder{})

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/bulk/apply", bulkBody(doc, true))

	require.NoError(t, h.Apply(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no valid rows to apply")
	assert.Empty(t, store.applied)
}

func TestBulkPreviewReportsCounts(t *testing.T) {
	store := &stubBulkStore{catalog: map[string]bool{"prime-peptide-protect": true}}
	h := NewBulkHandler(config.Config{}, store, &stubRecorder{})

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/bulk/preview", bulkBody(mixedDoc, false))

	require.NoError(t, h.Preview(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_rows":2`)
	assert.Contains(t, rec.Body.String(), `"valid_count":1`)
	assert.Contains(t, rec.Body.String(), `"error_count":1`)
	assert.Empty(t, store.applied, "preview must not write")
}
