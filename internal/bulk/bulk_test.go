package bulk

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefire/storefront-api/internal/model"
)

func sampleProducts() []model.Product {
	return []model.Product{
		{
			ID:          "prime-peptide-protect",
			Name:        "Protect",
			Category:    "immune",
			ProductType: model.ProductTypeSupplement,
			InStock:     true,
			DosageOptions: []model.DosageOption{
				{Size: "60 capsules", PriceUSD: 49.99, PriceEUR: 46.99},
				{Size: "120 capsules", PriceUSD: 89.99, PriceEUR: 84.99},
			},
		},
		{
			ID:          "prime-peptide-brain",
			Name:        "Brain",
			Category:    "cognitive",
			ProductType: model.ProductTypeSupplement,
			InStock:     true,
			DosageOptions: []model.DosageOption{
				{Size: "60 capsules", PriceUSD: 54.99, PriceEUR: 51.99},
			},
		},
	}
}

func catalogWith(ids ...string) ExistsFunc {
	set := map[string]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(_ context.Context, id string) (bool, error) {
		return set[id], nil
	}
}

func TestParseSkipsCommentsAndBlankLines(t *testing.T) {
	content := "id,price_usd,price_eur,in_stock\n" +
		"# a hint for the operator\n" +
		"prime-peptide-protect,49.99,46.99,true\n" +
		"\n" +
		"prime-peptide-brain,,,no\n"

	rows, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "prime-peptide-protect", rows[0].Fields["id"])
	assert.Equal(t, "prime-peptide-brain", rows[1].Fields["id"])
}

func TestParseRejectsEmptyDocuments(t *testing.T) {
	for _, content := range []string{"", "id,price_usd,price_eur,in_stock\n", "# only comments\n"} {
		_, err := Parse(content)
		assert.ErrorIs(t, err, ErrNoData)
	}
}

func TestValidateMixedDocument(t *testing.T) {
	content := "id,price_usd,price_eur,in_stock\n" +
		"prime-peptide-protect,49.99,46.99,true\n" +
		"prime-peptide-protect,abc,46.99,true\n" +
		"unknown-product,19.99,17.99,false\n"

	rows, err := Parse(content)
	require.NoError(t, err)

	res, err := Validate(context.Background(), rows, catalogWith("prime-peptide-protect"))
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRows)
	require.Len(t, res.Valid, 2) // the bad-price row still carries valid EUR and stock fields
	require.Len(t, res.Errors, 2)
	assert.Contains(t, res.Errors[0], `Invalid price_usd "abc"`)
	assert.Contains(t, res.Errors[1], `Product "unknown-product" not found`)
}

func TestValidateThreeRowDocument(t *testing.T) {
	content := "id,price_usd,price_eur,in_stock\n" +
		"prime-peptide-protect,-5.00,,\n" +
		"ghost-product,19.99,17.99,true\n" +
		"prime-peptide-brain,49.99,46.99,yes\n"

	rows, err := Parse(content)
	require.NoError(t, err)

	res, err := Validate(context.Background(), rows,
		catalogWith("prime-peptide-protect", "prime-peptide-brain"))
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRows)
	require.Len(t, res.Errors, 2)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "prime-peptide-brain", res.Valid[0].ID)
	require.NotNil(t, res.Valid[0].PriceUSD)
	assert.InDelta(t, 49.99, *res.Valid[0].PriceUSD, 1e-9)
	require.NotNil(t, res.Valid[0].InStock)
	assert.True(t, *res.Valid[0].InStock)
}

func TestValidateLineNumbersSurviveComments(t *testing.T) {
	content := "id,price_usd,price_eur,in_stock\n" +
		"# comment on line two\n" +
		",49.99,,\n"

	rows, err := Parse(content)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	res, err := Validate(context.Background(), rows, catalogWith())
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Line 3: Missing product ID", res.Errors[0])
}

func TestValidateRejectsNegativeAndNonFinitePrices(t *testing.T) {
	for _, raw := range []string{"-1", "NaN", "Inf", "-Inf"} {
		content := "id,price_usd,price_eur,in_stock\nprime-peptide-protect," + raw + ",,\n"
		rows, err := Parse(content)
		require.NoError(t, err)

		res, err := Validate(context.Background(), rows, catalogWith("prime-peptide-protect"))
		require.NoError(t, err)
		assert.Len(t, res.Errors, 1, "price %q should be rejected", raw)
		assert.Empty(t, res.Valid)
	}
}

func TestValidateRowWithNoUpdateFieldsIsDropped(t *testing.T) {
	content := "id,price_usd,price_eur,in_stock\nprime-peptide-protect,,,\n"
	rows, err := Parse(content)
	require.NoError(t, err)

	res, err := Validate(context.Background(), rows, catalogWith("prime-peptide-protect"))
	require.NoError(t, err)
	assert.Empty(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestParseStockFlag(t *testing.T) {
	tests := []struct {
		raw   string
		value bool
		ok    bool
	}{
		{"true", true, true},
		{"TRUE", true, true},
		{"1", true, true},
		{"yes", true, true},
		{"Yes", true, true},
		{"false", false, true},
		{"0", false, true},
		{"no", false, true},
		{"maybe", false, false},
		{"2", false, false},
		{"", false, false},
	}
	for _, tt := range tests {
		v, ok := ParseStockFlag(tt.raw)
		assert.Equal(t, tt.ok, ok, "raw=%q", tt.raw)
		if ok {
			assert.Equal(t, tt.value, v, "raw=%q", tt.raw)
		}
	}
}

func TestTemplateRoundTrips(t *testing.T) {
	rows, err := Parse(Template())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	res, err := Validate(context.Background(), rows,
		catalogWith("prime-peptide-protect", "prime-peptide-brain"))
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Valid, 2)
}

func TestExportIsImportCompatible(t *testing.T) {
	out, err := Export(sampleProducts())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(ExportHeader, ","), lines[0])
	assert.Equal(t, "prime-peptide-protect,Protect,immune,supplement,49.99,46.99,true", lines[1])

	// export carries extra columns; the importer keys by header so they parse
	rows, err := Parse(out)
	require.NoError(t, err)
	res, err := Validate(context.Background(), rows,
		catalogWith("prime-peptide-protect", "prime-peptide-brain"))
	require.NoError(t, err)
	assert.Empty(t, res.Errors)
	assert.Len(t, res.Valid, 2)
}
