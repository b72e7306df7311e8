// Package bulk implements the CSV price/stock import pipeline: parsing
// tabular input into field-level updates, validating each row independently,
// and rendering the template/export documents.  Applying accepted rows is
// the repository's job so this package stays free of SQL.
package bulk

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
)

// ImportHeader is the column set accepted by preview/apply.
var ImportHeader = []string{"id", "price_usd", "price_eur", "in_stock"}

// ExportHeader is the column set produced by the export endpoint.
var ExportHeader = []string{"id", "name", "category", "product_type", "price_usd", "price_eur", "in_stock"}

// ErrNoData is returned when the CSV has no data rows after the header.
var ErrNoData = errors.New("CSV must contain a header row and at least one data row")

// Row is one parsed data line.  Field values are kept raw; validation turns
// them into typed updates.
type Row struct {
	Line   int // 1-based line number in the original document
	Fields map[string]string
}

// Parse reads CSV content into rows keyed by the header columns.  Blank
// lines and lines starting with '#' are skipped, so the downloadable
// template (which carries commented hints) round-trips unchanged.
func Parse(content string) ([]Row, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(content)))
	r.Comment = '#'
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, ErrNoData
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	rows := []Row{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed CSV: %w", err)
		}
		line, _ := r.FieldPos(0)
		fields := map[string]string{}
		for i, h := range header {
			if i < len(rec) {
				fields[h] = strings.TrimSpace(rec[i])
			}
		}
		rows = append(rows, Row{Line: line, Fields: fields})
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}

// ExistsFunc reports whether a product id is present in the catalog.
type ExistsFunc func(ctx context.Context, id string) (bool, error)

// Result is the outcome of validating a parsed document.
type Result struct {
	TotalRows int
	Valid     []repository.BulkUpdate
	Errors    []string
}

// Validate checks every row independently and never aborts early: each
// failing row contributes a line-numbered error message and the remaining
// rows are still examined.  A row must reference an existing product and
// carry at least one parseable update field to be accepted.
func Validate(ctx context.Context, rows []Row, exists ExistsFunc) (Result, error) {
	res := Result{TotalRows: len(rows), Valid: []repository.BulkUpdate{}, Errors: []string{}}

	for _, row := range rows {
		id := row.Fields["id"]
		if id == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Missing product ID", row.Line))
			continue
		}
		u := repository.BulkUpdate{ID: id}

		if raw, ok := row.Fields["price_usd"]; ok && raw != "" {
			if p, perr := parsePrice(raw); perr != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Invalid price_usd %q", row.Line, raw))
			} else {
				u.PriceUSD = &p
			}
		}
		if raw, ok := row.Fields["price_eur"]; ok && raw != "" {
			if p, perr := parsePrice(raw); perr != nil {
				res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Invalid price_eur %q", row.Line, raw))
			} else {
				u.PriceEUR = &p
			}
		}
		if raw, ok := row.Fields["in_stock"]; ok && raw != "" {
			if b, ok := ParseStockFlag(raw); ok {
				u.InStock = &b
			} else {
				res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Invalid in_stock value %q. Use true/false, 1/0, or yes/no", row.Line, raw))
			}
		}

		ok, err := exists(ctx, id)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf("Line %d: Product %q not found", row.Line, id))
			continue
		}

		if u.PriceUSD != nil || u.PriceEUR != nil || u.InStock != nil {
			res.Valid = append(res.Valid, u)
		}
	}
	return res, nil
}

func parsePrice(raw string) (float64, error) {
	p, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0, errors.New("price must be a number >= 0")
	}
	return p, nil
}

// ParseStockFlag accepts true/false, 1/0 and yes/no, case-insensitively.
func ParseStockFlag(raw string) (value, ok bool) {
	switch strings.ToLower(raw) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// Template returns the downloadable CSV template with commented usage hints.
func Template() string {
	return strings.Join([]string{
		strings.Join(ImportHeader, ","),
		"prime-peptide-protect,49.99,46.99,true",
		"prime-peptide-brain,49.99,46.99,true",
		"# Add more products...",
		"# in_stock values: true/false, 1/0, yes/no",
		"# Leave price fields empty to keep current prices",
	}, "\n") + "\n"
}

// Export renders the current catalog as CSV.  Prices come from the first
// dosage option, mirroring what apply would update.
func Export(products []model.Product) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	if err := w.Write(ExportHeader); err != nil {
		return "", err
	}
	for _, p := range products {
		var usd, eur string
		if len(p.DosageOptions) > 0 {
			usd = strconv.FormatFloat(p.DosageOptions[0].PriceUSD, 'f', 2, 64)
			eur = strconv.FormatFloat(p.DosageOptions[0].PriceEUR, 'f', 2, 64)
		}
		if err := w.Write([]string{
			p.ID, p.Name, p.Category, p.ProductType, usd, eur, strconv.FormatBool(p.InStock),
		}); err != nil {
			return "", err
		}
	}
	w.Flush()
	return sb.String(), w.Error()
}
