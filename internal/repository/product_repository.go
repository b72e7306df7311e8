package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/purefire/storefront-api/internal/model"
)

// ProductRepo persists catalog products and their dosage options.
type ProductRepo struct{ DB *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{DB: db} }

const productColumns = "id,name,description,category,product_type,disclaimer,image,supplement_facts,in_stock,created_at,updated_at"

// List returns every product with dosage options attached, ordered by name.
func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+productColumns+" FROM products ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range products {
		opts, err := r.DosageOptions(ctx, products[i].ID)
		if err != nil {
			return nil, err
		}
		products[i].DosageOptions = opts
	}
	return products, nil
}

// GetByID returns one product with dosage options attached.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (model.Product, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+productColumns+" FROM products WHERE id=? LIMIT 1", id)
	p, err := scanProduct(row)
	if err == sql.ErrNoRows {
		return model.Product{}, ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	opts, err := r.DosageOptions(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	p.DosageOptions = opts
	return p, nil
}

// Exists reports whether a product id is present without loading the row.
func (r *ProductRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM products WHERE id=? LIMIT 1", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// DosageOptions returns a product's dosage options in insertion order.
func (r *ProductRepo) DosageOptions(ctx context.Context, productID string) ([]model.DosageOption, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT size, capsules, price_usd, price_eur FROM product_dosages WHERE product_id=? ORDER BY id",
		productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	opts := []model.DosageOption{}
	for rows.Next() {
		var o model.DosageOption
		if err := rows.Scan(&o.Size, &o.Capsules, &o.PriceUSD, &o.PriceEUR); err != nil {
			return nil, err
		}
		opts = append(opts, o)
	}
	return opts, rows.Err()
}

// Create inserts a product together with its dosage options in one
// transaction and returns the stored product.
func (r *ProductRepo) Create(ctx context.Context, p model.Product) (model.Product, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Product{}, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO products (id, name, description, category, product_type, disclaimer, image, supplement_facts, in_stock) VALUES (?,?,?,?,?,?,?,?,?)",
		p.ID, p.Name, p.Description, p.Category, p.ProductType, p.Disclaimer, p.Image, p.SupplementFacts, p.InStock)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.Product{}, ErrConflict
		}
		return model.Product{}, err
	}
	for _, o := range p.DosageOptions {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO product_dosages (product_id, size, capsules, price_usd, price_eur) VALUES (?,?,?,?,?)",
			p.ID, o.Size, o.Capsules, o.PriceUSD, o.PriceEUR)
		if err != nil {
			return model.Product{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return model.Product{}, err
	}
	return r.GetByID(ctx, p.ID)
}

// allowed column names for Update; anything else in the payload is ignored.
var productUpdatableFields = map[string]bool{
	"name":             true,
	"description":      true,
	"category":         true,
	"image":            true,
	"supplement_facts": true,
}

// Update applies a partial field update and returns the stored product.
// Unknown fields are silently dropped so callers can post the whole form.
func (r *ProductRepo) Update(ctx context.Context, id string, updates map[string]any) (model.Product, error) {
	sets := []string{}
	args := []any{}
	for k, v := range updates {
		if productUpdatableFields[k] {
			sets = append(sets, k+"=?")
			args = append(args, v)
		}
	}
	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		fmt.Sprintf("UPDATE products SET %s WHERE id=?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return model.Product{}, err
	}
	if err := mustAffect(res); err != nil && !errors.Is(err, ErrNotFound) {
		return model.Product{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdatePrice sets the USD/EUR prices of the dosage option at the given
// index (ordered by insertion).  Dosage options are addressed by index
// because they carry no external identifier of their own; the update keys
// on the resolved row id so two options sharing a size stay independent.
func (r *ProductRepo) UpdatePrice(ctx context.Context, id string, dosageIndex int, priceUSD, priceEUR float64) (model.Product, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id FROM product_dosages WHERE product_id=? ORDER BY id", id)
	if err != nil {
		return model.Product{}, err
	}
	defer rows.Close()

	var rowIDs []uint64
	for rows.Next() {
		var rid uint64
		if err := rows.Scan(&rid); err != nil {
			return model.Product{}, err
		}
		rowIDs = append(rowIDs, rid)
	}
	if err := rows.Err(); err != nil {
		return model.Product{}, err
	}
	if dosageIndex < 0 || dosageIndex >= len(rowIDs) {
		return model.Product{}, fmt.Errorf("%w: dosage index %d out of range", ErrConflict, dosageIndex)
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE product_dosages SET price_usd=?, price_eur=? WHERE id=?",
		priceUSD, priceEUR, rowIDs[dosageIndex])
	if err != nil {
		return model.Product{}, err
	}
	// touch the parent row so updated_at reflects the price change
	_, _ = r.DB.ExecContext(ctx, "UPDATE products SET updated_at=NOW() WHERE id=?", id)
	return r.GetByID(ctx, id)
}

// UpdateStock flips the in-stock flag and returns the stored product.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, inStock bool) (model.Product, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE products SET in_stock=? WHERE id=?", inStock, id)
	if err != nil {
		return model.Product{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// either absent or unchanged; distinguish via lookup
		if ok, err := r.Exists(ctx, id); err != nil {
			return model.Product{}, err
		} else if !ok {
			return model.Product{}, ErrNotFound
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a product; dosage options cascade.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// BulkUpdate is one accepted row of a CSV import.
type BulkUpdate struct {
	ID       string
	PriceUSD *float64
	PriceEUR *float64
	InStock  *bool
}

// ApplyBulk commits a batch of validated updates as a single transaction.
// Price fields apply to the first dosage option only; this is a deliberate
// simplification of the CSV format, which has no dosage column.
func (r *ProductRepo) ApplyBulk(ctx context.Context, updates []BulkUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range updates {
		if u.PriceUSD != nil || u.PriceEUR != nil {
			var firstSize string
			err := tx.QueryRowContext(ctx,
				"SELECT size FROM product_dosages WHERE product_id=? ORDER BY id LIMIT 1",
				u.ID).Scan(&firstSize)
			if err != nil && err != sql.ErrNoRows {
				return err
			}
			if err == nil {
				_, err = tx.ExecContext(ctx,
					"UPDATE product_dosages SET price_usd=COALESCE(?, price_usd), price_eur=COALESCE(?, price_eur) WHERE product_id=? AND size=?",
					u.PriceUSD, u.PriceEUR, u.ID, firstSize)
				if err != nil {
					return err
				}
			}
		}
		if u.InStock != nil {
			if _, err := tx.ExecContext(ctx,
				"UPDATE products SET in_stock=? WHERE id=?", *u.InStock, u.ID); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// scanProduct works for both *sql.Row and *sql.Rows.
func scanProduct(s interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Category, &p.ProductType,
		&p.Disclaimer, &p.Image, &p.SupplementFacts, &p.InStock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
