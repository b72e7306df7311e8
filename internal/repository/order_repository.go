package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/purefire/storefront-api/internal/model"
)

// OrderRepo persists orders, their line items and shipping addresses.
// Creation is transactional: a failure partway leaves no partial order.
type OrderRepo struct{ DB *sql.DB }

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{DB: db} }

// NewAddress is a shipping address submitted with an order.
type NewAddress struct {
	Line1      string  `json:"address_line1"`
	Line2      *string `json:"address_line2"`
	City       string  `json:"city"`
	State      *string `json:"state"`
	PostalCode string  `json:"postal_code"`
	Country    string  `json:"country"`
}

// NewOrderItem is one cart line as submitted by the caller.  Prices are
// taken as-is: the capture step records what the client computed and does
// not re-derive totals from the catalog.
type NewOrderItem struct {
	ProductID   string
	ProductName string
	Dosage      string
	Quantity    int
	PriceUSD    float64
	PriceEUR    float64
}

// NewOrder carries everything needed to capture an order atomically.
type NewOrder struct {
	AccountID   *uint64
	OrderNumber string
	SubtotalUSD float64
	SubtotalEUR float64
	ShippingUSD float64
	ShippingEUR float64
	TaxUSD      float64
	TaxEUR      float64
	TotalUSD    float64
	TotalEUR    float64
	Currency    string
	Notes       *string
	Address     *NewAddress
	Items       []NewOrderItem
}

// Create inserts address (when present and owned), order, and items in one
// transaction and returns the new order id.
func (r *OrderRepo) Create(ctx context.Context, o NewOrder) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	var addressID *uint64
	// Addresses belong to accounts, so guests get their order without a
	// stored address row.
	if o.Address != nil && o.AccountID != nil {
		res, err := tx.ExecContext(ctx,
			"INSERT INTO addresses (account_id, address_line1, address_line2, city, state, postal_code, country) VALUES (?,?,?,?,?,?,?)",
			*o.AccountID, o.Address.Line1, o.Address.Line2, o.Address.City, o.Address.State, o.Address.PostalCode, o.Address.Country)
		if err != nil {
			return 0, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return 0, err
		}
		uid := uint64(id)
		addressID = &uid
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO orders (
			account_id, order_number, status,
			subtotal_usd, subtotal_eur,
			shipping_usd, shipping_eur,
			tax_usd, tax_eur,
			total_usd, total_eur,
			currency, shipping_address_id, notes
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		o.AccountID, o.OrderNumber, "pending",
		o.SubtotalUSD, o.SubtotalEUR,
		o.ShippingUSD, o.ShippingEUR,
		o.TaxUSD, o.TaxEUR,
		o.TotalUSD, o.TotalEUR,
		o.Currency, addressID, o.Notes)
	if err != nil {
		return 0, err
	}
	orderID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, it := range o.Items {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO order_items (order_id, product_id, product_name, dosage, quantity, price_usd, price_eur) VALUES (?,?,?,?,?,?,?)",
			orderID, it.ProductID, it.ProductName, it.Dosage, it.Quantity, it.PriceUSD, it.PriceEUR)
		if err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(orderID), nil
}

const orderColumns = `o.id, o.account_id, o.order_number, o.status,
	o.subtotal_usd, o.subtotal_eur, o.shipping_usd, o.shipping_eur,
	o.tax_usd, o.tax_eur, o.total_usd, o.total_eur,
	o.currency, o.payment_intent_id, o.payment_status,
	o.shipping_address_id, o.notes, o.created_at, o.updated_at`

// ListByAccount returns an account's orders, newest first, with items and
// address attached.
func (r *OrderRepo) ListByAccount(ctx context.Context, accountID uint64) ([]model.Order, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+orderColumns+" FROM orders o WHERE o.account_id=? ORDER BY o.created_at DESC",
		accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.attach(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

// GetByNumber fetches one order by its customer-facing number.
func (r *OrderRepo) GetByNumber(ctx context.Context, orderNumber string) (model.Order, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+orderColumns+" FROM orders o WHERE o.order_number=? LIMIT 1", orderNumber)
	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return model.Order{}, ErrNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	if err := r.attach(ctx, &o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// UpdateStatus patches status and/or payment fields of an order.
func (r *OrderRepo) UpdateStatus(ctx context.Context, orderNumber string, status, paymentIntentID, paymentStatus *string) error {
	sets := []string{}
	args := []any{}
	if status != nil {
		sets = append(sets, "status=?")
		args = append(args, *status)
	}
	if paymentIntentID != nil {
		sets = append(sets, "payment_intent_id=?")
		args = append(args, *paymentIntentID)
	}
	if paymentStatus != nil {
		sets = append(sets, "payment_status=?")
		args = append(args, *paymentStatus)
	}
	if len(sets) == 0 {
		return nil
	}
	args = append(args, orderNumber)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE orders SET "+strings.Join(sets, ", ")+" WHERE order_number=?", args...)
	if err != nil {
		return err
	}
	// RowsAffected is 0 both for a missing order and a no-op update, so
	// check presence explicitly before reporting not-found.
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		err := r.DB.QueryRowContext(ctx,
			"SELECT 1 FROM orders WHERE order_number=? LIMIT 1", orderNumber).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (r *OrderRepo) attach(ctx context.Context, o *model.Order) error {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, order_id, product_id, product_name, dosage, quantity, price_usd, price_eur FROM order_items WHERE order_id=? ORDER BY id",
		o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	o.Items = []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Dosage, &it.Quantity, &it.PriceUSD, &it.PriceEUR); err != nil {
			return err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if o.ShippingAddressID != nil {
		var a model.Address
		err := r.DB.QueryRowContext(ctx,
			"SELECT id, account_id, address_line1, address_line2, city, state, postal_code, country FROM addresses WHERE id=? LIMIT 1",
			*o.ShippingAddressID).Scan(&a.ID, &a.AccountID, &a.Line1, &a.Line2, &a.City, &a.State, &a.PostalCode, &a.Country)
		if err != nil && err != sql.ErrNoRows {
			return err
		}
		if err == nil {
			o.Address = &a
		}
	}
	return nil
}

func scanOrder(s interface{ Scan(...any) error }) (model.Order, error) {
	var o model.Order
	err := s.Scan(&o.ID, &o.AccountID, &o.OrderNumber, &o.Status,
		&o.SubtotalUSD, &o.SubtotalEUR, &o.ShippingUSD, &o.ShippingEUR,
		&o.TaxUSD, &o.TaxEUR, &o.TotalUSD, &o.TotalEUR,
		&o.Currency, &o.PaymentIntentID, &o.PaymentStatus,
		&o.ShippingAddressID, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}
