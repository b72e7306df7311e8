package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/utils"
)

// AccountRepo persists storefront customer accounts.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts an account and returns its ID.
func (r *AccountRepo) Create(ctx context.Context, email, password, firstName, lastName string, phone *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (email, password_hash, first_name, last_name, phone) VALUES (?,?,?,?,?)",
		email, hash, firstName, lastName, phone)
	if err != nil {
		// MySQL error 1062: duplicate entry for unique key
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches an account by normalized email.
func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx,
		"SELECT id,email,password_hash,first_name,last_name,phone,created_at,updated_at FROM accounts WHERE email=? LIMIT 1",
		email)
}

// GetByID fetches an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	return r.scanOne(ctx,
		"SELECT id,email,password_hash,first_name,last_name,phone,created_at,updated_at FROM accounts WHERE id=? LIMIT 1",
		id)
}

func (r *AccountRepo) scanOne(ctx context.Context, q string, arg any) (model.Account, error) {
	var a model.Account
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.Phone, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Account{}, ErrNotFound
	}
	return a, err
}
