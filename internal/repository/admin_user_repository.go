package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/utils"
)

// AdminUserRepo persists back-office users.
type AdminUserRepo struct{ DB *sql.DB }

func NewAdminUserRepo(db *sql.DB) *AdminUserRepo { return &AdminUserRepo{DB: db} }

const adminUserColumns = "id,email,password_hash,full_name,role,is_active,last_login,created_at,updated_at"

// Create inserts an admin user and returns its ID.
func (r *AdminUserRepo) Create(ctx context.Context, email, password, fullName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO admin_users (email, password_hash, full_name, role) VALUES (?,?,?,?)",
		email, hash, fullName, role)
	if err != nil {
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

// GetByEmail fetches an admin user by normalized email.
func (r *AdminUserRepo) GetByEmail(ctx context.Context, email string) (model.AdminUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.scanOne(ctx,
		"SELECT "+adminUserColumns+" FROM admin_users WHERE email=? LIMIT 1", email)
}

// GetByID fetches an admin user by id.
func (r *AdminUserRepo) GetByID(ctx context.Context, id uint64) (model.AdminUser, error) {
	return r.scanOne(ctx,
		"SELECT "+adminUserColumns+" FROM admin_users WHERE id=? LIMIT 1", id)
}

// List returns all admin users, newest last.
func (r *AdminUserRepo) List(ctx context.Context) ([]model.AdminUser, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+adminUserColumns+" FROM admin_users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.AdminUser{}
	for rows.Next() {
		var u model.AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
			&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// TouchLastLogin records a successful login.
func (r *AdminUserRepo) TouchLastLogin(ctx context.Context, id uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE admin_users SET last_login=NOW() WHERE id=?", id)
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *AdminUserRepo) UpdatePassword(ctx context.Context, id uint64, newPassword string, cost int) error {
	hash, err := utils.HashPassword(newPassword, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE admin_users SET password_hash=? WHERE id=?", hash, id)
	return err
}

// UpdateRole changes the role of a user.  Setting the same role again is a
// no-op, not an error, so presence is checked instead of RowsAffected.
func (r *AdminUserRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	var one int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM admin_users WHERE id=? LIMIT 1", id).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE admin_users SET role=? WHERE id=?", role, id)
	return err
}

// ToggleActive flips the is_active flag.
func (r *AdminUserRepo) ToggleActive(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE admin_users SET is_active = NOT is_active WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

// Delete removes a user permanently.  Deactivation is preferred; delete
// exists for operator cleanup of accounts created in error.
func (r *AdminUserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM admin_users WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}

func (r *AdminUserRepo) scanOne(ctx context.Context, q string, arg any) (model.AdminUser, error) {
	var u model.AdminUser
	err := r.DB.QueryRowContext(ctx, q, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Role,
		&u.IsActive, &u.LastLogin, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.AdminUser{}, ErrNotFound
	}
	return u, err
}

// mustAffect converts a zero-row update into ErrNotFound.
func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
