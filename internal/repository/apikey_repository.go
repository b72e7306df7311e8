package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/utils"
)

// APIKeyRepo persists machine credentials for the AI read surface.  Keys
// are stored as SHA-256 digests and looked up by digest, so verification is
// a single indexed query.
type APIKeyRepo struct{ DB *sql.DB }

func NewAPIKeyRepo(db *sql.DB) *APIKeyRepo { return &APIKeyRepo{DB: db} }

// keySecretPrefix marks secrets as belonging to this service so leaked keys
// are recognizable in secret scanners.
const keySecretPrefix = "pfk_"

// GenerateSecret returns a fresh API key secret.  It is returned to the
// creator exactly once and never stored in plain form.
func GenerateSecret() (string, error) {
	raw, err := utils.RandomHex(32)
	if err != nil {
		return "", err
	}
	return keySecretPrefix + raw, nil
}

// Create stores the digest of a new key and returns its id.
func (r *APIKeyRepo) Create(ctx context.Context, secret, name string, permissions []string, createdBy uint64, expiresAt *time.Time) (uint64, error) {
	perms, err := json.Marshal(permissions)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO api_keys (key_hash, name, permissions, created_by, expires_at) VALUES (?,?,?,?,?)",
		utils.HashToken(secret), name, perms, createdBy, expiresAt)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Verify resolves a presented secret to its key record.  Revoked and
// expired keys fail verification identically so callers cannot distinguish
// them.  A successful verification updates last_used.
func (r *APIKeyRepo) Verify(ctx context.Context, secret string) (model.APIKey, error) {
	var (
		k     model.APIKey
		perms []byte
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, permissions, is_active, created_by, last_used, expires_at, created_at FROM api_keys WHERE key_hash=? LIMIT 1",
		utils.HashToken(secret)).Scan(
		&k.ID, &k.Name, &perms, &k.IsActive, &k.CreatedBy, &k.LastUsed, &k.ExpiresAt, &k.CreatedAt)
	if err == sql.ErrNoRows {
		return model.APIKey{}, ErrNotFound
	}
	if err != nil {
		return model.APIKey{}, err
	}
	if !k.Usable(time.Now().UTC()) {
		return model.APIKey{}, ErrNotFound
	}
	if err := json.Unmarshal(perms, &k.Permissions); err != nil {
		return model.APIKey{}, err
	}
	_, _ = r.DB.ExecContext(ctx, "UPDATE api_keys SET last_used=NOW() WHERE id=?", k.ID)
	return k, nil
}

// List returns all keys, newest first, without secrets (secrets are never
// reconstructible; only digests exist).
func (r *APIKeyRepo) List(ctx context.Context) ([]model.APIKey, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, name, permissions, is_active, created_by, last_used, expires_at, created_at FROM api_keys ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []model.APIKey{}
	for rows.Next() {
		var (
			k     model.APIKey
			perms []byte
		)
		if err := rows.Scan(&k.ID, &k.Name, &perms, &k.IsActive, &k.CreatedBy,
			&k.LastUsed, &k.ExpiresAt, &k.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(perms, &k.Permissions); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Revoke soft-disables a key.  The row stays for auditability.
func (r *APIKeyRepo) Revoke(ctx context.Context, id uint64) error {
	// RowsAffected would report 0 for an already-revoked key, so presence
	// is checked separately and re-revoking stays idempotent.
	var one int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM api_keys WHERE id=? LIMIT 1", id).Scan(&one); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	_, err := r.DB.ExecContext(ctx,
		"UPDATE api_keys SET is_active=0 WHERE id=?", id)
	return err
}

// Delete removes a key permanently.
func (r *APIKeyRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM api_keys WHERE id=?", id)
	if err != nil {
		return err
	}
	return mustAffect(res)
}
