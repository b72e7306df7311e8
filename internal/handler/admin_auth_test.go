package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
	"github.com/purefire/storefront-api/internal/utils"
)

type stubRecorder struct{ entries []repository.Entry }

func (s *stubRecorder) Record(_ context.Context, e repository.Entry) error {
	s.entries = append(s.entries, e)
	return nil
}

type stubAdminUsers struct {
	user            model.AdminUser
	updatedPassword string
	updateErr       error
}

func (s *stubAdminUsers) GetByEmail(_ context.Context, email string) (model.AdminUser, error) {
	if email != s.user.Email {
		return model.AdminUser{}, repository.ErrNotFound
	}
	return s.user, nil
}

func (s *stubAdminUsers) GetByID(_ context.Context, id uint64) (model.AdminUser, error) {
	if id != s.user.ID {
		return model.AdminUser{}, repository.ErrNotFound
	}
	return s.user, nil
}

func (s *stubAdminUsers) TouchLastLogin(context.Context, uint64) error { return nil }

func (s *stubAdminUsers) UpdatePassword(_ context.Context, _ uint64, newPassword string, _ int) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updatedPassword = newPassword
	return nil
}

type stubTokens struct {
	stored       []string
	revoked      []string
	revokedAll   []uint64
	revokeAllErr error
	validOwner   map[string]uint64
}

func (s *stubTokens) StoreRefresh(_ context.Context, _ uint64, tokenHash string, _ time.Time) error {
	s.stored = append(s.stored, tokenHash)
	return nil
}

func (s *stubTokens) ValidateRefresh(_ context.Context, tokenHash string) (uint64, error) {
	if id, ok := s.validOwner[tokenHash]; ok {
		return id, nil
	}
	return 0, repository.ErrNotFound
}

func (s *stubTokens) RevokeByHash(_ context.Context, tokenHash string) error {
	s.revoked = append(s.revoked, tokenHash)
	return nil
}

func (s *stubTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	if s.revokeAllErr != nil {
		return s.revokeAllErr
	}
	s.revokedAll = append(s.revokedAll, userID)
	return nil
}

func adminFixture(t *testing.T) model.AdminUser {
	t.Helper()
	hash, err := utils.HashPassword("old-password", 4)
	require.NoError(t, err)
	return model.AdminUser{
		ID:           1,
		Email:        "ops@purefire.test",
		PasswordHash: hash,
		FullName:     "Ops Admin",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
}

func TestChangePasswordRevokesAllSessions(t *testing.T) {
	users := &stubAdminUsers{user: adminFixture(t)}
	tokens := &stubTokens{}
	audit := &stubRecorder{}
	h := NewAdminAuthHandler(config.Config{BcryptCost: 4}, users, tokens, audit)

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/auth/change-password",
		`{"current_password":"old-password","new_password":"brand-new-secret"}`)
	c.Set("admin_id", uint64(1))

	require.NoError(t, h.ChangePassword(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "brand-new-secret", users.updatedPassword)
	assert.Equal(t, []uint64{1}, tokens.revokedAll)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "admin.password_change", audit.entries[0].Action)
}

func TestChangePasswordRevocationFailureSurfaces(t *testing.T) {
	users := &stubAdminUsers{user: adminFixture(t)}
	tokens := &stubTokens{revokeAllErr: errors.New("connection lost")}
	h := NewAdminAuthHandler(config.Config{BcryptCost: 4}, users, tokens, &stubRecorder{})

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/auth/change-password",
		`{"current_password":"old-password","new_password":"brand-new-secret"}`)
	c.Set("admin_id", uint64(1))

	require.NoError(t, h.ChangePassword(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "revoking existing sessions failed")
	assert.Empty(t, tokens.revokedAll)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	users := &stubAdminUsers{user: adminFixture(t)}
	tokens := &stubTokens{}
	h := NewAdminAuthHandler(config.Config{BcryptCost: 4}, users, tokens, &stubRecorder{})

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/auth/change-password",
		`{"current_password":"not-the-password","new_password":"brand-new-secret"}`)
	c.Set("admin_id", uint64(1))

	require.NoError(t, h.ChangePassword(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, users.updatedPassword)
	assert.Empty(t, tokens.revokedAll)
}

func TestRefreshRotatesToken(t *testing.T) {
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7}
	users := &stubAdminUsers{user: adminFixture(t)}

	old, err := utils.NewRefreshToken(cfg.JWTSecret, 1, 7)
	require.NoError(t, err)
	oldHash := utils.HashToken(old.Token)

	tokens := &stubTokens{validOwner: map[string]uint64{oldHash: 1}}
	h := NewAdminAuthHandler(cfg, users, tokens, &stubRecorder{})

	c, rec := jsonRequest(t, http.MethodPost, "/api/admin/auth/refresh",
		fmt.Sprintf(`{"refresh_token":%q}`, old.Token))

	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{oldHash}, tokens.revoked)
	require.Len(t, tokens.stored, 1)
	assert.NotEqual(t, oldHash, tokens.stored[0])
}
