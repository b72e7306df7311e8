package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
	"github.com/purefire/storefront-api/internal/utils"
)

// AdminUserStore is the slice of the admin user repository the token flow
// needs.  *repository.AdminUserRepo satisfies it; tests substitute a stub.
type AdminUserStore interface {
	GetByEmail(ctx context.Context, email string) (model.AdminUser, error)
	GetByID(ctx context.Context, id uint64) (model.AdminUser, error)
	TouchLastLogin(ctx context.Context, id uint64) error
	UpdatePassword(ctx context.Context, id uint64, newPassword string, cost int) error
}

// RefreshTokenStore persists refresh token hashes.  *repository.TokenRepo
// satisfies it.
type RefreshTokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (uint64, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AdminAuthHandler implements the back-office token flow: short-lived access
// JWTs paired with longer-lived refresh tokens whose hashes live in the
// database so they can be revoked server side.
type AdminAuthHandler struct {
	Cfg    config.Config
	Users  AdminUserStore
	Tokens RefreshTokenStore
	Audit  middleware.AuditRecorder
}

func NewAdminAuthHandler(cfg config.Config, u AdminUserStore, t RefreshTokenStore, audit middleware.AuditRecorder) *AdminAuthHandler {
	return &AdminAuthHandler{Cfg: cfg, Users: u, Tokens: t, Audit: audit}
}

type adminLoginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type tokenPairResp struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Login verifies credentials against the admin_users table and issues a
// token pair.  Inactive accounts authenticate like unknown ones.
func (h *AdminAuthHandler) Login(c echo.Context) error {
	var req adminLoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	pair, err := h.issuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue tokens"})
	}
	_ = h.Users.TouchLastLogin(ctx, u.ID)
	middleware.RecordManual(c, h.Audit, "admin.login", "admin_user", u.Email, nil)

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"expires_at":    pair.ExpiresAt,
		"user": echo.Map{
			"id":        u.ID,
			"email":     u.Email,
			"full_name": u.FullName,
			"role":      u.Role,
		},
	})
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Refresh rotates a token pair.  The presented refresh token must verify as
// a JWT and its hash must still be live in the database; the old token is
// revoked so each refresh token works exactly once.
func (h *AdminAuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	claims, err := utils.ParseToken(h.Cfg.JWTSecret, req.RefreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hash := utils.HashToken(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil || userID != claims.UserID {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil || !u.IsActive {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}

	if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to rotate token"})
	}
	pair, err := h.issuePair(ctx, u.ID, u.Email, u.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to issue tokens"})
	}
	return c.JSON(http.StatusOK, pair)
}

// Logout revokes the presented refresh token.  Idempotent.
func (h *AdminAuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	_ = h.Tokens.RevokeByHash(ctx, utils.HashToken(req.RefreshToken))
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated admin user.
func (h *AdminAuthHandler) Me(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	u, err := h.Users.GetByID(ctx, middleware.AdminID(c))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every outstanding refresh token for the user.
func (h *AdminAuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current_password and new_password required"})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must be at least 8 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id := middleware.AdminID(c)
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.CurrentPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "current password is incorrect"})
	}
	if err := h.Users.UpdatePassword(ctx, id, req.NewPassword, h.Cfg.BcryptCost); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update password"})
	}
	// The new password is in place, but until every outstanding refresh
	// token is revoked the change has not actually locked anyone out.
	if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "password updated but revoking existing sessions failed; retry the change"})
	}
	middleware.RecordManual(c, h.Audit, "admin.password_change", "admin_user", u.Email, nil)

	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}

func (h *AdminAuthHandler) issuePair(ctx context.Context, id uint64, email, role string) (tokenPairResp, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, id, email, role, h.Cfg.AccessTTLMin)
	if err != nil {
		return tokenPairResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.JWTSecret, id, h.Cfg.RefreshTTLDays)
	if err != nil {
		return tokenPairResp{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, id, utils.HashToken(refresh.Token), refresh.Exp); err != nil {
		return tokenPairResp{}, err
	}
	return tokenPairResp{AccessToken: access.Token, RefreshToken: refresh.Token, ExpiresAt: access.Exp}, nil
}
