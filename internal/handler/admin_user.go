package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/purefire/storefront-api/internal/config"
	"github.com/purefire/storefront-api/internal/middleware"
	"github.com/purefire/storefront-api/internal/model"
	"github.com/purefire/storefront-api/internal/repository"
)

// UserHandler manages back-office accounts.  Every mutation refuses to
// target the caller's own account: an admin cannot demote, deactivate or
// delete themselves, which guarantees at least one working admin remains.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.AdminUserRepo
	Audit middleware.AuditRecorder
}

func NewUserHandler(cfg config.Config, u *repository.AdminUserRepo, audit middleware.AuditRecorder) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u, Audit: audit}
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list users"})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

type createUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and full_name required"})
	}
	if len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	if req.Role == "" {
		req.Role = model.RoleContentEditor
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleContentEditor {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Email, req.Password, req.FullName, req.Role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}
	middleware.RecordManual(c, h.Audit, "user.create", "admin_user", req.Email,
		echo.Map{"role": req.Role, "full_name": req.FullName})

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

type updateRoleReq struct {
	Role string `json:"role"`
}

func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == middleware.AdminID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot change your own role"})
	}
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Role != model.RoleAdmin && req.Role != model.RoleContentEditor {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.UpdateRole(ctx, id, req.Role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
	}
	middleware.RecordManual(c, h.Audit, "user.role_change", "admin_user",
		strconv.FormatUint(id, 10), echo.Map{"role": req.Role})
	return c.JSON(http.StatusOK, echo.Map{"message": "role updated"})
}

func (h *UserHandler) ToggleActive(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == middleware.AdminID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot deactivate your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.ToggleActive(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to toggle user"})
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load user"})
	}
	middleware.RecordManual(c, h.Audit, "user.toggle_active", "admin_user",
		strconv.FormatUint(id, 10), echo.Map{"is_active": u.IsActive})
	return c.JSON(http.StatusOK, echo.Map{"user": u})
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, err := userIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
	}
	if id == middleware.AdminID(c) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cannot delete your own account"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	middleware.RecordManual(c, h.Audit, "user.delete", "admin_user",
		strconv.FormatUint(id, 10), nil)
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}

func userIDParam(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}
