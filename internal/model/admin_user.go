package model

import "time"

// Admin roles.  The role gates which catalog fields a user may mutate:
// content editors can edit descriptions and stock, only admins touch
// prices, user accounts and API keys.
const (
    RoleAdmin         = "admin"
    RoleContentEditor = "content_editor"
)

// AdminUser represents a back-office user as stored in the `admin_users`
// table.  Deactivation (IsActive=false) is the preferred way to retire an
// account since it preserves the audit history; hard delete is also exposed.
//
// Fields:
//  ID           – primary key identifier.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password (never serialized).
//  FullName     – display name.
//  Role         – admin or content_editor.
//  IsActive     – whether the account may authenticate.
//  LastLogin    – time of the most recent successful login (null before first).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type AdminUser struct {
    ID           uint64     `json:"id"`         // admin_users.id
    Email        string     `json:"email"`      // admin_users.email
    PasswordHash string     `json:"-"`          // admin_users.password_hash
    FullName     string     `json:"full_name"`  // admin_users.full_name
    Role         string     `json:"role"`       // admin_users.role
    IsActive     bool       `json:"is_active"`  // admin_users.is_active
    LastLogin    *time.Time `json:"last_login"` // admin_users.last_login (nullable)
    CreatedAt    time.Time  `json:"created_at"` // admin_users.created_at
    UpdatedAt    time.Time  `json:"updated_at"` // admin_users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each refresh
// token belongs to an admin user and carries metadata for expiry and
// revocation.  The plain token is not stored; only its SHA-256 hash.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
