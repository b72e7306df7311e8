package model

import "time"

// Permissions an API key may carry.  PermAll is a wildcard granting every
// permission.
const (
    PermAITrain      = "ai:train"
    PermAIQuery      = "ai:query"
    PermProductsRead = "products:read"
    PermAll          = "*"
)

// ValidPermissions lists every permission accepted at key creation time.
var ValidPermissions = []string{PermAITrain, PermAIQuery, PermProductsRead, PermAll}

// APIKey is a machine credential for external AI consumers.  The secret is
// shown to the creator exactly once; only its SHA-256 digest is stored, so
// a stolen database cannot be replayed against the API.
type APIKey struct {
    ID          uint64     `json:"id"`          // api_keys.id
    Name        string     `json:"name"`        // api_keys.name
    Permissions []string   `json:"permissions"` // api_keys.permissions (JSON column)
    IsActive    bool       `json:"is_active"`   // api_keys.is_active
    CreatedBy   uint64     `json:"created_by"`  // api_keys.created_by
    LastUsed    *time.Time `json:"last_used"`   // api_keys.last_used (nullable)
    ExpiresAt   *time.Time `json:"expires_at"`  // api_keys.expires_at (nullable)
    CreatedAt   time.Time  `json:"created_at"`  // api_keys.created_at
}

// Usable reports whether the key can authenticate at the given instant: it
// must not be revoked and, when an expiry is set, must not be past it.
func (k *APIKey) Usable(now time.Time) bool {
    if !k.IsActive {
        return false
    }
    if k.ExpiresAt != nil && now.After(*k.ExpiresAt) {
        return false
    }
    return true
}

// HasPermission reports whether the key grants the given permission, either
// exactly or through the wildcard.
func (k *APIKey) HasPermission(perm string) bool {
    for _, p := range k.Permissions {
        if p == perm || p == PermAll {
            return true
        }
    }
    return false
}
