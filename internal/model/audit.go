package model

import (
    "encoding/json"
    "time"
)

// AuditLog is an immutable record of one accepted mutation.  Rows are only
// ever inserted; nothing in the system updates or deletes them.  Changes is
// raw JSON because its shape varies per action (request capture for the
// declarative hook, explicit before/after diffs for imperative logging).
type AuditLog struct {
    ID         uint64          `json:"id"`          // audit_logs.id
    UserID     uint64          `json:"user_id"`     // audit_logs.user_id
    UserEmail  string          `json:"user_email"`  // audit_logs.user_email
    Action     string          `json:"action"`      // audit_logs.action
    EntityType string          `json:"entity_type"` // audit_logs.entity_type
    EntityID   string          `json:"entity_id"`   // audit_logs.entity_id
    Changes    json.RawMessage `json:"changes"`     // audit_logs.changes
    IPAddress  *string         `json:"ip_address"`  // audit_logs.ip_address (nullable)
    UserAgent  *string         `json:"user_agent"`  // audit_logs.user_agent (nullable)
    CreatedAt  time.Time       `json:"created_at"`  // audit_logs.created_at
}

// ActionCount is one row of the 7-day activity summary.
type ActionCount struct {
    Action string `json:"action"`
    Count  int    `json:"count"`
}

// ActorCount is one row of the 30-day top-actors summary.
type ActorCount struct {
    UserEmail string `json:"user_email"`
    Count     int    `json:"count"`
}

// AuditStats is the aggregate view served by the audit stats endpoint.
type AuditStats struct {
    TotalLogs      int           `json:"total_logs"`
    RecentActivity []ActionCount `json:"recent_activity"`
    TopUsers       []ActorCount  `json:"top_users"`
}
