package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/purefire/storefront-api/internal/model"
)

// AuditRepo appends and queries the immutable audit trail.  There are no
// update or delete operations on purpose.
type AuditRepo struct{ DB *sql.DB }

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{DB: db} }

// Entry is what callers supply when recording a mutation.
type Entry struct {
	UserID     uint64
	UserEmail  string
	Action     string
	EntityType string
	EntityID   string
	Changes    any // marshaled to JSON; may already be json.RawMessage
	IPAddress  string
	UserAgent  string
}

// Record appends one audit log row.
func (r *AuditRepo) Record(ctx context.Context, e Entry) error {
	var changes []byte
	switch v := e.Changes.(type) {
	case nil:
	case json.RawMessage:
		changes = v
	case []byte:
		changes = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		changes = b
	}
	var ip, ua *string
	if e.IPAddress != "" {
		ip = &e.IPAddress
	}
	if e.UserAgent != "" {
		ua = &e.UserAgent
	}
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO audit_logs (user_id, user_email, action, entity_type, entity_id, changes, ip_address, user_agent) VALUES (?,?,?,?,?,?,?,?)",
		e.UserID, e.UserEmail, e.Action, e.EntityType, e.EntityID, changes, ip, ua)
	return err
}

// Filter narrows List results.  Zero values mean "no constraint".
type Filter struct {
	UserID     uint64
	EntityType string
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
	Offset     int
}

const auditColumns = "id, user_id, user_email, action, entity_type, entity_id, changes, ip_address, user_agent, created_at"

// List returns audit entries newest first, honoring the filter.
func (r *AuditRepo) List(ctx context.Context, f Filter) ([]model.AuditLog, error) {
	var (
		conds []string
		args  []any
	)
	q := "SELECT " + auditColumns + " FROM audit_logs"
	if f.UserID != 0 {
		conds = append(conds, "user_id=?")
		args = append(args, f.UserID)
	}
	if f.EntityType != "" {
		conds = append(conds, "entity_type=?")
		args = append(args, f.EntityType)
	}
	if f.StartDate != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, *f.StartDate)
	}
	if f.EndDate != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, *f.EndDate)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 100
	}
	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, f.Offset)

	return r.queryLogs(ctx, q, args...)
}

// FindByEntity returns the full history of one entity, newest first.
func (r *AuditRepo) FindByEntity(ctx context.Context, entityType, entityID string) ([]model.AuditLog, error) {
	return r.queryLogs(ctx,
		"SELECT "+auditColumns+" FROM audit_logs WHERE entity_type=? AND entity_id=? ORDER BY created_at DESC",
		entityType, entityID)
}

// Stats aggregates total volume, last-7-day activity by action, and the ten
// most active actors of the last 30 days.
func (r *AuditRepo) Stats(ctx context.Context) (model.AuditStats, error) {
	var stats model.AuditStats
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM audit_logs").Scan(&stats.TotalLogs); err != nil {
		return stats, err
	}

	rows, err := r.DB.QueryContext(ctx,
		"SELECT action, COUNT(*) FROM audit_logs WHERE created_at >= NOW() - INTERVAL 7 DAY GROUP BY action")
	if err != nil {
		return stats, err
	}
	defer rows.Close()
	stats.RecentActivity = []model.ActionCount{}
	for rows.Next() {
		var ac model.ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count); err != nil {
			return stats, err
		}
		stats.RecentActivity = append(stats.RecentActivity, ac)
	}
	if err := rows.Err(); err != nil {
		return stats, err
	}

	rows2, err := r.DB.QueryContext(ctx,
		"SELECT user_email, COUNT(*) AS c FROM audit_logs WHERE created_at >= NOW() - INTERVAL 30 DAY GROUP BY user_email ORDER BY c DESC LIMIT 10")
	if err != nil {
		return stats, err
	}
	defer rows2.Close()
	stats.TopUsers = []model.ActorCount{}
	for rows2.Next() {
		var uc model.ActorCount
		if err := rows2.Scan(&uc.UserEmail, &uc.Count); err != nil {
			return stats, err
		}
		stats.TopUsers = append(stats.TopUsers, uc)
	}
	return stats, rows2.Err()
}

func (r *AuditRepo) queryLogs(ctx context.Context, q string, args ...any) ([]model.AuditLog, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []model.AuditLog{}
	for rows.Next() {
		var (
			l       model.AuditLog
			changes sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.UserID, &l.UserEmail, &l.Action, &l.EntityType,
			&l.EntityID, &changes, &l.IPAddress, &l.UserAgent, &l.CreatedAt); err != nil {
			return nil, err
		}
		if changes.Valid {
			l.Changes = json.RawMessage(changes.String)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
