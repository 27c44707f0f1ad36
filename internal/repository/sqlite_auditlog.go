package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
)

// SQLiteAuditLogRepo implements AuditLogStore using a SQLite database.
type SQLiteAuditLogRepo struct {
	db db.DBTX
}

func NewSQLiteAuditLogRepo(conn db.DBTX) *SQLiteAuditLogRepo {
	return &SQLiteAuditLogRepo{db: conn}
}

func (r *SQLiteAuditLogRepo) Append(ctx context.Context, e *domain.AuditLogEntry) error {
	meta := e.Meta
	if meta == nil {
		meta = map[string]string{}
	}
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding audit log meta: %w", err)
	}
	query := `INSERT INTO audit_log (id, actor_user_id, action, resource_type, resource_id, meta_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.ActorUserID, string(e.Action), e.ResourceType, e.ResourceID, string(payload), formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting audit log entry: %w", err)
	}
	return nil
}

// ListByResource returns the resource's entries in the order they were written.
func (r *SQLiteAuditLogRepo) ListByResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLogEntry, error) {
	query := `SELECT id, actor_user_id, action, resource_type, resource_id, meta_json, created_at
		FROM audit_log WHERE resource_type = ? AND resource_id = ? ORDER BY created_at ASC, rowid ASC`
	rows, err := r.db.QueryContext(ctx, query, resourceType, resourceID)
	if err != nil {
		return nil, fmt.Errorf("listing audit log: %w", err)
	}
	defer rows.Close()

	var entries []*domain.AuditLogEntry
	for rows.Next() {
		var e domain.AuditLogEntry
		var action, meta, createdAt string
		if err := rows.Scan(&e.ID, &e.ActorUserID, &action, &e.ResourceType, &e.ResourceID, &meta, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning audit log row: %w", err)
		}
		e.Action = domain.AuditAction(action)
		if err := json.Unmarshal([]byte(meta), &e.Meta); err != nil {
			return nil, fmt.Errorf("decoding audit log meta %s: %w", e.ID, err)
		}
		if e.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit log: %w", err)
	}
	return entries, nil
}
