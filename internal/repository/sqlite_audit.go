package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
)

const auditColumns = `id, plan_id, snapshot_id, requirement_set_id, computed_at,
		has_unsupported_rules, summary_json`

// SQLiteAuditRepo implements AuditStore using a SQLite database. It only
// ever inserts; there is no update path.
type SQLiteAuditRepo struct {
	db db.DBTX
}

func NewSQLiteAuditRepo(conn db.DBTX) *SQLiteAuditRepo {
	return &SQLiteAuditRepo{db: conn}
}

// Create inserts the audit row and one row per requirement result.
func (r *SQLiteAuditRepo) Create(ctx context.Context, a *domain.AuditRecord) error {
	summary, err := json.Marshal(a.Summary)
	if err != nil {
		return fmt.Errorf("encoding audit summary: %w", err)
	}
	query := `INSERT INTO degree_audits (` + auditColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		a.ID, a.PlanID, a.SnapshotID, a.RequirementSetID, formatTime(a.ComputedAt),
		boolToInt(a.HasUnsupportedRules), string(summary))
	if err != nil {
		return fmt.Errorf("inserting degree audit: %w", err)
	}

	reqQuery := `INSERT INTO degree_audit_requirements
		(id, audit_id, requirement_node_id, order_index, status, detail_json)
		VALUES (?, ?, ?, ?, ?, ?)`
	for i, req := range a.Requirements {
		detail, err := nullableJSON(req.Detail)
		if err != nil {
			return fmt.Errorf("encoding requirement detail: %w", err)
		}
		_, err = r.db.ExecContext(ctx, reqQuery,
			req.ID, a.ID, req.RequirementNodeID, i, string(req.Status), detail)
		if err != nil {
			return fmt.Errorf("inserting audit requirement: %w", err)
		}
	}
	return nil
}

func (r *SQLiteAuditRepo) GetByID(ctx context.Context, id string) (*domain.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM degree_audits WHERE id = ?`
	a, err := scanAudit(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		return nil, err
	}
	return r.withRequirements(ctx, a)
}

// Latest returns the most recently computed audit for the plan.
func (r *SQLiteAuditRepo) Latest(ctx context.Context, planID string) (*domain.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM degree_audits WHERE plan_id = ?
		ORDER BY computed_at DESC, rowid DESC LIMIT 1`
	a, err := scanAudit(r.db.QueryRowContext(ctx, query, planID).Scan)
	if err != nil {
		return nil, err
	}
	return r.withRequirements(ctx, a)
}

// ListByPlan returns every audit of the plan, newest first.
func (r *SQLiteAuditRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.AuditRecord, error) {
	query := `SELECT ` + auditColumns + ` FROM degree_audits WHERE plan_id = ?
		ORDER BY computed_at DESC, rowid DESC`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing degree audits: %w", err)
	}

	var audits []*domain.AuditRecord
	for rows.Next() {
		a, err := scanAudit(rows.Scan)
		if err != nil {
			rows.Close()
			return nil, err
		}
		audits = append(audits, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating degree audits: %w", err)
	}
	rows.Close()

	for _, a := range audits {
		if _, err := r.withRequirements(ctx, a); err != nil {
			return nil, err
		}
	}
	return audits, nil
}

func (r *SQLiteAuditRepo) withRequirements(ctx context.Context, a *domain.AuditRecord) (*domain.AuditRecord, error) {
	query := `SELECT id, requirement_node_id, status, detail_json FROM degree_audit_requirements
		WHERE audit_id = ? ORDER BY order_index ASC`
	rows, err := r.db.QueryContext(ctx, query, a.ID)
	if err != nil {
		return nil, fmt.Errorf("listing audit requirements: %w", err)
	}
	defer rows.Close()

	a.Requirements = nil
	for rows.Next() {
		req := domain.RequirementResult{AuditID: a.ID}
		var status string
		var detail sql.NullString
		if err := rows.Scan(&req.ID, &req.RequirementNodeID, &status, &detail); err != nil {
			return nil, fmt.Errorf("scanning audit requirement row: %w", err)
		}
		req.Status = domain.RequirementStatus(status)
		if detail.Valid && detail.String != "" {
			var d domain.RequirementDetail
			if err := json.Unmarshal([]byte(detail.String), &d); err != nil {
				return nil, fmt.Errorf("decoding requirement detail %s: %w", req.ID, err)
			}
			req.Detail = &d
		}
		a.Requirements = append(a.Requirements, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit requirements: %w", err)
	}
	return a, nil
}

func scanAudit(scan func(dest ...any) error) (*domain.AuditRecord, error) {
	var a domain.AuditRecord
	var computedAt, summary string
	var unsupported int
	err := scan(&a.ID, &a.PlanID, &a.SnapshotID, &a.RequirementSetID, &computedAt, &unsupported, &summary)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("degree audit: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning degree audit: %w", err)
	}
	a.HasUnsupportedRules = intToBool(unsupported)
	if a.ComputedAt, err = parseTime("computed_at", computedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &a.Summary); err != nil {
		return nil, fmt.Errorf("decoding audit summary %s: %w", a.ID, err)
	}
	return &a, nil
}
