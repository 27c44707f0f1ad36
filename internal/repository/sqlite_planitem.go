package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
)

// planItemColumns is the canonical SELECT column list for plan_items.
const planItemColumns = `id, plan_id, term_id, position, raw_input, canonical_code, course_id,
		status, completion_status, validation_reason, validation_meta, last_validated_at,
		created_at, updated_at`

// SQLitePlanItemRepo implements PlanItemStore using a SQLite database.
type SQLitePlanItemRepo struct {
	db db.DBTX
}

func NewSQLitePlanItemRepo(conn db.DBTX) *SQLitePlanItemRepo {
	return &SQLitePlanItemRepo{db: conn}
}

// Upsert inserts the item or overwrites the row with the same id.
// created_at is kept from the first insert.
func (r *SQLitePlanItemRepo) Upsert(ctx context.Context, item *domain.PlanItem) error {
	meta, err := nullableJSON(item.Meta)
	if err != nil {
		return fmt.Errorf("encoding validation meta: %w", err)
	}
	var reason interface{}
	if item.Reason != nil {
		reason = string(*item.Reason)
	}

	query := `INSERT INTO plan_items (` + planItemColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			term_id = excluded.term_id,
			position = excluded.position,
			raw_input = excluded.raw_input,
			canonical_code = excluded.canonical_code,
			course_id = excluded.course_id,
			status = excluded.status,
			completion_status = excluded.completion_status,
			validation_reason = excluded.validation_reason,
			validation_meta = excluded.validation_meta,
			last_validated_at = excluded.last_validated_at,
			updated_at = excluded.updated_at`
	_, err = r.db.ExecContext(ctx, query,
		item.ID,
		item.PlanID,
		item.TermID,
		item.Position,
		item.RawInput,
		nullableString(item.CanonicalCode),
		nullableString(item.CourseID),
		string(item.Status),
		string(item.Completion),
		reason,
		meta,
		nullableTimeToString(item.LastValidatedAt),
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upserting plan item: %w", err)
	}
	return nil
}

func (r *SQLitePlanItemRepo) GetByID(ctx context.Context, id string) (*domain.PlanItem, error) {
	query := `SELECT ` + planItemColumns + ` FROM plan_items WHERE id = ?`
	return r.scanItem(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLitePlanItemRepo) GetBySlot(ctx context.Context, planID, termID string, position int) (*domain.PlanItem, error) {
	query := `SELECT ` + planItemColumns + ` FROM plan_items WHERE plan_id = ? AND term_id = ? AND position = ?`
	return r.scanItem(r.db.QueryRowContext(ctx, query, planID, termID, position))
}

// ListByPlan returns the plan's items ordered by term id then position.
// Chronological ordering needs the term rows and is left to callers.
func (r *SQLitePlanItemRepo) ListByPlan(ctx context.Context, planID string) ([]*domain.PlanItem, error) {
	query := `SELECT ` + planItemColumns + ` FROM plan_items WHERE plan_id = ? ORDER BY term_id, position`
	rows, err := r.db.QueryContext(ctx, query, planID)
	if err != nil {
		return nil, fmt.Errorf("listing plan items: %w", err)
	}
	defer rows.Close()

	var items []*domain.PlanItem
	for rows.Next() {
		item, err := r.scanFields(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating plan items: %w", err)
	}
	return items, nil
}

func (r *SQLitePlanItemRepo) CountByStatus(ctx context.Context, planID string, status domain.PlanItemStatus) (int, error) {
	query := `SELECT COUNT(*) FROM plan_items WHERE plan_id = ? AND status = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, query, planID, string(status)).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s plan items: %w", status, err)
	}
	return n, nil
}

func (r *SQLitePlanItemRepo) scanItem(row *sql.Row) (*domain.PlanItem, error) {
	return r.scanFields(row.Scan)
}

// scanFields scans one plan item through either *sql.Row.Scan or
// *sql.Rows.Scan.
func (r *SQLitePlanItemRepo) scanFields(scan func(dest ...any) error) (*domain.PlanItem, error) {
	var item domain.PlanItem
	var status, completion, createdAt, updatedAt string
	var canonicalCode, courseID, reason, meta, lastValidated sql.NullString

	err := scan(
		&item.ID, &item.PlanID, &item.TermID, &item.Position, &item.RawInput,
		&canonicalCode, &courseID, &status, &completion, &reason, &meta, &lastValidated,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("plan item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning plan item: %w", err)
	}

	item.CanonicalCode = stringPtr(canonicalCode)
	item.CourseID = stringPtr(courseID)
	item.Status = domain.PlanItemStatus(status)
	item.Completion = domain.CompletionStatus(completion)
	if reason.Valid {
		v := domain.ValidationReason(reason.String)
		item.Reason = &v
	}
	if meta.Valid && meta.String != "" {
		var m domain.ValidationMeta
		if err := json.Unmarshal([]byte(meta.String), &m); err != nil {
			return nil, fmt.Errorf("decoding validation meta for item %s: %w", item.ID, err)
		}
		item.Meta = &m
	}
	item.LastValidatedAt = parseNullableTime(lastValidated)
	if item.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}
