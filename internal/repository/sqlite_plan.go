package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
)

// planColumns is the canonical SELECT column list for degree_plans.
const planColumns = `id, user_id, program_version_id, name, pinned_snapshot_id,
		pinned_requirement_set_id, certification_state, created_at, updated_at`

// SQLitePlanRepo implements PlanStore using a SQLite database.
type SQLitePlanRepo struct {
	db db.DBTX
}

func NewSQLitePlanRepo(conn db.DBTX) *SQLitePlanRepo {
	return &SQLitePlanRepo{db: conn}
}

func (r *SQLitePlanRepo) Create(ctx context.Context, p *domain.DegreePlan) error {
	query := `INSERT INTO degree_plans (` + planColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.ProgramVersionID,
		p.Name,
		p.PinnedSnapshotID,
		p.PinnedRequirementSetID,
		string(p.CertificationState),
		formatTime(p.CreatedAt),
		formatTime(p.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting degree plan: %w", err)
	}
	return nil
}

func (r *SQLitePlanRepo) GetByID(ctx context.Context, id string) (*domain.DegreePlan, error) {
	query := `SELECT ` + planColumns + ` FROM degree_plans WHERE id = ?`
	var p domain.DegreePlan
	var state, createdAt, updatedAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.UserID, &p.ProgramVersionID, &p.Name, &p.PinnedSnapshotID,
		&p.PinnedRequirementSetID, &state, &createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("degree plan %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning degree plan: %w", err)
	}
	p.CertificationState = domain.CertificationState(state)
	if p.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateState persists the plan's certification state. The pinned snapshot
// and requirement set are never rewritten.
func (r *SQLitePlanRepo) UpdateState(ctx context.Context, p *domain.DegreePlan) error {
	query := `UPDATE degree_plans SET certification_state = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, string(p.CertificationState), formatTime(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("updating degree plan state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking degree plan update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("degree plan %s: %w", p.ID, ErrNotFound)
	}
	return nil
}
