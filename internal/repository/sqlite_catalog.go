package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/rules"
)

const (
	termColumns            = `id, snapshot_id, campus, code, year, season`
	courseColumns          = `id, snapshot_id, code, title, credits, active, category`
	requirementNodeColumns = `id, requirement_set_id, order_index, label, rule_json`
	programVersionColumns  = `id, program_id, snapshot_id, requirement_set_id, catalog_year, campus,
		effective_from, effective_to`
)

// SQLiteCatalogRepo implements CatalogReader and CatalogWriter using a SQLite database.
type SQLiteCatalogRepo struct {
	db db.DBTX
}

func NewSQLiteCatalogRepo(conn db.DBTX) *SQLiteCatalogRepo {
	return &SQLiteCatalogRepo{db: conn}
}

var (
	_ CatalogReader = (*SQLiteCatalogRepo)(nil)
	_ CatalogWriter = (*SQLiteCatalogRepo)(nil)
)

func (r *SQLiteCatalogRepo) CreateSnapshot(ctx context.Context, s *domain.CatalogSnapshot) error {
	query := `INSERT INTO catalog_snapshots (id, source, checksum, synced_at, created_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, s.ID, s.Source, s.Checksum, formatTime(s.SyncedAt), formatTime(s.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting catalog snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetSnapshot(ctx context.Context, id string) (*domain.CatalogSnapshot, error) {
	query := `SELECT id, source, checksum, synced_at, created_at FROM catalog_snapshots WHERE id = ?`
	var s domain.CatalogSnapshot
	var syncedAt, createdAt string
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Source, &s.Checksum, &syncedAt, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("catalog snapshot %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning catalog snapshot: %w", err)
	}
	if s.SyncedAt, err = parseTime("synced_at", syncedAt); err != nil {
		return nil, err
	}
	if s.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SQLiteCatalogRepo) CreateTerm(ctx context.Context, t *domain.Term) error {
	query := `INSERT INTO terms (` + termColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, t.ID, t.SnapshotID, t.Campus, t.Code, t.Year, string(t.Season))
	if err != nil {
		return fmt.Errorf("inserting term: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetTerm(ctx context.Context, snapshotID, termID string) (*domain.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms WHERE id = ? AND snapshot_id = ?`
	return scanTerm(r.db.QueryRowContext(ctx, query, termID, snapshotID))
}

// ListTerms returns the snapshot's terms in chronological order.
func (r *SQLiteCatalogRepo) ListTerms(ctx context.Context, snapshotID string) ([]*domain.Term, error) {
	query := `SELECT ` + termColumns + ` FROM terms WHERE snapshot_id = ?`
	rows, err := r.db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("listing terms: %w", err)
	}
	defer rows.Close()

	terms, err := scanTerms(rows)
	if err != nil {
		return nil, err
	}
	sortTermPtrs(terms)
	return terms, nil
}

func (r *SQLiteCatalogRepo) GetTermsByIDs(ctx context.Context, ids []string) (map[string]*domain.Term, error) {
	out := make(map[string]*domain.Term, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT ` + termColumns + ` FROM terms WHERE id IN (` + placeholders + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading terms by id: %w", err)
	}
	defer rows.Close()

	terms, err := scanTerms(rows)
	if err != nil {
		return nil, err
	}
	for _, t := range terms {
		out[t.ID] = t
	}
	return out, nil
}

func (r *SQLiteCatalogRepo) CreateCourse(ctx context.Context, c *domain.Course) error {
	query := `INSERT INTO courses (` + courseColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.SnapshotID, c.Code, c.Title, c.Credits, boolToInt(c.Active), c.Category)
	if err != nil {
		return fmt.Errorf("inserting course: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetCourseByCode(ctx context.Context, snapshotID, code string) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE snapshot_id = ? AND code = ?`
	return scanCourse(r.db.QueryRowContext(ctx, query, snapshotID, code))
}

func (r *SQLiteCatalogRepo) GetCourseByID(ctx context.Context, id string) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = ?`
	return scanCourse(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteCatalogRepo) CreateOffering(ctx context.Context, o *domain.CourseOffering) error {
	query := `INSERT INTO course_offerings (id, snapshot_id, course_id, term_id, offered)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, o.ID, o.SnapshotID, o.CourseID, o.TermID, boolToInt(o.Offered))
	if err != nil {
		return fmt.Errorf("inserting course offering: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetOffering(ctx context.Context, snapshotID, courseID, termID string) (*domain.CourseOffering, error) {
	query := `SELECT id, snapshot_id, course_id, term_id, offered FROM course_offerings
		WHERE snapshot_id = ? AND course_id = ? AND term_id = ?`
	var o domain.CourseOffering
	var offered int
	err := r.db.QueryRowContext(ctx, query, snapshotID, courseID, termID).
		Scan(&o.ID, &o.SnapshotID, &o.CourseID, &o.TermID, &offered)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("course offering: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning course offering: %w", err)
	}
	o.Offered = intToBool(offered)
	return &o, nil
}

func (r *SQLiteCatalogRepo) CreateCourseRule(ctx context.Context, cr *domain.CourseRule) error {
	payload, err := json.Marshal(cr.Rule)
	if err != nil {
		return fmt.Errorf("encoding course rule: %w", err)
	}
	query := `INSERT INTO course_rules (id, snapshot_id, course_id, kind, rule_json, schema_version, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		cr.ID, cr.SnapshotID, cr.CourseID, string(cr.Kind), string(payload), cr.Rule.SchemaVersion(), cr.Notes)
	if err != nil {
		return fmt.Errorf("inserting course rule: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetPrerequisiteRule(ctx context.Context, snapshotID, courseID string) (*domain.CourseRule, error) {
	query := `SELECT id, snapshot_id, course_id, kind, rule_json, notes FROM course_rules
		WHERE snapshot_id = ? AND course_id = ? AND kind = ?`
	var cr domain.CourseRule
	var kind, payload string
	err := r.db.QueryRowContext(ctx, query, snapshotID, courseID, string(domain.RulePrereq)).
		Scan(&cr.ID, &cr.SnapshotID, &cr.CourseID, &kind, &payload, &cr.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("prerequisite rule: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning course rule: %w", err)
	}
	cr.Kind = domain.RuleKind(kind)
	if cr.Rule, err = rules.Parse([]byte(payload)); err != nil {
		return nil, fmt.Errorf("parsing course rule %s: %w", cr.ID, err)
	}
	return &cr, nil
}

func (r *SQLiteCatalogRepo) CreateProgram(ctx context.Context, p *domain.Program) error {
	query := `INSERT INTO programs (id, code, name, campus) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, p.ID, p.Code, p.Name, p.Campus); err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetProgramByCode(ctx context.Context, code, campus string) (*domain.Program, error) {
	query := `SELECT id, code, name, campus FROM programs WHERE code = ? AND campus = ?`
	var p domain.Program
	err := r.db.QueryRowContext(ctx, query, code, campus).Scan(&p.ID, &p.Code, &p.Name, &p.Campus)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("program %s/%s: %w", code, campus, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning program: %w", err)
	}
	return &p, nil
}

func (r *SQLiteCatalogRepo) CreateRequirementSet(ctx context.Context, s *domain.RequirementSet) error {
	query := `INSERT INTO requirement_sets (id, snapshot_id, program_id, label) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, s.SnapshotID, s.ProgramID, s.Label); err != nil {
		return fmt.Errorf("inserting requirement set: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) CreateRequirementNode(ctx context.Context, n *domain.RequirementNode) error {
	payload, err := json.Marshal(n.Rule)
	if err != nil {
		return fmt.Errorf("encoding requirement rule: %w", err)
	}
	query := `INSERT INTO requirement_nodes (id, requirement_set_id, order_index, label, rule_json, schema_version)
		VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		n.ID, n.RequirementSetID, n.OrderIndex, n.Label, string(payload), n.Rule.SchemaVersion())
	if err != nil {
		return fmt.Errorf("inserting requirement node: %w", err)
	}
	return nil
}

// GetRequirementNodes returns the set's nodes in ascending order_index.
func (r *SQLiteCatalogRepo) GetRequirementNodes(ctx context.Context, requirementSetID string) ([]*domain.RequirementNode, error) {
	query := `SELECT ` + requirementNodeColumns + ` FROM requirement_nodes
		WHERE requirement_set_id = ? ORDER BY order_index ASC`
	rows, err := r.db.QueryContext(ctx, query, requirementSetID)
	if err != nil {
		return nil, fmt.Errorf("listing requirement nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*domain.RequirementNode
	for rows.Next() {
		var n domain.RequirementNode
		var payload string
		if err := rows.Scan(&n.ID, &n.RequirementSetID, &n.OrderIndex, &n.Label, &payload); err != nil {
			return nil, fmt.Errorf("scanning requirement node row: %w", err)
		}
		if n.Rule, err = rules.Parse([]byte(payload)); err != nil {
			return nil, fmt.Errorf("parsing requirement rule %s: %w", n.ID, err)
		}
		nodes = append(nodes, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requirement nodes: %w", err)
	}
	return nodes, nil
}

func (r *SQLiteCatalogRepo) CreateProgramVersion(ctx context.Context, v *domain.ProgramVersion) error {
	query := `INSERT INTO program_versions (` + programVersionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.ProgramID, v.SnapshotID, v.RequirementSetID, v.CatalogYear, v.Campus,
		formatTime(v.EffectiveFrom), nullableTimeToString(v.EffectiveTo))
	if err != nil {
		return fmt.Errorf("inserting program version: %w", err)
	}
	return nil
}

func (r *SQLiteCatalogRepo) GetProgramVersion(ctx context.Context, id string) (*domain.ProgramVersion, error) {
	query := `SELECT ` + programVersionColumns + ` FROM program_versions WHERE id = ?`
	var v domain.ProgramVersion
	var effectiveFrom string
	var effectiveTo sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.ProgramID, &v.SnapshotID, &v.RequirementSetID, &v.CatalogYear, &v.Campus,
		&effectiveFrom, &effectiveTo,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("program version %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scanning program version: %w", err)
	}
	if v.EffectiveFrom, err = parseTime("effective_from", effectiveFrom); err != nil {
		return nil, err
	}
	v.EffectiveTo = parseNullableTime(effectiveTo)
	return &v, nil
}

func scanTerm(row *sql.Row) (*domain.Term, error) {
	var t domain.Term
	var season string
	err := row.Scan(&t.ID, &t.SnapshotID, &t.Campus, &t.Code, &t.Year, &season)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("term: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning term: %w", err)
	}
	t.Season = domain.Season(season)
	return &t, nil
}

func scanTerms(rows *sql.Rows) ([]*domain.Term, error) {
	var terms []*domain.Term
	for rows.Next() {
		var t domain.Term
		var season string
		if err := rows.Scan(&t.ID, &t.SnapshotID, &t.Campus, &t.Code, &t.Year, &season); err != nil {
			return nil, fmt.Errorf("scanning term row: %w", err)
		}
		t.Season = domain.Season(season)
		terms = append(terms, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating terms: %w", err)
	}
	return terms, nil
}

func sortTermPtrs(terms []*domain.Term) {
	values := make([]domain.Term, len(terms))
	for i, t := range terms {
		values[i] = *t
	}
	domain.SortTerms(values)
	for i := range values {
		terms[i] = &values[i]
	}
}

func scanCourse(row *sql.Row) (*domain.Course, error) {
	var c domain.Course
	var active int
	err := row.Scan(&c.ID, &c.SnapshotID, &c.Code, &c.Title, &c.Credits, &active, &c.Category)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("course: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning course: %w", err)
	}
	c.Active = intToBool(active)
	return &c, nil
}
