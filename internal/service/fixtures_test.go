package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/repository"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/alexanderramin/gradpath/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const (
	calc1   = "01:640:151"
	calc2   = "01:640:152"
	linAlg  = "01:640:250"
	intro   = "01:198:111"
	dataStr = "01:198:112"
)

// world is a seeded catalog with three terms of 2025 and one program
// version whose requirement set starts empty.
type world struct {
	t       *testing.T
	ctx     context.Context
	conn    *sql.DB
	uow     db.UnitOfWork
	catalog *repository.SQLiteCatalogRepo
	snap    *domain.CatalogSnapshot
	terms   map[string]*domain.Term
	courses map[string]*domain.Course
	set     *domain.RequirementSet
	version *domain.ProgramVersion
}

func newWorld(t *testing.T) *world {
	t.Helper()
	conn := testutil.NewTestDB(t)
	w := &world{
		t:       t,
		ctx:     context.Background(),
		conn:    conn,
		uow:     testutil.NewTestUoW(conn),
		catalog: repository.NewSQLiteCatalogRepo(conn),
		terms:   make(map[string]*domain.Term),
		courses: make(map[string]*domain.Course),
	}

	w.snap = testutil.NewTestSnapshot()
	require.NoError(t, w.catalog.CreateSnapshot(w.ctx, w.snap))
	for _, term := range []*domain.Term{
		testutil.NewTestTerm(w.snap.ID, "2025SP", 2025, domain.SeasonSpring),
		testutil.NewTestTerm(w.snap.ID, "2025SU", 2025, domain.SeasonSummer),
		testutil.NewTestTerm(w.snap.ID, "2025FA", 2025, domain.SeasonFall),
	} {
		require.NoError(t, w.catalog.CreateTerm(w.ctx, term))
		w.terms[term.Code] = term
	}

	program := testutil.NewTestProgram("MATH-BS")
	require.NoError(t, w.catalog.CreateProgram(w.ctx, program))
	w.set = testutil.NewTestRequirementSet(w.snap.ID, program.ID)
	require.NoError(t, w.catalog.CreateRequirementSet(w.ctx, w.set))
	w.version = testutil.NewTestProgramVersion(program.ID, w.snap.ID, w.set.ID)
	require.NoError(t, w.catalog.CreateProgramVersion(w.ctx, w.version))
	return w
}

func (w *world) term(code string) *domain.Term {
	term, ok := w.terms[code]
	require.True(w.t, ok, "unknown term %s", code)
	return term
}

// course stores a 4-credit course offered in the given terms.
func (w *world) course(code string, offeredIn ...string) *domain.Course {
	c := testutil.NewTestCourse(w.snap.ID, code, testutil.WithCredits(4))
	require.NoError(w.t, w.catalog.CreateCourse(w.ctx, c))
	for _, termCode := range offeredIn {
		o := testutil.NewTestOffering(w.snap.ID, c.ID, w.term(termCode).ID, true)
		require.NoError(w.t, w.catalog.CreateOffering(w.ctx, o))
	}
	w.courses[code] = c
	return c
}

func (w *world) prereq(code string, rule rules.Rule) {
	cr := testutil.NewTestPrereq(w.snap.ID, w.courses[code].ID, rule)
	require.NoError(w.t, w.catalog.CreateCourseRule(w.ctx, cr))
}

func (w *world) requirement(orderIndex int, rule rules.Rule) *domain.RequirementNode {
	n := testutil.NewTestRequirementNode(w.set.ID, orderIndex, rule)
	require.NoError(w.t, w.catalog.CreateRequirementNode(w.ctx, n))
	return n
}

// storedRequirement writes a requirement row with payload as is, the way a
// catalog loaded outside the importer would.
func (w *world) storedRequirement(orderIndex int, payload string) string {
	id := uuid.New().String()
	_, err := w.conn.ExecContext(w.ctx,
		`INSERT INTO requirement_nodes (id, requirement_set_id, order_index, label, rule_json) VALUES (?, ?, ?, 'stored', ?)`,
		id, w.set.ID, orderIndex, payload)
	require.NoError(w.t, err)
	return id
}

// storedPrereq writes a PREREQ row for code with payload as is.
func (w *world) storedPrereq(code, payload string) {
	_, err := w.conn.ExecContext(w.ctx,
		`INSERT INTO course_rules (id, snapshot_id, course_id, kind, rule_json) VALUES (?, ?, ?, 'PREREQ', ?)`,
		uuid.New().String(), w.snap.ID, w.courses[code].ID, payload)
	require.NoError(w.t, err)
}

func (w *world) plan(opts ...testutil.PlanOption) *domain.DegreePlan {
	p := testutil.NewTestPlan(w.version, opts...)
	require.NoError(w.t, repository.NewSQLitePlanRepo(w.conn).Create(w.ctx, p))
	return p
}

// validItem stores a VALID item for code directly, bypassing validation.
func (w *world) validItem(plan *domain.DegreePlan, termCode string, position int, code string, completion domain.CompletionStatus) *domain.PlanItem {
	opts := []testutil.ItemOption{
		testutil.WithItemStatus(domain.ItemValid),
		testutil.WithCompletion(completion),
		testutil.WithCanonicalCode(code),
	}
	if c, ok := w.courses[code]; ok {
		opts = append(opts, testutil.WithCourseID(c.ID))
	}
	item := testutil.NewTestItem(plan.ID, w.term(termCode).ID, position, code, opts...)
	require.NoError(w.t, repository.NewSQLitePlanItemRepo(w.conn).Upsert(w.ctx, item))
	return item
}

func (w *world) invalidItem(plan *domain.DegreePlan, termCode string, position int, raw string) *domain.PlanItem {
	item := testutil.NewTestItem(plan.ID, w.term(termCode).ID, position, raw,
		testutil.WithItemStatus(domain.ItemInvalid))
	require.NoError(w.t, repository.NewSQLitePlanItemRepo(w.conn).Upsert(w.ctx, item))
	return item
}

func (w *world) reloadPlan(id string) *domain.DegreePlan {
	p, err := repository.NewSQLitePlanRepo(w.conn).GetByID(w.ctx, id)
	require.NoError(w.t, err)
	return p
}

func (w *world) auditLog(planID string) []*domain.AuditLogEntry {
	entries, err := repository.NewSQLiteAuditLogRepo(w.conn).ListByResource(w.ctx, domain.ResourceDegreePlan, planID)
	require.NoError(w.t, err)
	return entries
}
