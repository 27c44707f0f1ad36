package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/repository"
	"github.com/alexanderramin/gradpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = "../importer/testdata/catalog.yaml"

func TestImport_Sample(t *testing.T) {
	conn := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(conn)
	ctx := t.Context()

	res, err := NewCatalogService(uow).Import(ctx, sampleCatalog)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TermCount)
	assert.Equal(t, 5, res.CourseCount)
	assert.Equal(t, 8, res.OfferingCount)
	assert.Equal(t, 3, res.RuleCount)
	assert.Equal(t, 3, res.RequirementCount)
	require.Len(t, res.ProgramVersions, 1)

	repo := repository.NewSQLiteCatalogRepo(conn)
	snap, err := repo.GetSnapshot(ctx, res.Snapshot.ID)
	require.NoError(t, err)
	assert.Equal(t, "registrar-export", snap.Source)

	course, err := repo.GetCourseByCode(ctx, snap.ID, "01:640:250")
	require.NoError(t, err)
	assert.Equal(t, 3, course.Credits)

	nodes, err := repo.GetRequirementNodes(ctx, res.ProgramVersions[0].RequirementSetID)
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "Calculus sequence", nodes[0].Label)
}

func TestImport_ReimportReusesProgram(t *testing.T) {
	conn := testutil.NewTestDB(t)
	svc := NewCatalogService(testutil.NewTestUoW(conn))
	ctx := t.Context()

	first, err := svc.Import(ctx, sampleCatalog)
	require.NoError(t, err)
	second, err := svc.Import(ctx, sampleCatalog)
	require.NoError(t, err)

	assert.NotEqual(t, first.Snapshot.ID, second.Snapshot.ID)
	assert.Equal(t, first.ProgramVersions[0].ProgramID, second.ProgramVersions[0].ProgramID)
	assert.NotEqual(t, first.ProgramVersions[0].RequirementSetID, second.ProgramVersions[0].RequirementSetID)
}

func TestImport_InvalidFileWritesNothing(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
snapshot: { source: test, synced_at: "2025-06-01T00:00:00Z" }
terms:
  - { code: "2025FA", campus: NB, year: 2025, season: AUTUMN }
courses:
  - { code: "01:640:151", title: "Calculus I", credits: 4 }
offerings:
  - { course: "01:640:999", term: "2025FA" }
`), 0o644))

	_, err := NewCatalogService(testutil.NewTestUoW(conn)).Import(ctx, path)
	require.ErrorIs(t, err, app.ErrInvalidRequest)
	assert.Contains(t, err.Error(), "season")
	assert.Contains(t, err.Error(), "01:640:999")

	var snapshots int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM catalog_snapshots`).Scan(&snapshots))
	assert.Zero(t, snapshots)
}

func TestImport_MissingFile(t *testing.T) {
	conn := testutil.NewTestDB(t)
	_, err := NewCatalogService(testutil.NewTestUoW(conn)).Import(t.Context(), filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

// TestImportedCatalog_PlanLifecycle drives a plan from an imported catalog
// through validation, audit, readiness and certification.
func TestImportedCatalog_PlanLifecycle(t *testing.T) {
	conn := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(conn)
	ctx := t.Context()

	res, err := NewCatalogService(uow).Import(ctx, sampleCatalog)
	require.NoError(t, err)

	plans := NewPlanService(conn, uow)
	plan, err := plans.Create(ctx, app.CreatePlanRequest{
		UserID: "student-1", ProgramVersionID: res.ProgramVersions[0].ID, Name: "Main",
	})
	require.NoError(t, err)

	terms, err := plans.Terms(ctx, plan.ID)
	require.NoError(t, err)
	termID := make(map[string]string, len(terms))
	for _, term := range terms {
		termID[term.Code] = term.ID
	}

	items := NewItemService(uow, "")
	put := func(term string, pos int, raw string, completion domain.CompletionStatus) *app.UpsertResult {
		t.Helper()
		out, err := items.Upsert(ctx, app.UpsertItemRequest{
			PlanID: plan.ID, TermID: termID[term], Position: pos, RawInput: raw, Completion: completion,
		})
		require.NoError(t, err)
		return out
	}

	assert.True(t, put("2025SU", 1, "Calc I 01:640:151", domain.CompletionYes).Outcome.IsValid)
	assert.True(t, put("2025SU", 2, "Calc II 01:640:152", domain.CompletionYes).Outcome.IsValid,
		"completed summer course earlier in the same term counts")
	assert.True(t, put("2025FA", 1, "01:198:111", domain.CompletionYes).Outcome.IsValid)
	elective := put("2026SP", 1, "01:640:250", domain.CompletionInProgress)
	assert.True(t, elective.Outcome.IsValid)

	audit, err := NewAuditService(conn, uow).Recompute(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, audit.Summary.SatisfiedRequirements)
	assert.Equal(t, 1, audit.Summary.PendingRequirements)
	assert.Equal(t, 12, audit.Summary.CompletedCredits)
	assert.Equal(t, 3, audit.Summary.PendingCredits)

	// Pending work never blocks readiness; work the student dropped does.
	_, err = items.Upsert(ctx, app.UpsertItemRequest{
		ItemID: elective.Item.ID, PlanID: plan.ID, TermID: termID["2026SP"], Position: 1,
		RawInput: "01:640:250", Completion: domain.CompletionNo,
	})
	require.NoError(t, err)

	certs := NewCertificationService(uow, "")
	_, err = certs.MarkReady(ctx, plan.ID)
	var notReady *app.NotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, []app.Blocker{{Code: domain.BlockerMissingRequirements, Count: 1}}, notReady.Blockers)

	_, err = items.Upsert(ctx, app.UpsertItemRequest{
		ItemID: elective.Item.ID, PlanID: plan.ID, TermID: termID["2026SP"], Position: 1,
		RawInput: "01:640:250", Completion: domain.CompletionYes,
	})
	require.NoError(t, err)

	check, err := certs.MarkReady(ctx, plan.ID)
	require.NoError(t, err)
	assert.True(t, check.OK)
	_, err = certs.Finalize(ctx, plan.ID)
	require.NoError(t, err)

	view, err := plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CertCertified, view.Plan.CertificationState)
	assert.Len(t, view.Items, 4)

	_, err = items.Upsert(ctx, app.UpsertItemRequest{
		PlanID: plan.ID, TermID: termID["2026SP"], Position: 2, RawInput: "01:198:112",
	})
	assert.ErrorIs(t, err, app.ErrPlanCertified)
}
