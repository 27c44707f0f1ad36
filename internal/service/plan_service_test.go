package service

import (
	"testing"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanCreate_PinsVersion(t *testing.T) {
	w := newWorld(t)
	svc := NewPlanService(w.conn, w.uow)

	plan, err := svc.Create(w.ctx, app.CreatePlanRequest{
		UserID: "student-9", ProgramVersionID: w.version.ID, Name: "Honors track",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CertDraft, plan.CertificationState)
	assert.Equal(t, w.snap.ID, plan.PinnedSnapshotID)
	assert.Equal(t, w.set.ID, plan.PinnedRequirementSetID)

	stored := w.reloadPlan(plan.ID)
	assert.Equal(t, "Honors track", stored.Name)
	assert.Equal(t, "student-9", stored.UserID)
}

func TestPlanCreate_Errors(t *testing.T) {
	w := newWorld(t)
	svc := NewPlanService(w.conn, w.uow)

	_, err := svc.Create(w.ctx, app.CreatePlanRequest{UserID: "u", ProgramVersionID: "missing", Name: "x"})
	assert.ErrorIs(t, err, app.ErrProgramVersionNotFound)

	_, err = svc.Create(w.ctx, app.CreatePlanRequest{ProgramVersionID: w.version.ID, Name: "x"})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
}

func TestPlanGet_OrdersItemsChronologically(t *testing.T) {
	w := newWorld(t)
	plan := w.plan()
	fall2 := w.invalidItem(plan, "2025FA", 2, "b")
	summer := w.invalidItem(plan, "2025SU", 1, "c")
	fall1 := w.invalidItem(plan, "2025FA", 1, "a")
	spring := w.invalidItem(plan, "2025SP", 3, "d")

	view, err := NewPlanService(w.conn, w.uow).Get(w.ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, view.Items, 4)

	ids := make([]string, len(view.Items))
	for i, it := range view.Items {
		ids[i] = it.ID
	}
	assert.Equal(t, []string{spring.ID, summer.ID, fall1.ID, fall2.ID}, ids)
	assert.Len(t, view.Terms, 3)
	assert.Equal(t, "2025SU", view.Terms[summer.TermID].Code)
}

func TestPlanTermsAndLog(t *testing.T) {
	w := newWorld(t)
	plan := w.plan()
	svc := NewPlanService(w.conn, w.uow)

	terms, err := svc.Terms(w.ctx, plan.ID)
	require.NoError(t, err)
	codes := make([]string, len(terms))
	for i, term := range terms {
		codes[i] = term.Code
	}
	assert.Equal(t, []string{"2025SP", "2025SU", "2025FA"}, codes)

	entries, err := svc.AuditLog(w.ctx, plan.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = svc.Terms(w.ctx, "missing")
	assert.ErrorIs(t, err, app.ErrPlanNotFound)
	_, err = svc.Get(w.ctx, "missing")
	assert.ErrorIs(t, err, app.ErrPlanNotFound)
}
