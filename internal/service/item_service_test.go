package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/repository"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/alexanderramin/gradpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_BlankInputIsValid(t *testing.T) {
	w := newWorld(t)
	plan := w.plan()
	svc := NewItemService(w.uow, "")

	out, err := svc.Validate(w.ctx, app.ValidateItemRequest{
		PlanID: plan.ID, TermID: "not-even-a-term", Position: 1, RawInput: "   ",
	})
	require.NoError(t, err)
	assert.True(t, out.IsValid)
	assert.Nil(t, out.Reason)
	assert.Nil(t, out.CanonicalCode)
	assert.Equal(t, w.snap.ID, out.SnapshotID)
	assert.Equal(t, w.snap.Source, out.SnapshotSource)
}

func TestValidate_Outcomes(t *testing.T) {
	w := newWorld(t)
	w.course(calc1, "2025SP", "2025FA")
	w.course(calc2, "2025FA")
	w.course(linAlg, "2025FA")
	w.course(intro, "2025FA")
	w.course(dataStr, "2025FA")
	w.course("01:640:301")
	closed := w.course("01:640:300")
	require.NoError(t, w.catalog.CreateOffering(w.ctx,
		testutil.NewTestOffering(w.snap.ID, closed.ID, w.term("2025FA").ID, false)))

	w.prereq(calc2, rules.LegacyRule(rules.Course(calc1)))
	w.prereq(linAlg, rules.LegacyRule(rules.All(rules.Course(calc1), rules.Course(calc2))))
	w.prereq(dataStr, rules.LegacyRule(rules.Any(rules.Course(intro))))
	w.prereq(intro, rules.CurrentRule(rules.CourseSet(calc1)))

	plan := w.plan()
	w.validItem(plan, "2025SP", 1, calc1, domain.CompletionYes)
	svc := NewItemService(w.uow, "")

	tests := []struct {
		name        string
		raw         string
		wantValid   bool
		wantReason  domain.ValidationReason
		wantCode    string
		wantMissing []string
	}{
		{name: "no code in input", raw: "calculus please", wantReason: domain.ReasonInvalidCourse},
		{name: "unknown course", raw: "01:999:999", wantReason: domain.ReasonInvalidCourse, wantCode: "01:999:999"},
		{name: "no offering row", raw: "Topology 01:640:301", wantReason: domain.ReasonNotOffered, wantCode: "01:640:301"},
		{name: "offered false", raw: "01:640:300", wantReason: domain.ReasonNotOffered, wantCode: "01:640:300"},
		{name: "prereq satisfied by earlier term", raw: "Calc II (01:640:152)", wantValid: true, wantCode: calc2},
		{name: "prereq missing", raw: linAlg, wantReason: domain.ReasonPrereqMissing, wantCode: linAlg, wantMissing: []string{calc2}},
		{name: "any is unsupported for prerequisites", raw: dataStr, wantReason: domain.ReasonUnsupportedRule, wantCode: dataStr},
		{name: "current dialect prerequisite is unsupported", raw: intro, wantReason: domain.ReasonUnsupportedRule, wantCode: intro},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := svc.Validate(w.ctx, app.ValidateItemRequest{
				PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: tt.raw,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.raw, out.OriginalInput)
			assert.Equal(t, tt.wantValid, out.IsValid)
			if tt.wantValid {
				assert.Nil(t, out.Reason)
			} else {
				require.NotNil(t, out.Reason)
				assert.Equal(t, tt.wantReason, *out.Reason)
			}
			if tt.wantCode == "" {
				assert.Nil(t, out.CanonicalCode)
			} else {
				require.NotNil(t, out.CanonicalCode)
				assert.Equal(t, tt.wantCode, *out.CanonicalCode)
			}
			assert.Equal(t, tt.wantMissing, out.MissingPrereqs)
		})
	}
}

func TestValidate_HardErrors(t *testing.T) {
	w := newWorld(t)
	w.course(calc1, "2025FA")
	plan := w.plan()
	svc := NewItemService(w.uow, "")

	other := testutil.NewTestSnapshot()
	require.NoError(t, w.catalog.CreateSnapshot(w.ctx, other))
	foreign := testutil.NewTestTerm(other.ID, "2025FA", 2025, domain.SeasonFall)
	require.NoError(t, w.catalog.CreateTerm(w.ctx, foreign))

	_, err := svc.Validate(w.ctx, app.ValidateItemRequest{
		PlanID: plan.ID, TermID: foreign.ID, Position: 1, RawInput: calc1,
	})
	assert.ErrorIs(t, err, app.ErrTermNotInSnapshot)

	_, err = svc.Validate(w.ctx, app.ValidateItemRequest{
		PlanID: "missing", TermID: w.term("2025FA").ID, Position: 1, RawInput: calc1,
	})
	assert.ErrorIs(t, err, app.ErrPlanNotFound)

	_, err = svc.Validate(w.ctx, app.ValidateItemRequest{PlanID: plan.ID, TermID: w.term("2025FA").ID})
	assert.ErrorIs(t, err, app.ErrInvalidRequest)
}

func TestValidate_SummerSameTermRule(t *testing.T) {
	tests := []struct {
		name       string
		completion domain.CompletionStatus
		position   int
		wantValid  bool
	}{
		{"completed earlier position counts", domain.CompletionYes, 1, true},
		{"not completed does not count", domain.CompletionNo, 1, false},
		{"in progress does not count", domain.CompletionInProgress, 1, false},
		{"blank does not count", domain.CompletionBlank, 1, false},
		{"later position does not count", domain.CompletionYes, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld(t)
			w.course(calc1, "2025SU")
			w.course(calc2, "2025SU")
			w.prereq(calc2, rules.LegacyRule(rules.Course(calc1)))
			plan := w.plan()
			w.validItem(plan, "2025SU", tt.position, calc1, tt.completion)

			out, err := NewItemService(w.uow, "").Validate(w.ctx, app.ValidateItemRequest{
				PlanID: plan.ID, TermID: w.term("2025SU").ID, Position: 2, RawInput: calc2,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, out.IsValid)
			if !tt.wantValid {
				assert.Equal(t, domain.ReasonPrereqMissing, *out.Reason)
				assert.Equal(t, []string{calc1}, out.MissingPrereqs)
			}
		})
	}
}

func TestValidate_SameTermOutsideSummerNeverCounts(t *testing.T) {
	w := newWorld(t)
	w.course(calc1, "2025FA")
	w.course(calc2, "2025FA")
	w.prereq(calc2, rules.LegacyRule(rules.Course(calc1)))
	plan := w.plan()
	w.validItem(plan, "2025FA", 1, calc1, domain.CompletionYes)

	out, err := NewItemService(w.uow, "").Validate(w.ctx, app.ValidateItemRequest{
		PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 2, RawInput: calc2,
	})
	require.NoError(t, err)
	assert.False(t, out.IsValid)
}

func TestValidate_RawInputEvidence(t *testing.T) {
	w := newWorld(t)
	w.course(calc2, "2025FA")
	w.prereq(calc2, rules.LegacyRule(rules.Course(calc1)))
	plan := w.plan()
	// An earlier item never validated still contributes the code in its raw input.
	draft := testutil.NewTestItem(plan.ID, w.term("2025SP").ID, 1, "took "+calc1+" at county college")
	require.NoError(t, repository.NewSQLitePlanItemRepo(w.conn).Upsert(w.ctx, draft))

	out, err := NewItemService(w.uow, "").Validate(w.ctx, app.ValidateItemRequest{
		PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc2,
	})
	require.NoError(t, err)
	assert.True(t, out.IsValid)
}

func TestUpsert_PersistsOutcome(t *testing.T) {
	w := newWorld(t)
	w.course(calc1, "2025SP")
	w.course(calc2, "2025FA")
	w.prereq(calc2, rules.LegacyRule(rules.Course(calc1)))
	plan := w.plan()
	svc := NewItemService(w.uow, "")

	res, err := svc.Upsert(w.ctx, app.UpsertItemRequest{
		PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc2,
		Completion: domain.CompletionInProgress,
	})
	require.NoError(t, err)
	assert.False(t, res.Reverted)

	stored, err := repository.NewSQLitePlanItemRepo(w.conn).GetByID(w.ctx, res.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemInvalid, stored.Status)
	require.NotNil(t, stored.Reason)
	assert.Equal(t, domain.ReasonPrereqMissing, *stored.Reason)
	require.NotNil(t, stored.Meta)
	assert.Equal(t, []string{calc1}, stored.Meta.MissingPrereqs)
	assert.Equal(t, domain.CompletionInProgress, stored.Meta.CompletionStatusAtValidation)
	require.NotNil(t, stored.CanonicalCode)
	assert.Equal(t, calc2, *stored.CanonicalCode)
	require.NotNil(t, stored.CourseID)
	assert.Equal(t, w.courses[calc2].ID, *stored.CourseID)
	assert.NotNil(t, stored.LastValidatedAt)

	// Filling the prerequisite and re-saving the same slot fixes the item in place.
	_, err = svc.Upsert(w.ctx, app.UpsertItemRequest{
		PlanID: plan.ID, TermID: w.term("2025SP").ID, Position: 1, RawInput: calc1,
		Completion: domain.CompletionYes,
	})
	require.NoError(t, err)
	again, err := svc.Upsert(w.ctx, app.UpsertItemRequest{
		PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc2,
	})
	require.NoError(t, err)
	assert.Equal(t, res.Item.ID, again.Item.ID)
	assert.Equal(t, domain.ItemValid, again.Item.Status)
	assert.Nil(t, again.Item.Reason)
	assert.Equal(t, domain.CompletionBlank, again.Item.Completion)
}

func TestUpsert_RevertsReadyPlanBeforeValidation(t *testing.T) {
	w := newWorld(t)
	plan := w.plan(testutil.WithCertState(domain.CertReady))
	svc := NewItemService(w.uow, "registrar-7")

	res, err := svc.Upsert(w.ctx, app.UpsertItemRequest{
		PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: "not a course",
	})
	require.NoError(t, err)
	assert.True(t, res.Reverted)
	assert.False(t, res.Outcome.IsValid)

	assert.Equal(t, domain.CertDraft, w.reloadPlan(plan.ID).CertificationState)
	entries := w.auditLog(plan.ID)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionPlanRevertedToDraft, entries[0].Action)
	assert.Equal(t, domain.ReasonPlanItemMutation, entries[0].Meta["reason"])
	assert.Equal(t, "registrar-7", entries[0].ActorUserID)

	// A DRAFT plan is not reverted again.
	res, err = svc.Upsert(w.ctx, app.UpsertItemRequest{
		PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 2, RawInput: "",
	})
	require.NoError(t, err)
	assert.False(t, res.Reverted)
	assert.Len(t, w.auditLog(plan.ID), 1)
}

func TestUpsert_HardErrors(t *testing.T) {
	w := newWorld(t)
	certified := w.plan(testutil.WithCertState(domain.CertCertified))
	plan := w.plan()
	otherPlan := w.plan()
	foreignItem := w.invalidItem(otherPlan, "2025FA", 1, "x")
	occupant := w.invalidItem(plan, "2025FA", 1, "y")
	svc := NewItemService(w.uow, "")

	_, err := svc.Upsert(w.ctx, app.UpsertItemRequest{
		PlanID: certified.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc1,
	})
	assert.ErrorIs(t, err, app.ErrPlanCertified)

	_, err = svc.Upsert(w.ctx, app.UpsertItemRequest{
		ItemID: foreignItem.ID, PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 2, RawInput: calc1,
	})
	assert.ErrorIs(t, err, app.ErrItemPlanMismatch)

	_, err = svc.Upsert(w.ctx, app.UpsertItemRequest{
		ItemID: "brand-new-id", PlanID: plan.ID, TermID: occupant.TermID, Position: occupant.Position,
	})
	assert.ErrorIs(t, err, app.ErrSlotOccupied)

	_, err = svc.Upsert(w.ctx, app.UpsertItemRequest{
		PlanID: "missing", TermID: w.term("2025FA").ID, Position: 1,
	})
	assert.ErrorIs(t, err, app.ErrPlanNotFound)
}

func TestUpsert_MovedItemExcludedFromOwnEvidence(t *testing.T) {
	w := newWorld(t)
	w.course(calc1, "2025SP")
	w.course(calc2, "2025FA")
	w.prereq(calc2, rules.LegacyRule(rules.Course(calc1)))
	plan := w.plan()
	moving := w.validItem(plan, "2025SP", 1, calc1, domain.CompletionYes)

	res, err := NewItemService(w.uow, "").Upsert(w.ctx, app.UpsertItemRequest{
		ItemID: moving.ID, PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc2,
	})
	require.NoError(t, err)
	assert.Equal(t, moving.ID, res.Item.ID)
	assert.Equal(t, domain.ItemInvalid, res.Item.Status)
	assert.Equal(t, []string{calc1}, res.Outcome.MissingPrereqs)
}

func TestUpsert_RollbackLeavesReadyPlanUntouched(t *testing.T) {
	w := newWorld(t)
	plan := w.plan(testutil.WithCertState(domain.CertReady))

	// Writes: #1 plan state, #2 audit-log entry, #3 item.
	failUoW := &testutil.FailOnNthExecUoW{DB: w.conn, FailOn: 3, Err: errors.New("injected item write failure")}
	svc := NewItemService(failUoW, "")

	_, err := svc.Upsert(context.Background(), app.UpsertItemRequest{
		PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "injected item write failure")
	assert.EqualValues(t, 3, failUoW.Execs())

	assert.Equal(t, domain.CertReady, w.reloadPlan(plan.ID).CertificationState)
	assert.Empty(t, w.auditLog(plan.ID))
	items, err := repository.NewSQLitePlanItemRepo(w.conn).ListByPlan(w.ctx, plan.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestValidate_MalformedStoredPrereqIsUnsupported(t *testing.T) {
	payloads := []string{
		`{"all":[{"course":"01:640:151"},{"type":"COURSE_SET","courses":"x","bogus":1}]}`,
		`{"type":"COURSE_SET","courses":"01:640:151"}`,
		`{"course":`,
	}
	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			w := newWorld(t)
			w.course(calc1, "2025SP")
			w.course(calc2, "2025FA")
			w.storedPrereq(calc2, payload)
			plan := w.plan()
			w.validItem(plan, "2025SP", 1, calc1, domain.CompletionYes)
			svc := NewItemService(w.uow, "")

			out, err := svc.Validate(w.ctx, app.ValidateItemRequest{
				PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc2,
			})
			require.NoError(t, err)
			assert.False(t, out.IsValid)
			require.NotNil(t, out.Reason)
			assert.Equal(t, domain.ReasonUnsupportedRule, *out.Reason)

			res, err := svc.Upsert(w.ctx, app.UpsertItemRequest{
				PlanID: plan.ID, TermID: w.term("2025FA").ID, Position: 1, RawInput: calc2,
			})
			require.NoError(t, err)
			assert.Equal(t, domain.ItemInvalid, res.Item.Status)
			require.NotNil(t, res.Item.Reason)
			assert.Equal(t, domain.ReasonUnsupportedRule, *res.Item.Reason)
		})
	}
}
