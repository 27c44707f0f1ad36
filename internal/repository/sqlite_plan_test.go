package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanRepo_CreateAndGet(t *testing.T) {
	conn := testutil.NewTestDB(t)
	seed := seedCatalog(t, conn)
	repo := NewSQLitePlanRepo(conn)
	ctx := context.Background()

	plan := testutil.NewTestPlan(seed.version)
	require.NoError(t, repo.Create(ctx, plan))

	got, err := repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.UserID, got.UserID)
	assert.Equal(t, seed.snapshot.ID, got.PinnedSnapshotID)
	assert.Equal(t, seed.set.ID, got.PinnedRequirementSetID)
	assert.Equal(t, domain.CertDraft, got.CertificationState)
	assert.True(t, plan.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanRepo_UpdateState(t *testing.T) {
	conn := testutil.NewTestDB(t)
	seed := seedCatalog(t, conn)
	repo := NewSQLitePlanRepo(conn)
	ctx := context.Background()

	plan := testutil.NewTestPlan(seed.version)
	require.NoError(t, repo.Create(ctx, plan))

	later := testutil.FixedNow.Add(time.Hour)
	require.NoError(t, plan.MarkReady(later))
	require.NoError(t, repo.UpdateState(ctx, plan))

	got, err := repo.GetByID(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CertReady, got.CertificationState)
	assert.True(t, later.Equal(got.UpdatedAt))

	ghost := testutil.NewTestPlan(seed.version)
	assert.ErrorIs(t, repo.UpdateState(ctx, ghost), ErrNotFound)
}

func TestPlanItemRepo_UpsertInsertThenUpdate(t *testing.T) {
	conn := testutil.NewTestDB(t)
	seed := seedCatalog(t, conn)
	plan := testutil.NewTestPlan(seed.version)
	require.NoError(t, NewSQLitePlanRepo(conn).Create(context.Background(), plan))
	repo := NewSQLitePlanItemRepo(conn)
	ctx := context.Background()

	item := testutil.NewTestItem(plan.ID, seed.fall.ID, 1, "Calc II "+codeCalc2)
	require.NoError(t, repo.Upsert(ctx, item))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ItemDraft, got.Status)
	assert.Nil(t, got.CanonicalCode)
	assert.Nil(t, got.Reason)
	assert.Nil(t, got.Meta)

	reason := domain.ReasonPrereqMissing
	validatedAt := testutil.FixedNow.Add(time.Minute)
	code := codeCalc2
	item.CanonicalCode = &code
	item.CourseID = &seed.calc2.ID
	item.Status = domain.ItemInvalid
	item.Completion = domain.CompletionInProgress
	item.Reason = &reason
	item.Meta = &domain.ValidationMeta{
		MissingPrereqs:               []string{codeCalc1},
		CompletionStatusAtValidation: domain.CompletionInProgress,
	}
	item.LastValidatedAt = &validatedAt
	item.UpdatedAt = validatedAt
	require.NoError(t, repo.Upsert(ctx, item))

	got, err = repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	require.NotNil(t, got.CanonicalCode)
	assert.Equal(t, codeCalc2, *got.CanonicalCode)
	require.NotNil(t, got.CourseID)
	assert.Equal(t, seed.calc2.ID, *got.CourseID)
	assert.Equal(t, domain.ItemInvalid, got.Status)
	require.NotNil(t, got.Reason)
	assert.Equal(t, domain.ReasonPrereqMissing, *got.Reason)
	require.NotNil(t, got.Meta)
	assert.Equal(t, []string{codeCalc1}, got.Meta.MissingPrereqs)
	require.NotNil(t, got.LastValidatedAt)
	assert.True(t, validatedAt.Equal(*got.LastValidatedAt))
	assert.True(t, testutil.FixedNow.Equal(got.CreatedAt), "created_at kept from first insert")
}

func TestPlanItemRepo_SlotUnique(t *testing.T) {
	conn := testutil.NewTestDB(t)
	seed := seedCatalog(t, conn)
	plan := testutil.NewTestPlan(seed.version)
	require.NoError(t, NewSQLitePlanRepo(conn).Create(context.Background(), plan))
	repo := NewSQLitePlanItemRepo(conn)
	ctx := context.Background()

	first := testutil.NewTestItem(plan.ID, seed.fall.ID, 1, codeCalc1)
	require.NoError(t, repo.Upsert(ctx, first))

	got, err := repo.GetBySlot(ctx, plan.ID, seed.fall.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	clash := testutil.NewTestItem(plan.ID, seed.fall.ID, 1, codeCalc2)
	assert.Error(t, repo.Upsert(ctx, clash))

	_, err = repo.GetBySlot(ctx, plan.ID, seed.fall.ID, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPlanItemRepo_ListAndCount(t *testing.T) {
	conn := testutil.NewTestDB(t)
	seed := seedCatalog(t, conn)
	plan := testutil.NewTestPlan(seed.version)
	require.NoError(t, NewSQLitePlanRepo(conn).Create(context.Background(), plan))
	repo := NewSQLitePlanItemRepo(conn)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, testutil.NewTestItem(plan.ID, seed.fall.ID, 2, codeCalc2, testutil.WithItemStatus(domain.ItemInvalid))))
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestItem(plan.ID, seed.fall.ID, 1, codeCalc1, testutil.WithItemStatus(domain.ItemValid))))
	require.NoError(t, repo.Upsert(ctx, testutil.NewTestItem(plan.ID, seed.summer.ID, 1, "", testutil.WithItemStatus(domain.ItemInvalid))))

	items, err := repo.ListByPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	invalid, err := repo.CountByStatus(ctx, plan.ID, domain.ItemInvalid)
	require.NoError(t, err)
	assert.Equal(t, 2, invalid)

	valid, err := repo.CountByStatus(ctx, plan.ID, domain.ItemValid)
	require.NoError(t, err)
	assert.Equal(t, 1, valid)
}
