package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/repository"
)

// stores bundles the repositories a use case needs, all bound to the same
// connection or transaction.
type stores struct {
	catalog  repository.CatalogReader
	plans    repository.PlanStore
	items    repository.PlanItemStore
	audits   repository.AuditStore
	auditLog repository.AuditLogStore
}

func newStores(conn db.DBTX) stores {
	return stores{
		catalog:  repository.NewSQLiteCatalogRepo(conn),
		plans:    repository.NewSQLitePlanRepo(conn),
		items:    repository.NewSQLitePlanItemRepo(conn),
		audits:   repository.NewSQLiteAuditRepo(conn),
		auditLog: repository.NewSQLiteAuditLogRepo(conn),
	}
}

func (s stores) loadPlan(ctx context.Context, planID string) (*domain.DegreePlan, error) {
	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", app.ErrPlanNotFound, planID)
		}
		return nil, fmt.Errorf("loading plan: %w", err)
	}
	return plan, nil
}

func (s stores) loadSnapshot(ctx context.Context, plan *domain.DegreePlan) (*domain.CatalogSnapshot, error) {
	snap, err := s.catalog.GetSnapshot(ctx, plan.PinnedSnapshotID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", app.ErrSnapshotNotFound, plan.PinnedSnapshotID)
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	return snap, nil
}
