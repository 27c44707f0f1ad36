package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/repository"
	"github.com/google/uuid"
)

type planService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewPlanService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) PlanService {
	return &planService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Create starts a DRAFT plan pinned to the program version's snapshot and
// requirement set.
func (s *planService) Create(ctx context.Context, req app.CreatePlanRequest) (plan *domain.DegreePlan, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"program_version_id": req.ProgramVersionID}
	defer func() {
		if plan != nil {
			fields["plan_id"] = plan.ID
		}
		observe(ctx, s.observer, "create-plan", startedAt, fields, err)
	}()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := newStores(tx)
		version, err := st.catalog.GetProgramVersion(ctx, req.ProgramVersionID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: %s", app.ErrProgramVersionNotFound, req.ProgramVersionID)
			}
			return err
		}
		now := time.Now().UTC()
		plan = &domain.DegreePlan{
			ID:                     uuid.New().String(),
			UserID:                 req.UserID,
			ProgramVersionID:       version.ID,
			Name:                   req.Name,
			PinnedSnapshotID:       version.SnapshotID,
			PinnedRequirementSetID: version.RequirementSetID,
			CertificationState:     domain.CertDraft,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		return st.plans.Create(ctx, plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Get returns the plan with its items ordered chronologically by term, then
// by position.
func (s *planService) Get(ctx context.Context, planID string) (*app.PlanView, error) {
	st := newStores(s.conn)
	plan, err := st.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	items, err := st.items.ListByPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	termIDs := make([]string, 0, len(items))
	for _, it := range items {
		termIDs = append(termIDs, it.TermID)
	}
	terms, err := st.catalog.GetTermsByIDs(ctx, termIDs)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := terms[items[i].TermID], terms[items[j].TermID]
		if ti != nil && tj != nil && ti.ID != tj.ID {
			return ti.Before(*tj)
		}
		if items[i].TermID != items[j].TermID {
			return items[i].TermID < items[j].TermID
		}
		return items[i].Position < items[j].Position
	})
	return &app.PlanView{Plan: plan, Items: items, Terms: terms}, nil
}

// Terms lists the terms of the plan's pinned snapshot in chronological order.
func (s *planService) Terms(ctx context.Context, planID string) ([]*domain.Term, error) {
	st := newStores(s.conn)
	plan, err := st.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return st.catalog.ListTerms(ctx, plan.PinnedSnapshotID)
}

func (s *planService) AuditLog(ctx context.Context, planID string) ([]*domain.AuditLogEntry, error) {
	st := newStores(s.conn)
	if _, err := st.loadPlan(ctx, planID); err != nil {
		return nil, err
	}
	return st.auditLog.ListByResource(ctx, domain.ResourceDegreePlan, planID)
}
