package service

import (
	"context"
	"time"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
)

type readinessService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewReadinessService(uow db.UnitOfWork, observers ...UseCaseObserver) ReadinessService {
	return &readinessService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *readinessService) Check(ctx context.Context, planID string) (check *app.ReadyCheck, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"plan_id": planID}
	defer func() {
		if check != nil {
			fields["ok"] = check.OK
			fields["blockers"] = len(check.Blockers)
		}
		observe(ctx, s.observer, "check-readiness", startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := newStores(tx)
		plan, err := st.loadPlan(ctx, planID)
		if err != nil {
			return err
		}
		check, err = checkReadiness(ctx, st, plan, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return check, nil
}

// checkReadiness always records a fresh audit and derives blockers from it
// and from the plan's INVALID items.
func checkReadiness(ctx context.Context, st stores, plan *domain.DegreePlan, now time.Time) (*app.ReadyCheck, error) {
	invalid, err := st.items.CountByStatus(ctx, plan.ID, domain.ItemInvalid)
	if err != nil {
		return nil, err
	}
	audit, err := recomputeAudit(ctx, st, plan, now)
	if err != nil {
		return nil, err
	}

	blockers := make([]app.Blocker, 0, 4)
	if n := audit.Summary.UnknownRequirements; n > 0 {
		blockers = append(blockers, app.Blocker{Code: domain.BlockerUnknownRequirements, Count: n})
	}
	if n := audit.Summary.MissingRequirements; n > 0 {
		blockers = append(blockers, app.Blocker{Code: domain.BlockerMissingRequirements, Count: n})
	}
	if audit.HasUnsupportedRules {
		blockers = append(blockers, app.Blocker{Code: domain.BlockerUnsupportedRules})
	}
	if invalid > 0 {
		blockers = append(blockers, app.Blocker{Code: domain.BlockerInvalidItems, Count: invalid})
	}
	app.SortBlockers(blockers)

	return &app.ReadyCheck{
		OK:        len(blockers) == 0,
		Blockers:  blockers,
		AuditID:   audit.ID,
		CheckedAt: now,
	}, nil
}
