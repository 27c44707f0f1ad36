package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/google/uuid"
)

type certificationService struct {
	uow      db.UnitOfWork
	actor    string
	observer UseCaseObserver
}

// NewCertificationService builds the DRAFT -> READY -> CERTIFIED transitions.
// actor is recorded on audit-log entries; when empty the plan's owner is used.
func NewCertificationService(uow db.UnitOfWork, actor string, observers ...UseCaseObserver) CertificationService {
	return &certificationService{uow: uow, actor: actor, observer: useCaseObserverOrNoop(observers)}
}

// MarkReady moves the plan to READY when a fresh readiness check passes.
// A refused transition still commits the audit the check recorded.
func (s *certificationService) MarkReady(ctx context.Context, planID string) (check *app.ReadyCheck, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"plan_id": planID}
	defer func() {
		if check != nil {
			fields["audit_id"] = check.AuditID
		}
		observe(ctx, s.observer, "mark-ready", startedAt, fields, err)
	}()

	var refusal *app.NotReadyError
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := newStores(tx)
		now := time.Now().UTC()
		plan, err := st.loadPlan(ctx, planID)
		if err != nil {
			return err
		}
		if plan.IsCertified() {
			return fmt.Errorf("marking plan %s ready: %w", plan.ID, domain.ErrPlanCertified)
		}

		check, err = checkReadiness(ctx, st, plan, now)
		if err != nil {
			return err
		}
		if !check.OK {
			refusal = app.NewNotReadyError(check.Blockers)
			return nil
		}

		if err := plan.MarkReady(now); err != nil {
			return err
		}
		if err := st.plans.UpdateState(ctx, plan); err != nil {
			return err
		}
		return st.auditLog.Append(ctx, s.logEntry(plan, domain.ActionPlanMarkedReady, check.AuditID, now))
	})
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		return check, refusal
	}
	return check, nil
}

// Finalize certifies a READY plan after re-checking readiness.
func (s *certificationService) Finalize(ctx context.Context, planID string) (check *app.ReadyCheck, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"plan_id": planID}
	defer func() {
		if check != nil {
			fields["audit_id"] = check.AuditID
		}
		observe(ctx, s.observer, "finalize", startedAt, fields, err)
	}()

	var refusal *app.NotReadyError
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := newStores(tx)
		now := time.Now().UTC()
		plan, err := st.loadPlan(ctx, planID)
		if err != nil {
			return err
		}
		if plan.CertificationState != domain.CertReady {
			refusal = app.NewNotReadyError([]app.Blocker{{Code: domain.BlockerCertifyRequiresReady}})
			return nil
		}

		check, err = checkReadiness(ctx, st, plan, now)
		if err != nil {
			return err
		}
		if !check.OK {
			refusal = app.NewNotReadyError(check.Blockers)
			return nil
		}

		if err := plan.Certify(now); err != nil {
			return err
		}
		if err := st.plans.UpdateState(ctx, plan); err != nil {
			return err
		}
		return st.auditLog.Append(ctx, s.logEntry(plan, domain.ActionPlanFinalized, check.AuditID, now))
	})
	if err != nil {
		return nil, err
	}
	if refusal != nil {
		return check, refusal
	}
	return check, nil
}

func (s *certificationService) logEntry(plan *domain.DegreePlan, action domain.AuditAction, auditID string, now time.Time) *domain.AuditLogEntry {
	return &domain.AuditLogEntry{
		ID:           uuid.New().String(),
		ActorUserID:  actorFor(s.actor, plan),
		Action:       action,
		ResourceType: domain.ResourceDegreePlan,
		ResourceID:   plan.ID,
		Meta: map[string]string{
			"auditId":           auditID,
			"catalogSnapshotId": plan.PinnedSnapshotID,
			"requirementSetId":  plan.PinnedRequirementSetID,
		},
		CreatedAt: now,
	}
}
