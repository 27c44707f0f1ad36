package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/repository"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/google/uuid"
)

type auditService struct {
	conn     db.DBTX
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewAuditService(conn db.DBTX, uow db.UnitOfWork, observers ...UseCaseObserver) AuditService {
	return &auditService{conn: conn, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *auditService) Recompute(ctx context.Context, planID string) (audit *domain.AuditRecord, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"plan_id": planID}
	defer func() {
		if audit != nil {
			fields["audit_id"] = audit.ID
			fields["percent_complete"] = audit.Summary.PercentComplete
		}
		observe(ctx, s.observer, "recompute-audit", startedAt, fields, err)
	}()

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := newStores(tx)
		plan, err := st.loadPlan(ctx, planID)
		if err != nil {
			return err
		}
		audit, err = recomputeAudit(ctx, st, plan, time.Now().UTC())
		return err
	})
	if err != nil {
		return nil, err
	}
	return audit, nil
}

func (s *auditService) Latest(ctx context.Context, planID string) (*domain.AuditRecord, error) {
	st := newStores(s.conn)
	if _, err := st.loadPlan(ctx, planID); err != nil {
		return nil, err
	}
	audit, err := st.audits.Latest(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", app.ErrNoAudit, planID)
		}
		return nil, err
	}
	return audit, nil
}

func (s *auditService) History(ctx context.Context, planID string) ([]*domain.AuditRecord, error) {
	st := newStores(s.conn)
	if _, err := st.loadPlan(ctx, planID); err != nil {
		return nil, err
	}
	return st.audits.ListByPlan(ctx, planID)
}

// planEvidence is the evidence and credit totals of a plan's VALID items.
type planEvidence struct {
	completed        rules.Evidence
	pending          rules.Evidence
	completedCredits int
	pendingCredits   int
}

func collectPlanEvidence(ctx context.Context, st stores, planID string) (planEvidence, error) {
	ev := planEvidence{completed: rules.NewEvidence(), pending: rules.NewEvidence()}
	items, err := st.items.ListByPlan(ctx, planID)
	if err != nil {
		return ev, err
	}
	for _, it := range items {
		if it.Status != domain.ItemValid || it.CourseID == nil {
			continue
		}
		code, ok := it.EvidenceCode()
		if !ok {
			continue
		}
		if it.Completion != domain.CompletionYes && it.Completion != domain.CompletionInProgress {
			continue
		}
		course, err := st.catalog.GetCourseByID(ctx, *it.CourseID)
		if err != nil {
			return ev, fmt.Errorf("loading course for item %s: %w", it.ID, err)
		}
		if it.Completion == domain.CompletionYes {
			ev.completed.Add(code)
			ev.completedCredits += course.Credits
		} else {
			ev.pending.Add(code)
			ev.pendingCredits += course.Credits
		}
	}
	return ev, nil
}

// recomputeAudit evaluates every requirement of the plan's pinned set and
// appends a new audit record. Earlier records are never touched.
func recomputeAudit(ctx context.Context, st stores, plan *domain.DegreePlan, now time.Time) (*domain.AuditRecord, error) {
	if _, err := st.loadSnapshot(ctx, plan); err != nil {
		return nil, err
	}
	ev, err := collectPlanEvidence(ctx, st, plan.ID)
	if err != nil {
		return nil, err
	}
	nodes, err := st.catalog.GetRequirementNodes(ctx, plan.PinnedRequirementSetID)
	if err != nil {
		return nil, err
	}

	audit := &domain.AuditRecord{
		ID:               uuid.New().String(),
		PlanID:           plan.ID,
		SnapshotID:       plan.PinnedSnapshotID,
		RequirementSetID: plan.PinnedRequirementSetID,
		ComputedAt:       now,
		Requirements:     make([]domain.RequirementResult, 0, len(nodes)),
		Summary: domain.AuditSummary{
			CompletedCredits:      ev.completedCredits,
			PendingCredits:        ev.pendingCredits,
			TotalRequirementCount: len(nodes),
		},
	}
	withPending := ev.completed.Union(ev.pending)

	for _, node := range nodes {
		status, detail := classifyRequirement(node.Rule, ev.completed, withPending)
		audit.Requirements = append(audit.Requirements, domain.RequirementResult{
			ID:                uuid.New().String(),
			AuditID:           audit.ID,
			RequirementNodeID: node.ID,
			Status:            status,
			Detail:            detail,
		})
		switch status {
		case domain.RequirementSatisfied:
			audit.Summary.SatisfiedRequirements++
		case domain.RequirementPending:
			audit.Summary.PendingRequirements++
		case domain.RequirementMissing:
			audit.Summary.MissingRequirements++
		case domain.RequirementUnknown:
			audit.Summary.UnknownRequirements++
			audit.HasUnsupportedRules = true
		}
	}

	audit.Summary.KnownRequirementCount = audit.Summary.TotalRequirementCount - audit.Summary.UnknownRequirements
	if audit.Summary.KnownRequirementCount > 0 {
		audit.Summary.PercentComplete = float64(audit.Summary.SatisfiedRequirements) / float64(audit.Summary.KnownRequirementCount)
	}

	if err := st.audits.Create(ctx, audit); err != nil {
		return nil, err
	}
	return audit, nil
}

// classifyRequirement evaluates rule against completed work first and only
// then against completed plus in-progress work. PENDING and MISSING details
// both report the completed-only shortfall.
func classifyRequirement(rule rules.Rule, completed, withPending rules.Evidence) (domain.RequirementStatus, *domain.RequirementDetail) {
	first := rules.Evaluate(rule, completed)
	if !first.Supported {
		return domain.RequirementUnknown, unsupportedDetail(first)
	}
	if first.Satisfied {
		return domain.RequirementSatisfied, nil
	}

	second := rules.Evaluate(rule, withPending)
	detail := &domain.RequirementDetail{
		MissingCourses: first.MissingCourses,
		Explanations:   explanationStrings(first.ExplanationCodes),
	}
	switch {
	case !second.Supported:
		return domain.RequirementUnknown, unsupportedDetail(second)
	case second.Satisfied:
		return domain.RequirementPending, detail
	default:
		return domain.RequirementMissing, detail
	}
}

func unsupportedDetail(res rules.Result) *domain.RequirementDetail {
	return &domain.RequirementDetail{
		Reason:       string(domain.ReasonUnsupportedRule),
		Explanations: explanationStrings(res.ExplanationCodes),
	}
}

func explanationStrings(codes []rules.Explanation) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
