package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/canonical"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/repository"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/google/uuid"
)

type itemService struct {
	uow      db.UnitOfWork
	actor    string
	observer UseCaseObserver
}

// NewItemService builds the plan item use cases. actor is recorded on
// audit-log entries; when empty the plan's owner is used.
func NewItemService(uow db.UnitOfWork, actor string, observers ...UseCaseObserver) ItemService {
	return &itemService{uow: uow, actor: actor, observer: useCaseObserverOrNoop(observers)}
}

func (s *itemService) Validate(ctx context.Context, req app.ValidateItemRequest) (outcome *app.ValidationOutcome, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"plan_id": req.PlanID, "term_id": req.TermID, "position": req.Position}
	defer func() {
		if outcome != nil {
			fields["valid"] = outcome.IsValid
		}
		observe(ctx, s.observer, "validate-item", startedAt, fields, err)
	}()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := newStores(tx)
		plan, err := st.loadPlan(ctx, req.PlanID)
		if err != nil {
			return err
		}
		outcome, err = validateItem(ctx, st, plan, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (s *itemService) Upsert(ctx context.Context, req app.UpsertItemRequest) (result *app.UpsertResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"plan_id": req.PlanID, "term_id": req.TermID, "position": req.Position}
	defer func() {
		if result != nil {
			fields["item_id"] = result.Item.ID
			fields["status"] = string(result.Item.Status)
			fields["reverted"] = result.Reverted
		}
		observe(ctx, s.observer, "upsert-item", startedAt, fields, err)
	}()

	if err = req.Validate(); err != nil {
		return nil, err
	}
	if req.Completion == "" {
		req.Completion = domain.CompletionBlank
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		st := newStores(tx)
		now := time.Now().UTC()

		plan, err := st.loadPlan(ctx, req.PlanID)
		if err != nil {
			return err
		}
		item, err := resolveItem(ctx, st, req)
		if err != nil {
			return err
		}

		reverted, err := plan.RevertToDraft(now)
		if err != nil {
			return fmt.Errorf("upserting item on plan %s: %w", plan.ID, err)
		}
		if reverted {
			if err := st.plans.UpdateState(ctx, plan); err != nil {
				return err
			}
			entry := &domain.AuditLogEntry{
				ID:           uuid.New().String(),
				ActorUserID:  actorFor(s.actor, plan),
				Action:       domain.ActionPlanRevertedToDraft,
				ResourceType: domain.ResourceDegreePlan,
				ResourceID:   plan.ID,
				Meta:         map[string]string{"reason": domain.ReasonPlanItemMutation},
				CreatedAt:    now,
			}
			if err := st.auditLog.Append(ctx, entry); err != nil {
				return err
			}
		}

		vreq := req.ValidateRequest()
		vreq.ItemID = item.ID
		outcome, err := validateItem(ctx, st, plan, vreq)
		if err != nil {
			return err
		}

		item.TermID = req.TermID
		item.Position = req.Position
		item.RawInput = req.RawInput
		item.Completion = req.Completion
		item.CanonicalCode = outcome.CanonicalCode
		item.CourseID = outcome.CourseID
		item.Reason = outcome.Reason
		item.Status = domain.ItemInvalid
		if outcome.IsValid {
			item.Status = domain.ItemValid
		}
		item.Meta = &domain.ValidationMeta{
			MissingPrereqs:               outcome.MissingPrereqs,
			CompletionStatusAtValidation: req.Completion,
		}
		item.LastValidatedAt = &now
		item.UpdatedAt = now
		if err := st.items.Upsert(ctx, item); err != nil {
			return err
		}

		result = &app.UpsertResult{Item: item, Outcome: outcome, Reverted: reverted}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolveItem finds the row an upsert writes to: the item named by id, else
// the item already in the slot, else a new item.
func resolveItem(ctx context.Context, st stores, req app.UpsertItemRequest) (*domain.PlanItem, error) {
	occupant, err := st.items.GetBySlot(ctx, req.PlanID, req.TermID, req.Position)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if req.ItemID != "" {
		existing, err := st.items.GetByID(ctx, req.ItemID)
		switch {
		case err == nil:
			if existing.PlanID != req.PlanID {
				return nil, fmt.Errorf("%w: item %s", app.ErrItemPlanMismatch, req.ItemID)
			}
		case errors.Is(err, repository.ErrNotFound):
			existing = newItem(req.ItemID, req.PlanID)
		default:
			return nil, err
		}
		if occupant != nil && occupant.ID != existing.ID {
			return nil, fmt.Errorf("%w: term %s position %d", app.ErrSlotOccupied, req.TermID, req.Position)
		}
		return existing, nil
	}

	if occupant != nil {
		return occupant, nil
	}
	return newItem(uuid.New().String(), req.PlanID), nil
}

func newItem(id, planID string) *domain.PlanItem {
	return &domain.PlanItem{
		ID:        id,
		PlanID:    planID,
		Status:    domain.ItemDraft,
		CreatedAt: time.Now().UTC(),
	}
}

func actorFor(actor string, plan *domain.DegreePlan) string {
	if actor != "" {
		return actor
	}
	return plan.UserID
}

// validateItem checks raw input against the plan's pinned snapshot. Hard
// failures are errors; everything else is recorded on the outcome.
func validateItem(ctx context.Context, st stores, plan *domain.DegreePlan, req app.ValidateItemRequest) (*app.ValidationOutcome, error) {
	snap, err := st.loadSnapshot(ctx, plan)
	if err != nil {
		return nil, err
	}
	outcome := &app.ValidationOutcome{
		IsValid:        true,
		OriginalInput:  req.RawInput,
		SnapshotID:     snap.ID,
		SnapshotSource: snap.Source,
		SyncedAt:       snap.SyncedAt,
	}

	if strings.TrimSpace(req.RawInput) == "" {
		return outcome, nil
	}

	code, ok := canonical.ExtractCode(req.RawInput)
	if !ok {
		return outcome.Invalid(domain.ReasonInvalidCourse), nil
	}
	outcome.CanonicalCode = &code

	term, err := st.catalog.GetTerm(ctx, snap.ID, req.TermID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: term %s, snapshot %s", app.ErrTermNotInSnapshot, req.TermID, snap.ID)
		}
		return nil, err
	}

	course, err := st.catalog.GetCourseByCode(ctx, snap.ID, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return outcome.Invalid(domain.ReasonInvalidCourse), nil
		}
		return nil, err
	}
	outcome.CourseID = &course.ID

	offering, err := st.catalog.GetOffering(ctx, snap.ID, course.ID, term.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if offering == nil || !offering.Offered {
		return outcome.Invalid(domain.ReasonNotOffered), nil
	}

	prereq, err := st.catalog.GetPrerequisiteRule(ctx, snap.ID, course.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return outcome, nil
		}
		return nil, err
	}

	available, err := availableEvidence(ctx, st, plan.ID, term, req)
	if err != nil {
		return nil, err
	}
	res := rules.EvaluateLegacy(prereq.Rule, available, false)
	switch {
	case !res.Supported:
		return outcome.Invalid(domain.ReasonUnsupportedRule), nil
	case !res.Satisfied:
		outcome.MissingPrereqs = res.MissingCourses
		return outcome.Invalid(domain.ReasonPrereqMissing), nil
	}
	return outcome, nil
}

// availableEvidence collects the codes of the plan's other items that count
// as history for an item in term: items in strictly earlier terms, plus
// completed items earlier in the same summer term.
func availableEvidence(ctx context.Context, st stores, planID string, term *domain.Term, req app.ValidateItemRequest) (rules.Evidence, error) {
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

	evidence := rules.NewEvidence()
	for _, it := range items {
		if isSameItem(it, req) {
			continue
		}
		itemTerm, ok := terms[it.TermID]
		if !ok {
			continue
		}
		if !countsAsHistory(it, itemTerm, term, req.Position) {
			continue
		}
		if code, ok := it.EvidenceCode(); ok {
			evidence.Add(code)
		}
	}
	return evidence, nil
}

func isSameItem(it *domain.PlanItem, req app.ValidateItemRequest) bool {
	if req.ItemID != "" {
		return it.ID == req.ItemID
	}
	return it.TermID == req.TermID && it.Position == req.Position
}

func countsAsHistory(it *domain.PlanItem, itemTerm, current *domain.Term, position int) bool {
	if itemTerm.Before(*current) {
		return true
	}
	return itemTerm.ID == current.ID &&
		current.Season == domain.SeasonSummer &&
		it.Position < position &&
		it.Completion == domain.CompletionYes
}
