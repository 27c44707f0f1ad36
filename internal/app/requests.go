package app

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/go-playground/validator/v10"
)

var requestValidator = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// validateRequest runs struct-tag validation and folds failures into one
// ErrInvalidRequest.
func validateRequest(req any) error {
	err := requestValidator().Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

// ValidateItemRequest asks whether raw input is a valid course in a slot.
// ItemID, when set, names the stored item occupying the slot so that it is
// left out of its own prerequisite history.
type ValidateItemRequest struct {
	PlanID     string `validate:"required"`
	ItemID     string
	TermID     string                  `validate:"required"`
	Position   int                     `validate:"min=1"`
	RawInput   string                  `validate:"max=512"`
	Completion domain.CompletionStatus `validate:"omitempty,oneof=YES IN_PROGRESS NO BLANK"`
}

func (r ValidateItemRequest) Validate() error { return validateRequest(r) }

// UpsertItemRequest creates an item (ItemID empty) or edits one in place.
type UpsertItemRequest struct {
	ItemID     string
	PlanID     string                  `validate:"required"`
	TermID     string                  `validate:"required"`
	Position   int                     `validate:"min=1"`
	RawInput   string                  `validate:"max=512"`
	Completion domain.CompletionStatus `validate:"omitempty,oneof=YES IN_PROGRESS NO BLANK"`
}

func (r UpsertItemRequest) Validate() error { return validateRequest(r) }

// ValidateRequest is the validation half of an upsert.
func (r UpsertItemRequest) ValidateRequest() ValidateItemRequest {
	return ValidateItemRequest{
		PlanID:     r.PlanID,
		ItemID:     r.ItemID,
		TermID:     r.TermID,
		Position:   r.Position,
		RawInput:   r.RawInput,
		Completion: r.Completion,
	}
}

type CreatePlanRequest struct {
	UserID           string `validate:"required"`
	ProgramVersionID string `validate:"required"`
	Name             string `validate:"required,max=200"`
}

func (r CreatePlanRequest) Validate() error { return validateRequest(r) }

// ValidationOutcome is the result of validating one plan item. Invalid
// courses are outcomes, not errors.
type ValidationOutcome struct {
	IsValid        bool
	Reason         *domain.ValidationReason
	MissingPrereqs []string
	CanonicalCode  *string
	CourseID       *string
	OriginalInput  string
	SnapshotID     string
	SnapshotSource string
	SyncedAt       time.Time
}

// Invalid records a failed outcome with the given reason.
func (o *ValidationOutcome) Invalid(reason domain.ValidationReason) *ValidationOutcome {
	o.IsValid = false
	o.Reason = &reason
	return o
}

// UpsertResult is the persisted item, its validation outcome and whether the
// write dropped a READY plan back to DRAFT.
type UpsertResult struct {
	Item     *domain.PlanItem
	Outcome  *ValidationOutcome
	Reverted bool
}

// PlanView is a plan with its items ordered by term then position.
type PlanView struct {
	Plan  *domain.DegreePlan
	Items []*domain.PlanItem
	Terms map[string]*domain.Term
}

// ImportResult counts what a catalog import persisted.
type ImportResult struct {
	Snapshot         *domain.CatalogSnapshot
	TermCount        int
	CourseCount      int
	OfferingCount    int
	RuleCount        int
	RequirementCount int
	ProgramVersions  []*domain.ProgramVersion
}
