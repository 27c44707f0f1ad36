package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/gradpath/internal/canonical"
)

// ErrPlanCertified is returned for any mutation or transition attempted on a
// CERTIFIED plan.
var ErrPlanCertified = errors.New("plan is certified")

// DegreePlan is a student's plan pinned to one catalog snapshot and one
// requirement set for its whole life.
type DegreePlan struct {
	ID                     string
	UserID                 string
	ProgramVersionID       string
	Name                   string
	PinnedSnapshotID       string
	PinnedRequirementSetID string
	CertificationState     CertificationState
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (p *DegreePlan) IsCertified() bool {
	return p.CertificationState == CertCertified
}

// MarkReady moves a DRAFT plan to READY. Marking an already READY plan is a
// no-op apart from the timestamp.
func (p *DegreePlan) MarkReady(now time.Time) error {
	switch p.CertificationState {
	case CertDraft, CertReady:
		p.CertificationState = CertReady
		p.UpdatedAt = now
		return nil
	case CertCertified:
		return ErrPlanCertified
	default:
		return fmt.Errorf("cannot mark plan ready from state %q", p.CertificationState)
	}
}

// Certify moves a READY plan to CERTIFIED.
func (p *DegreePlan) Certify(now time.Time) error {
	switch p.CertificationState {
	case CertReady:
		p.CertificationState = CertCertified
		p.UpdatedAt = now
		return nil
	case CertCertified:
		return ErrPlanCertified
	default:
		return fmt.Errorf("cannot certify plan from state %q", p.CertificationState)
	}
}

// RevertToDraft drops a READY plan back to DRAFT and reports whether a
// transition happened. DRAFT plans are left alone.
func (p *DegreePlan) RevertToDraft(now time.Time) (bool, error) {
	switch p.CertificationState {
	case CertReady:
		p.CertificationState = CertDraft
		p.UpdatedAt = now
		return true, nil
	case CertDraft:
		return false, nil
	case CertCertified:
		return false, ErrPlanCertified
	default:
		return false, fmt.Errorf("cannot revert plan from state %q", p.CertificationState)
	}
}

// ValidationMeta is persisted alongside a validated plan item.
type ValidationMeta struct {
	MissingPrereqs               []string         `json:"missingPrereqs,omitempty"`
	CompletionStatusAtValidation CompletionStatus `json:"completionStatusAtValidation,omitempty"`
}

// PlanItem is one slot of a plan: a term, a position within it, and the
// student's free-form course input.
type PlanItem struct {
	ID              string
	PlanID          string
	TermID          string
	Position        int
	RawInput        string
	CanonicalCode   *string
	CourseID        *string
	Status          PlanItemStatus
	Completion      CompletionStatus
	Reason          *ValidationReason
	Meta            *ValidationMeta
	LastValidatedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EvidenceCode returns the code this item contributes as history: the stored
// canonical code, or the code extracted from the raw input.
func (i *PlanItem) EvidenceCode() (string, bool) {
	if i.CanonicalCode != nil && *i.CanonicalCode != "" {
		return *i.CanonicalCode, true
	}
	return canonical.ExtractCode(i.RawInput)
}
