package testutil

import (
	"time"

	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/google/uuid"
)

// FixedNow is the clock every fixture stamps rows with.
var FixedNow = time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC)

func NewTestSnapshot() *domain.CatalogSnapshot {
	return &domain.CatalogSnapshot{
		ID:        uuid.New().String(),
		Source:    "TEST",
		Checksum:  "sha256:test",
		SyncedAt:  FixedNow,
		CreatedAt: FixedNow,
	}
}

func NewTestTerm(snapshotID, code string, year int, season domain.Season) *domain.Term {
	return &domain.Term{
		ID:         uuid.New().String(),
		SnapshotID: snapshotID,
		Campus:     "NB",
		Code:       code,
		Year:       year,
		Season:     season,
	}
}

// Course options
type CourseOption func(*domain.Course)

func WithCredits(n int) CourseOption {
	return func(c *domain.Course) {
		c.Credits = n
	}
}

func WithTitle(title string) CourseOption {
	return func(c *domain.Course) {
		c.Title = title
	}
}

func NewTestCourse(snapshotID, code string, opts ...CourseOption) *domain.Course {
	c := &domain.Course{
		ID:         uuid.New().String(),
		SnapshotID: snapshotID,
		Code:       code,
		Title:      "Course " + code,
		Credits:    3,
		Active:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func NewTestOffering(snapshotID, courseID, termID string, offered bool) *domain.CourseOffering {
	return &domain.CourseOffering{
		ID:         uuid.New().String(),
		SnapshotID: snapshotID,
		CourseID:   courseID,
		TermID:     termID,
		Offered:    offered,
	}
}

func NewTestPrereq(snapshotID, courseID string, rule rules.Rule) *domain.CourseRule {
	return &domain.CourseRule{
		ID:         uuid.New().String(),
		SnapshotID: snapshotID,
		CourseID:   courseID,
		Kind:       domain.RulePrereq,
		Rule:       rule,
	}
}

func NewTestProgram(code string) *domain.Program {
	return &domain.Program{
		ID:     uuid.New().String(),
		Code:   code,
		Name:   "Program " + code,
		Campus: "NB",
	}
}

func NewTestRequirementSet(snapshotID, programID string) *domain.RequirementSet {
	return &domain.RequirementSet{
		ID:         uuid.New().String(),
		SnapshotID: snapshotID,
		ProgramID:  programID,
		Label:      "Core",
	}
}

func NewTestRequirementNode(setID string, orderIndex int, rule rules.Rule) *domain.RequirementNode {
	return &domain.RequirementNode{
		ID:               uuid.New().String(),
		RequirementSetID: setID,
		OrderIndex:       orderIndex,
		Label:            "Requirement",
		Rule:             rule,
	}
}

func NewTestProgramVersion(programID, snapshotID, setID string) *domain.ProgramVersion {
	return &domain.ProgramVersion{
		ID:               uuid.New().String(),
		ProgramID:        programID,
		SnapshotID:       snapshotID,
		RequirementSetID: setID,
		CatalogYear:      "2025",
		Campus:           "NB",
		EffectiveFrom:    FixedNow,
	}
}

// Plan options
type PlanOption func(*domain.DegreePlan)

func WithCertState(s domain.CertificationState) PlanOption {
	return func(p *domain.DegreePlan) {
		p.CertificationState = s
	}
}

func NewTestPlan(version *domain.ProgramVersion, opts ...PlanOption) *domain.DegreePlan {
	p := &domain.DegreePlan{
		ID:                     uuid.New().String(),
		UserID:                 "student-1",
		ProgramVersionID:       version.ID,
		Name:                   "Four year plan",
		PinnedSnapshotID:       version.SnapshotID,
		PinnedRequirementSetID: version.RequirementSetID,
		CertificationState:     domain.CertDraft,
		CreatedAt:              FixedNow,
		UpdatedAt:              FixedNow,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PlanItem options
type ItemOption func(*domain.PlanItem)

func WithCompletion(c domain.CompletionStatus) ItemOption {
	return func(i *domain.PlanItem) {
		i.Completion = c
	}
}

func WithItemStatus(s domain.PlanItemStatus) ItemOption {
	return func(i *domain.PlanItem) {
		i.Status = s
	}
}

func WithCanonicalCode(code string) ItemOption {
	return func(i *domain.PlanItem) {
		i.CanonicalCode = &code
	}
}

func WithCourseID(id string) ItemOption {
	return func(i *domain.PlanItem) {
		i.CourseID = &id
	}
}

func NewTestItem(planID, termID string, position int, raw string, opts ...ItemOption) *domain.PlanItem {
	i := &domain.PlanItem{
		ID:         uuid.New().String(),
		PlanID:     planID,
		TermID:     termID,
		Position:   position,
		RawInput:   raw,
		Status:     domain.ItemDraft,
		Completion: domain.CompletionBlank,
		CreatedAt:  FixedNow,
		UpdatedAt:  FixedNow,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}
