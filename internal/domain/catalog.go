package domain

import (
	"time"

	"github.com/alexanderramin/gradpath/internal/rules"
)

type CatalogSnapshot struct {
	ID        string
	Source    string
	Checksum  string
	SyncedAt  time.Time
	CreatedAt time.Time
}

type Course struct {
	ID         string
	SnapshotID string
	Code       string
	Title      string
	Credits    int
	Active     bool
	Category   string
}

type CourseOffering struct {
	ID         string
	SnapshotID string
	CourseID   string
	TermID     string
	Offered    bool
}

// CourseRule is a stored prerequisite, corequisite or restriction rule for
// one course. Rules are immutable once stored.
type CourseRule struct {
	ID         string
	SnapshotID string
	CourseID   string
	Kind       RuleKind
	Rule       rules.Rule
	Notes      string
}

type Program struct {
	ID     string
	Code   string
	Name   string
	Campus string
}

type RequirementSet struct {
	ID         string
	SnapshotID string
	ProgramID  string
	Label      string
}

// RequirementNode is one top-level degree requirement. OrderIndex is unique
// within its set and fixes evaluation and reporting order.
type RequirementNode struct {
	ID               string
	RequirementSetID string
	OrderIndex       int
	Label            string
	Rule             rules.Rule
}

// ProgramVersion ties a program's catalog year to the snapshot and
// requirement set a new plan pins.
type ProgramVersion struct {
	ID               string
	ProgramID        string
	SnapshotID       string
	RequirementSetID string
	CatalogYear      string
	Campus           string
	EffectiveFrom    time.Time
	EffectiveTo      *time.Time
}
