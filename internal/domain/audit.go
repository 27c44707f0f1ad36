package domain

import "time"

// AuditSummary aggregates one audit computation.
type AuditSummary struct {
	CompletedCredits      int     `json:"completedCredits"`
	PendingCredits        int     `json:"pendingCredits"`
	SatisfiedRequirements int     `json:"satisfiedRequirements"`
	PendingRequirements   int     `json:"pendingRequirements"`
	MissingRequirements   int     `json:"missingRequirements"`
	UnknownRequirements   int     `json:"unknownRequirements"`
	PercentComplete       float64 `json:"percentComplete"`
	KnownRequirementCount int     `json:"knownRequirementCount"`
	TotalRequirementCount int     `json:"totalRequirementCount"`
}

// RequirementDetail explains a non-satisfied requirement. UNKNOWN results
// carry Reason; PENDING and MISSING results carry the missing courses of the
// completed-only evaluation.
type RequirementDetail struct {
	Reason         string   `json:"reason,omitempty"`
	MissingCourses []string `json:"missingCourses,omitempty"`
	Explanations   []string `json:"explanations"`
}

type RequirementResult struct {
	ID                string
	AuditID           string
	RequirementNodeID string
	Status            RequirementStatus
	Detail            *RequirementDetail
}

// AuditRecord is an immutable audit computation. Records are appended, never
// updated.
type AuditRecord struct {
	ID                  string
	PlanID              string
	SnapshotID          string
	RequirementSetID    string
	ComputedAt          time.Time
	HasUnsupportedRules bool
	Summary             AuditSummary
	Requirements        []RequirementResult
}

// AuditLogEntry records a certification transition.
type AuditLogEntry struct {
	ID           string
	ActorUserID  string
	Action       AuditAction
	ResourceType string
	ResourceID   string
	Meta         map[string]string
	CreatedAt    time.Time
}
