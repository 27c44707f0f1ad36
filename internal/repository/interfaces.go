package repository

import (
	"context"

	"github.com/alexanderramin/gradpath/internal/domain"
)

// CatalogReader is read-only and snapshot-scoped. Every lookup that can
// cross snapshots takes the snapshot id explicitly.
type CatalogReader interface {
	GetSnapshot(ctx context.Context, id string) (*domain.CatalogSnapshot, error)
	GetTerm(ctx context.Context, snapshotID, termID string) (*domain.Term, error)
	ListTerms(ctx context.Context, snapshotID string) ([]*domain.Term, error)
	GetTermsByIDs(ctx context.Context, ids []string) (map[string]*domain.Term, error)
	GetCourseByCode(ctx context.Context, snapshotID, code string) (*domain.Course, error)
	GetCourseByID(ctx context.Context, id string) (*domain.Course, error)
	GetOffering(ctx context.Context, snapshotID, courseID, termID string) (*domain.CourseOffering, error)
	GetPrerequisiteRule(ctx context.Context, snapshotID, courseID string) (*domain.CourseRule, error)
	GetRequirementNodes(ctx context.Context, requirementSetID string) ([]*domain.RequirementNode, error)
	GetProgramVersion(ctx context.Context, id string) (*domain.ProgramVersion, error)
	GetProgramByCode(ctx context.Context, code, campus string) (*domain.Program, error)
}

// CatalogWriter seeds snapshot data. It is only used by catalog import.
type CatalogWriter interface {
	CreateSnapshot(ctx context.Context, s *domain.CatalogSnapshot) error
	CreateTerm(ctx context.Context, t *domain.Term) error
	CreateCourse(ctx context.Context, c *domain.Course) error
	CreateOffering(ctx context.Context, o *domain.CourseOffering) error
	CreateCourseRule(ctx context.Context, r *domain.CourseRule) error
	CreateProgram(ctx context.Context, p *domain.Program) error
	CreateRequirementSet(ctx context.Context, s *domain.RequirementSet) error
	CreateRequirementNode(ctx context.Context, n *domain.RequirementNode) error
	CreateProgramVersion(ctx context.Context, v *domain.ProgramVersion) error
}

type PlanStore interface {
	Create(ctx context.Context, p *domain.DegreePlan) error
	GetByID(ctx context.Context, id string) (*domain.DegreePlan, error)
	UpdateState(ctx context.Context, p *domain.DegreePlan) error
}

type PlanItemStore interface {
	GetByID(ctx context.Context, id string) (*domain.PlanItem, error)
	GetBySlot(ctx context.Context, planID, termID string, position int) (*domain.PlanItem, error)
	ListByPlan(ctx context.Context, planID string) ([]*domain.PlanItem, error)
	CountByStatus(ctx context.Context, planID string, status domain.PlanItemStatus) (int, error)
	Upsert(ctx context.Context, item *domain.PlanItem) error
}

// AuditStore is append-only: records are created and read, never updated.
type AuditStore interface {
	Create(ctx context.Context, a *domain.AuditRecord) error
	GetByID(ctx context.Context, id string) (*domain.AuditRecord, error)
	Latest(ctx context.Context, planID string) (*domain.AuditRecord, error)
	ListByPlan(ctx context.Context, planID string) ([]*domain.AuditRecord, error)
}

type AuditLogStore interface {
	Append(ctx context.Context, e *domain.AuditLogEntry) error
	ListByResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLogEntry, error)
}
