package service

import (
	"context"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/domain"
)

type ItemService interface {
	// Validate is a dry run: nothing is persisted.
	Validate(ctx context.Context, req app.ValidateItemRequest) (*app.ValidationOutcome, error)
	Upsert(ctx context.Context, req app.UpsertItemRequest) (*app.UpsertResult, error)
}

type AuditService interface {
	Recompute(ctx context.Context, planID string) (*domain.AuditRecord, error)
	Latest(ctx context.Context, planID string) (*domain.AuditRecord, error)
	History(ctx context.Context, planID string) ([]*domain.AuditRecord, error)
}

type ReadinessService interface {
	Check(ctx context.Context, planID string) (*app.ReadyCheck, error)
}

type CertificationService interface {
	MarkReady(ctx context.Context, planID string) (*app.ReadyCheck, error)
	Finalize(ctx context.Context, planID string) (*app.ReadyCheck, error)
}

type PlanService interface {
	Create(ctx context.Context, req app.CreatePlanRequest) (*domain.DegreePlan, error)
	Get(ctx context.Context, planID string) (*app.PlanView, error)
	Terms(ctx context.Context, planID string) ([]*domain.Term, error)
	AuditLog(ctx context.Context, planID string) ([]*domain.AuditLogEntry, error)
}

type CatalogService interface {
	Import(ctx context.Context, path string) (*app.ImportResult, error)
}
