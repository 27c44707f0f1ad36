package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/gradpath/internal/app"
	"github.com/alexanderramin/gradpath/internal/db"
	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/importer"
	"github.com/alexanderramin/gradpath/internal/repository"
)

// catalogStore is what an import writes through: the catalog writer plus the
// program lookup used to reuse programs across snapshots.
type catalogStore interface {
	repository.CatalogWriter
	GetProgramByCode(ctx context.Context, code, campus string) (*domain.Program, error)
}

type catalogService struct {
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewCatalogService(uow db.UnitOfWork, observers ...UseCaseObserver) CatalogService {
	return &catalogService{uow: uow, observer: useCaseObserverOrNoop(observers)}
}

// Import loads a catalog file and persists it as a new snapshot in one
// transaction. Nothing is written if any part of the file is invalid.
func (s *catalogService) Import(ctx context.Context, path string) (result *app.ImportResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"path": path}
	defer func() {
		if result != nil {
			fields["snapshot_id"] = result.Snapshot.ID
			fields["course_count"] = result.CourseCount
		}
		observe(ctx, s.observer, "import-catalog", startedAt, fields, err)
	}()

	file, err := importer.LoadCatalogFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	if errs := importer.ValidateCatalogFile(file); len(errs) > 0 {
		return nil, fmt.Errorf("%w: catalog validation failed: %w", app.ErrInvalidRequest, errors.Join(errs...))
	}
	catalog, err := importer.Convert(file, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("converting catalog: %w", err)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		var repo catalogStore = repository.NewSQLiteCatalogRepo(tx)
		if err := repo.CreateSnapshot(ctx, catalog.Snapshot); err != nil {
			return err
		}
		for _, t := range catalog.Terms {
			if err := repo.CreateTerm(ctx, t); err != nil {
				return err
			}
		}
		for _, c := range catalog.Courses {
			if err := repo.CreateCourse(ctx, c); err != nil {
				return err
			}
		}
		for _, o := range catalog.Offerings {
			if err := repo.CreateOffering(ctx, o); err != nil {
				return err
			}
		}
		for _, r := range catalog.Rules {
			if err := repo.CreateCourseRule(ctx, r); err != nil {
				return err
			}
		}
		for _, b := range catalog.Programs {
			if err := persistProgram(ctx, repo, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result = &app.ImportResult{
		Snapshot:      catalog.Snapshot,
		TermCount:     len(catalog.Terms),
		CourseCount:   len(catalog.Courses),
		OfferingCount: len(catalog.Offerings),
		RuleCount:     len(catalog.Rules),
	}
	for _, b := range catalog.Programs {
		result.RequirementCount += len(b.Requirements)
		result.ProgramVersions = append(result.ProgramVersions, b.Version)
	}
	return result, nil
}

// persistProgram reuses a stored program with the same code and campus, so
// each import adds a new requirement set and version to it.
func persistProgram(ctx context.Context, repo catalogStore, b *importer.ProgramBundle) error {
	existing, err := repo.GetProgramByCode(ctx, b.Program.Code, b.Program.Campus)
	switch {
	case err == nil:
		b.UseProgram(existing)
	case errors.Is(err, repository.ErrNotFound):
		if err := repo.CreateProgram(ctx, b.Program); err != nil {
			return err
		}
	default:
		return err
	}

	if err := repo.CreateRequirementSet(ctx, b.Set); err != nil {
		return err
	}
	for _, n := range b.Requirements {
		if err := repo.CreateRequirementNode(ctx, n); err != nil {
			return err
		}
	}
	return repo.CreateProgramVersion(ctx, b.Version)
}
