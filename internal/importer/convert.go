package importer

import (
	"fmt"
	"time"

	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/google/uuid"
)

// Catalog is a converted catalog file: domain rows ready for persistence,
// all pointing at one new snapshot.
type Catalog struct {
	Snapshot  *domain.CatalogSnapshot
	Terms     []*domain.Term
	Courses   []*domain.Course
	Offerings []*domain.CourseOffering
	Rules     []*domain.CourseRule
	Programs  []*ProgramBundle
}

// ProgramBundle is one program with the requirement set and program version
// the import creates for it. Program.ID may be replaced by an existing row
// with the same code and campus at persist time.
type ProgramBundle struct {
	Program      *domain.Program
	Set          *domain.RequirementSet
	Requirements []*domain.RequirementNode
	Version      *domain.ProgramVersion
}

// Convert transforms a validated CatalogFile into domain rows.
// Call ValidateCatalogFile first; Convert assumes the file is valid.
func Convert(file *CatalogFile, now time.Time) (*Catalog, error) {
	syncedAt := now
	if file.Snapshot.SyncedAt != "" {
		t, err := time.Parse(time.RFC3339, file.Snapshot.SyncedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing synced_at: %w", err)
		}
		syncedAt = t.UTC()
	}

	snap := &domain.CatalogSnapshot{
		ID:        uuid.New().String(),
		Source:    file.Snapshot.Source,
		Checksum:  file.Checksum,
		SyncedAt:  syncedAt,
		CreatedAt: now,
	}
	out := &Catalog{Snapshot: snap}

	termIDs := make(map[string]string, len(file.Terms))
	for _, t := range file.Terms {
		term := &domain.Term{
			ID:         uuid.New().String(),
			SnapshotID: snap.ID,
			Campus:     campusFor(t.Campus, file.Defaults),
			Code:       t.Code,
			Year:       t.Year,
			Season:     domain.Season(t.Season),
		}
		termIDs[t.Code] = term.ID
		out.Terms = append(out.Terms, term)
	}

	courseIDs := make(map[string]string, len(file.Courses))
	for _, c := range file.Courses {
		course := &domain.Course{
			ID:         uuid.New().String(),
			SnapshotID: snap.ID,
			Code:       c.Code,
			Title:      c.Title,
			Credits:    c.Credits,
			Active:     domain.ValueOr(true, c.Active),
			Category:   c.Category,
		}
		courseIDs[c.Code] = course.ID
		out.Courses = append(out.Courses, course)
	}

	for _, o := range file.Offerings {
		courseID, ok := courseIDs[o.Course]
		if !ok {
			return nil, fmt.Errorf("offering course %q not found", o.Course)
		}
		termID, ok := termIDs[o.Term]
		if !ok {
			return nil, fmt.Errorf("offering term %q not found", o.Term)
		}
		out.Offerings = append(out.Offerings, &domain.CourseOffering{
			ID:         uuid.New().String(),
			SnapshotID: snap.ID,
			CourseID:   courseID,
			TermID:     termID,
			Offered:    domain.ValueOr(true, o.Offered),
		})
	}

	for _, r := range file.Rules {
		courseID, ok := courseIDs[r.Course]
		if !ok {
			return nil, fmt.Errorf("rule course %q not found", r.Course)
		}
		rule, err := rules.ParseStrict(r.Rule.JSON)
		if err != nil {
			return nil, fmt.Errorf("parsing rule for %q: %w", r.Course, err)
		}
		out.Rules = append(out.Rules, &domain.CourseRule{
			ID:         uuid.New().String(),
			SnapshotID: snap.ID,
			CourseID:   courseID,
			Kind:       domain.RuleKind(ruleKind(r.Kind)),
			Rule:       rule,
			Notes:      r.Notes,
		})
	}

	for _, p := range file.Programs {
		bundle, err := convertProgram(p, snap, file.Defaults)
		if err != nil {
			return nil, err
		}
		out.Programs = append(out.Programs, bundle)
	}

	return out, nil
}

func convertProgram(p ProgramImport, snap *domain.CatalogSnapshot, defaults *DefaultsImport) (*ProgramBundle, error) {
	campus := campusFor(p.Campus, defaults)
	program := &domain.Program{
		ID:     uuid.New().String(),
		Code:   p.Code,
		Name:   p.Name,
		Campus: campus,
	}
	set := &domain.RequirementSet{
		ID:         uuid.New().String(),
		SnapshotID: snap.ID,
		ProgramID:  program.ID,
		Label:      domain.Coalesce(p.Label, p.Name+" "+p.CatalogYear),
	}

	bundle := &ProgramBundle{Program: program, Set: set}
	for i, req := range p.Requirements {
		rule, err := rules.ParseStrict(req.Rule.JSON)
		if err != nil {
			return nil, fmt.Errorf("parsing requirement %q of %s: %w", req.Label, p.Code, err)
		}
		bundle.Requirements = append(bundle.Requirements, &domain.RequirementNode{
			ID:               uuid.New().String(),
			RequirementSetID: set.ID,
			OrderIndex:       i + 1,
			Label:            req.Label,
			Rule:             rule,
		})
	}

	from, err := time.Parse(time.DateOnly, p.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("parsing effective_from of %s: %w", p.Code, err)
	}
	var to *time.Time
	if p.EffectiveTo != "" {
		t, err := time.Parse(time.DateOnly, p.EffectiveTo)
		if err != nil {
			return nil, fmt.Errorf("parsing effective_to of %s: %w", p.Code, err)
		}
		to = &t
	}
	bundle.Version = &domain.ProgramVersion{
		ID:               uuid.New().String(),
		ProgramID:        program.ID,
		SnapshotID:       snap.ID,
		RequirementSetID: set.ID,
		CatalogYear:      p.CatalogYear,
		Campus:           campus,
		EffectiveFrom:    from,
		EffectiveTo:      to,
	}
	return bundle, nil
}

// UseProgram points the bundle at an already stored program row.
func (b *ProgramBundle) UseProgram(existing *domain.Program) {
	b.Program = existing
	b.Set.ProgramID = existing.ID
	b.Version.ProgramID = existing.ID
}

func campusFor(campus string, defaults *DefaultsImport) string {
	var fallback string
	if defaults != nil {
		fallback = defaults.Campus
	}
	return domain.Coalesce(campus, fallback)
}

func ruleKind(kind string) string {
	return domain.Coalesce(kind, string(domain.RulePrereq))
}
