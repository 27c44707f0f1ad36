package importer

import (
	"testing"
	"time"

	"github.com/alexanderramin/gradpath/internal/domain"
	"github.com/alexanderramin/gradpath/internal/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert_Sample(t *testing.T) {
	file, err := LoadCatalogFile("testdata/catalog.yaml")
	require.NoError(t, err)
	require.Empty(t, ValidateCatalogFile(file))

	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	cat, err := Convert(file, now)
	require.NoError(t, err)

	assert.Equal(t, "registrar-export", cat.Snapshot.Source)
	assert.Equal(t, file.Checksum, cat.Snapshot.Checksum)
	assert.True(t, time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).Equal(cat.Snapshot.SyncedAt))
	assert.True(t, now.Equal(cat.Snapshot.CreatedAt))

	require.Len(t, cat.Terms, 3)
	for _, term := range cat.Terms {
		assert.Equal(t, cat.Snapshot.ID, term.SnapshotID)
		assert.Equal(t, "NB", term.Campus, "campus cascades from defaults")
	}
	assert.Equal(t, domain.SeasonSummer, cat.Terms[0].Season)

	require.Len(t, cat.Courses, 5)
	assert.True(t, cat.Courses[0].Active)

	require.Len(t, cat.Offerings, 8)
	assert.True(t, cat.Offerings[0].Offered)
	assert.False(t, cat.Offerings[7].Offered)

	require.Len(t, cat.Rules, 3)
	assert.Equal(t, domain.RulePrereq, cat.Rules[0].Kind)
	assert.Equal(t, rules.DialectLegacy, cat.Rules[0].Rule.Dialect())
	assert.Equal(t, rules.LegacyCountAtLeast, cat.Rules[2].Rule.Legacy.Kind)

	require.Len(t, cat.Programs, 1)
	bundle := cat.Programs[0]
	assert.Equal(t, "NB", bundle.Program.Campus)
	assert.Equal(t, bundle.Program.ID, bundle.Set.ProgramID)
	assert.Equal(t, bundle.Set.ID, bundle.Version.RequirementSetID)
	assert.Equal(t, cat.Snapshot.ID, bundle.Version.SnapshotID)
	assert.Nil(t, bundle.Version.EffectiveTo)
	require.Len(t, bundle.Requirements, 3)
	for i, node := range bundle.Requirements {
		assert.Equal(t, i+1, node.OrderIndex)
	}
	assert.Equal(t, rules.DialectCurrent, bundle.Requirements[0].Rule.Dialect())
	assert.Equal(t, rules.DialectLegacy, bundle.Requirements[1].Rule.Dialect())
}

func TestProgramBundle_UseProgram(t *testing.T) {
	cat, err := Convert(parse(t, minimalCatalog+`programs:
  - code: MATH
    name: Math
    catalog_year: "2025"
    effective_from: "2025-09-01"
    effective_to: "2029-08-31"
    requirements:
      - label: calc
        rule: { course: "01:640:151" }
`), time.Now().UTC())
	require.NoError(t, err)
	bundle := cat.Programs[0]
	require.NotNil(t, bundle.Version.EffectiveTo)

	existing := &domain.Program{ID: "existing", Code: "MATH", Campus: "NB"}
	bundle.UseProgram(existing)
	assert.Equal(t, "existing", bundle.Set.ProgramID)
	assert.Equal(t, "existing", bundle.Version.ProgramID)
}
