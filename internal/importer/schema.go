package importer

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogFile is the top-level structure of a catalog snapshot file. The
// same structure is read from YAML or JSON.
type CatalogFile struct {
	Snapshot  SnapshotImport   `yaml:"snapshot" validate:"required"`
	Defaults  *DefaultsImport  `yaml:"defaults,omitempty"`
	Terms     []TermImport     `yaml:"terms" validate:"required,min=1,dive"`
	Courses   []CourseImport   `yaml:"courses" validate:"dive"`
	Offerings []OfferingImport `yaml:"offerings,omitempty" validate:"dive"`
	Rules     []RuleImport     `yaml:"rules,omitempty" validate:"dive"`
	Programs  []ProgramImport  `yaml:"programs,omitempty" validate:"dive"`

	// Checksum is the sha256 of the file bytes, set by LoadCatalogFile.
	Checksum string `yaml:"-"`
}

// SnapshotImport describes where the catalog data came from.
type SnapshotImport struct {
	Source   string `yaml:"source" validate:"required"`
	SyncedAt string `yaml:"synced_at,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// DefaultsImport holds values that cascade to terms and programs.
type DefaultsImport struct {
	Campus string `yaml:"campus,omitempty"`
}

type TermImport struct {
	Code   string `yaml:"code" validate:"required"`
	Campus string `yaml:"campus,omitempty"`
	Year   int    `yaml:"year" validate:"min=1900,max=2200"`
	Season string `yaml:"season" validate:"required,oneof=WINTER SPRING SUMMER FALL"`
}

type CourseImport struct {
	Code     string `yaml:"code" validate:"required,course_code"`
	Title    string `yaml:"title" validate:"required"`
	Credits  int    `yaml:"credits" validate:"min=0,max=30"`
	Category string `yaml:"category,omitempty"`
	Active   *bool  `yaml:"active,omitempty"`
}

// OfferingImport marks a course as offered (or explicitly not offered) in
// the term with the given code.
type OfferingImport struct {
	Course  string `yaml:"course" validate:"required,course_code"`
	Term    string `yaml:"term" validate:"required"`
	Offered *bool  `yaml:"offered,omitempty"`
}

type RuleImport struct {
	Course string    `yaml:"course" validate:"required,course_code"`
	Kind   string    `yaml:"kind,omitempty" validate:"omitempty,oneof=PREREQ COREQ RESTRICTION"`
	Rule   RuleValue `yaml:"rule"`
	Notes  string    `yaml:"notes,omitempty"`
}

type ProgramImport struct {
	Code          string              `yaml:"code" validate:"required"`
	Name          string              `yaml:"name" validate:"required"`
	Campus        string              `yaml:"campus,omitempty"`
	CatalogYear   string              `yaml:"catalog_year" validate:"required"`
	EffectiveFrom string              `yaml:"effective_from" validate:"required,datetime=2006-01-02"`
	EffectiveTo   string              `yaml:"effective_to,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Label         string              `yaml:"label,omitempty"`
	Requirements  []RequirementImport `yaml:"requirements" validate:"required,min=1,dive"`
}

type RequirementImport struct {
	Label string    `yaml:"label" validate:"required"`
	Rule  RuleValue `yaml:"rule"`
}

// RuleValue is a rule tree in either dialect, kept as JSON until it is
// parsed and validated.
type RuleValue struct {
	JSON json.RawMessage
}

func (v *RuleValue) UnmarshalYAML(node *yaml.Node) error {
	var tree any
	if err := node.Decode(&tree); err != nil {
		return fmt.Errorf("decoding rule at line %d: %w", node.Line, err)
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("encoding rule at line %d: %w", node.Line, err)
	}
	v.JSON = data
	return nil
}

func (v RuleValue) IsZero() bool {
	return len(v.JSON) == 0 || string(v.JSON) == "null"
}

// ParseCatalogFile decodes a catalog file from YAML or JSON bytes.
func ParseCatalogFile(data []byte) (*CatalogFile, error) {
	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}
	sum := sha256.Sum256(data)
	file.Checksum = hex.EncodeToString(sum[:])
	return &file, nil
}

// LoadCatalogFile reads and parses a catalog file.
func LoadCatalogFile(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalogFile(data)
}
