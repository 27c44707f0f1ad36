package rules

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ShapeError reports a rule tree that does not match its dialect's JSON
// Schema.
type ShapeError struct {
	Dialect Dialect
	Errors  []FieldError
}

// FieldError is a single schema violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (e *ShapeError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s rule shape invalid:", e.Dialect))
	for i, fe := range e.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %s: %s", i+1, fe.Field, fe.Message))
	}
	return sb.String()
}

// SemanticError reports a well-shaped current-dialect tree that violates a
// cardinality constraint.
type SemanticError struct {
	Path    string
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("rule semantics invalid at %s: %s", e.Path, e.Message)
}

// ValidateShape checks a current-dialect tree against the current schema.
func ValidateShape(n *Node) error {
	if n == nil {
		return &ShapeError{Dialect: DialectCurrent, Errors: []FieldError{{Field: "(root)", Message: "rule is empty"}}}
	}
	return validateAgainst(DialectCurrent, currentSchema, n)
}

// ValidateLegacyShape checks a legacy tree against the legacy schema.
func ValidateLegacyShape(n *LegacyNode) error {
	if n == nil {
		return &ShapeError{Dialect: DialectLegacy, Errors: []FieldError{{Field: "(root)", Message: "rule is empty"}}}
	}
	return validateAgainst(DialectLegacy, legacySchema, n)
}

func validateAgainst(dialect Dialect, load func() (*gojsonschema.Schema, error), doc any) error {
	schema, err := load()
	if err != nil {
		return fmt.Errorf("loading %s rule schema: %w", dialect, err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ShapeError{Dialect: dialect, Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}

	shapeErr := &ShapeError{Dialect: dialect, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		shapeErr.Errors = append(shapeErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return shapeErr
}

// ValidateSemantics checks the cardinality constraints a schema cannot
// express: COURSE_SET holds exactly one course, ALL_OF is non-empty, and
// N_OF and COUNT_MIN thresholds lie within 1..len(children).
func ValidateSemantics(n *Node) error {
	return validateSemantics(n, "(root)")
}

func validateSemantics(n *Node, path string) error {
	if n == nil {
		return &SemanticError{Path: path, Message: "node is empty"}
	}
	switch n.Type {
	case NodeCourseSet:
		if len(n.Courses) != 1 {
			return &SemanticError{Path: path, Message: fmt.Sprintf("COURSE_SET must contain exactly one course, got %d", len(n.Courses))}
		}
		return nil
	case NodeAllOf:
		if len(n.Children) == 0 {
			return &SemanticError{Path: path, Message: "ALL_OF must have at least one child"}
		}
	case NodeNOf, NodeCountMin:
		required := n.minRequired()
		if required < 1 || required > len(n.Children) {
			return &SemanticError{Path: path, Message: fmt.Sprintf("%s threshold %d must be between 1 and %d", n.Type, required, len(n.Children))}
		}
	default:
		return &SemanticError{Path: path, Message: fmt.Sprintf("unknown node type %q", n.Type)}
	}
	for i, child := range n.Children {
		if err := validateSemantics(child, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCompat is the ingest-time check for stored rules. Rules that
// convert are validated as current-dialect trees; rules that do not convert
// must still be well-formed legacy trees, so known legacy shapes such as
// countAtLeast are accepted and evaluated as unsupported later.
func ValidateCompat(rule Rule) error {
	if err := rule.DecodeErr(); err != nil {
		return err
	}
	if rule.Legacy == nil && rule.Current == nil {
		return errEmptyRule
	}
	if node, ok := Convert(rule); ok {
		if err := ValidateShape(node); err != nil {
			return err
		}
		return ValidateSemantics(node)
	}
	return ValidateLegacyShape(rule.Legacy)
}
