package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Dialect names the schema a stored rule was written in.
type Dialect string

const (
	DialectCurrent Dialect = "current"
	DialectLegacy  Dialect = "legacy"
)

// Rule is a stored rule in either dialect. Exactly one of Current, Legacy
// and Malformed is set for a parsed rule.
type Rule struct {
	Current   *Node
	Legacy    *LegacyNode
	Malformed *MalformedRule
}

// MalformedRule is a stored payload that could not be decoded in the
// dialect it claims. It evaluates as unsupported.
type MalformedRule struct {
	Dialect Dialect
	Raw     json.RawMessage
	Err     error
}

// CurrentRule wraps a current-dialect tree.
func CurrentRule(n *Node) Rule { return Rule{Current: n} }

// LegacyRule wraps a legacy-dialect tree.
func LegacyRule(n *LegacyNode) Rule { return Rule{Legacy: n} }

// IsZero reports whether the rule holds no tree at all.
func (r Rule) IsZero() bool { return r.Current == nil && r.Legacy == nil && r.Malformed == nil }

// Dialect reports which dialect the rule was written in.
func (r Rule) Dialect() Dialect {
	switch {
	case r.Current != nil:
		return DialectCurrent
	case r.Malformed != nil:
		return r.Malformed.Dialect
	default:
		return DialectLegacy
	}
}

// SchemaVersion is the persisted schema version of the rule: 2 for the
// current dialect, 1 for legacy.
func (r Rule) SchemaVersion() int {
	if r.Dialect() == DialectCurrent {
		return 2
	}
	return 1
}

var errEmptyRule = errors.New("empty rule payload")

// Parse decodes a stored rule. An object with a string "type" key is the
// current dialect and is decoded strictly; anything else decodes as legacy.
// A payload that fails to decode is kept as a MalformedRule, and a nested
// current-dialect node that fails to decode becomes LegacyUnrecognized, so
// stored data never stops evaluation. Only an empty payload is an error.
func Parse(data []byte) (Rule, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Rule{}, errEmptyRule
	}
	raw := append(json.RawMessage(nil), data...)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err == nil && hasStringType(fields) {
		node, err := decodeNode(data)
		if err != nil {
			return Rule{Malformed: &MalformedRule{Dialect: DialectCurrent, Raw: raw, Err: err}}, nil
		}
		return CurrentRule(node), nil
	}

	var legacy LegacyNode
	if err := json.Unmarshal(data, &legacy); err != nil {
		err = fmt.Errorf("decoding %s rule: %w", DialectLegacy, err)
		return Rule{Malformed: &MalformedRule{Dialect: DialectLegacy, Raw: raw, Err: err}}, nil
	}
	return LegacyRule(&legacy), nil
}

// ParseStrict is Parse for ingest: any decoding failure, top-level or
// nested, is returned as an error.
func ParseStrict(data []byte) (Rule, error) {
	rule, err := Parse(data)
	if err != nil {
		return Rule{}, err
	}
	if err := rule.DecodeErr(); err != nil {
		return Rule{}, err
	}
	return rule, nil
}

// DecodeErr returns the first decoding failure recorded while parsing the
// rule, or nil when every node decoded.
func (r Rule) DecodeErr() error {
	if r.Malformed != nil {
		return r.Malformed.Err
	}
	return r.Legacy.decodeErr()
}

func (r Rule) MarshalJSON() ([]byte, error) {
	switch {
	case r.Current != nil:
		return json.Marshal(r.Current)
	case r.Legacy != nil:
		return json.Marshal(r.Legacy)
	case r.Malformed != nil:
		return r.Malformed.Raw, nil
	default:
		return []byte("null"), nil
	}
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
