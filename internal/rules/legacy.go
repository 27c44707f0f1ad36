package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LegacyKind tags a legacy-dialect node.
type LegacyKind string

const (
	LegacyCourse       LegacyKind = "course"
	LegacyAll          LegacyKind = "all"
	LegacyAny          LegacyKind = "any"
	LegacyCountAtLeast LegacyKind = "countAtLeast"
	// LegacyTyped is a current-dialect node nested inside a legacy tree.
	LegacyTyped LegacyKind = "typed"
	// LegacyUnrecognized holds any payload that matches no legacy shape.
	LegacyUnrecognized LegacyKind = "unrecognized"
)

// LegacyNode is a legacy-dialect rule node.
type LegacyNode struct {
	Kind     LegacyKind
	Course   string
	Count    int
	Children []*LegacyNode
	Typed    *Node
	Raw      json.RawMessage
	// Err records why a nested current-dialect node failed to decode.
	Err error
}

// Course returns a legacy {"course": code} leaf.
func Course(code string) *LegacyNode {
	return &LegacyNode{Kind: LegacyCourse, Course: code}
}

// All returns a legacy {"all": [...]} node.
func All(children ...*LegacyNode) *LegacyNode {
	return &LegacyNode{Kind: LegacyAll, Children: children}
}

// Any returns a legacy {"any": [...]} node.
func Any(children ...*LegacyNode) *LegacyNode {
	return &LegacyNode{Kind: LegacyAny, Children: children}
}

// CountAtLeast returns a legacy {"countAtLeast": {"count": n, "of": [...]}} node.
func CountAtLeast(count int, children ...*LegacyNode) *LegacyNode {
	return &LegacyNode{Kind: LegacyCountAtLeast, Count: count, Children: children}
}

type countAtLeastPayload struct {
	Count int           `json:"count"`
	Of    []*LegacyNode `json:"of"`
}

func (n *LegacyNode) MarshalJSON() ([]byte, error) {
	switch n.Kind {
	case LegacyCourse:
		return json.Marshal(map[string]string{"course": n.Course})
	case LegacyAll, LegacyAny:
		return json.Marshal(map[string][]*LegacyNode{string(n.Kind): n.Children})
	case LegacyCountAtLeast:
		return json.Marshal(map[string]countAtLeastPayload{
			"countAtLeast": {Count: n.Count, Of: n.Children},
		})
	case LegacyTyped:
		return json.Marshal(n.Typed)
	default:
		if len(n.Raw) == 0 {
			return []byte("null"), nil
		}
		return n.Raw, nil
	}
}

// UnmarshalJSON decodes a legacy node. Payloads that match no legacy shape
// decode into LegacyUnrecognized rather than failing, so that "unsupported"
// stays a typed outcome of conversion. A malformed current-dialect node
// nested in the tree is also LegacyUnrecognized, with Err set.
func (n *LegacyNode) UnmarshalJSON(data []byte) error {
	raw := append(json.RawMessage(nil), data...)
	*n = LegacyNode{Kind: LegacyUnrecognized, Raw: raw}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return nil
	}

	if hasStringType(fields) {
		node, err := decodeNode(data)
		if err != nil {
			n.Err = err
			return nil
		}
		*n = LegacyNode{Kind: LegacyTyped, Typed: node}
		return nil
	}

	if len(fields) != 1 {
		return nil
	}

	for key, value := range fields {
		switch LegacyKind(key) {
		case LegacyCourse:
			var code string
			if err := json.Unmarshal(value, &code); err != nil {
				return nil
			}
			*n = LegacyNode{Kind: LegacyCourse, Course: code}
		case LegacyAll, LegacyAny:
			if !isJSONArray(value) {
				return nil
			}
			var children []*LegacyNode
			if err := json.Unmarshal(value, &children); err != nil {
				return err
			}
			*n = LegacyNode{Kind: LegacyKind(key), Children: children}
		case LegacyCountAtLeast:
			payload, ok, err := decodeCountAtLeast(value)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			*n = LegacyNode{Kind: LegacyCountAtLeast, Count: payload.Count, Children: payload.Of}
		}
	}
	return nil
}

func (n *LegacyNode) decodeErr() error {
	if n == nil {
		return nil
	}
	if n.Err != nil {
		return n.Err
	}
	for _, child := range n.Children {
		if err := child.decodeErr(); err != nil {
			return err
		}
	}
	return nil
}

func decodeCountAtLeast(value json.RawMessage) (countAtLeastPayload, bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(value, &fields); err != nil || len(fields) != 2 {
		return countAtLeastPayload{}, false, nil
	}
	countRaw, hasCount := fields["count"]
	ofRaw, hasOf := fields["of"]
	if !hasCount || !hasOf || !isJSONArray(ofRaw) {
		return countAtLeastPayload{}, false, nil
	}
	var count int
	if err := json.Unmarshal(countRaw, &count); err != nil {
		return countAtLeastPayload{}, false, nil
	}
	var of []*LegacyNode
	if err := json.Unmarshal(ofRaw, &of); err != nil {
		return countAtLeastPayload{}, false, err
	}
	return countAtLeastPayload{Count: count, Of: of}, true, nil
}

func hasStringType(fields map[string]json.RawMessage) bool {
	raw, ok := fields["type"]
	if !ok {
		return false
	}
	var s string
	return json.Unmarshal(raw, &s) == nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

// decodeNode strictly decodes a current-dialect node: unknown fields and
// mistyped values are errors.
func decodeNode(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var node Node
	if err := dec.Decode(&node); err != nil {
		return nil, fmt.Errorf("decoding %s rule node: %w", DialectCurrent, err)
	}
	return &node, nil
}
