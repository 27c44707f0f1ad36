// Package rules models degree and prerequisite rule trees.
//
// Two dialects coexist in stored data. The current dialect (Node) has
// COURSE_SET, ALL_OF, N_OF and COUNT_MIN nodes. The legacy dialect
// (LegacyNode) has course, all, any and countAtLeast nodes. Convert maps
// legacy trees into the current dialect where a faithful mapping exists;
// Evaluate runs the current-dialect evaluator and EvaluateLegacy the
// restricted legacy evaluator used for prerequisite checks.
//
// Rule trees are immutable once stored. Evaluation never mutates a tree and
// is a pure function of (rule, evidence).
package rules

// NodeType tags a current-dialect node.
type NodeType string

const (
	NodeCourseSet NodeType = "COURSE_SET"
	NodeAllOf     NodeType = "ALL_OF"
	NodeNOf       NodeType = "N_OF"
	NodeCountMin  NodeType = "COUNT_MIN"
)

// Node is a current-dialect rule node. Which fields are meaningful depends
// on Type: Courses for COURSE_SET, N for N_OF, MinCount for COUNT_MIN and
// Children for the three composite types.
type Node struct {
	Type     NodeType `json:"type"`
	Courses  []string `json:"courses,omitempty"`
	N        int      `json:"n,omitempty"`
	MinCount int      `json:"min_count,omitempty"`
	Children []*Node  `json:"children,omitempty"`
}

// CourseSet returns a COURSE_SET leaf requiring code.
func CourseSet(code string) *Node {
	return &Node{Type: NodeCourseSet, Courses: []string{code}}
}

// AllOf returns an ALL_OF node over children.
func AllOf(children ...*Node) *Node {
	return &Node{Type: NodeAllOf, Children: children}
}

// NOf returns an N_OF node requiring n satisfied children.
func NOf(n int, children ...*Node) *Node {
	return &Node{Type: NodeNOf, N: n, Children: children}
}

// CountMin returns a COUNT_MIN node requiring min satisfied children.
func CountMin(min int, children ...*Node) *Node {
	return &Node{Type: NodeCountMin, MinCount: min, Children: children}
}

// minRequired returns the cardinality threshold of an N_OF or COUNT_MIN node.
func (n *Node) minRequired() int {
	if n.Type == NodeCountMin {
		return n.MinCount
	}
	return n.N
}
