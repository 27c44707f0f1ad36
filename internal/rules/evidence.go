package rules

import "sort"

// Evidence is the set of canonical course codes counted as completed or
// available for one evaluation. It is built per call and never persisted.
type Evidence map[string]struct{}

// NewEvidence builds an evidence set from codes. Duplicates collapse.
func NewEvidence(codes ...string) Evidence {
	e := make(Evidence, len(codes))
	for _, c := range codes {
		e[c] = struct{}{}
	}
	return e
}

// Add inserts code into the set.
func (e Evidence) Add(code string) { e[code] = struct{}{} }

// Has reports whether code is in the set. A nil set has nothing.
func (e Evidence) Has(code string) bool {
	_, ok := e[code]
	return ok
}

// Len returns the number of distinct codes.
func (e Evidence) Len() int { return len(e) }

// Union returns a new set holding the codes of e and other.
func (e Evidence) Union(other Evidence) Evidence {
	out := make(Evidence, len(e)+len(other))
	for c := range e {
		out[c] = struct{}{}
	}
	for c := range other {
		out[c] = struct{}{}
	}
	return out
}

// Codes returns the codes in ascending order.
func (e Evidence) Codes() []string {
	out := make([]string, 0, len(e))
	for c := range e {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
