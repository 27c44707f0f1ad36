package rules

import "sort"

// Evaluate runs the current-dialect evaluator. The rule is converted,
// shape-validated and semantically validated first; any failure yields an
// unsupported result rather than an error.
func Evaluate(rule Rule, evidence Evidence) Result {
	node, ok := Convert(rule)
	if !ok {
		return unsupportedResult()
	}
	if err := ValidateShape(node); err != nil {
		return unsupportedResult()
	}
	if err := ValidateSemantics(node); err != nil {
		return unsupportedResult()
	}
	return evalNode(node, evidence)
}

func evalNode(n *Node, evidence Evidence) Result {
	if n == nil {
		return unsupportedResult()
	}
	switch n.Type {
	case NodeCourseSet:
		return evalCourseSet(n, evidence)
	case NodeAllOf:
		return evalAllOf(n, evidence)
	case NodeNOf, NodeCountMin:
		return evalMinRequired(n.minRequired(), n.Children, evidence)
	default:
		return unsupportedResult()
	}
}

func evalCourseSet(n *Node, evidence Evidence) Result {
	unique := make(map[string]struct{}, len(n.Courses))
	for _, c := range n.Courses {
		unique[c] = struct{}{}
	}
	if len(unique) != 1 {
		return unsupportedResult()
	}
	var code string
	for c := range unique {
		code = c
	}
	if evidence.Has(code) {
		return finalize(true, true, nil, nil)
	}
	return finalize(true, false,
		map[string]struct{}{code: {}},
		map[Explanation]struct{}{
			ExplanationRequiredCourseMissing: {},
			ExplanationRequirementIncomplete: {},
		})
}

func evalAllOf(n *Node, evidence Evidence) Result {
	results := make([]Result, 0, len(n.Children))
	for _, child := range n.Children {
		r := evalNode(child, evidence)
		if !r.Supported {
			return unsupportedResult()
		}
		results = append(results, r)
	}

	missing := map[string]struct{}{}
	explanations := map[Explanation]struct{}{}
	satisfied := true
	for _, r := range results {
		if r.Satisfied {
			continue
		}
		satisfied = false
		mergeFailure(r, missing, explanations)
	}
	if satisfied {
		return finalize(true, true, nil, nil)
	}
	explanations[ExplanationRequirementIncomplete] = struct{}{}
	return finalize(true, false, missing, explanations)
}

// evalMinRequired is shared by N_OF and COUNT_MIN. When short, the first
// shortfall failed children in stored order are the witnesses whose missing
// courses and explanations are reported.
func evalMinRequired(required int, children []*Node, evidence Evidence) Result {
	if required < 1 || required > len(children) {
		return unsupportedResult()
	}

	var failed []Result
	satisfiedCount := 0
	for _, child := range children {
		r := evalNode(child, evidence)
		if !r.Supported {
			return unsupportedResult()
		}
		if r.Satisfied {
			satisfiedCount++
			continue
		}
		failed = append(failed, r)
	}

	if satisfiedCount >= required {
		return finalize(true, true, nil, nil)
	}

	shortfall := required - satisfiedCount
	missing := map[string]struct{}{}
	explanations := map[Explanation]struct{}{}
	for _, r := range failed[:min(shortfall, len(failed))] {
		mergeFailure(r, missing, explanations)
	}
	explanations[ExplanationRequirementIncomplete] = struct{}{}
	return finalize(true, false, missing, explanations)
}

func mergeFailure(r Result, missing map[string]struct{}, explanations map[Explanation]struct{}) {
	for _, c := range r.MissingCourses {
		missing[c] = struct{}{}
	}
	for _, e := range r.ExplanationCodes {
		explanations[e] = struct{}{}
	}
}

// LegacyResult is the outcome of the legacy-only evaluator.
type LegacyResult struct {
	Supported      bool     `json:"supported"`
	Satisfied      bool     `json:"satisfied"`
	MissingCourses []string `json:"missingCourses"`
}

func legacyUnsupported() LegacyResult {
	return LegacyResult{Supported: false, Satisfied: false, MissingCourses: []string{}}
}

func legacySatisfied() LegacyResult {
	return LegacyResult{Supported: true, Satisfied: true, MissingCourses: []string{}}
}

func legacyMissing(codes []string) LegacyResult {
	unique := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		unique[c] = struct{}{}
	}
	out := make([]string, 0, len(unique))
	for c := range unique {
		out = append(out, c)
	}
	sort.Strings(out)
	return LegacyResult{Supported: true, Satisfied: false, MissingCourses: out}
}

// EvaluateLegacy evaluates a legacy-dialect rule against the available
// codes. Prerequisite checks pass allowComplex=false, which makes any and
// countAtLeast nodes unsupported. Current-dialect rules and trees failing
// the legacy shape schema are unsupported.
func EvaluateLegacy(rule Rule, available Evidence, allowComplex bool) LegacyResult {
	if rule.Legacy == nil {
		return legacyUnsupported()
	}
	if err := ValidateLegacyShape(rule.Legacy); err != nil {
		return legacyUnsupported()
	}
	return evalLegacy(rule.Legacy, available, allowComplex)
}

func evalLegacy(n *LegacyNode, available Evidence, allowComplex bool) LegacyResult {
	if n == nil {
		return legacyUnsupported()
	}
	switch n.Kind {
	case LegacyCourse:
		if available.Has(n.Course) {
			return legacySatisfied()
		}
		return legacyMissing([]string{n.Course})

	case LegacyAll:
		var missing []string
		for _, child := range n.Children {
			r := evalLegacy(child, available, allowComplex)
			if !r.Supported {
				return legacyUnsupported()
			}
			if !r.Satisfied {
				missing = append(missing, r.MissingCourses...)
			}
		}
		if len(missing) == 0 {
			return legacySatisfied()
		}
		return legacyMissing(missing)

	case LegacyAny:
		if !allowComplex {
			return legacyUnsupported()
		}
		return evalLegacyAtLeast(1, n.Children, available, allowComplex)

	case LegacyCountAtLeast:
		if !allowComplex {
			return legacyUnsupported()
		}
		return evalLegacyAtLeast(n.Count, n.Children, available, allowComplex)

	default:
		return legacyUnsupported()
	}
}

func evalLegacyAtLeast(required int, children []*LegacyNode, available Evidence, allowComplex bool) LegacyResult {
	var missing []string
	satisfiedCount := 0
	for _, child := range children {
		r := evalLegacy(child, available, allowComplex)
		if !r.Supported {
			return legacyUnsupported()
		}
		if r.Satisfied {
			satisfiedCount++
			continue
		}
		missing = append(missing, r.MissingCourses...)
	}
	if satisfiedCount >= required {
		return legacySatisfied()
	}
	return legacyMissing(missing)
}
