package rules

import "sort"

// Explanation is a machine-readable code attached to an evaluation result.
type Explanation string

const (
	ExplanationUnsupportedLegacyRule Explanation = "UNSUPPORTED_LEGACY_RULE"
	ExplanationRequiredCourseMissing Explanation = "REQUIRED_COURSE_MISSING"
	ExplanationRequirementIncomplete Explanation = "REQUIREMENT_INCOMPLETE"
	ExplanationRequirementSatisfied  Explanation = "REQUIREMENT_SATISFIED"
)

var explanationPriority = map[Explanation]int{
	ExplanationUnsupportedLegacyRule: 0,
	ExplanationRequiredCourseMissing: 1,
	ExplanationRequirementIncomplete: 2,
	ExplanationRequirementSatisfied:  3,
}

const unknownExplanationPriority = 99

// Result is the outcome of evaluating a current-dialect rule.
//
// Unsupported results have Satisfied false, no missing courses and exactly
// [UNSUPPORTED_LEGACY_RULE]. Satisfied results have no missing courses and
// exactly [REQUIREMENT_SATISFIED]. MissingCourses is sorted and unique and
// ExplanationCodes is ordered by priority then name.
type Result struct {
	Supported        bool          `json:"supported"`
	Satisfied        bool          `json:"satisfied"`
	MissingCourses   []string      `json:"missingCourses"`
	ExplanationCodes []Explanation `json:"explanationCodes"`
}

func unsupportedResult() Result {
	return finalize(false, false, nil, nil)
}

// finalize builds a Result and enforces its invariants.
func finalize(supported, satisfied bool, missing map[string]struct{}, explanations map[Explanation]struct{}) Result {
	if !supported {
		return Result{
			Supported:        false,
			Satisfied:        false,
			MissingCourses:   []string{},
			ExplanationCodes: []Explanation{ExplanationUnsupportedLegacyRule},
		}
	}
	if satisfied {
		return Result{
			Supported:        true,
			Satisfied:        true,
			MissingCourses:   []string{},
			ExplanationCodes: []Explanation{ExplanationRequirementSatisfied},
		}
	}

	courses := make([]string, 0, len(missing))
	for c := range missing {
		courses = append(courses, c)
	}
	sort.Strings(courses)

	return Result{
		Supported:        true,
		Satisfied:        false,
		MissingCourses:   courses,
		ExplanationCodes: orderExplanations(explanations),
	}
}

func orderExplanations(set map[Explanation]struct{}) []Explanation {
	out := make([]Explanation, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		pi, pj := priorityOf(out[i]), priorityOf(out[j])
		if pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}

func priorityOf(e Explanation) int {
	if p, ok := explanationPriority[e]; ok {
		return p
	}
	return unknownExplanationPriority
}
