package domain

import "sort"

type Term struct {
	ID         string
	SnapshotID string
	Campus     string
	Code       string
	Year       int
	Season     Season
}

// Rank orders seasons within a calendar year. Unknown seasons sort first.
func (s Season) Rank() int {
	switch s {
	case SeasonWinter:
		return 1
	case SeasonSpring:
		return 2
	case SeasonSummer:
		return 3
	case SeasonFall:
		return 4
	default:
		return 0
	}
}

// TermSortKey is the chronological sort key of a term: year, then season
// rank, then code.
type TermSortKey struct {
	Year       int
	SeasonRank int
	Code       string
}

func (t Term) SortKey() TermSortKey {
	return TermSortKey{Year: t.Year, SeasonRank: t.Season.Rank(), Code: t.Code}
}

func (k TermSortKey) Less(other TermSortKey) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.SeasonRank != other.SeasonRank {
		return k.SeasonRank < other.SeasonRank
	}
	return k.Code < other.Code
}

// Before reports whether t sorts strictly before other.
func (t Term) Before(other Term) bool {
	return t.SortKey().Less(other.SortKey())
}

// SortTerms orders terms chronologically in place.
func SortTerms(terms []Term) {
	sort.SliceStable(terms, func(i, j int) bool {
		return terms[i].Before(terms[j])
	})
}
