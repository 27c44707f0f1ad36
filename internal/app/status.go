package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/gradpath/internal/domain"
)

// Blocker is one reason a plan cannot move to READY or CERTIFIED.
type Blocker struct {
	Code  domain.BlockerCode `json:"code"`
	Count int                `json:"count,omitempty"`
}

func (b Blocker) String() string {
	if b.Count > 0 {
		return fmt.Sprintf("%s(%d)", b.Code, b.Count)
	}
	return string(b.Code)
}

var blockerRank = map[domain.BlockerCode]int{
	domain.BlockerInvalidItems:         0,
	domain.BlockerUnsupportedRules:     1,
	domain.BlockerMissingRequirements:  2,
	domain.BlockerUnknownRequirements:  3,
	domain.BlockerCertifyRequiresReady: 4,
}

func rankOf(code domain.BlockerCode) int {
	if r, ok := blockerRank[code]; ok {
		return r
	}
	return len(blockerRank)
}

// SortBlockers orders blockers by their fixed rank, never by discovery order.
func SortBlockers(blockers []Blocker) {
	sort.SliceStable(blockers, func(i, j int) bool {
		ri, rj := rankOf(blockers[i].Code), rankOf(blockers[j].Code)
		if ri != rj {
			return ri < rj
		}
		return blockers[i].Code < blockers[j].Code
	})
}

// ReadyCheck is the outcome of a readiness check. Every check records a
// fresh audit, referenced by AuditID.
type ReadyCheck struct {
	OK        bool
	Blockers  []Blocker
	AuditID   string
	CheckedAt time.Time
}

type NotReadyErrorCode string

const (
	NotReadyErrPlanNotReady NotReadyErrorCode = "PLAN_NOT_READY"
)

// NotReadyError is returned when a certification transition is refused.
type NotReadyError struct {
	Code     NotReadyErrorCode
	Blockers []Blocker
}

func NewNotReadyError(blockers []Blocker) *NotReadyError {
	return &NotReadyError{Code: NotReadyErrPlanNotReady, Blockers: blockers}
}

func (e *NotReadyError) Error() string {
	parts := make([]string, len(e.Blockers))
	for i, b := range e.Blockers {
		parts[i] = b.String()
	}
	return string(e.Code) + ": " + strings.Join(parts, ", ")
}

// HasBlocker reports whether code is among the refusal's blockers.
func (e *NotReadyError) HasBlocker(code domain.BlockerCode) bool {
	for _, b := range e.Blockers {
		if b.Code == code {
			return true
		}
	}
	return false
}
