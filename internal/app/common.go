package app

import (
	"errors"

	"github.com/alexanderramin/gradpath/internal/domain"
)

// Hard errors. Use cases return these wrapped; match them with errors.Is.
var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrPlanNotFound           = errors.New("plan not found")
	ErrSnapshotNotFound       = errors.New("catalog snapshot not found")
	ErrTermNotInSnapshot      = errors.New("term not found in pinned snapshot")
	ErrItemPlanMismatch       = errors.New("plan item belongs to a different plan")
	ErrItemNotFound           = errors.New("plan item not found")
	ErrSlotOccupied           = errors.New("plan slot holds a different item")
	ErrProgramVersionNotFound = errors.New("program version not found")
	ErrNoAudit                = errors.New("plan has no audit")
	ErrPlanCertified          = domain.ErrPlanCertified
)
