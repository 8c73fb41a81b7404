package approvals

import (
	"context"
	"errors"
	"time"
)

var ErrApprovalNotFound = errors.New("approval record not found")

// Status is the admin-controlled approval state of a principal.
// A principal with no record is treated as pending.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the known approval states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

type Approval struct {
	Principal string
	Status    Status
	UpdatedAt time.Time
}

type Approvals interface {
	Get(ctx context.Context, principal string) (Approval, error)
	// Set upserts the approval state. Setting the same state twice is a
	// no-op, not an error.
	Set(ctx context.Context, principal string, status Status) error
	List(ctx context.Context) ([]Approval, error)
}
