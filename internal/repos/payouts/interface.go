package payouts

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/streamvault/payments/internal/repos/shares"
)

var ErrDuplicatePayout = errors.New("duplicate payout record")

type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is one immutable entry of a creator's payout history. Seq is
// assigned by the database and orders the audit trail; records are only
// ever appended, never updated or deleted. Corrections are compensating
// appends.
type Record struct {
	ID          string
	Creator     string
	Seq         int64
	Status      Status
	Method      shares.PaymentMethod
	AmountMinor int64
	CreatedAt   time.Time
}

type Payouts interface {
	// Insert appends r and returns it with the database-assigned Seq and
	// CreatedAt filled in.
	Insert(tx *sql.Tx, r Record) (Record, error)
	ListByCreator(ctx context.Context, creator string) ([]Record, error)
}
