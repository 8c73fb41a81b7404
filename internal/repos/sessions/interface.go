package sessions

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrAlreadySettled   = errors.New("session already settled")
	ErrDuplicateSession = errors.New("duplicate session id")
)

// Status is the lifecycle state of a checkout session. Transitions are
// one-way: pending -> completed or pending -> failed, exactly once.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the session can no longer change state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Item is a single purchasable line of a checkout session.
type Item struct {
	ProductName        string `json:"productName"`
	ProductDescription string `json:"productDescription"`
	Currency           string `json:"currency"`
	Quantity           int64  `json:"quantity"`
	PriceMinor         int64  `json:"priceInCents"`
}

// Session is one tracked payment-collection attempt. Creator is the
// principal credited on settlement; empty means the session is not
// attributable and never touches the ledger.
type Session struct {
	ID          string
	Creator     string
	Items       []Item
	SuccessURL  string
	CancelURL   string
	AmountMinor int64
	Status      Status
	Buyer       string
	Response    string
	FailReason  string
	CreatedAt   time.Time
	SettledAt   *time.Time
}

type Sessions interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	// LockAndGet re-reads the session under FOR UPDATE so a settlement
	// decision made before a network round trip can be re-validated at
	// write time.
	LockAndGet(tx *sql.Tx, id string) (Session, error)
	// Complete moves a pending session to completed. Returns
	// ErrAlreadySettled if the session already left pending.
	Complete(tx *sql.Tx, id, buyer, response string) error
	// Fail moves a pending session to failed. Returns ErrAlreadySettled
	// if the session already left pending.
	Fail(tx *sql.Tx, id, reason string) error
}
