package shares

import (
	"context"
	"database/sql"
	"errors"
)

var (
	ErrShareNotFound       = errors.New("revenue share not found")
	ErrInsufficientBalance = errors.New("insufficient pending balance")
	ErrNoPaymentMethod     = errors.New("no payment method configured")
)

// MethodKind is the closed set of payout rails. Call sites switch on it
// exhaustively; adding a kind means touching every switch.
type MethodKind string

const (
	MethodMobileMoney    MethodKind = "mobile_money"
	MethodCrypto         MethodKind = "crypto"
	MethodMobileMoneyAlt MethodKind = "mobile_money_alt"
)

// Valid reports whether k is one of the known payout rails.
func (k MethodKind) Valid() bool {
	switch k {
	case MethodMobileMoney, MethodCrypto, MethodMobileMoneyAlt:
		return true
	default:
		return false
	}
}

// PaymentMethod is a payout rail plus its routing string (account
// number or address, depending on the kind).
type PaymentMethod struct {
	Kind    MethodKind `json:"kind"`
	Routing string     `json:"routing"`
}

// Share is a creator's aggregate ledger position. TotalEarnings only
// ever grows; PendingPayouts is the portion not yet disbursed.
type Share struct {
	Creator        string
	Method         *PaymentMethod
	TotalEarnings  int64
	PendingPayouts int64
}

type Shares interface {
	Get(ctx context.Context, creator string) (Share, error)
	List(ctx context.Context, limit, offset int) ([]Share, error)
	// Credit lazily creates the share and adds amount to both
	// total_earnings and pending_payouts in one statement.
	Credit(tx *sql.Tx, creator string, amount int64) error
	// LockAndGet takes the row lock so a payout can re-check the pending
	// balance at the moment of append.
	LockAndGet(tx *sql.Tx, creator string) (Share, error)
	// DecreasePending subtracts amount from pending_payouts, guarded by
	// pending_payouts >= amount. Returns ErrInsufficientBalance otherwise.
	DecreasePending(tx *sql.Tx, creator string, amount int64) error
	SetMethod(ctx context.Context, creator string, m PaymentMethod) error
}
