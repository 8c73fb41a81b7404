// Package revenue maintains the creator ledger: aggregate earnings,
// pending balances, and the append-only payout history that serves as
// the audit trail.
package revenue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streamvault/payments/internal/infra/pgutils"
	"github.com/streamvault/payments/internal/repos/payouts"
	pgpayouts "github.com/streamvault/payments/internal/repos/payouts/postgres"
	"github.com/streamvault/payments/internal/repos/shares"
	pgshares "github.com/streamvault/payments/internal/repos/shares/postgres"
	"github.com/streamvault/payments/internal/services/approvals"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount = errors.New("invalid payout amount")
	ErrInvalidMethod = errors.New("invalid payment method")
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// RevenueShare is a creator's full ledger view: the aggregate position
// plus the ordered payout history.
type RevenueShare struct {
	Creator        string
	Method         *shares.PaymentMethod
	TotalEarnings  int64
	PendingPayouts int64
	History        []payouts.Record
}

type Service struct {
	db      *sql.DB
	shares  shares.Shares
	payouts payouts.Payouts
	gate    approvals.Gate
}

func New(db *sql.DB, gate approvals.Gate) *Service {
	return &Service{
		db:      db,
		shares:  pgshares.New(db),
		payouts: pgpayouts.New(db),
		gate:    gate,
	}
}

// Share returns target's ledger. A caller may always read their own;
// reading another creator's ledger requires an approved admin.
func (s *Service) Share(ctx context.Context, caller, target string) (RevenueShare, error) {
	if caller != target {
		if !s.gate.IsAdmin(caller) {
			return RevenueShare{}, approvals.ErrPermissionDenied
		}

		err := s.gate.RequireApproved(ctx, caller)
		if err != nil {
			return RevenueShare{}, err
		}
	}

	share, err := s.shares.Get(ctx, target)
	if err != nil {
		return RevenueShare{}, fmt.Errorf("get share: %w", err)
	}

	history, err := s.payouts.ListByCreator(ctx, target)
	if err != nil {
		return RevenueShare{}, fmt.Errorf("list payout history: %w", err)
	}

	return RevenueShare{
		Creator:        share.Creator,
		Method:         share.Method,
		TotalEarnings:  share.TotalEarnings,
		PendingPayouts: share.PendingPayouts,
		History:        history,
	}, nil
}

// ListShares returns aggregate positions for all creators, paginated.
// Histories are deliberately excluded to keep the response bounded;
// fetch a single creator's Share for the audit trail.
func (s *Service) ListShares(ctx context.Context, caller string, limit, offset int) ([]shares.Share, error) {
	if !s.gate.IsAdmin(caller) {
		return nil, approvals.ErrPermissionDenied
	}

	err := s.gate.RequireApproved(ctx, caller)
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	out, err := s.shares.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}

	return out, nil
}

// SetPaymentMethod replaces the caller's payout rail.
func (s *Service) SetPaymentMethod(ctx context.Context, caller string, m shares.PaymentMethod) error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: unknown method kind %q", ErrInvalidMethod, m.Kind)
	}

	if m.Routing == "" {
		return fmt.Errorf("%w: empty routing", ErrInvalidMethod)
	}

	err := s.shares.SetMethod(ctx, caller, m)
	if err != nil {
		return fmt.Errorf("set payment method: %w", err)
	}

	return nil
}

// RecordPayout disburses amount from the caller's pending balance and
// appends the immutable history record in one transaction. The balance
// is re-checked under the row lock at the moment of append, not at the
// moment the caller decided to withdraw.
func (s *Service) RecordPayout(ctx context.Context, caller string, amount int64) (payouts.Record, error) {
	err := s.gate.RequireApproved(ctx, caller)
	if err != nil {
		return payouts.Record{}, err
	}

	if amount <= 0 {
		return payouts.Record{}, fmt.Errorf("%w: %d", ErrInvalidAmount, amount)
	}

	var rec payouts.Record

	err = pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		share, err := s.shares.LockAndGet(tx, caller)
		if err != nil {
			return fmt.Errorf("lock share: %w", err)
		}

		if share.Method == nil {
			return shares.ErrNoPaymentMethod
		}

		// pre-check against the locked balance
		if share.PendingPayouts < amount {
			return shares.ErrInsufficientBalance
		}

		err = s.shares.DecreasePending(tx, caller, amount)
		if err != nil {
			return fmt.Errorf("decrease pending: %w", err)
		}

		rec, err = s.payouts.Insert(tx, payouts.Record{
			ID:          "po_" + uuid.NewString(),
			Creator:     caller,
			Status:      payouts.StatusCompleted,
			Method:      *share.Method,
			AmountMinor: amount,
		})
		if err != nil {
			return fmt.Errorf("append payout record: %w", err)
		}

		return nil
	})
	if err != nil {
		return payouts.Record{}, fmt.Errorf("record payout: %w", err)
	}

	slog.Info("payout recorded",
		"payoutId", rec.ID, "creator", caller, "amountMinor", amount)

	return rec, nil
}
