package shares

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/streamvault/payments/internal/repos/shares"
)

func (r *sharesRepo) Get(ctx context.Context, creator string) (shares.Share, error) {
	var (
		s             shares.Share
		kind, routing sql.NullString
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT creator, method_kind, method_routing, total_earnings, pending_payouts
		FROM revenue_shares
		WHERE creator = $1
	`, creator).Scan(&s.Creator, &kind, &routing, &s.TotalEarnings, &s.PendingPayouts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shares.Share{}, shares.ErrShareNotFound
		}

		return shares.Share{}, fmt.Errorf("get share: %w", err)
	}

	s.Method = methodFromColumns(kind, routing)

	return s, nil
}

func (r *sharesRepo) LockAndGet(tx *sql.Tx, creator string) (shares.Share, error) {
	var (
		s             shares.Share
		kind, routing sql.NullString
	)

	err := tx.QueryRow(`
		SELECT creator, method_kind, method_routing, total_earnings, pending_payouts
		FROM revenue_shares
		WHERE creator = $1
		FOR UPDATE
	`, creator).Scan(&s.Creator, &kind, &routing, &s.TotalEarnings, &s.PendingPayouts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return shares.Share{}, shares.ErrShareNotFound
		}

		return shares.Share{}, fmt.Errorf("lock/get share: %w", err)
	}

	s.Method = methodFromColumns(kind, routing)

	return s, nil
}
