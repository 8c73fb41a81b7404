package shares

import (
	"database/sql"
	"fmt"
)

// Credit creates the share row on first credit and bumps both counters
// together, so the conservation invariant holds within the statement.
func (r *sharesRepo) Credit(tx *sql.Tx, creator string, amount int64) error {
	_, err := tx.Exec(`
		INSERT INTO revenue_shares (creator, total_earnings, pending_payouts)
		VALUES ($1, $2, $2)
		ON CONFLICT (creator) DO UPDATE
		SET total_earnings  = revenue_shares.total_earnings + EXCLUDED.total_earnings,
		    pending_payouts = revenue_shares.pending_payouts + EXCLUDED.pending_payouts
	`, creator, amount)
	if err != nil {
		return fmt.Errorf("credit share: %w", err)
	}

	return nil
}
