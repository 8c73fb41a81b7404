package shares

import (
	"database/sql"
	"fmt"

	"github.com/streamvault/payments/internal/repos/shares"
)

func (r *sharesRepo) DecreasePending(tx *sql.Tx, creator string, amount int64) error {
	res, err := tx.Exec(`
		UPDATE revenue_shares
		SET pending_payouts = pending_payouts - $2
		WHERE creator = $1
		  AND pending_payouts >= $2
	`, creator, amount)
	if err != nil {
		return fmt.Errorf("decrease pending: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return shares.ErrInsufficientBalance
	}

	return nil
}
