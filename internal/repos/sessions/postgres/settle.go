package sessions

import (
	"database/sql"
	"fmt"

	"github.com/streamvault/payments/internal/repos/sessions"
)

// Complete and Fail both guard on status = 'pending' so the first
// terminal write wins and every later attempt observes ErrAlreadySettled.

func (r *sessionsRepo) Complete(tx *sql.Tx, id, buyer, response string) error {
	var buyerArg *string
	if buyer != "" {
		buyerArg = &buyer
	}

	res, err := tx.Exec(`
		UPDATE checkout_sessions
		SET status = $2, buyer = $3, response = $4, settled_at = now()
		WHERE id = $1
		  AND status = $5
	`, id, string(sessions.StatusCompleted), buyerArg, response, string(sessions.StatusPending))
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}

	return settledRows(res)
}

func (r *sessionsRepo) Fail(tx *sql.Tx, id, reason string) error {
	res, err := tx.Exec(`
		UPDATE checkout_sessions
		SET status = $2, fail_reason = $3, settled_at = now()
		WHERE id = $1
		  AND status = $4
	`, id, string(sessions.StatusFailed), reason, string(sessions.StatusPending))
	if err != nil {
		return fmt.Errorf("fail session: %w", err)
	}

	return settledRows(res)
}

func settledRows(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return sessions.ErrAlreadySettled
	}

	return nil
}
