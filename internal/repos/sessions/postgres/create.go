package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streamvault/payments/internal/repos/sessions"

	"github.com/jackc/pgx/v5/pgconn"
)

func (r *sessionsRepo) Create(ctx context.Context, s sessions.Session) error {
	items, err := json.Marshal(s.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}

	var creator, buyer *string
	if s.Creator != "" {
		creator = &s.Creator
	}
	if s.Buyer != "" {
		buyer = &s.Buyer
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO checkout_sessions
			(id, creator, items, success_url, cancel_url, amount_minor, status, buyer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.ID, creator, items, s.SuccessURL, s.CancelURL, s.AmountMinor, string(sessions.StatusPending), buyer)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return sessions.ErrDuplicateSession
		}

		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}
