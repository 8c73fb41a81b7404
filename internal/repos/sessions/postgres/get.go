package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streamvault/payments/internal/repos/sessions"
)

const sessionColumns = `
	id, creator, items, success_url, cancel_url,
	amount_minor, status, buyer, response, fail_reason,
	created_at, settled_at
`

func (r *sessionsRepo) Get(ctx context.Context, id string) (sessions.Session, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+sessionColumns+`
		FROM checkout_sessions
		WHERE id = $1
	`, id)

	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sessions.Session{}, sessions.ErrSessionNotFound
		}

		return sessions.Session{}, fmt.Errorf("get session: %w", err)
	}

	return s, nil
}

func (r *sessionsRepo) LockAndGet(tx *sql.Tx, id string) (sessions.Session, error) {
	row := tx.QueryRow(`
		SELECT `+sessionColumns+`
		FROM checkout_sessions
		WHERE id = $1
		FOR UPDATE
	`, id)

	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sessions.Session{}, sessions.ErrSessionNotFound
		}

		return sessions.Session{}, fmt.Errorf("lock/get session: %w", err)
	}

	return s, nil
}

func scanSession(row *sql.Row) (sessions.Session, error) {
	var (
		s          sessions.Session
		creator    sql.NullString
		buyer      sql.NullString
		response   sql.NullString
		failReason sql.NullString
		settledAt  sql.NullTime
		rawItems   []byte
		status     string
	)

	err := row.Scan(
		&s.ID, &creator, &rawItems, &s.SuccessURL, &s.CancelURL,
		&s.AmountMinor, &status, &buyer, &response, &failReason,
		&s.CreatedAt, &settledAt,
	)
	if err != nil {
		return sessions.Session{}, err
	}

	err = json.Unmarshal(rawItems, &s.Items)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("unmarshal items: %w", err)
	}

	s.Status = sessions.Status(status)
	s.Creator = creator.String
	s.Buyer = buyer.String
	s.Response = response.String
	s.FailReason = failReason.String

	if settledAt.Valid {
		t := settledAt.Time
		s.SettledAt = &t
	}

	return s, nil
}
