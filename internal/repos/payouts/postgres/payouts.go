package payouts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/streamvault/payments/internal/repos/payouts"
	"github.com/streamvault/payments/internal/repos/shares"

	"github.com/jackc/pgx/v5/pgconn"
)

var _ payouts.Payouts = (*payoutsRepo)(nil)

type payoutsRepo struct{ db *sql.DB }

func New(db *sql.DB) *payoutsRepo {
	return &payoutsRepo{db: db}
}

func (r *payoutsRepo) Insert(tx *sql.Tx, rec payouts.Record) (payouts.Record, error) {
	err := tx.QueryRow(`
		INSERT INTO payout_records (id, creator, status, method_kind, method_routing, amount_minor)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq, created_at
	`, rec.ID, rec.Creator, string(rec.Status), string(rec.Method.Kind), rec.Method.Routing, rec.AmountMinor).
		Scan(&rec.Seq, &rec.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return payouts.Record{}, payouts.ErrDuplicatePayout
		}

		return payouts.Record{}, fmt.Errorf("insert payout: %w", err)
	}

	return rec, nil
}

func (r *payoutsRepo) ListByCreator(ctx context.Context, creator string) ([]payouts.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, creator, seq, status, method_kind, method_routing, amount_minor, created_at
		FROM payout_records
		WHERE creator = $1
		ORDER BY seq
	`, creator)
	if err != nil {
		return nil, fmt.Errorf("list payouts: %w", err)
	}
	defer rows.Close()

	var out []payouts.Record

	for rows.Next() {
		var (
			rec           payouts.Record
			status        string
			kind, routing string
		)

		err = rows.Scan(&rec.ID, &rec.Creator, &rec.Seq, &status, &kind, &routing, &rec.AmountMinor, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payout: %w", err)
		}

		rec.Status = payouts.Status(status)
		rec.Method = shares.PaymentMethod{Kind: shares.MethodKind(kind), Routing: routing}
		out = append(out, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate payouts: %w", err)
	}

	return out, nil
}
