package shares

import (
	"database/sql"

	"github.com/streamvault/payments/internal/repos/shares"
)

var _ shares.Shares = (*sharesRepo)(nil)

type sharesRepo struct{ db *sql.DB }

func New(db *sql.DB) *sharesRepo {
	return &sharesRepo{db: db}
}

func methodFromColumns(kind, routing sql.NullString) *shares.PaymentMethod {
	if !kind.Valid {
		return nil
	}

	return &shares.PaymentMethod{
		Kind:    shares.MethodKind(kind.String),
		Routing: routing.String,
	}
}
