package shares

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/streamvault/payments/internal/repos/shares"
)

func (r *sharesRepo) List(ctx context.Context, limit, offset int) ([]shares.Share, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT creator, method_kind, method_routing, total_earnings, pending_payouts
		FROM revenue_shares
		ORDER BY creator
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list shares: %w", err)
	}
	defer rows.Close()

	var out []shares.Share

	for rows.Next() {
		var (
			s             shares.Share
			kind, routing sql.NullString
		)

		err = rows.Scan(&s.Creator, &kind, &routing, &s.TotalEarnings, &s.PendingPayouts)
		if err != nil {
			return nil, fmt.Errorf("scan share: %w", err)
		}

		s.Method = methodFromColumns(kind, routing)
		out = append(out, s)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate shares: %w", err)
	}

	return out, nil
}
