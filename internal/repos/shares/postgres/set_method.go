package shares

import (
	"context"
	"fmt"

	"github.com/streamvault/payments/internal/repos/shares"
)

// SetMethod replaces the creator's payout rail wholesale, creating the
// share row if the creator has not earned anything yet.
func (r *sharesRepo) SetMethod(ctx context.Context, creator string, m shares.PaymentMethod) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO revenue_shares (creator, method_kind, method_routing)
		VALUES ($1, $2, $3)
		ON CONFLICT (creator) DO UPDATE
		SET method_kind = EXCLUDED.method_kind,
		    method_routing = EXCLUDED.method_routing
	`, creator, string(m.Kind), m.Routing)
	if err != nil {
		return fmt.Errorf("set payment method: %w", err)
	}

	return nil
}
