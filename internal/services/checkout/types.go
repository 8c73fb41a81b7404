package checkout

import (
	"errors"

	"github.com/streamvault/payments/internal/repos/sessions"
)

var ErrInvalidRequest = errors.New("invalid request")

// CreateSessionRequest carries everything needed to open a session.
// Creator is the principal credited when the session settles; leave it
// empty for purchases with no revenue attribution.
type CreateSessionRequest struct {
	Creator    string
	Items      []sessions.Item
	SuccessURL string
	CancelURL  string
}

func (r CreateSessionRequest) validate() error {
	if len(r.Items) == 0 {
		return errors.Join(ErrInvalidRequest, errors.New("items must not be empty"))
	}

	for _, item := range r.Items {
		if item.Quantity <= 0 {
			return errors.Join(ErrInvalidRequest, errors.New("quantity must be positive"))
		}

		if item.PriceMinor < 0 {
			return errors.Join(ErrInvalidRequest, errors.New("price must not be negative"))
		}

		if item.Currency == "" {
			return errors.Join(ErrInvalidRequest, errors.New("currency required"))
		}

		if item.ProductName == "" {
			return errors.Join(ErrInvalidRequest, errors.New("product name required"))
		}
	}

	if r.SuccessURL == "" || r.CancelURL == "" {
		return errors.Join(ErrInvalidRequest, errors.New("success and cancel urls required"))
	}

	return nil
}

// amountMinor is the total the ledger is credited with on settlement.
func (r CreateSessionRequest) amountMinor() int64 {
	var total int64
	for _, item := range r.Items {
		total += item.Quantity * item.PriceMinor
	}

	return total
}
