package api

import (
	"context"

	repoapprovals "github.com/streamvault/payments/internal/repos/approvals"
	"github.com/streamvault/payments/internal/repos/payouts"
	"github.com/streamvault/payments/internal/repos/sessions"
	"github.com/streamvault/payments/internal/repos/shares"
	"github.com/streamvault/payments/internal/services/checkout"
	"github.com/streamvault/payments/internal/services/revenue"
)

// Service surfaces consumed by the handlers. Implemented by the
// concrete services; narrowed here so handler tests can stub them.

type CheckoutService interface {
	CreateSession(ctx context.Context, req checkout.CreateSessionRequest) (string, error)
	SessionStatus(ctx context.Context, id, caller string) (sessions.Session, error)
	SetProcessorConfig(ctx context.Context, caller, secretKey string, allowedCountries []string) (int64, error)
	IsConfigured(ctx context.Context) (bool, error)
}

type RevenueService interface {
	Share(ctx context.Context, caller, target string) (revenue.RevenueShare, error)
	ListShares(ctx context.Context, caller string, limit, offset int) ([]shares.Share, error)
	SetPaymentMethod(ctx context.Context, caller string, m shares.PaymentMethod) error
	RecordPayout(ctx context.Context, caller string, amount int64) (payouts.Record, error)
}

type ApprovalService interface {
	Set(ctx context.Context, caller, target string, status repoapprovals.Status) error
	List(ctx context.Context, caller string) ([]repoapprovals.Approval, error)
}
