package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter registers all API endpoints.
func NewRouter(h *HandlerProvider) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/checkout/sessions", h.CreateSessionHandler)
	r.Get("/checkout/sessions/{sessionID}", h.SessionStatusHandler)

	r.Get("/processor/configured", h.IsConfiguredHandler)

	r.Get("/revenue/share", h.GetShareHandler)
	r.Put("/revenue/payment-method", h.SetPaymentMethodHandler)
	r.Post("/revenue/payouts", h.RecordPayoutHandler)

	r.Route("/admin", func(r chi.Router) {
		r.Put("/processor/config", h.SetProcessorConfigHandler)
		r.Get("/revenue/shares", h.ListSharesHandler)
		r.Put("/approvals/{principal}", h.SetApprovalHandler)
		r.Get("/approvals", h.ListApprovalsHandler)
	})

	return r
}
