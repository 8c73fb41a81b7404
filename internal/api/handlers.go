package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// principalHeader carries the caller identity, set by the upstream
// gateway after authentication. An empty value means Guest.
const principalHeader = "X-Principal"

// HandlerProvider wraps the engine services and exposes HTTP handlers.
type HandlerProvider struct {
	checkout CheckoutService
	revenue  RevenueService
	approval ApprovalService
}

// NewHandler returns a new handler provider.
func NewHandler(checkout CheckoutService, revenue RevenueService, approval ApprovalService) *HandlerProvider {
	return &HandlerProvider{
		checkout: checkout,
		revenue:  revenue,
		approval: approval,
	}
}

// --- Helpers ---

func callerPrincipal(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(principalHeader))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func newStrictDecoder(r io.Reader) *json.Decoder {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	return dec
}
