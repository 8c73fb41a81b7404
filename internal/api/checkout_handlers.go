package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/streamvault/payments/internal/repos/processorcfg"
	"github.com/streamvault/payments/internal/repos/sessions"
	"github.com/streamvault/payments/internal/services/approvals"
	"github.com/streamvault/payments/internal/services/checkout"

	"github.com/go-chi/chi/v5"
)

type createSessionRequest struct {
	Creator    string          `json:"creator,omitempty"`
	Items      []sessions.Item `json:"items"`
	SuccessURL string          `json:"successUrl"`
	CancelURL  string          `json:"cancelUrl"`
}

type sessionStatusResponse struct {
	SessionID string `json:"sessionId"`
	Status    string `json:"status"`
	Buyer     string `json:"buyer,omitempty"`
	Response  string `json:"response,omitempty"`
	Error     string `json:"error,omitempty"`
}

// CreateSessionHandler handles POST /checkout/sessions
func (h *HandlerProvider) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	var req createSessionRequest

	dec := newStrictDecoder(r.Body)
	err := dec.Decode(&req)
	if err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "empty body")
			return
		}

		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	id, err := h.checkout.CreateSession(r.Context(), checkout.CreateSessionRequest{
		Creator:    req.Creator,
		Items:      req.Items,
		SuccessURL: req.SuccessURL,
		CancelURL:  req.CancelURL,
	})
	if err != nil {
		if errors.Is(err, checkout.ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"sessionId": id})
}

// SessionStatusHandler handles GET /checkout/sessions/{sessionID}
func (h *HandlerProvider) SessionStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing sessionID")
		return
	}

	s, err := h.checkout.SessionStatus(r.Context(), id, callerPrincipal(r))
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "session not found")
			return
		case errors.Is(err, processorcfg.ErrNotConfigured):
			writeError(w, http.StatusConflict, "payment processor not configured")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	writeJSON(w, http.StatusOK, sessionStatusResponse{
		SessionID: s.ID,
		Status:    string(s.Status),
		Buyer:     s.Buyer,
		Response:  s.Response,
		Error:     s.FailReason,
	})
}

type processorConfigRequest struct {
	SecretKey        string   `json:"secretKey"`
	AllowedCountries []string `json:"allowedCountries"`
}

// SetProcessorConfigHandler handles PUT /admin/processor/config
func (h *HandlerProvider) SetProcessorConfigHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req processorConfigRequest

	dec := newStrictDecoder(r.Body)
	err := dec.Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	version, err := h.checkout.SetProcessorConfig(r.Context(), caller, req.SecretKey, req.AllowedCountries)
	if err != nil {
		switch {
		case errors.Is(err, approvals.ErrPermissionDenied):
			writeError(w, http.StatusForbidden, "admin role required")
			return
		case errors.Is(err, approvals.ErrNotApproved):
			writeError(w, http.StatusForbidden, "caller not approved")
			return
		case errors.Is(err, checkout.ErrInvalidRequest):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	// The secret is write-only; only the version is echoed back.
	writeJSON(w, http.StatusOK, map[string]int64{"version": version})
}

// IsConfiguredHandler handles GET /processor/configured
func (h *HandlerProvider) IsConfiguredHandler(w http.ResponseWriter, r *http.Request) {
	configured, err := h.checkout.IsConfigured(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"configured": configured})
}
