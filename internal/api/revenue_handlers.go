package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/streamvault/payments/internal/repos/payouts"
	"github.com/streamvault/payments/internal/repos/shares"
	"github.com/streamvault/payments/internal/services/approvals"
	"github.com/streamvault/payments/internal/services/revenue"
)

type paymentMethodView struct {
	Kind    string `json:"kind"`
	Routing string `json:"routing"`
}

type payoutRecordView struct {
	ID          string            `json:"id"`
	Seq         int64             `json:"seq"`
	Status      string            `json:"status"`
	Method      paymentMethodView `json:"method"`
	AmountMinor int64             `json:"amountMinor"`
	Date        time.Time         `json:"date"`
}

type revenueShareView struct {
	Creator        string             `json:"creator"`
	Method         *paymentMethodView `json:"paymentMethod,omitempty"`
	TotalEarnings  int64              `json:"totalEarnings"`
	PendingPayouts int64              `json:"pendingPayouts"`
	History        []payoutRecordView `json:"payoutHistory,omitempty"`
}

func methodView(m *shares.PaymentMethod) *paymentMethodView {
	if m == nil {
		return nil
	}

	return &paymentMethodView{Kind: string(m.Kind), Routing: m.Routing}
}

func recordView(r payouts.Record) payoutRecordView {
	return payoutRecordView{
		ID:          r.ID,
		Seq:         r.Seq,
		Status:      string(r.Status),
		Method:      paymentMethodView{Kind: string(r.Method.Kind), Routing: r.Method.Routing},
		AmountMinor: r.AmountMinor,
		Date:        r.CreatedAt,
	}
}

// GetShareHandler handles GET /revenue/share (caller's own ledger).
func (h *HandlerProvider) GetShareHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	share, err := h.revenue.Share(r.Context(), caller, caller)
	if err != nil {
		if errors.Is(err, shares.ErrShareNotFound) {
			writeError(w, http.StatusNotFound, "no revenue share for caller")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	view := revenueShareView{
		Creator:        share.Creator,
		Method:         methodView(share.Method),
		TotalEarnings:  share.TotalEarnings,
		PendingPayouts: share.PendingPayouts,
	}
	for _, rec := range share.History {
		view.History = append(view.History, recordView(rec))
	}

	writeJSON(w, http.StatusOK, view)
}

// ListSharesHandler handles GET /admin/revenue/shares?limit=&offset=
func (h *HandlerProvider) ListSharesHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, offset := 0, 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = v
	}

	if raw := r.URL.Query().Get("offset"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		offset = v
	}

	list, err := h.revenue.ListShares(r.Context(), caller, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, approvals.ErrPermissionDenied):
			writeError(w, http.StatusForbidden, "admin role required")
			return
		case errors.Is(err, approvals.ErrNotApproved):
			writeError(w, http.StatusForbidden, "caller not approved")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	views := make([]revenueShareView, 0, len(list))
	for _, s := range list {
		views = append(views, revenueShareView{
			Creator:        s.Creator,
			Method:         methodView(s.Method),
			TotalEarnings:  s.TotalEarnings,
			PendingPayouts: s.PendingPayouts,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"shares": views})
}

type setPaymentMethodRequest struct {
	Kind    string `json:"kind"`
	Routing string `json:"routing"`
}

// SetPaymentMethodHandler handles PUT /revenue/payment-method
func (h *HandlerProvider) SetPaymentMethodHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req setPaymentMethodRequest

	dec := newStrictDecoder(r.Body)
	err := dec.Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err = h.revenue.SetPaymentMethod(r.Context(), caller, shares.PaymentMethod{
		Kind:    shares.MethodKind(req.Kind),
		Routing: req.Routing,
	})
	if err != nil {
		if errors.Is(err, revenue.ErrInvalidMethod) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type recordPayoutRequest struct {
	AmountMinor int64 `json:"amountMinor"`
}

// RecordPayoutHandler handles POST /revenue/payouts
func (h *HandlerProvider) RecordPayoutHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req recordPayoutRequest

	dec := newStrictDecoder(r.Body)
	err := dec.Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	rec, err := h.revenue.RecordPayout(r.Context(), caller, req.AmountMinor)
	if err != nil {
		switch {
		case errors.Is(err, approvals.ErrNotApproved):
			writeError(w, http.StatusForbidden, "caller not approved")
			return
		case errors.Is(err, revenue.ErrInvalidAmount):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, shares.ErrShareNotFound):
			writeError(w, http.StatusNotFound, "no revenue share for caller")
			return
		case errors.Is(err, shares.ErrNoPaymentMethod):
			writeError(w, http.StatusConflict, "no payment method configured")
			return
		case errors.Is(err, shares.ErrInsufficientBalance):
			writeError(w, http.StatusConflict, "insufficient pending balance")
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	writeJSON(w, http.StatusCreated, recordView(rec))
}
