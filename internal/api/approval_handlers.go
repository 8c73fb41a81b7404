package api

import (
	"errors"
	"net/http"
	"time"

	repoapprovals "github.com/streamvault/payments/internal/repos/approvals"
	"github.com/streamvault/payments/internal/services/approvals"

	"github.com/go-chi/chi/v5"
)

type approvalView struct {
	Principal string    `json:"principal"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type setApprovalRequest struct {
	Status string `json:"status"`
}

// SetApprovalHandler handles PUT /admin/approvals/{principal}
func (h *HandlerProvider) SetApprovalHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	target := chi.URLParam(r, "principal")
	if target == "" {
		writeError(w, http.StatusBadRequest, "missing principal")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	defer r.Body.Close()

	var req setApprovalRequest

	dec := newStrictDecoder(r.Body)
	err := dec.Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	err = h.approval.Set(r.Context(), caller, target, repoapprovals.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, approvals.ErrPermissionDenied):
			writeError(w, http.StatusForbidden, "admin role required")
			return
		case errors.Is(err, approvals.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListApprovalsHandler handles GET /admin/approvals
func (h *HandlerProvider) ListApprovalsHandler(w http.ResponseWriter, r *http.Request) {
	caller := callerPrincipal(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	list, err := h.approval.List(r.Context(), caller)
	if err != nil {
		if errors.Is(err, approvals.ErrPermissionDenied) {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}

		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]approvalView, 0, len(list))
	for _, a := range list {
		views = append(views, approvalView{
			Principal: a.Principal,
			Status:    string(a.Status),
			UpdatedAt: a.UpdatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"approvals": views})
}
