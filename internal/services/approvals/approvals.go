// Package approvals is the gate every privileged operation checks
// before acting. Roles come from static configuration, approval status
// from the database; both checks are made inline at the call site that
// needs them so there is no gap between check and use.
package approvals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/streamvault/payments/internal/repos/approvals"
	pgapprovals "github.com/streamvault/payments/internal/repos/approvals/postgres"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotApproved      = errors.New("caller not approved")
	ErrInvalidStatus    = errors.New("invalid approval status")
)

// Role is a capability tag attached to a caller. It is not inherited;
// every privileged operation checks it directly.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
	RoleGuest Role = "guest"
)

// Gate is the authorization surface other services depend on.
type Gate interface {
	RoleOf(principal string) Role
	IsAdmin(principal string) bool
	// RequireApproved returns ErrNotApproved unless the principal's
	// approval status is approved.
	RequireApproved(ctx context.Context, principal string) error
}

type Service struct {
	repo   approvals.Approvals
	admins map[string]struct{}
}

var _ Gate = (*Service)(nil)

// New builds the approval service. adminPrincipals is the static set of
// identities holding the Admin role.
func New(db *sql.DB, adminPrincipals []string) *Service {
	admins := make(map[string]struct{}, len(adminPrincipals))
	for _, p := range adminPrincipals {
		admins[p] = struct{}{}
	}

	return &Service{
		repo:   pgapprovals.New(db),
		admins: admins,
	}
}

func (s *Service) RoleOf(principal string) Role {
	if principal == "" {
		return RoleGuest
	}

	if _, ok := s.admins[principal]; ok {
		return RoleAdmin
	}

	return RoleUser
}

func (s *Service) IsAdmin(principal string) bool {
	return s.RoleOf(principal) == RoleAdmin
}

// Status returns the principal's approval status. A principal with no
// record is pending.
func (s *Service) Status(ctx context.Context, principal string) (approvals.Status, error) {
	a, err := s.repo.Get(ctx, principal)
	if err != nil {
		if errors.Is(err, approvals.ErrApprovalNotFound) {
			return approvals.StatusPending, nil
		}

		return "", fmt.Errorf("get approval: %w", err)
	}

	return a.Status, nil
}

func (s *Service) RequireApproved(ctx context.Context, principal string) error {
	status, err := s.Status(ctx, principal)
	if err != nil {
		return err
	}

	if status != approvals.StatusApproved {
		return ErrNotApproved
	}

	return nil
}

// Set transitions the target's approval state. Admin-only; setting the
// state it already has is a no-op, not an error.
func (s *Service) Set(ctx context.Context, caller, target string, status approvals.Status) error {
	if !s.IsAdmin(caller) {
		return ErrPermissionDenied
	}

	if target == "" {
		return fmt.Errorf("%w: empty principal", ErrInvalidStatus)
	}

	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	err := s.repo.Set(ctx, target, status)
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}

	return nil
}

// List returns every approval record. Admin-only.
func (s *Service) List(ctx context.Context, caller string) ([]approvals.Approval, error) {
	if !s.IsAdmin(caller) {
		return nil, ErrPermissionDenied
	}

	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}

	return out, nil
}
