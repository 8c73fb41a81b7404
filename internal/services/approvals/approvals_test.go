package approvals

import (
	"context"
	"errors"
	"testing"

	"github.com/streamvault/payments/internal/infra/pgtestutil"
	"github.com/streamvault/payments/internal/repos/approvals"
)

func TestRoleOf(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, []string{"root", "ops"})

	tests := []struct {
		name      string
		principal string
		want      Role
	}{
		{name: "configured_admin", principal: "root", want: RoleAdmin},
		{name: "second_admin", principal: "ops", want: RoleAdmin},
		{name: "anyone_else_is_user", principal: "alice", want: RoleUser},
		{name: "empty_is_guest", principal: "", want: RoleGuest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := svc.RoleOf(tt.principal); got != tt.want {
				t.Errorf("RoleOf(%q) = %s, want %s", tt.principal, got, tt.want)
			}

			wantAdmin := tt.want == RoleAdmin
			if got := svc.IsAdmin(tt.principal); got != wantAdmin {
				t.Errorf("IsAdmin(%q) = %v, want %v", tt.principal, got, wantAdmin)
			}
		})
	}
}

func TestStatus_DefaultsToPending(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, nil)

	status, err := svc.Status(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	if status != approvals.StatusPending {
		t.Errorf("unknown principal: want pending, got %s", status)
	}

	err = svc.RequireApproved(context.Background(), "never-seen")
	if !errors.Is(err, ErrNotApproved) {
		t.Fatalf("want ErrNotApproved, got %v", err)
	}
}

func TestSet_AdminOnly(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, []string{"root"})

	err := svc.Set(context.Background(), "alice", "bob", approvals.StatusApproved)
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-admin set: want ErrPermissionDenied, got %v", err)
	}

	err = svc.Set(context.Background(), "root", "bob", approvals.StatusApproved)
	if err != nil {
		t.Fatalf("admin set: %v", err)
	}

	err = svc.RequireApproved(context.Background(), "bob")
	if err != nil {
		t.Errorf("bob approved yet gate rejects: %v", err)
	}
}

// an admin can approve themselves, which is how the first approved admin
// comes to exist on a fresh deployment.
func TestSet_AdminSelfApproval(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, []string{"root"})

	err := svc.RequireApproved(context.Background(), "root")
	if !errors.Is(err, ErrNotApproved) {
		t.Fatalf("fresh admin must start unapproved, got %v", err)
	}

	err = svc.Set(context.Background(), "root", "root", approvals.StatusApproved)
	if err != nil {
		t.Fatalf("self-approve: %v", err)
	}

	err = svc.RequireApproved(context.Background(), "root")
	if err != nil {
		t.Errorf("self-approved admin rejected: %v", err)
	}
}

func TestSet_Validation(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, []string{"root"})

	tests := []struct {
		name   string
		target string
		status approvals.Status
	}{
		{name: "empty_target", target: "", status: approvals.StatusApproved},
		{name: "unknown_status", target: "bob", status: "banned"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Set(context.Background(), "root", tt.target, tt.status)
			if !errors.Is(err, ErrInvalidStatus) {
				t.Fatalf("want ErrInvalidStatus, got %v", err)
			}
		})
	}
}

func TestSet_RejectionRevokesAccess(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, []string{"root"})

	err := svc.Set(context.Background(), "root", "bob", approvals.StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}

	err = svc.Set(context.Background(), "root", "bob", approvals.StatusRejected)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}

	err = svc.RequireApproved(context.Background(), "bob")
	if !errors.Is(err, ErrNotApproved) {
		t.Fatalf("rejected principal must fail the gate, got %v", err)
	}
}

func TestList_AdminOnly(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, []string{"root"})

	for _, target := range []string{"bob", "alice"} {
		err := svc.Set(context.Background(), "root", target, approvals.StatusPending)
		if err != nil {
			t.Fatalf("set %s: %v", target, err)
		}
	}

	_, err := svc.List(context.Background(), "alice")
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("non-admin list: want ErrPermissionDenied, got %v", err)
	}

	got, err := svc.List(context.Background(), "root")
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}

	if len(got) != 2 {
		t.Errorf("want 2 records, got %d", len(got))
	}
}
