package approvals

import (
	"context"
	"errors"
	"testing"

	"github.com/streamvault/payments/internal/infra/pgtestutil"
	"github.com/streamvault/payments/internal/repos/approvals"
)

func TestApprovals_SetIsIdempotent(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	err := repo.Set(context.Background(), "alice", approvals.StatusApproved)
	if err != nil {
		t.Fatalf("first set: %v", err)
	}

	first, err := repo.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get after first set: %v", err)
	}

	// same transition again: no error, no observable change
	err = repo.Set(context.Background(), "alice", approvals.StatusApproved)
	if err != nil {
		t.Fatalf("repeat set: %v", err)
	}

	second, err := repo.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get after repeat set: %v", err)
	}

	if second.Status != approvals.StatusApproved {
		t.Errorf("status: want approved, got %s", second.Status)
	}

	if !second.UpdatedAt.Equal(first.UpdatedAt) {
		t.Errorf("repeat of identical transition must not move updated_at: %v vs %v",
			first.UpdatedAt, second.UpdatedAt)
	}
}

func TestApprovals_StatusTransitions(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	err := repo.Set(context.Background(), "bob", approvals.StatusPending)
	if err != nil {
		t.Fatalf("set pending: %v", err)
	}

	err = repo.Set(context.Background(), "bob", approvals.StatusRejected)
	if err != nil {
		t.Fatalf("set rejected: %v", err)
	}

	got, err := repo.Get(context.Background(), "bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.Status != approvals.StatusRejected {
		t.Errorf("status: want rejected, got %s", got.Status)
	}
}

func TestApprovals_GetUnknownPrincipal(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	_, err := repo.Get(context.Background(), "nobody")
	if !errors.Is(err, approvals.ErrApprovalNotFound) {
		t.Fatalf("want ErrApprovalNotFound, got %v", err)
	}
}

func TestApprovals_ListOrdersByPrincipal(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	for _, p := range []string{"carol", "alice", "bob"} {
		err := repo.Set(context.Background(), p, approvals.StatusPending)
		if err != nil {
			t.Fatalf("set %s: %v", p, err)
		}
	}

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("want 3 approvals, got %d", len(got))
	}

	if got[0].Principal != "alice" || got[1].Principal != "bob" || got[2].Principal != "carol" {
		t.Errorf("ordering: got %v", got)
	}
}
