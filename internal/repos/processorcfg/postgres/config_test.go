package processorcfg

import (
	"context"
	"errors"
	"testing"

	"github.com/streamvault/payments/internal/infra/pgtestutil"
	"github.com/streamvault/payments/internal/repos/processorcfg"
)

func TestConfig_UnconfiguredState(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	configured, err := repo.IsConfigured(context.Background())
	if err != nil {
		t.Fatalf("is configured: %v", err)
	}

	if configured {
		t.Error("fresh database must report unconfigured")
	}

	_, err = repo.Get(context.Background())
	if !errors.Is(err, processorcfg.ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}
}

func TestConfig_ReplaceBumpsVersion(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	v1, err := repo.Replace(context.Background(), "sk_first", []string{"US"})
	if err != nil {
		t.Fatalf("first replace: %v", err)
	}

	if v1 != 1 {
		t.Errorf("first version: want 1, got %d", v1)
	}

	v2, err := repo.Replace(context.Background(), "sk_second", nil)
	if err != nil {
		t.Fatalf("second replace: %v", err)
	}

	if v2 != 2 {
		t.Errorf("second version: want 2, got %d", v2)
	}

	got, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	// wholesale swap: the old countries list must not survive
	if got.SecretKey != "sk_second" || len(got.AllowedCountries) != 0 {
		t.Errorf("config not replaced wholesale: %+v", got)
	}

	configured, err := repo.IsConfigured(context.Background())
	if err != nil {
		t.Fatalf("is configured: %v", err)
	}

	if !configured {
		t.Error("must report configured after replace")
	}
}

func TestConfig_EmptyFieldsStillConfigured(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	_, err := repo.Replace(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("replace with empty fields: %v", err)
	}

	configured, err := repo.IsConfigured(context.Background())
	if err != nil {
		t.Fatalf("is configured: %v", err)
	}

	// "configured with empty fields" is distinct from "unconfigured"
	if !configured {
		t.Error("empty configuration still counts as configured")
	}
}
