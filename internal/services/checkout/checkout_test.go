package checkout

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/streamvault/payments/internal/infra/pgtestutil"
	"github.com/streamvault/payments/internal/processor"
	"github.com/streamvault/payments/internal/repos/processorcfg"
	"github.com/streamvault/payments/internal/repos/sessions"
	pgshares "github.com/streamvault/payments/internal/repos/shares/postgres"
	"github.com/streamvault/payments/internal/services/approvals"
)

// openGate approves everyone; authz behavior is covered separately.
type openGate struct{}

func (openGate) RoleOf(string) approvals.Role                  { return approvals.RoleAdmin }
func (openGate) IsAdmin(string) bool                           { return true }
func (openGate) RequireApproved(context.Context, string) error { return nil }

// stubGateway scripts the processor outcome and counts invocations.
type stubGateway struct {
	calls     atomic.Int32
	canonical processor.Canonical
	err       error
}

func (g *stubGateway) CreateSession(context.Context, processorcfg.Config, sessions.Session) (processor.Canonical, error) {
	g.calls.Add(1)
	return g.canonical, g.err
}

func paidCanonical() processor.Canonical {
	return processor.Canonical{
		Status:  http.StatusOK,
		Headers: []processor.Header{{Name: "content-type", Value: "application/json"}},
		Body:    []byte(`{"payment_status":"paid"}`),
	}
}

func configureProcessor(t *testing.T, svc *Service) {
	t.Helper()

	_, err := svc.cfg.Replace(context.Background(), "sk_test", []string{"US"})
	if err != nil {
		t.Fatalf("configure processor: %v", err)
	}
}

func createTestSession(t *testing.T, svc *Service, creator string) string {
	t.Helper()

	id, err := svc.CreateSession(context.Background(), CreateSessionRequest{
		Creator: creator,
		Items: []sessions.Item{
			{ProductName: "Season pass", Currency: "usd", Quantity: 2, PriceMinor: 500},
		},
		SuccessURL: "https://example.com/ok",
		CancelURL:  "https://example.com/cancel",
	})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	return id
}

func TestCreateSession_Validation(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, openGate{}, &stubGateway{})

	tests := []struct {
		name string
		req  CreateSessionRequest
	}{
		{
			name: "empty_items",
			req: CreateSessionRequest{
				SuccessURL: "s", CancelURL: "c",
			},
		},
		{
			name: "zero_quantity",
			req: CreateSessionRequest{
				Items:      []sessions.Item{{ProductName: "x", Currency: "usd", Quantity: 0, PriceMinor: 100}},
				SuccessURL: "s", CancelURL: "c",
			},
		},
		{
			name: "negative_price",
			req: CreateSessionRequest{
				Items:      []sessions.Item{{ProductName: "x", Currency: "usd", Quantity: 1, PriceMinor: -1}},
				SuccessURL: "s", CancelURL: "c",
			},
		},
		{
			name: "missing_urls",
			req: CreateSessionRequest{
				Items: []sessions.Item{{ProductName: "x", Currency: "usd", Quantity: 1, PriceMinor: 100}},
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSession(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("want ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestSessionStatus_CompletesAndCreditsLedger(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	gw := &stubGateway{canonical: paidCanonical()}
	svc := New(db, openGate{}, gw)
	configureProcessor(t, svc)

	id := createTestSession(t, svc, "creator-a")

	got, err := svc.SessionStatus(context.Background(), id, "buyer-1")
	if err != nil {
		t.Fatalf("session status: %v", err)
	}

	if got.Status != sessions.StatusCompleted {
		t.Fatalf("status: want completed, got %s", got.Status)
	}

	if got.Buyer != "buyer-1" {
		t.Errorf("buyer: want buyer-1, got %q", got.Buyer)
	}

	// 2 x 500 credited exactly once
	share, err := pgshares.New(db).Get(context.Background(), "creator-a")
	if err != nil {
		t.Fatalf("get share: %v", err)
	}

	if share.TotalEarnings != 1000 || share.PendingPayouts != 1000 {
		t.Errorf("ledger: want 1000/1000, got %d/%d",
			share.TotalEarnings, share.PendingPayouts)
	}
}

func TestSessionStatus_SettledReadSkipsNetwork(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	gw := &stubGateway{canonical: paidCanonical()}
	svc := New(db, openGate{}, gw)
	configureProcessor(t, svc)

	id := createTestSession(t, svc, "creator-a")

	_, err := svc.SessionStatus(context.Background(), id, "buyer-1")
	if err != nil {
		t.Fatalf("first poll: %v", err)
	}

	for i := 0; i < 3; i++ {
		got, err := svc.SessionStatus(context.Background(), id, "buyer-2")
		if err != nil {
			t.Fatalf("re-poll: %v", err)
		}

		if got.Status != sessions.StatusCompleted || got.Buyer != "buyer-1" {
			t.Errorf("re-poll must return the stored terminal value, got %+v", got)
		}
	}

	if n := gw.calls.Load(); n != 1 {
		t.Errorf("settled session must not re-invoke the gateway: %d calls", n)
	}

	share, err := pgshares.New(db).Get(context.Background(), "creator-a")
	if err != nil {
		t.Fatalf("get share: %v", err)
	}

	if share.TotalEarnings != 1000 {
		t.Errorf("re-polls must not re-credit: total=%d", share.TotalEarnings)
	}
}

func TestSessionStatus_ConcurrentPollersCreditOnce(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	gw := &stubGateway{canonical: paidCanonical()}
	svc := New(db, openGate{}, gw)
	configureProcessor(t, svc)

	id := createTestSession(t, svc, "creator-a")

	const pollers = 8

	var wg sync.WaitGroup

	results := make([]sessions.Session, pollers)
	errs := make([]error, pollers)

	for i := 0; i < pollers; i++ {
		wg.Add(1)

		i := i

		go func() {
			defer wg.Done()
			results[i], errs[i] = svc.SessionStatus(context.Background(), id, "buyer-1")
		}()
	}

	wg.Wait()

	for i := 0; i < pollers; i++ {
		if errs[i] != nil {
			t.Fatalf("poller %d: %v", i, errs[i])
		}

		if results[i].Status != sessions.StatusCompleted {
			t.Fatalf("poller %d observed %s", i, results[i].Status)
		}
	}

	share, err := pgshares.New(db).Get(context.Background(), "creator-a")
	if err != nil {
		t.Fatalf("get share: %v", err)
	}

	if share.TotalEarnings != 1000 {
		t.Fatalf("racing pollers credited %d, want exactly 1000", share.TotalEarnings)
	}
}

func TestSessionStatus_ProcessorRejectionFailsSession(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	gw := &stubGateway{canonical: processor.Canonical{
		Status: http.StatusPaymentRequired,
		Body:   []byte(`{"error":"card_declined"}`),
	}}
	svc := New(db, openGate{}, gw)
	configureProcessor(t, svc)

	id := createTestSession(t, svc, "creator-a")

	got, err := svc.SessionStatus(context.Background(), id, "buyer-1")
	if err != nil {
		t.Fatalf("session status: %v", err)
	}

	if got.Status != sessions.StatusFailed {
		t.Fatalf("status: want failed, got %s", got.Status)
	}

	if got.FailReason == "" {
		t.Error("failed session must carry a reason")
	}

	// rejected payment never credits the ledger
	_, err = pgshares.New(db).Get(context.Background(), "creator-a")
	if err == nil {
		t.Error("no share should exist for a failed session")
	}
}

func TestSessionStatus_NetworkErrorFailsSession(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	gw := &stubGateway{err: errors.New("connection refused")}
	svc := New(db, openGate{}, gw)
	configureProcessor(t, svc)

	id := createTestSession(t, svc, "")

	got, err := svc.SessionStatus(context.Background(), id, "")
	if err != nil {
		t.Fatalf("session status: %v", err)
	}

	if got.Status != sessions.StatusFailed {
		t.Fatalf("status: want failed, got %s", got.Status)
	}
}

func TestSessionStatus_UnconfiguredLeavesSessionPending(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	gw := &stubGateway{canonical: paidCanonical()}
	svc := New(db, openGate{}, gw)

	id := createTestSession(t, svc, "creator-a")

	_, err := svc.SessionStatus(context.Background(), id, "buyer-1")
	if !errors.Is(err, processorcfg.ErrNotConfigured) {
		t.Fatalf("want ErrNotConfigured, got %v", err)
	}

	got, err := svc.sessions.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}

	if got.Status != sessions.StatusPending {
		t.Errorf("session must stay pending while unconfigured, got %s", got.Status)
	}

	if n := gw.calls.Load(); n != 0 {
		t.Errorf("gateway must not be called without configuration: %d calls", n)
	}
}

func TestSetProcessorConfig_AdminOnly(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	svc := New(db, openGate{}, &stubGateway{})

	version, err := svc.SetProcessorConfig(context.Background(), "admin-1", "sk_live", []string{"US", "TZ"})
	if err != nil {
		t.Fatalf("set config: %v", err)
	}

	if version != 1 {
		t.Errorf("version: want 1, got %d", version)
	}

	configured, err := svc.IsConfigured(context.Background())
	if err != nil {
		t.Fatalf("is configured: %v", err)
	}

	if !configured {
		t.Error("want configured after replace")
	}
}
