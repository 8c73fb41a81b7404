// Package checkout owns the session lifecycle: create a pending
// session, and on status polls drive the poll -> outcall -> transform ->
// settle-once flow that credits the revenue ledger exactly once.
package checkout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streamvault/payments/internal/infra/pgutils"
	"github.com/streamvault/payments/internal/processor"
	"github.com/streamvault/payments/internal/repos/processorcfg"
	pgprocessorcfg "github.com/streamvault/payments/internal/repos/processorcfg/postgres"
	"github.com/streamvault/payments/internal/repos/sessions"
	pgsessions "github.com/streamvault/payments/internal/repos/sessions/postgres"
	"github.com/streamvault/payments/internal/repos/shares"
	pgshares "github.com/streamvault/payments/internal/repos/shares/postgres"
	"github.com/streamvault/payments/internal/services/approvals"

	"github.com/google/uuid"
)

// Outcaller is the one network dependency of the engine. Implementations
// must already have applied the transform: only canonical responses
// cross this boundary.
type Outcaller interface {
	CreateSession(ctx context.Context, cfg processorcfg.Config, s sessions.Session) (processor.Canonical, error)
}

type Service struct {
	db       *sql.DB
	sessions sessions.Sessions
	shares   shares.Shares
	cfg      processorcfg.Store
	gate     approvals.Gate
	gateway  Outcaller
}

func New(db *sql.DB, gate approvals.Gate, gateway Outcaller) *Service {
	return &Service{
		db:       db,
		sessions: pgsessions.New(db),
		shares:   pgshares.New(db),
		cfg:      pgprocessorcfg.New(db),
		gate:     gate,
		gateway:  gateway,
	}
}

// CreateSession validates the request and allocates a pending session.
// It never contacts the processor; that happens on the first status
// poll, keeping creation independent of network latency.
func (s *Service) CreateSession(ctx context.Context, req CreateSessionRequest) (string, error) {
	err := req.validate()
	if err != nil {
		return "", err
	}

	session := sessions.Session{
		ID:          "cs_" + uuid.NewString(),
		Creator:     req.Creator,
		Items:       req.Items,
		SuccessURL:  req.SuccessURL,
		CancelURL:   req.CancelURL,
		AmountMinor: req.amountMinor(),
		Status:      sessions.StatusPending,
	}

	err = s.sessions.Create(ctx, session)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	slog.Info("checkout session created",
		"sessionId", session.ID, "amountMinor", session.AmountMinor)

	return session.ID, nil
}

// SessionStatus returns the session's state, driving settlement if it is
// still pending. The flow spans the atomicity boundary: the outcall
// happens outside any transaction, then the session is re-read under a
// row lock and only the first terminal write wins. The racing poller
// observes the already-written result instead of crediting twice.
func (s *Service) SessionStatus(ctx context.Context, id, caller string) (sessions.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("get session: %w", err)
	}

	if session.Status.IsTerminal() {
		// Idempotent read: settled sessions never touch the network again.
		return session, nil
	}

	cfg, err := s.cfg.Get(ctx)
	if err != nil {
		// Unconfigured processor is a caller-correctable condition, not a
		// session failure: the session stays pending for a later poll.
		return sessions.Session{}, fmt.Errorf("load processor config: %w", err)
	}

	canonical, callErr := s.gateway.CreateSession(ctx, cfg, session)

	settled, err := s.settle(ctx, session, caller, canonical, callErr)
	if err != nil {
		return sessions.Session{}, err
	}

	return settled, nil
}

// settle applies the one-way transition. callErr carries a transport
// failure; a non-nil canonical with a non-2xx status is a processor
// rejection. Both settle the session as failed.
func (s *Service) settle(
	ctx context.Context,
	session sessions.Session,
	caller string,
	canonical processor.Canonical,
	callErr error,
) (sessions.Session, error) {
	var out sessions.Session

	err := pgutils.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		locked, err := s.sessions.LockAndGet(tx, session.ID)
		if err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		if locked.Status.IsTerminal() {
			// Another poller settled first; observe its result.
			out = locked
			return nil
		}

		switch {
		case callErr != nil:
			err = s.sessions.Fail(tx, session.ID, callErr.Error())
			if err != nil {
				return fmt.Errorf("fail session: %w", err)
			}

			slog.Warn("checkout session failed",
				"sessionId", session.ID, "reason", callErr.Error())

		case !canonical.Succeeded():
			reason := fmt.Sprintf("processor returned status %d", canonical.Status)

			err = s.sessions.Fail(tx, session.ID, reason)
			if err != nil {
				return fmt.Errorf("fail session: %w", err)
			}

			slog.Warn("checkout session rejected by processor",
				"sessionId", session.ID, "status", canonical.Status)

		default:
			response, err := json.Marshal(canonical)
			if err != nil {
				return fmt.Errorf("marshal canonical response: %w", err)
			}

			err = s.sessions.Complete(tx, session.ID, caller, string(response))
			if err != nil {
				return fmt.Errorf("complete session: %w", err)
			}

			if locked.Creator != "" {
				err = s.shares.Credit(tx, locked.Creator, locked.AmountMinor)
				if err != nil {
					return fmt.Errorf("credit ledger: %w", err)
				}
			}

			slog.Info("checkout session completed",
				"sessionId", session.ID, "creator", locked.Creator,
				"amountMinor", locked.AmountMinor)
		}

		fresh, err := s.sessions.LockAndGet(tx, session.ID)
		if err != nil {
			return fmt.Errorf("reload session: %w", err)
		}

		out = fresh

		return nil
	})
	if err != nil {
		if errors.Is(err, sessions.ErrAlreadySettled) {
			// Lost the race between lock release and write; re-read outside
			// the failed transaction.
			settled, gerr := s.sessions.Get(ctx, session.ID)
			if gerr == nil {
				return settled, nil
			}
		}

		return sessions.Session{}, fmt.Errorf("settle session: %w", err)
	}

	return out, nil
}

// SetProcessorConfig replaces the processor configuration wholesale.
// Admin-only and approval-gated, checked inline here.
func (s *Service) SetProcessorConfig(ctx context.Context, caller, secretKey string, allowedCountries []string) (int64, error) {
	if !s.gate.IsAdmin(caller) {
		return 0, approvals.ErrPermissionDenied
	}

	err := s.gate.RequireApproved(ctx, caller)
	if err != nil {
		return 0, err
	}

	if secretKey == "" {
		return 0, errors.Join(ErrInvalidRequest, errors.New("secret key required"))
	}

	version, err := s.cfg.Replace(ctx, secretKey, allowedCountries)
	if err != nil {
		return 0, fmt.Errorf("replace processor config: %w", err)
	}

	slog.Info("processor configuration replaced", "version", version)

	return version, nil
}

// IsConfigured reports whether the processor has ever been configured.
// Public: it leaks no secret material.
func (s *Service) IsConfigured(ctx context.Context) (bool, error) {
	configured, err := s.cfg.IsConfigured(ctx)
	if err != nil {
		return false, fmt.Errorf("check configured: %w", err)
	}

	return configured, nil
}
