package approvals

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/streamvault/payments/internal/repos/approvals"
)

var _ approvals.Approvals = (*approvalsRepo)(nil)

type approvalsRepo struct{ db *sql.DB }

func New(db *sql.DB) *approvalsRepo {
	return &approvalsRepo{db: db}
}

func (r *approvalsRepo) Get(ctx context.Context, principal string) (approvals.Approval, error) {
	var (
		a      approvals.Approval
		status string
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT principal, status, updated_at
		FROM user_approvals
		WHERE principal = $1
	`, principal).Scan(&a.Principal, &status, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return approvals.Approval{}, approvals.ErrApprovalNotFound
		}

		return approvals.Approval{}, fmt.Errorf("get approval: %w", err)
	}

	a.Status = approvals.Status(status)

	return a, nil
}

func (r *approvalsRepo) Set(ctx context.Context, principal string, status approvals.Status) error {
	// Idempotent by construction: updated_at only moves when the status
	// actually changes.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_approvals (principal, status)
		VALUES ($1, $2)
		ON CONFLICT (principal) DO UPDATE
		SET status = EXCLUDED.status,
		    updated_at = CASE
		        WHEN user_approvals.status IS DISTINCT FROM EXCLUDED.status THEN now()
		        ELSE user_approvals.updated_at
		    END
	`, principal, string(status))
	if err != nil {
		return fmt.Errorf("set approval: %w", err)
	}

	return nil
}

func (r *approvalsRepo) List(ctx context.Context) ([]approvals.Approval, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT principal, status, updated_at
		FROM user_approvals
		ORDER BY principal
	`)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []approvals.Approval

	for rows.Next() {
		var (
			a      approvals.Approval
			status string
		)

		err = rows.Scan(&a.Principal, &status, &a.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}

		a.Status = approvals.Status(status)
		out = append(out, a)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate approvals: %w", err)
	}

	return out, nil
}
