package processorcfg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/streamvault/payments/internal/repos/processorcfg"
)

var _ processorcfg.Store = (*configRepo)(nil)

type configRepo struct{ db *sql.DB }

func New(db *sql.DB) *configRepo {
	return &configRepo{db: db}
}

func (r *configRepo) Replace(ctx context.Context, secretKey string, allowedCountries []string) (int64, error) {
	if allowedCountries == nil {
		allowedCountries = []string{}
	}

	countries, err := json.Marshal(allowedCountries)
	if err != nil {
		return 0, fmt.Errorf("marshal countries: %w", err)
	}

	var version int64

	err = r.db.QueryRowContext(ctx, `
		INSERT INTO processor_config (id, secret_key, allowed_countries, version)
		VALUES (1, $1, $2, 1)
		ON CONFLICT (id) DO UPDATE
		SET secret_key = EXCLUDED.secret_key,
		    allowed_countries = EXCLUDED.allowed_countries,
		    version = processor_config.version + 1
		RETURNING version
	`, secretKey, countries).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("replace config: %w", err)
	}

	return version, nil
}

func (r *configRepo) Get(ctx context.Context) (processorcfg.Config, error) {
	var (
		cfg          processorcfg.Config
		rawCountries []byte
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT secret_key, allowed_countries, version
		FROM processor_config
		WHERE id = 1
	`).Scan(&cfg.SecretKey, &rawCountries, &cfg.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return processorcfg.Config{}, processorcfg.ErrNotConfigured
		}

		return processorcfg.Config{}, fmt.Errorf("get config: %w", err)
	}

	err = json.Unmarshal(rawCountries, &cfg.AllowedCountries)
	if err != nil {
		return processorcfg.Config{}, fmt.Errorf("unmarshal countries: %w", err)
	}

	return cfg, nil
}

func (r *configRepo) IsConfigured(ctx context.Context) (bool, error) {
	var configured bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM processor_config WHERE id = 1)
	`).Scan(&configured)
	if err != nil {
		return false, fmt.Errorf("check configured: %w", err)
	}

	return configured, nil
}
