package processorcfg

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("payment processor not configured")

// Config is the process-wide payment-processor configuration. It is a
// singleton replaced wholesale; Version increments on every replace so
// "unconfigured" is distinct from "configured with empty fields".
type Config struct {
	SecretKey        string
	AllowedCountries []string
	Version          int64
}

type Store interface {
	// Replace swaps the whole configuration atomically and returns the
	// new version.
	Replace(ctx context.Context, secretKey string, allowedCountries []string) (int64, error)
	// Get returns the current configuration, ErrNotConfigured if Replace
	// has never been called.
	Get(ctx context.Context) (Config, error)
	IsConfigured(ctx context.Context) (bool, error)
}
