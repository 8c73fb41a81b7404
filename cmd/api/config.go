package main

import (
	"log/slog"
	"time"
)

type apiConfig struct {
	Port            uint16        `env:"APP_PORT" envDefault:"8080"`
	LogLevel        slog.Level    `env:"APP_LOG_LEVEL" envDefault:"INFO"`
	ShutdownTimeout time.Duration `env:"APP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	AdminPrincipals []string      `env:"APP_ADMIN_PRINCIPALS" envDefault:""`

	Postgres  PostgresConf
	Processor ProcessorConf
}

type PostgresConf struct {
	DSN string `env:"PG_DSN"`
}

type ProcessorConf struct {
	BaseURL string        `env:"PROCESSOR_BASE_URL" envDefault:"https://api.stripe.com"`
	Timeout time.Duration `env:"PROCESSOR_TIMEOUT" envDefault:"30s"`
}
