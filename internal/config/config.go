package config

import (
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/juju/errors"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreGorm     = "gorm"
)

// Config holds environment-driven configuration. Every field can also be set
// with a command line flag, which wins over the environment.
type Config struct {
	Addr            string
	DatabaseURL     string
	Store           string
	LogLevel        string
	LogFormat       string
	CORSOrigins     string
	ShutdownTimeout time.Duration
}

// Load reads envFiles (".env" when none are given) into the environment,
// then parses args on top of it. Missing env files are not an error.
func Load(args []string, envFiles ...string) (Config, error) {
	_ = godotenv.Load(envFiles...)

	var cfg Config
	app := kingpin.New("person-api", "HTTP API managing people.")
	app.Flag("addr", "Address to listen on.").
		Envar("PERSON_API_ADDR").Default(":8080").StringVar(&cfg.Addr)
	app.Flag("database-url", "Postgres connection string.").
		Envar("DATABASE_URL").StringVar(&cfg.DatabaseURL)
	app.Flag("store", "Storage backend.").
		Envar("STORE").Default(StorePostgres).EnumVar(&cfg.Store, StoreMemory, StorePostgres, StoreGorm)
	app.Flag("log-level", "zerolog level.").
		Envar("LOG_LEVEL").Default("info").StringVar(&cfg.LogLevel)
	app.Flag("log-format", "json or console.").
		Envar("LOG_FORMAT").Default("json").EnumVar(&cfg.LogFormat, "json", "console")
	app.Flag("cors-origins", "Comma separated list of allowed origins.").
		Envar("CORS_ORIGINS").Default("*").StringVar(&cfg.CORSOrigins)
	app.Flag("shutdown-timeout", "Time allowed for in-flight requests on shutdown.").
		Envar("SHUTDOWN_TIMEOUT").Default("10s").DurationVar(&cfg.ShutdownTimeout)

	if _, err := app.Parse(args); err != nil {
		return Config{}, errors.Annotatef(err, "parsing configuration")
	}

	if cfg.Store != StoreMemory && cfg.DatabaseURL == "" {
		return Config{}, errors.Errorf("DATABASE_URL is not set (store %q)", cfg.Store)
	}

	return cfg, nil
}
