package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

// App holds core runtime configuration shared across services.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"packadmin"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	LogLevel                string        `env:"LOG_LEVEL" envDefault:"info"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	Store    Store
	Postgres Postgres
	SQLite   SQLite
	Redis    Redis
	Security Security
	Admin    Admin
	Editor   Editor
	Cache    Cache
	Events   Events
	CORS     CORS
}

// Store selects the persistence backend.
type Store struct {
	Driver string `env:"STORE_DRIVER" envDefault:"postgres"`
}

// Postgres captures connection info for the SQL database. Only read when
// STORE_DRIVER=postgres.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// DSN renders the keyword/value connection string for a single connection.
func (p Postgres) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

// ConnString is DSN plus the pgxpool size.
func (p Postgres) ConnString() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.DSN(), p.MaxConns)
}

// SQLite locates the database file for STORE_DRIVER=sqlite.
type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"data/packadmin.db"`
}

// Redis is optional; an empty address disables the pack cache and
// cross-replica events.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Security stores secrets for signing and auth.
type Security struct {
	JWTSecret      string        `env:"JWT_SECRET,notEmpty"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"12h"`
}

// Admin is the single credential allowed into the API.
type Admin struct {
	Username     string `env:"ADMIN_USERNAME" envDefault:"admin"`
	PasswordHash string `env:"ADMIN_PASSWORD_HASH,notEmpty"`
}

// Editor governs open editing sessions.
type Editor struct {
	SessionTTL    time.Duration `env:"EDITOR_SESSION_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"EDITOR_SWEEP_INTERVAL" envDefault:"1m"`
}

// Cache configures the pack read cache.
type Cache struct {
	PackTTL time.Duration `env:"PACK_CACHE_TTL" envDefault:"5m"`
}

// Events names the Pub/Sub channel for catalog changes.
type Events struct {
	Channel string `env:"EVENTS_CHANNEL" envDefault:"packadmin:catalog"`
}

// CORS holds Cross-Origin Resource Sharing configuration.
type CORS struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS" envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE" envDefault:"3600"`
}

// Load parses environment variables into App config.
func Load(ctx context.Context) (*App, error) {
	cfg := &App{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadPostgres reads only the PG_* variables. Tools that talk to the
// database directly use it instead of Load.
func LoadPostgres() (Postgres, error) {
	var pg Postgres
	if err := env.Parse(&pg); err != nil {
		return Postgres{}, fmt.Errorf("parse postgres config: %w", err)
	}
	if pg.User == "" || pg.Database == "" {
		return Postgres{}, fmt.Errorf("PG_USER and PG_DATABASE are required")
	}
	return pg, nil
}

func (c *App) validate() error {
	switch c.Store.Driver {
	case StorePostgres:
		if c.Postgres.User == "" || c.Postgres.Database == "" {
			return fmt.Errorf("STORE_DRIVER=postgres requires PG_USER and PG_DATABASE")
		}
	case StoreSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("STORE_DRIVER=sqlite requires SQLITE_PATH")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want postgres, sqlite or memory)", c.Store.Driver)
	}
	return nil
}
