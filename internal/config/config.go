package config

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// App holds runtime configuration of the MCP server and the quiz library.
type App struct {
	Name                    string        `env:"APP_NAME" envDefault:"quiz-widget"`
	Env                     string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr                string        `env:"HTTP_ADDR" envDefault:"0.0.0.0:8080"`
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_SECONDS" envDefault:"20s"`

	MCP      MCP
	Backend  Backend
	Library  Library
	Postgres Postgres
	Redis    Redis
}

// MCP configures the tool server and its widget templates.
type MCP struct {
	ServerName    string `env:"MCP_SERVER_NAME" envDefault:"quiz-widget"`
	ServerVersion string `env:"MCP_SERVER_VERSION" envDefault:"v1.0.0"`
	WidgetBaseURL string `env:"WIDGET_BASE_URL" envDefault:""`
	WidgetDomain  string `env:"WIDGET_DOMAIN" envDefault:""`
}

// Backend is the API the fetch and save-quiz tools proxy to.
type Backend struct {
	APIURL  string        `env:"BACKEND_API_URL" envDefault:"http://localhost:8080"`
	AppName string        `env:"BACKEND_APP_NAME" envDefault:"quiz-widget"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`
}

// Library configures the built-in quiz library API.
type Library struct {
	Enabled         bool          `env:"LIBRARY_ENABLED" envDefault:"true"`
	JWTSecret       string        `env:"JWT_SECRET" envDefault:""`
	TokenTTL        time.Duration `env:"JWT_TTL" envDefault:"24h"`
	DefaultPageSize int           `env:"LIBRARY_DEFAULT_PAGE_SIZE" envDefault:"20"`
	MaxPageSize     int           `env:"LIBRARY_MAX_PAGE_SIZE" envDefault:"100"`
	CacheTTL        time.Duration `env:"LIBRARY_CACHE_TTL" envDefault:"5m"`
	AutoMigrate     bool          `env:"LIBRARY_AUTO_MIGRATE" envDefault:"false"`
}

// Postgres captures connection info for the SQL database.
type Postgres struct {
	Host     string `env:"PG_HOST" envDefault:"localhost"`
	Port     int    `env:"PG_PORT" envDefault:"5432"`
	User     string `env:"PG_USER" envDefault:""`
	Password string `env:"PG_PASSWORD" envDefault:""`
	Database string `env:"PG_DATABASE" envDefault:""`
	SSLMode  string `env:"PG_SSL_MODE" envDefault:"disable"`
	MaxConns int    `env:"PG_MAX_CONNS" envDefault:"10"`
}

// ConnString renders a plain libpq-style connection string.
// An empty password is left out.
func (p Postgres) ConnString() string {
	parts := []string{
		"host=" + p.Host,
		"port=" + strconv.Itoa(p.Port),
		"user=" + p.User,
	}
	if p.Password != "" {
		parts = append(parts, "password="+p.Password)
	}
	parts = append(parts, "dbname="+p.Database, "sslmode="+p.SSLMode)
	return strings.Join(parts, " ")
}

// DSN is ConnString plus the pgxpool sizing parameter.
func (p Postgres) DSN() string {
	return fmt.Sprintf("%s pool_max_conns=%d", p.ConnString(), p.MaxConns)
}

// Redis holds the list page cache configuration. An empty address disables it.
type Redis struct {
	Addr     string `env:"REDIS_ADDR" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	PoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"20"`
}

// Client configures the terminal widget host.
type Client struct {
	Env              string        `env:"APP_ENV" envDefault:"development"`
	MCPEndpoint      string        `env:"QUIZ_MCP_ENDPOINT" envDefault:"http://localhost:8080/mcp"`
	Token            string        `env:"QUIZ_TOKEN" envDefault:""`
	CallTimeout      time.Duration `env:"QUIZ_CALL_TIMEOUT" envDefault:"15s"`
	FrontendPageSize int           `env:"QUIZ_LIST_PAGE_SIZE" envDefault:"5"`
	BackendPageSize  int           `env:"QUIZ_LIST_FETCH_SIZE" envDefault:"20"`
	Wisebase         string        `env:"QUIZ_WISEBASE_ID" envDefault:"inbox"`

	// Used only to mint development tokens.
	JWTSecret string `env:"JWT_SECRET" envDefault:""`
	Issuer    string `env:"APP_NAME" envDefault:"quiz-widget"`
}

var (
	errMissingJWTSecret = errors.New("JWT_SECRET must be set when the library is enabled")
	errMissingPostgres  = errors.New("PG_USER and PG_DATABASE must be set when the library is enabled")
)

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

func (a *App) validate() error {
	if !a.Library.Enabled {
		return nil
	}
	if a.Library.JWTSecret == "" {
		return errMissingJWTSecret
	}
	if a.Postgres.User == "" || a.Postgres.Database == "" {
		return errMissingPostgres
	}
	return nil
}

// LoadClient parses the widget host configuration.
func LoadClient() (*Client, error) {
	cfg := &Client{}
	if err := env.ParseWithOptions(cfg, env.Options{RequiredIfNoDef: true}); err != nil {
		return nil, fmt.Errorf("parse client config: %w", err)
	}
	return cfg, nil
}
