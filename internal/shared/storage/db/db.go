package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/viper"

	"lifeway-backend/internal/shared/telemetry"
)

// supabasePoolerPort is the port of Supabase's transaction-mode pooler, which
// cannot hold server-side prepared statements across transactions.
const supabasePoolerPort = 6543

// Options controls pool sizing and how statements reach the server.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// SimpleProtocol sends statements without preparing them. It is forced on
	// when the URL targets the transaction pooler port.
	SimpleProtocol bool
}

var (
	openDB = openPgx

	singletonMu sync.Mutex
	singletonDB *sql.DB
)

// IsLambdaRuntime reports whether the process runs in AWS Lambda, where each
// execution environment keeps one small pool across invocations.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// DefaultLambdaOptions keeps one or two connections per execution environment.
func DefaultLambdaOptions() Options {
	return Options{
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxIdleTime: 30 * time.Second,
		ConnMaxLifetime: 15 * time.Minute,
		PingTimeout:     3 * time.Second,
	}
}

func DefaultServerOptions() Options {
	return Options{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxIdleTime: 2 * time.Minute,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     5 * time.Second,
	}
}

// DefaultMigrateOptions uses one connection; goose runs statements serially.
func DefaultMigrateOptions() Options {
	return Options{
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		PingTimeout:     10 * time.Second,
	}
}

// OptionsFromEnv overrides defaults with DB_* variables. Malformed values are
// logged and ignored.
func OptionsFromEnv(defaults Options) Options {
	v := viper.New()
	v.AutomaticEnv()

	opts := defaults
	overrideInt(v, "DB_MAX_OPEN_CONNS", &opts.MaxOpenConns)
	overrideInt(v, "DB_MAX_IDLE_CONNS", &opts.MaxIdleConns)
	overrideDuration(v, "DB_CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	overrideDuration(v, "DB_CONN_MAX_IDLE_TIME", &opts.ConnMaxIdleTime)
	overrideDuration(v, "DB_PING_TIMEOUT", &opts.PingTimeout)
	if raw := strings.TrimSpace(v.GetString("DB_SIMPLE_PROTOCOL")); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			telemetry.Warn("db.env_invalid", map[string]any{"key": "DB_SIMPLE_PROTOCOL", "error": err})
		} else {
			opts.SimpleProtocol = b
		}
	}
	return opts
}

func overrideInt(v *viper.Viper, key string, dst *int) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = n
}

func overrideDuration(v *viper.Viper, key string, dst *time.Duration) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env_invalid", map[string]any{"key": key, "error": err})
		return
	}
	*dst = d
}

// connConfig parses databaseURL and picks the query exec mode.
func connConfig(databaseURL string, opts Options) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	if opts.SimpleProtocol || cfg.Port == supabasePoolerPort {
		cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return cfg, nil
}

func openPgx(databaseURL string, opts Options) (*sql.DB, error) {
	cfg, err := connConfig(databaseURL, opts)
	if err != nil {
		return nil, err
	}
	return stdlib.OpenDB(*cfg), nil
}

// Connect opens a pool for databaseURL and pings it.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := openDB(databaseURL, opts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	stats := db.Stats()
	telemetry.Info("db.connected", map[string]any{
		"max_open":        stats.MaxOpenConnections,
		"simple_protocol": opts.SimpleProtocol,
	})
	return db, nil
}

// GetSingleton returns the process-wide pool, connecting on first use. A
// failed attempt leaves nothing cached so the next call retries.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singletonDB != nil {
		return singletonDB, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	singletonDB = db
	return db, nil
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = min(5, opts.MaxOpenConns)
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}
