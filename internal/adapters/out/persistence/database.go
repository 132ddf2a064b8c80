package persistence

import (
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/adapters/out/persistence/orderrepo"
	"dispatch/internal/adapters/out/persistence/workerrepo"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options configures Open.
type Options struct {
	// Driver is DriverPostgres or DriverSQLite.
	Driver string
	// DSN is the postgres connection string or the sqlite file path / URI.
	DSN string
	// MaxOpenConns caps the pool when positive. SQLite databases are always capped at one
	// connection, since sqlite serializes writers anyway.
	MaxOpenConns int
	// SlowThreshold logs queries slower than this at warn level. Zero keeps GORM's default.
	SlowThreshold time.Duration
}

// PostgresDSN builds a key/value postgres connection string.
func PostgresDSN(host, port, user, password, dbName, sslMode string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)
}

// Open connects to the configured database and migrates the schema.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	cfg := &gorm.Config{}
	if opts.SlowThreshold > 0 {
		cfg.Logger = logger.New(slogWriter{}, logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", opts.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	switch {
	case opts.Driver == DriverSQLite:
		sqlDB.SetMaxOpenConns(1)
	case opts.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the orders and workers tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&orderrepo.OrderDTO{}, &workerrepo.WorkerDTO{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// slogWriter routes GORM's logger through the default slog logger.
type slogWriter struct{}

func (slogWriter) Printf(format string, args ...any) {
	slog.Default().With("component", "gorm").Warn(fmt.Sprintf(format, args...))
}

// InMemoryDSN names a private in-memory sqlite database. It lives as long as the
// pool keeps its single connection open.
func InMemoryDSN(name string) string {
	return "file:" + name + "?mode=memory&cache=shared"
}
