package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/adapters/out/persistence"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/jobs"
	"dispatch/internal/realtime"

	"github.com/joho/godotenv"
)

// Config holds the process settings, read from the environment.
type Config struct {
	HTTPPort string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	SQLitePath string

	JWTSecret string

	// RedisAddr enables the Redis order number sequence when set.
	RedisAddr    string
	// AMQPURL enables order event publishing when set.
	AMQPURL      string
	AMQPExchange string

	DispatchRadiusKm      float64
	DispatchMaxCandidates int

	PresenceTimeout       time.Duration
	PresenceSweepSchedule string
	RebroadcastSchedule   string
	RebroadcastMinAge     time.Duration
	SessionBuffer         int

	LogLevel slog.Level
}

// LoadConfig reads .env when present, then the environment, applying defaults.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		HTTPPort:              getEnv("HTTP_PORT", "8080"),
		DBDriver:              getEnv("DB_DRIVER", persistence.DriverPostgres),
		DBHost:                getEnv("DB_HOST", "localhost"),
		DBPort:                getEnv("DB_PORT", "5432"),
		DBUser:                getEnv("DB_USER", "postgres"),
		DBPassword:            getEnv("DB_PASSWORD", ""),
		DBName:                getEnv("DB_NAME", "dispatch"),
		DBSslMode:             getEnv("DB_SSLMODE", "disable"),
		SQLitePath:            getEnv("SQLITE_PATH", "dispatch.db"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		RedisAddr:             getEnv("REDIS_ADDR", ""),
		AMQPURL:               getEnv("AMQP_URL", ""),
		AMQPExchange:          getEnv("AMQP_EXCHANGE", "dispatch.orders"),
		PresenceSweepSchedule: getEnv("PRESENCE_SWEEP_SCHEDULE", jobs.DefaultPresenceSweepSchedule),
		RebroadcastSchedule:   getEnv("REBROADCAST_SCHEDULE", jobs.DefaultRebroadcastSchedule),
	}

	var err error
	errList := make([]error, 0)
	if cfg.DispatchRadiusKm, err = getEnvFloat("DISPATCH_RADIUS_KM", services.DefaultRadiusKm); err != nil {
		errList = append(errList, err)
	}
	if cfg.DispatchMaxCandidates, err = getEnvInt("DISPATCH_MAX_CANDIDATES", 0); err != nil {
		errList = append(errList, err)
	}
	if cfg.PresenceTimeout, err = getEnvDuration("PRESENCE_TIMEOUT", realtime.DefaultPresenceTimeout); err != nil {
		errList = append(errList, err)
	}
	if cfg.RebroadcastMinAge, err = getEnvDuration("REBROADCAST_MIN_AGE", jobs.DefaultRebroadcastMinAge); err != nil {
		errList = append(errList, err)
	}
	if cfg.SessionBuffer, err = getEnvInt("SESSION_BUFFER", realtime.DefaultSessionBuffer); err != nil {
		errList = append(errList, err)
	}
	if err = cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		errList = append(errList, fmt.Errorf("invalid LOG_LEVEL: %w", err))
	}
	if err = errors.Join(errList...); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate checks settings that have no usable default.
func (c Config) Validate() error {
	var errList []error
	if c.JWTSecret == "" {
		errList = append(errList, errors.New("JWT_SECRET is not set"))
	}
	if c.DBDriver != persistence.DriverPostgres && c.DBDriver != persistence.DriverSQLite {
		errList = append(errList, fmt.Errorf("DB_DRIVER must be %q or %q, got %q",
			persistence.DriverPostgres, persistence.DriverSQLite, c.DBDriver))
	}
	if c.DispatchRadiusKm < 0 {
		errList = append(errList, errors.New("DISPATCH_RADIUS_KM must not be negative"))
	}
	if c.PresenceTimeout <= 0 {
		errList = append(errList, errors.New("PRESENCE_TIMEOUT must be positive"))
	}
	return errors.Join(errList...)
}

// DatabaseOptions maps the DB settings to persistence.Options.
func (c Config) DatabaseOptions() persistence.Options {
	if c.DBDriver == persistence.DriverSQLite {
		return persistence.Options{Driver: persistence.DriverSQLite, DSN: c.SQLitePath}
	}
	return persistence.Options{
		Driver:        persistence.DriverPostgres,
		DSN:           persistence.PostgresDSN(c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode),
		MaxOpenConns:  20,
		SlowThreshold: 200 * time.Millisecond,
	}
}

// String masks secrets.
func (c Config) String() string {
	return fmt.Sprintf("Config{HTTP: %s, DB: %s@%s, Redis: %t, AMQP: %t, Radius: %gkm, PresenceTimeout: %s, Secret: ***}",
		c.HTTPPort, c.DBDriver, c.dbLocation(), c.RedisAddr != "", c.AMQPURL != "", c.DispatchRadiusKm, c.PresenceTimeout)
}

func (c Config) dbLocation() string {
	if c.DBDriver == persistence.DriverSQLite {
		return c.SQLitePath
	}
	return c.DBHost + ":" + c.DBPort + "/" + c.DBName
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number for %s: %w", key, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}
