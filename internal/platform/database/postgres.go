package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string

	MaxRetries int
	RetryDelay time.Duration
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.DBName)
}

// NewPostgresDB opens the pool and pings until the server answers or the
// retries run out.
func NewPostgresDB(cfg Config, logger *slog.Logger) (*sql.DB, error) {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 10
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	var db *sql.DB
	var err error

	for i := 1; i <= cfg.MaxRetries; i++ {
		logger.Info("connecting to database", "attempt", i, "max_attempts", cfg.MaxRetries, "host", cfg.Host)
		db, err = sql.Open("postgres", cfg.DSN())
		if err == nil {
			err = db.Ping()
		}

		if err == nil {
			db.SetMaxOpenConns(25)
			db.SetMaxIdleConns(5)
			logger.Info("database connected")
			return db, nil
		}

		if db != nil {
			db.Close()
		}

		logger.Warn("database not ready yet", "retry_in", cfg.RetryDelay, "error", err)
		time.Sleep(cfg.RetryDelay)
	}

	return nil, fmt.Errorf("failed to connect to database: %w", err)
}

// RunMigrations applies every pending migration found in dir.
func RunMigrations(db *sql.DB, dir string) error {
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}
