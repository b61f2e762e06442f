package db

import (
	"database/sql"
	"fmt"

	"ordersvc/internal/config"

	_ "github.com/lib/pq"
)

// NewDatabase opens a Postgres connection and verifies it with a ping.
// The caller owns the returned handle and is responsible for closing it.
func NewDatabase(cfg *config.Config) (*sql.DB, error) {
	return newDatabaseWithDriver(cfg, "postgres")
}

func newDatabaseWithDriver(cfg *config.Config, driver string) (*sql.DB, error) {
	db, err := sql.Open(driver, BuildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to DB: %w", err)
	}

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// BuildDSN assembles the lib/pq connection string. Shared with the
// migration runner so both binaries read the same environment.
func BuildDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)
}
