package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err = DB.Ping(); err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// Enabled reports whether a database connection is available. Persistence is
// optional: the simulator runs fine without one.
func Enabled() bool {
	return DB != nil
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS simulation_runs (
			id SERIAL PRIMARY KEY,
			run_id VARCHAR(64) NOT NULL,
			kind VARCHAR(32) NOT NULL,
			episode_number INTEGER NOT NULL,
			run_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			steps INTEGER NOT NULL,
			fee_rate DECIMAL(10, 6) NOT NULL,
			final_amm_price DOUBLE PRECISION NOT NULL,
			final_reference_price DOUBLE PRECISION NOT NULL,
			volume_token_a DOUBLE PRECISION NOT NULL,
			volume_token_b DOUBLE PRECISION NOT NULL,
			rewards JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_simulation_runs_kind_timestamp
			ON simulation_runs(kind, run_timestamp DESC);

		CREATE TABLE IF NOT EXISTS q_tables (
			id SERIAL PRIMARY KEY,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			run_id VARCHAR(64) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			price_buckets INTEGER NOT NULL,
			time_buckets INTEGER NOT NULL,
			alpha DECIMAL(10, 6) NOT NULL,
			gamma DECIMAL(10, 6) NOT NULL,
			epsilon DECIMAL(10, 6) NOT NULL,
			q_values JSONB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_q_tables_config_active
			ON q_tables(config_name, is_active, created_at DESC);
	`
	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	if err := ensureEpisodeCounterTable(); err != nil {
		return err
	}

	log.Info().Msg("Database schema ensured")
	return nil
}
