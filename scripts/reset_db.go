package main

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ammlab/dexsim/internal/logger"
	"github.com/ammlab/dexsim/internal/state"
)

// Drops and recreates the simulator's database tables. Destructive; intended
// for development resets only.
func main() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logger.Initialize(logLevel)
	log.Info().Msg("Starting database reset script...")

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found or error loading .env file. Relying on OS environment variables.")
	}

	dbHost := os.Getenv("DB_HOST")
	dbUser := os.Getenv("DB_USER")
	dbName := os.Getenv("DB_NAME")
	dbSSLMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbUser == "" {
		log.Fatal().Msg("DB_USER environment variable not set.")
	}
	if dbName == "" {
		log.Fatal().Msg("DB_NAME environment variable not set.")
	}
	if dbSSLMode == "" {
		dbSSLMode = "disable"
	}

	dbPort := 5432
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		if parsed, err := strconv.Atoi(portStr); err == nil {
			dbPort = parsed
		}
	}

	dbCfg := state.DBConfig{
		Host: dbHost, Port: dbPort,
		User: dbUser, Password: os.Getenv("DB_PASSWORD"),
		DBName: dbName, SSLMode: dbSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer state.CloseDB()

	dropSQL := `
		DROP TABLE IF EXISTS simulation_runs CASCADE;
		DROP TABLE IF EXISTS q_tables CASCADE;
		DROP TABLE IF EXISTS episode_counter CASCADE;
	`
	if _, err := state.DB.Exec(dropSQL); err != nil {
		log.Fatal().Err(err).Msg("Failed to drop tables")
	}
	log.Info().Msg("Existing tables dropped.")

	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to recreate schema")
	}
	log.Info().Msg("Database reset complete.")
}
