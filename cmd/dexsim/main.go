package main

import (
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ammlab/dexsim/internal/config"
	"github.com/ammlab/dexsim/internal/logger"
	"github.com/ammlab/dexsim/internal/policy"
	"github.com/ammlab/dexsim/internal/report"
	"github.com/ammlab/dexsim/internal/state"
	"github.com/ammlab/dexsim/internal/trainer"
	"github.com/ammlab/dexsim/internal/types"
	"github.com/ammlab/dexsim/internal/web"
)

const qTableConfigName = "default_q_policy"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dexsim",
		Short: "dexsim simulates a constant-product AMM against heterogeneous trading agents and trains a tabular RL liquidity provider.",
	}

	trainCmd := &cobra.Command{
		Use:   "train",
		Short: "Train the RL liquidity provider, run a final evaluation, and render charts",
		RunE:  runTraining,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded runs and charts over HTTP",
		RunE:  runServer,
	}

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initCommon loads the environment, configuration, logging, and the optional
// database connection shared by all subcommands. The returned cleanup
// function closes the database.
func initCommon() (func(), error) {
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("dexsim starting...")

	if err := config.LoadConfig(); err != nil {
		return nil, err
	}

	// Persistence is optional: without DB_HOST the simulator runs
	// in-memory only.
	if os.Getenv("DB_HOST") == "" {
		log.Info().Msg("DB_HOST not set; running without persistence")
		return func() {}, nil
	}

	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Warn().Err(err).Msg("Failed to initialize database; continuing without persistence")
		return func() {}, nil
	}
	if err := state.EnsureSchema(); err != nil {
		log.Warn().Err(err).Msg("Failed to ensure database schema; continuing without persistence")
		state.CloseDB()
		return func() {}, nil
	}

	return state.CloseDB, nil
}

func runTraining(cmd *cobra.Command, args []string) error {
	cleanup, err := initCommon()
	if err != nil {
		return err
	}
	defer cleanup()

	// A zero seed means a fresh run every time; a fixed seed makes the
	// whole pipeline reproducible.
	var rng *rand.Rand
	if config.RandomSeed != 0 {
		rng = rand.New(rand.NewSource(config.RandomSeed))
	} else {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	qPolicy := policy.New(policy.Config{
		PriceBuckets: config.PriceBuckets,
		TimeBuckets:  config.TimeBuckets,
		Alpha:        config.Alpha,
		Gamma:        config.Gamma,
		Epsilon:      config.Epsilon,
	}, rng)

	t, err := trainer.New(trainer.Config{
		Policy:          qPolicy,
		Epochs:          config.TrainEpochs,
		StepsPerEpoch:   config.StepsPerEpoch,
		EvalSteps:       config.EvalSteps,
		FeeRate:         config.FeeRate,
		TrainStartPrice: config.TrainStartPrice,
		EvalStartPrice:  config.EvalStartPrice,
		Drift:           config.Drift,
		Volatility:      config.Volatility,
		Rand:            rng,
		Persist:         state.Enabled(),
	})
	if err != nil {
		return err
	}

	if err := t.Train(); err != nil {
		return err
	}

	result, err := t.Evaluate()
	if err != nil {
		return err
	}

	if state.Enabled() {
		cfg := qPolicy.Config()
		record := types.QTableRecord{
			ConfigName:   qTableConfigName,
			RunID:        result.RunID,
			PriceBuckets: cfg.PriceBuckets,
			TimeBuckets:  cfg.TimeBuckets,
			Alpha:        cfg.Alpha,
			Gamma:        cfg.Gamma,
			Epsilon:      cfg.Epsilon,
			Table:        qPolicy.ExportTable(),
		}
		if _, err := state.SaveQTable(record, true); err != nil {
			log.Error().Err(err).Msg("Failed to save trained Q-table")
		}
	}

	rep := report.New(config.ChartDir)
	if err := rep.PriceSeries(result.RefPrices); err != nil {
		log.Error().Err(err).Msg("Failed to render reference price chart")
	}
	if err := rep.PriceComparison(result.AMMPrices, result.RefPrices); err != nil {
		log.Error().Err(err).Msg("Failed to render price comparison chart")
	}
	if err := rep.RewardsBar(result.Rewards); err != nil {
		log.Error().Err(err).Msg("Failed to render rewards chart")
	}

	log.Info().
		Float64("volumeTokenA", result.VolumeTokenA).
		Float64("volumeTokenB", result.VolumeTokenB).
		Str("chartDir", config.ChartDir).
		Msg("Simulation pipeline completed")

	return nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cleanup, err := initCommon()
	if err != nil {
		return err
	}
	defer cleanup()

	server := web.NewWebServer(config.WebPort, config.ChartDir)
	return server.Start()
}

// mustAtoi parses s, falling back to def when unset or invalid.
func mustAtoi(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
