package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Simulation configuration loaded from environment variables at startup by
// LoadConfig. Every variable has a default, so the simulator runs with no
// environment at all.
var (
	// FeeRate is the pool swap fee in [0,1).
	FeeRate float64

	// TrainEpochs is the number of independent training episodes the shared
	// policy accumulates before evaluation.
	TrainEpochs int
	// StepsPerEpoch is the reference series length of each training episode.
	StepsPerEpoch int
	// EvalSteps is the reference series length of the final evaluation run.
	EvalSteps int

	// TrainStartPrice and EvalStartPrice seed the synthetic price paths.
	TrainStartPrice float64
	EvalStartPrice  float64
	// Drift and Volatility parameterize the geometric Brownian motion.
	Drift      float64
	Volatility float64

	// Q-learning hyperparameters.
	Alpha        float64
	Gamma        float64
	Epsilon      float64
	PriceBuckets int
	TimeBuckets  int

	// RandomSeed seeds every component RNG when non-zero; zero means a
	// fresh, time-seeded run.
	RandomSeed int64

	// ChartDir is where HTML chart reports are written.
	ChartDir string
	// WebPort is the dashboard listen port.
	WebPort string
)

// Defaults matching the stock simulation.
const (
	defaultFeeRate         = 0.003
	defaultTrainEpochs     = 5
	defaultStepsPerEpoch   = 300
	defaultEvalSteps       = 300
	defaultTrainStartPrice = 1.0
	defaultEvalStartPrice  = 1.2
	defaultDrift           = 0.0
	defaultVolatility      = 0.02
	defaultAlpha           = 0.1
	defaultGamma           = 0.95
	defaultEpsilon         = 0.1
	defaultPriceBuckets    = 5
	defaultTimeBuckets     = 10
	defaultChartDir        = "charts"
	defaultWebPort         = "8080"
)

// LoadConfig populates the package configuration from environment variables,
// falling back to defaults for anything unset.
func LoadConfig() error {
	log.Info().Msg("Loading simulation configuration from environment variables...")

	var err error

	if FeeRate, err = getEnvAsFloat64("SIM_FEE_RATE", defaultFeeRate); err != nil {
		return err
	}
	if TrainEpochs, err = getEnvAsInt("SIM_TRAIN_EPOCHS", defaultTrainEpochs); err != nil {
		return err
	}
	if StepsPerEpoch, err = getEnvAsInt("SIM_STEPS_PER_EPOCH", defaultStepsPerEpoch); err != nil {
		return err
	}
	if EvalSteps, err = getEnvAsInt("SIM_EVAL_STEPS", defaultEvalSteps); err != nil {
		return err
	}
	if TrainStartPrice, err = getEnvAsFloat64("SIM_TRAIN_START_PRICE", defaultTrainStartPrice); err != nil {
		return err
	}
	if EvalStartPrice, err = getEnvAsFloat64("SIM_EVAL_START_PRICE", defaultEvalStartPrice); err != nil {
		return err
	}
	if Drift, err = getEnvAsFloat64("SIM_DRIFT", defaultDrift); err != nil {
		return err
	}
	if Volatility, err = getEnvAsFloat64("SIM_VOLATILITY", defaultVolatility); err != nil {
		return err
	}
	if Alpha, err = getEnvAsFloat64("RL_ALPHA", defaultAlpha); err != nil {
		return err
	}
	if Gamma, err = getEnvAsFloat64("RL_GAMMA", defaultGamma); err != nil {
		return err
	}
	if Epsilon, err = getEnvAsFloat64("RL_EPSILON", defaultEpsilon); err != nil {
		return err
	}
	if PriceBuckets, err = getEnvAsInt("RL_PRICE_BUCKETS", defaultPriceBuckets); err != nil {
		return err
	}
	if TimeBuckets, err = getEnvAsInt("RL_TIME_BUCKETS", defaultTimeBuckets); err != nil {
		return err
	}
	if RandomSeed, err = getEnvAsInt64("SIM_RANDOM_SEED", 0); err != nil {
		return err
	}

	ChartDir = getEnv("CHART_DIR", defaultChartDir)
	WebPort = getEnv("WEB_PORT", defaultWebPort)

	log.Debug().
		Float64("feeRate", FeeRate).
		Int("trainEpochs", TrainEpochs).
		Int("stepsPerEpoch", StepsPerEpoch).
		Int64("randomSeed", RandomSeed).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable, falling back to def.
func getEnv(key, def string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return def
}

// getEnvAsInt retrieves an environment variable as an int. Returns an error
// only for a set-but-invalid value.
func getEnvAsInt(key string, def int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return def, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsInt64 retrieves an environment variable as an int64.
func getEnvAsInt64(key string, def int64) (int64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return def, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid int64, got: " + valueStr)
	}
	return value, nil
}

// getEnvAsFloat64 retrieves an environment variable as a float64.
func getEnvAsFloat64(key string, def float64) (float64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return def, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid float64, got: " + valueStr)
	}
	return value, nil
}
