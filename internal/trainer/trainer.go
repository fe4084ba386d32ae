package trainer

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ammlab/dexsim/internal/agent"
	"github.com/ammlab/dexsim/internal/amm"
	"github.com/ammlab/dexsim/internal/logger"
	"github.com/ammlab/dexsim/internal/market"
	"github.com/ammlab/dexsim/internal/policy"
	"github.com/ammlab/dexsim/internal/pricefeed"
	"github.com/ammlab/dexsim/internal/state"
	"github.com/ammlab/dexsim/internal/types"
)

// Agent names used across training and evaluation rosters.
const (
	RLAgentName     = "rl_lp"
	ArbAgentName    = "arb_bot"
	RandomAgentName = "random_trader"
	BasicLPName     = "basic_lp"
)

// Config holds everything a Trainer needs. The policy is shared across all
// training episodes; its Q-table is the state that accumulates knowledge.
type Config struct {
	Policy *policy.QPolicy

	Epochs        int
	StepsPerEpoch int
	EvalSteps     int

	FeeRate         float64
	TrainStartPrice float64
	EvalStartPrice  float64
	Drift           float64
	Volatility      float64

	// Rand drives price generation and the noise traders. Nil falls back
	// to a time-seeded source.
	Rand *rand.Rand

	// Persist enables database snapshots of every episode. Failures to
	// persist are logged and the run continues.
	Persist bool
}

// Trainer runs the multi-epoch training loop and the final evaluation episode
// against fresh pools and fresh synthetic price paths.
type Trainer struct {
	cfg    Config
	logger zerolog.Logger
}

// EvalResult is the outcome of the final evaluation episode.
type EvalResult struct {
	RunID        string
	Rewards      map[string]float64
	RefPrices    []float64
	AMMPrices    []float64
	VolumeTokenA float64
	VolumeTokenB float64
}

// New creates a trainer after validating its configuration.
func New(cfg Config) (*Trainer, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("trainer configuration validation failed: %w", err)
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	t := &Trainer{
		cfg:    cfg,
		logger: logger.GetForComponent("trainer"),
	}

	t.logger.Info().
		Int("epochs", cfg.Epochs).
		Int("stepsPerEpoch", cfg.StepsPerEpoch).
		Float64("feeRate", cfg.FeeRate).
		Msg("Trainer created")

	return t, nil
}

func validateConfig(cfg Config) error {
	if cfg.Policy == nil {
		return fmt.Errorf("policy cannot be nil")
	}
	if cfg.Epochs <= 0 {
		return fmt.Errorf("epochs must be positive")
	}
	if cfg.StepsPerEpoch <= 0 {
		return fmt.Errorf("steps per epoch must be positive")
	}
	if cfg.EvalSteps <= 0 {
		return fmt.Errorf("evaluation steps must be positive")
	}
	if cfg.FeeRate < 0 || cfg.FeeRate >= 1 {
		return fmt.Errorf("fee rate must be in [0,1)")
	}
	return nil
}

// Train runs the configured number of training episodes. Each episode uses a
// fresh pool and a fresh price path; only the shared policy's Q-table
// survives between episodes. After every tick the policy is updated with the
// RL agent's cumulative reward and the post-tick market observation.
func (t *Trainer) Train() error {
	t.logger.Info().Int("epochs", t.cfg.Epochs).Msg("--- Starting Training ---")

	for epoch := 0; epoch < t.cfg.Epochs; epoch++ {
		runID := uuid.New().String()
		epochLogger := t.logger.With().Str("run_id", runID).Int("epoch", epoch).Logger()

		refPrices := pricefeed.Series(
			t.cfg.StepsPerEpoch, t.cfg.TrainStartPrice, t.cfg.Drift, t.cfg.Volatility, t.cfg.Rand,
		)
		pool := amm.NewConstantProductPool(t.cfg.FeeRate)
		roster := []agent.Agent{
			agent.NewRLProvider(RLAgentName, t.cfg.Policy),
			agent.NewRandomTrader(RandomAgentName, 5.0, 0.5, t.cfg.Rand),
		}
		env := market.New(pool, roster, refPrices)

		env.Reset()
		for env.Step() {
			step := env.CurrentStep()
			done := step >= t.cfg.StepsPerEpoch

			refIdx := step
			if refIdx > t.cfg.StepsPerEpoch-1 {
				refIdx = t.cfg.StepsPerEpoch - 1
			}
			next := types.Observation{
				AMMPrice:       pool.Price(),
				ReferencePrice: refPrices[refIdx],
				Step:           step,
			}
			t.cfg.Policy.UpdateQ(env.Reward(RLAgentName), next, done)
		}

		epochLogger.Info().
			Float64("rlReward", env.Reward(RLAgentName)).
			Float64("finalAMMPrice", pool.Price()).
			Msg("Training epoch completed")

		t.persistSnapshot(env, pool, runID, types.RunKindTraining, refPrices, epochLogger)
	}

	t.logger.Info().Msg("--- Training Completed ---")
	return nil
}

// Evaluate runs one full-roster episode with the trained policy and returns
// the rewards and price traces for reporting.
func (t *Trainer) Evaluate() (*EvalResult, error) {
	runID := uuid.New().String()
	evalLogger := t.logger.With().Str("run_id", runID).Logger()
	evalLogger.Info().Msg("--- Starting Evaluation Run ---")

	refPrices := pricefeed.Series(
		t.cfg.EvalSteps, t.cfg.EvalStartPrice, t.cfg.Drift, t.cfg.Volatility, t.cfg.Rand,
	)
	pool := amm.NewConstantProductPool(t.cfg.FeeRate)
	roster := []agent.Agent{
		agent.NewRLProvider(RLAgentName, t.cfg.Policy),
		agent.NewArbitrageBot(ArbAgentName, 0.002, 10.0),
		agent.NewRandomTrader(RandomAgentName, 5.0, 0.5, t.cfg.Rand),
		agent.NewBasicLiquidityProvider(BasicLPName, 500.0, 0.2),
	}
	env := market.New(pool, roster, refPrices)

	env.Reset()
	ammPrices := make([]float64, 0, t.cfg.EvalSteps)
	for env.Step() {
		ammPrices = append(ammPrices, pool.Price())
	}

	rewards := env.Rewards()
	for name, reward := range rewards {
		evalLogger.Info().Str("agent", name).Float64("reward", reward).Msg("Final agent reward")
	}

	t.persistSnapshot(env, pool, runID, types.RunKindEvaluation, refPrices, evalLogger)

	evalLogger.Info().Msg("--- Evaluation Run Completed ---")
	return &EvalResult{
		RunID:        runID,
		Rewards:      rewards,
		RefPrices:    refPrices,
		AMMPrices:    ammPrices,
		VolumeTokenA: env.VolumeTokenA(),
		VolumeTokenB: env.VolumeTokenB(),
	}, nil
}

// persistSnapshot records the episode outcome when persistence is enabled.
// Storage problems never abort a run.
func (t *Trainer) persistSnapshot(
	env *market.Environment,
	pool *amm.ConstantProductPool,
	runID, kind string,
	refPrices []float64,
	runLogger zerolog.Logger,
) {
	if !t.cfg.Persist || !state.Enabled() {
		return
	}

	episode, err := state.IncrementEpisodeNumber()
	if err != nil {
		runLogger.Error().Err(err).Msg("Failed to increment episode number, using 0")
		episode = 0
	}

	snapshot := types.RunSnapshot{
		RunID:         runID,
		Kind:          kind,
		EpisodeNumber: episode,
		Timestamp:     time.Now(),
		Steps:         env.NumSteps(),
		FeeRate:       pool.FeeRate(),
		FinalAMMPrice: pool.Price(),
		FinalRefPrice: refPrices[len(refPrices)-1],
		VolumeTokenA:  env.VolumeTokenA(),
		VolumeTokenB:  env.VolumeTokenB(),
		Rewards:       env.Rewards(),
	}

	if _, err := state.SaveRunSnapshot(snapshot); err != nil {
		runLogger.Error().Err(err).Msg("Failed to save run snapshot to database")
	}
}
