package agent

import (
	"github.com/ammlab/dexsim/internal/types"
)

// Agent is the single capability every market participant implements: given
// the shared per-tick observation, produce exactly one action. Anything the
// environment cannot interpret degrades to a no-op, so implementations never
// need to signal errors.
type Agent interface {
	// Name identifies the agent in the environment's reward ledger.
	Name() string
	// Act returns the agent's action for this tick.
	Act(obs types.Observation) types.Action
}
