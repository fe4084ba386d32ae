package agent

import (
	"github.com/ammlab/dexsim/internal/policy"
	"github.com/ammlab/dexsim/internal/types"
)

// RLProvider is a liquidity provider whose decisions come from a Q-learning
// policy. The policy carries all mutable learning state; the training loop is
// responsible for feeding rewards back via policy.UpdateQ between ticks.
type RLProvider struct {
	name   string
	policy *policy.QPolicy
}

// NewRLProvider wraps a policy as an environment agent.
func NewRLProvider(name string, p *policy.QPolicy) *RLProvider {
	return &RLProvider{name: name, policy: p}
}

// Name implements Agent.
func (r *RLProvider) Name() string {
	return r.name
}

// Act delegates action selection to the policy.
func (r *RLProvider) Act(obs types.Observation) types.Action {
	return r.policy.SelectAction(obs)
}

// Policy exposes the underlying policy for the training loop.
func (r *RLProvider) Policy() *policy.QPolicy {
	return r.policy
}
