// Package simulator implements the SingleAgentSimulator family consumed
// by the POMCP planner: a global simulator that models every other agent
// explicitly, and two influence-augmented local simulators that
// summarize other agents' effect through a trained InfluencePredictor
// instead.
package simulator

import (
	"math"
	"math/rand"
)

// State is an opaque simulator state the planner stores inside particle
// sets. Clone must produce a fully independent copy: the planner branches
// particles across tree nodes and mutates them in place.
type State interface {
	Clone() State
}

// Simulator is the interface the POMCP planner drives. Step and Rollout
// mutate state in place and draw randomness from the simulator's own
// DBN-scoped generator; callers never pass a generator of their own, per
// the single-mutable-RNG design.
type Simulator interface {
	SampleInitialState() State
	Step(state State, action int) (observation int, reward float64, done bool)
	Rollout(state State, horizon, depth int) float64
}

// RolloutConfig carries the parameters rollout needs that are shared
// across every simulator variant.
type RolloutConfig struct {
	Discount          float64
	DiscountHorizon   float64
	ActionCardinality int
}

// Rollout implements the shared rollout semantics described in §4.4:
// actions are drawn uniformly over the controlled agent's action set,
// each reward is scaled by an accumulating γ^offset factor, and the walk
// terminates early once γ^depth falls below the discount horizon.
func Rollout(cfg RolloutConfig, state State, horizon, depth int, rng *rand.Rand, step func(State, int) (int, float64, bool)) float64 {
	total := 0.0
	factor := 1.0
	for i := 0; i < horizon; i++ {
		if math.Pow(cfg.Discount, float64(depth)) < cfg.DiscountHorizon {
			break
		}
		action := rng.Intn(cfg.ActionCardinality)
		_, reward, done := step(state, action)
		total += factor * reward
		factor *= cfg.Discount
		depth++
		if done {
			break
		}
	}
	return total
}
