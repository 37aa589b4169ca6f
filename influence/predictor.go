// Package influence implements the InfluencePredictor family used to
// approximate the effect of uninfluenced agents on a controlled agent's
// local simulation, without simulating those agents directly.
package influence

import (
	"math/rand"

	"iaop/dbn"
)

// Predictor is the feed-forward contract: given the entire history of
// past (local-state, action) pairs, populate out for every source
// variable u in U.
type Predictor interface {
	Sample(history []int, out map[string]int, rng *rand.Rand) error
}

// RecurrentPredictor is the step-wise contract consumed by the
// RecurrentInfluenceSimulator: it consumes a single local input, updates
// hidden in place, and populates out.
type RecurrentPredictor interface {
	OneStepSample(hidden []float64, lastInput []float64, isInitial bool, out map[string]int, rng *rand.Rand) error
	InitialState() []float64
}

// Random is the uniform-random InfluencePredictor variant: for each
// source variable it draws uniformly from its cardinality, ignoring
// history entirely. It also satisfies RecurrentPredictor with a
// zero-length hidden state, so it can stand in for either simulator.
type Random struct {
	Sources []string
	Net     *dbn.DBN
}

// NewRandom builds a Random predictor over sourceFactors, resolved
// against net's variables.
func NewRandom(net *dbn.DBN, sourceFactors []string) *Random {
	return &Random{Sources: sourceFactors, Net: net}
}

func (r *Random) Sample(history []int, out map[string]int, rng *rand.Rand) error {
	return r.draw(out, rng)
}

func (r *Random) OneStepSample(hidden, lastInput []float64, isInitial bool, out map[string]int, rng *rand.Rand) error {
	return r.draw(out, rng)
}

func (r *Random) InitialState() []float64 { return nil }

func (r *Random) draw(out map[string]int, rng *rand.Rand) error {
	for _, name := range r.Sources {
		v, ok := r.Net.Variables[name]
		if !ok {
			return &Error{Op: "Random.Sample " + name, Err: errUnknownVariable}
		}
		out[name] = v.SampleUniform(rng)
	}
	return nil
}
