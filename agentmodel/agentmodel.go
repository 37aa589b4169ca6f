// Package agentmodel implements the AtomicAgentModel family used by the
// global simulator to predict what other agents in the environment will
// do, and the AtomicAgent family of real controlled-agent policies that
// an EpisodeLoop can dispatch to.
package agentmodel

import (
	"math/rand"

	"iaop/aoh"
)

// Model is the small pluggable contract the global simulator uses to
// predict another agent's action-selection from its own
// action-observation history. Step writes the chosen action at the
// history's cursor and advances it; Observe writes obs at the cursor and
// advances it the same way.
type Model interface {
	Step(history *aoh.History, rng *rand.Rand) int
	Observe(history *aoh.History, observation int)
}

// Random always draws its action uniformly from [0, Cardinality).
type Random struct {
	Cardinality int
}

func (r *Random) Step(history *aoh.History, rng *rand.Rand) int {
	action := rng.Intn(r.Cardinality)
	history.AppendAction(action)
	return action
}

func (r *Random) Observe(history *aoh.History, observation int) {
	history.AppendObservation(observation)
}

// Fixed always selects the same configured action, ignoring history.
type Fixed struct {
	Action int
}

func (f *Fixed) Step(history *aoh.History, rng *rand.Rand) int {
	history.AppendAction(f.Action)
	return f.Action
}

func (f *Fixed) Observe(history *aoh.History, observation int) {
	history.AppendObservation(observation)
}

// ReactiveFunc computes an action from the full action-observation
// history accumulated so far, the hook domain-specific hand-coded
// policies plug into.
type ReactiveFunc func(history *aoh.History) int

// Reactive wraps a domain-specific hand-coded policy function, so a
// FireFighter/GrabAChair/GridTraffic-style scripted agent can be plugged
// into the global simulator without the core depending on its domain.
type Reactive struct {
	Policy ReactiveFunc
}

func (r *Reactive) Step(history *aoh.History, rng *rand.Rand) int {
	action := r.Policy(history)
	history.AppendAction(action)
	return action
}

func (r *Reactive) Observe(history *aoh.History, observation int) {
	history.AppendObservation(observation)
}

// Agent is the contract a real controlled agent satisfies within an
// EpisodeLoop: Act chooses the next action given the latest observation
// (or none, on the first call of an episode); Reset clears any episode-
// scoped state (e.g. a POMCP search tree).
type Agent interface {
	Act(lastObservation int, hasObservation bool) int
	Reset()
}

// ModelAgent adapts any Model (Random, Fixed, or a domain's Reactive
// policy) into the real Agent contract by giving it its own
// action-observation history, so the same Model implementations the
// global simulator uses to predict other agents can also drive them for
// real inside an episode's ground-truth environment.
type ModelAgent struct {
	Model Model
	Rand  *rand.Rand

	history *aoh.History
}

// NewModelAgent wraps model with a fresh history.
func NewModelAgent(model Model, rng *rand.Rand) *ModelAgent {
	return &ModelAgent{Model: model, Rand: rng, history: aoh.New(16)}
}

func (m *ModelAgent) Reset() { m.history = aoh.New(16) }

func (m *ModelAgent) Act(lastObservation int, hasObservation bool) int {
	if hasObservation {
		m.Model.Observe(m.history, lastObservation)
	}
	return m.Model.Step(m.history, m.Rand)
}
