// Package experiment implements the three experiment-type drivers spec.md
// §6 names as CLI surface (Testing, Planning, DataGeneration), plus the
// result bookkeeping and progress reporting around them. None of this is
// core planning behaviour — it is the collaborator scope spec.md §1 calls
// out, implemented here so SPEC_FULL.md's module layout is complete.
package experiment

import "time"

// AgentEpisodeResult is one agent's trace through a single episode: its
// return, and — for a pomcp.Agent specifically — its per-step decision
// timing and tree statistics (spec.md §6 "Persisted outputs": decision
// time series, simulation counts, particle counts).
type AgentEpisodeResult struct {
	Discounted       float64         `yaml:"Return"`
	Undiscounted     float64         `yaml:"UndiscountedReturn"`
	DecisionTimes    []time.Duration `yaml:"Times,omitempty"`
	SimulationCounts []int           `yaml:"Num_simulations,omitempty"`
	ParticleCounts   []int           `yaml:"Num_particles,omitempty"`
}

// EpisodeResult is one episode's outcome, keyed by agent id.
type EpisodeResult struct {
	Steps  int                          `yaml:"Steps"`
	Agents map[string]AgentEpisodeResult `yaml:",inline"`
}

// Result is a full experiment's outcome: one EpisodeResult per repeat.
type Result struct {
	Episodes []EpisodeResult
}
