package experiment

import (
	"time"

	"iaop/episode"
	"iaop/pomcp"
)

// runInstrumentedEpisode drives one episode exactly the way
// episode.Loop.Dispatch does (reset, act/step/observe, accumulate
// discounted/undiscounted return, stop on done or horizon), but also
// captures per-step planner statistics for any agent that is a
// *pomcp.Agent. Grounded on original_source/src/runners/Episode.hpp's
// dispatch(), which records the same per-agent time/simulation/particle
// series this core's bare episode.Loop deliberately leaves out.
func runInstrumentedEpisode(agents episode.Component, env episode.Environment, horizon int, discount float64) EpisodeResult {
	for _, agent := range agents {
		agent.Reset()
	}

	observation := env.Reset()
	discountedSum := make(map[string]float64, len(agents))
	undiscountedSum := make(map[string]float64, len(agents))
	times := make(map[string][]time.Duration, len(agents))
	sims := make(map[string][]int, len(agents))
	particles := make(map[string][]int, len(agents))

	factor := 1.0
	hasObservation := false
	steps := 0

	for t := 0; t < horizon; t++ {
		action := make(map[string]int, len(agents))
		for id, agent := range agents {
			action[id] = agent.Act(observation[id], hasObservation)
			if pa, ok := agent.(*pomcp.Agent); ok {
				times[id] = append(times[id], pa.LastDecisionTime())
				sims[id] = append(sims[id], pa.LastSimCount())
				particles[id] = append(particles[id], pa.ParticleCount())
			}
		}

		nextObservation, reward, done := env.Step(action)
		for id := range agents {
			r := reward[id]
			undiscountedSum[id] += r
			discountedSum[id] += factor * r
		}
		factor *= discount

		observation = nextObservation
		hasObservation = true
		steps++
		if done {
			break
		}
	}

	result := EpisodeResult{Steps: steps, Agents: make(map[string]AgentEpisodeResult, len(agents))}
	for id := range agents {
		result.Agents[id] = AgentEpisodeResult{
			Discounted:       discountedSum[id],
			Undiscounted:     undiscountedSum[id],
			DecisionTimes:    times[id],
			SimulationCounts: sims[id],
			ParticleCounts:   particles[id],
		}
	}
	return result
}
