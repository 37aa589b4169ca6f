// Package episode implements the EpisodeLoop: the glue that drives
// reset, repeated plan/act/step/observe cycles across a component of
// possibly several agents, and accumulates per-agent return.
package episode

import "iaop/agentmodel"

// Environment is the collaborator the loop drives: a domain's concrete
// 2-DBN-backed world, or any other implementation accepting a joint
// action and returning a joint observation, joint reward, and a done
// signal. Out of the core's scope; accepted purely through this
// interface.
type Environment interface {
	Reset() (observation map[string]int)
	Step(action map[string]int) (observation map[string]int, reward map[string]float64, done bool)
}

// Component is the mapping from agent id to the AtomicAgent that
// controls it, per §4.6/§4.7.
type Component map[string]agentmodel.Agent

// Result is one episode's outcome: per-agent discounted and undiscounted
// return, plus how many steps actually ran before horizon or done.
type Result struct {
	Discounted   map[string]float64
	Undiscounted map[string]float64
	Steps        int
}

// Loop is the EpisodeLoop: it dispatches a full episode against Env
// using Agents, for at most Horizon steps, discounting by Discount.
type Loop struct {
	Agents   Component
	Env      Environment
	Horizon  int
	Discount float64
}

// Dispatch implements §4.7: reset every agent and the environment, then
// for each of up to Horizon steps, ask every agent for an action, step
// the environment, feed back each agent's slice of the joint
// observation, and accumulate return. Stops early if the environment
// reports done.
func (l *Loop) Dispatch() Result {
	for _, agent := range l.Agents {
		agent.Reset()
	}

	observation := l.Env.Reset()
	discounted := make(map[string]float64, len(l.Agents))
	undiscounted := make(map[string]float64, len(l.Agents))
	for id := range l.Agents {
		discounted[id] = 0
		undiscounted[id] = 0
	}

	factor := 1.0
	hasObservation := false
	steps := 0

	for t := 0; t < l.Horizon; t++ {
		action := make(map[string]int, len(l.Agents))
		for id, agent := range l.Agents {
			action[id] = agent.Act(observation[id], hasObservation)
		}

		nextObservation, reward, done := l.Env.Step(action)
		for id := range l.Agents {
			r := reward[id]
			undiscounted[id] += r
			discounted[id] += factor * r
		}
		factor *= l.Discount

		observation = nextObservation
		hasObservation = true
		steps++

		if done {
			break
		}
	}

	return Result{Discounted: discounted, Undiscounted: undiscounted, Steps: steps}
}
