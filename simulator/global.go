package simulator

import (
	"iaop/agentmodel"
	"iaop/aoh"
	"iaop/dbn"
)

// GlobalState is the state carried by the GlobalSimulator: the full DBN
// assignment plus one growable action-observation history per other
// agent.
type GlobalState struct {
	Assignment map[string]int
	Histories  map[string]*aoh.History
}

// Clone deep-copies the assignment map and every other agent's history,
// so branches of the search tree never alias each other's state.
func (s *GlobalState) Clone() State {
	assignment := make(map[string]int, len(s.Assignment))
	for k, v := range s.Assignment {
		assignment[k] = v
	}
	histories := make(map[string]*aoh.History, len(s.Histories))
	for id, h := range s.Histories {
		histories[id] = h.Clone()
	}
	return &GlobalState{Assignment: assignment, Histories: histories}
}

// Global models every other agent explicitly via one AgentModel each,
// per §4.4.1.
type Global struct {
	Net               *dbn.DBN
	ControlledAgentID string
	OtherAgents       map[string]agentmodel.Model
	ActionCardinality int
	Discount          float64
	DiscountHorizon   float64
}

// SampleInitialState samples the DBN's initial state and gives every
// other agent a fresh, empty history.
func (g *Global) SampleInitialState() State {
	assignment, err := g.Net.SampleInitialState()
	if err != nil {
		panic(err)
	}
	histories := make(map[string]*aoh.History, len(g.OtherAgents))
	for id := range g.OtherAgents {
		histories[id] = aoh.New(16)
	}
	return &GlobalState{Assignment: assignment, Histories: histories}
}

// Step implements §4.4.1: query each other agent's model for an action,
// place the controlled agent's action, step the DBN under the full
// order, read out the controlled agent's observation and reward, then
// feed every other agent's fresh observation back into its history.
func (g *Global) Step(state State, action int) (int, float64, bool) {
	s := state.(*GlobalState)

	for id, model := range g.OtherAgents {
		a := model.Step(s.Histories[id], g.Net.Rand())
		s.Assignment["a"+id] = a
	}
	s.Assignment["a"+g.ControlledAgentID] = action

	if err := g.Net.Step(s.Assignment, dbn.FullOrder); err != nil {
		panic(err)
	}

	obsName := "o" + g.ControlledAgentID
	rewardName := "r" + g.ControlledAgentID
	observation := s.Assignment[obsName]
	reward, err := g.Net.ValueOf(rewardName, s.Assignment)
	if err != nil {
		panic(err)
	}

	for id, model := range g.OtherAgents {
		model.Observe(s.Histories[id], s.Assignment["o"+id])
	}

	return observation, reward, false
}

// Rollout runs the shared rollout loop against Step.
func (g *Global) Rollout(state State, horizon, depth int) float64 {
	cfg := RolloutConfig{
		Discount:          g.Discount,
		DiscountHorizon:   g.DiscountHorizon,
		ActionCardinality: g.ActionCardinality,
	}
	return Rollout(cfg, state, horizon, depth, g.Net.Rand(), g.Step)
}
