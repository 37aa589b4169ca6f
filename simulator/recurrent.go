package simulator

import (
	"iaop/dbn"
	"iaop/influence"
)

// RecurrentState is the state carried by RecurrentInfluenceSimulator:
// the local DBN assignment, the predictor's hidden state, a reusable
// last-input scratch buffer (overwritten, never appended to), and a flag
// marking whether the next step is the first of the episode.
type RecurrentState struct {
	Assignment map[string]int
	Hidden     []float64
	LastInput  []float64
	IsInitial  bool
}

func (s *RecurrentState) Clone() State {
	assignment := make(map[string]int, len(s.Assignment))
	for k, v := range s.Assignment {
		assignment[k] = v
	}
	hidden := make([]float64, len(s.Hidden))
	copy(hidden, s.Hidden)
	lastInput := make([]float64, len(s.LastInput))
	copy(lastInput, s.LastInput)
	return &RecurrentState{
		Assignment: assignment,
		Hidden:     hidden,
		LastInput:  lastInput,
		IsInitial:  s.IsInitial,
	}
}

// Recurrent approximates every other agent's effect through a recurrent
// InfluencePredictor, per §4.4.3.
type Recurrent struct {
	Net               *dbn.DBN
	AgentID           string
	LocalModel        *dbn.LocalModel
	Predictor         influence.RecurrentPredictor
	ActionCardinality int
	Discount          float64
	DiscountHorizon   float64
}

// inputWidth is the width of the last-input scratch buffer: one slot per
// local state plus one for the action.
func (r *Recurrent) inputWidth() int { return len(r.LocalModel.LocalStates) + 1 }

func (r *Recurrent) SampleInitialState() State {
	assignment, err := r.Net.SampleInitialState()
	if err != nil {
		panic(err)
	}
	return &RecurrentState{
		Assignment: assignment,
		Hidden:     r.Predictor.InitialState(),
		LastInput:  make([]float64, r.inputWidth()),
		IsInitial:  true,
	}
}

// Step is identical to Sequential's except one_step_sample is called,
// the scratch buffer is overwritten in place rather than appended, and
// IsInitial toggles false after the first call.
func (r *Recurrent) Step(state State, action int) (int, float64, bool) {
	st := state.(*RecurrentState)
	st.Assignment["a"+r.AgentID] = action

	out := make(map[string]int, len(r.LocalModel.SourceFactors))
	if err := r.Predictor.OneStepSample(st.Hidden, st.LastInput, st.IsInitial, out, r.Net.Rand()); err != nil {
		panic(err)
	}
	for k, v := range out {
		st.Assignment[k] = v
	}

	if err := r.Net.Step(st.Assignment, dbn.LocalOrderName(r.AgentID)); err != nil {
		panic(err)
	}

	obsName := "o" + r.AgentID
	rewardName := "r" + r.AgentID
	observation := st.Assignment[obsName]
	reward, err := r.Net.ValueOf(rewardName, st.Assignment)
	if err != nil {
		panic(err)
	}

	for i, ls := range r.LocalModel.LocalStates {
		st.LastInput[i] = float64(st.Assignment[ls])
	}
	st.LastInput[len(r.LocalModel.LocalStates)] = float64(action)
	st.IsInitial = false

	return observation, reward, false
}

func (r *Recurrent) Rollout(state State, horizon, depth int) float64 {
	cfg := RolloutConfig{
		Discount:          r.Discount,
		DiscountHorizon:   r.DiscountHorizon,
		ActionCardinality: r.ActionCardinality,
	}
	return Rollout(cfg, state, horizon, depth, r.Net.Rand(), r.Step)
}
