package simulator

import (
	"iaop/dbn"
	"iaop/influence"
)

// SequentialState is the state carried by SequentialInfluenceSimulator:
// the local DBN assignment plus the entire local-factor history so far.
type SequentialState struct {
	Assignment map[string]int
	History    []int
}

func (s *SequentialState) Clone() State {
	assignment := make(map[string]int, len(s.Assignment))
	for k, v := range s.Assignment {
		assignment[k] = v
	}
	history := make([]int, len(s.History))
	copy(history, s.History)
	return &SequentialState{Assignment: assignment, History: history}
}

// Sequential approximates every other agent's effect through a
// feed-forward InfluencePredictor, per §4.4.2.
type Sequential struct {
	Net               *dbn.DBN
	AgentID           string
	LocalModel        *dbn.LocalModel
	Predictor         influence.Predictor
	ActionCardinality int
	Discount          float64
	DiscountHorizon   float64
}

func (s *Sequential) SampleInitialState() State {
	assignment, err := s.Net.SampleInitialState()
	if err != nil {
		panic(err)
	}
	return &SequentialState{Assignment: assignment, History: nil}
}

// Step implements §4.4.2: set the controlled agent's action, sample the
// influence source variables from the whole history so far, step under
// the agent's local order, read out the observation and reward, then
// append the local states and action to the history.
func (s *Sequential) Step(state State, action int) (int, float64, bool) {
	st := state.(*SequentialState)
	st.Assignment["a"+s.AgentID] = action

	out := make(map[string]int, len(s.LocalModel.SourceFactors))
	if err := s.Predictor.Sample(st.History, out, s.Net.Rand()); err != nil {
		panic(err)
	}
	for k, v := range out {
		st.Assignment[k] = v
	}

	if err := s.Net.Step(st.Assignment, dbn.LocalOrderName(s.AgentID)); err != nil {
		panic(err)
	}

	obsName := "o" + s.AgentID
	rewardName := "r" + s.AgentID
	observation := st.Assignment[obsName]
	reward, err := s.Net.ValueOf(rewardName, st.Assignment)
	if err != nil {
		panic(err)
	}

	for _, ls := range s.LocalModel.LocalStates {
		st.History = append(st.History, st.Assignment[ls])
	}
	st.History = append(st.History, action)

	return observation, reward, false
}

func (s *Sequential) Rollout(state State, horizon, depth int) float64 {
	cfg := RolloutConfig{
		Discount:          s.Discount,
		DiscountHorizon:   s.DiscountHorizon,
		ActionCardinality: s.ActionCardinality,
	}
	return Rollout(cfg, state, horizon, depth, s.Net.Rand(), s.Step)
}
