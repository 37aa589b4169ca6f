package experiment

import (
	"log"

	"gorgonia.org/tensor"

	"iaop/config"
	"iaop/dbn"
	"iaop/simulator"
)

// DataGenerationResult holds the two dense integer tensors spec.md §6
// names: Inputs shaped (episodes, horizon-1, |L|+1) — the controlled
// agent's local state + action per step — and Outputs shaped
// (episodes, horizon-1, |U|) — the influence source variables' values
// that step produced, the supervised pair a trained influence predictor
// would be fit against.
type DataGenerationResult struct {
	Inputs  *tensor.Dense
	Outputs *tensor.Dense
}

// RunDataGeneration simulates cfg's global simulator for
// numberOfSampledEpisodesForTraining episodes, recording the local
// state/action trajectory and the influence sources it induced at every
// step. Grounded on
// original_source/src/runners/DataGenerationExperiment.hpp: same tensor
// shapes, same "local states, then action" input layout, same uniform
// random action policy during collection, replacing libtorch's
// torch::zeros/torch::save with gorgonia.org/tensor (already a teacher
// dependency) and leaving the actual write-to-disk to the caller.
func RunDataGeneration(cfg *config.Config, global *simulator.Global, net *dbn.DBN, actionCardinality int) (*DataGenerationResult, error) {
	agentID := cfg.General.IDOfAgentToControl
	episodes := cfg.AgentComponent[agentID].Simulator.InfluencePredictor.NumberOfSampledEpisodesForTraining
	horizon := cfg.General.Horizon

	local, err := net.ConstructLocalModel(agentID)
	if err != nil {
		return nil, err
	}

	sizeOfInputs := len(local.LocalStates) + 1
	sizeOfOutputs := len(local.SourceFactors)
	steps := horizon - 1

	inputs := tensor.New(tensor.WithShape(episodes, steps, sizeOfInputs), tensor.WithBacking(make([]int, episodes*steps*sizeOfInputs)))
	outputs := tensor.New(tensor.WithShape(episodes, steps, sizeOfOutputs), tensor.WithBacking(make([]int, episodes*steps*sizeOfOutputs)))

	log.Printf("[influence predictor training data] inputs shape %v, outputs shape %v", inputs.Shape(), outputs.Shape())

	rng := net.Rand()
	for episode := 0; episode < episodes; episode++ {
		state := global.SampleInitialState().(*simulator.GlobalState)

		for step := 0; step < steps; step++ {
			action := rng.Intn(actionCardinality)

			for j, name := range local.LocalStates {
				if err := inputs.SetAt(state.Assignment[name], episode, step, j); err != nil {
					return nil, err
				}
			}
			if err := inputs.SetAt(action, episode, step, len(local.LocalStates)); err != nil {
				return nil, err
			}

			_, _, _ = global.Step(state, action)

			for j, name := range local.SourceFactors {
				if err := outputs.SetAt(state.Assignment[name], episode, step, j); err != nil {
					return nil, err
				}
			}
		}
	}

	return &DataGenerationResult{Inputs: inputs, Outputs: outputs}, nil
}
