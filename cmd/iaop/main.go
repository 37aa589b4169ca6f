// Command iaop is the CLI entry point: three positional arguments select
// an experiment type, a configuration file, and a results directory.
// Grounded on niceyeti-tabular's tabular/main.go flag-and-dispatch shape
// and spec.md §6/§7's exit-code contract.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"sort"

	"github.com/joho/godotenv"

	"iaop/agentmodel"
	"iaop/config"
	"iaop/dbn"
	"iaop/domain"
	"iaop/episode"
	"iaop/experiment"
	"iaop/influence"
	"iaop/pomcp"
	"iaop/simulator"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// A missing .env is not fatal; godotenv only copies its entries into
	// the process environment, and nothing in this module reads them.
	_ = godotenv.Load()

	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: iaop <Testing|Planning|DataGeneration> <config.yaml> <results-dir>")
		return 1
	}
	experimentType, configPath, resultsDir := args[0], args[1], args[2]

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}

	d, err := domain.Load(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}

	switch experimentType {
	case "Testing":
		agents, env, err := buildEpisode(cfg, d)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitCodeFor(err)
		}
		if err := experiment.RunTesting(cfg, agents, env); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 3
		}
		return 0

	case "Planning":
		makeAgents := func() episode.Component {
			agents, _, err := buildEpisode(cfg, d)
			if err != nil {
				panic(err)
			}
			return agents
		}
		makeEnv := func() episode.Environment { return d.Environment() }
		if err := os.MkdirAll(resultsDir, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 3
		}
		if _, err := experiment.RunPlanning(cfg, makeAgents, makeEnv, resultsDir); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 3
		}
		return 0

	case "DataGeneration":
		controlled := cfg.General.IDOfAgentToControl
		global, err := buildGlobalSimulator(cfg, d, controlled)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitCodeFor(err)
		}
		result, err := experiment.RunDataGeneration(cfg, global, d.Net, d.NumberOfActions[controlled])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		if err := os.MkdirAll(resultsDir, 0o755); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 3
		}
		fmt.Printf("generated training tensors: inputs %v, outputs %v\n", result.Inputs.Shape(), result.Outputs.Shape())
		return 0

	default:
		fmt.Fprintln(os.Stderr, "unknown experiment type:", experimentType)
		return 1
	}
}

// exitCodeFor maps a typed error to spec.md §7's process exit codes: 1
// for a ConfigError, 2 for anything reporting a model-construction
// problem (an unparseable DBN, a missing action variable), 3 otherwise
// (I/O).
func exitCodeFor(err error) int {
	switch err.(type) {
	case *config.Error:
		return 1
	case *dbn.Error, *influence.Error, *domain.Error:
		return 2
	default:
		return 3
	}
}

// buildEpisode constructs one fresh episode.Component (one agent per
// configured id) and the shared ground-truth environment, per spec.md
// §6's AgentComponent dispatch: the controlled id gets a POMCP planner,
// every other id gets a real Random/Fixed/Naive agent.
func buildEpisode(cfg *config.Config, d *domain.Domain) (episode.Component, episode.Environment, error) {
	agents := make(episode.Component, len(d.AgentIDs))
	for _, id := range d.AgentIDs {
		agentCfg := cfg.AgentComponent[id]
		if id == cfg.General.IDOfAgentToControl && agentCfg.Type == "POMCP" {
			planner, err := buildPlanner(cfg, d, id)
			if err != nil {
				return nil, nil, err
			}
			agents[id] = &pomcp.Agent{Planner: planner}
			continue
		}
		rng := rand.New(rand.NewSource(d.Net.Rand().Int63()))
		agents[id] = domain.NewRealAgent(d.Tag, agentCfg.Type, id, d.NumberOfActions[id], rng)
	}
	return agents, d.Environment(), nil
}

// buildPlanner wires a pomcp.Planner for agentID per its configured
// Simulator and Rollout sections.
func buildPlanner(cfg *config.Config, d *domain.Domain, agentID string) (*pomcp.Planner, error) {
	agentCfg := cfg.AgentComponent[agentID]
	sim, err := buildSimulator(cfg, d, agentID)
	if err != nil {
		return nil, err
	}

	rollout := agentCfg.Rollout
	return &pomcp.Planner{
		Sim:                 sim,
		ActionCardinality:   d.NumberOfActions[agentID],
		Particles:           rollout.NumberOfParticles,
		Horizon:             cfg.General.Horizon,
		Discount:            cfg.General.DiscountFactor,
		DiscountHorizon:     rollout.DiscountHorizon,
		Reinvigoration:      rollout.ParticleReinvigoration,
		ReinvigorationRate:  rollout.ParticleReinvigorationRate,
		ExplorationConstant: rollout.ExplorationConstant,
		SimBudget:           rollout.NumberOfSimulationsPerStep,
		SecBudget:           rollout.NumberOfSecondsPerStep,
		Rand:                rand.New(rand.NewSource(d.Net.Rand().Int63())),
	}, nil
}

// buildSimulator dispatches on agentCfg.Simulator.Type: Global models
// every other agent explicitly, Sequential and Recurrent summarize them
// through an InfluencePredictor over agentID's local model.
func buildSimulator(cfg *config.Config, d *domain.Domain, agentID string) (simulator.Simulator, error) {
	agentCfg := cfg.AgentComponent[agentID]
	rollout := agentCfg.Rollout

	switch agentCfg.Simulator.Type {
	case "Sequential":
		local, err := d.Net.ConstructLocalModel(agentID)
		if err != nil {
			return nil, err
		}
		predictor, err := buildPredictor(d.Net, local, agentCfg.Simulator.InfluencePredictor)
		if err != nil {
			return nil, err
		}
		return &simulator.Sequential{
			Net:               d.Net,
			AgentID:           agentID,
			LocalModel:        local,
			Predictor:         predictor,
			ActionCardinality: d.NumberOfActions[agentID],
			Discount:          cfg.General.DiscountFactor,
			DiscountHorizon:   rollout.DiscountHorizon,
		}, nil

	case "Recurrent":
		local, err := d.Net.ConstructLocalModel(agentID)
		if err != nil {
			return nil, err
		}
		predictor, err := buildRecurrentPredictor(d.Net, local, agentCfg.Simulator.InfluencePredictor)
		if err != nil {
			return nil, err
		}
		return &simulator.Recurrent{
			Net:               d.Net,
			AgentID:           agentID,
			LocalModel:        local,
			Predictor:         predictor,
			ActionCardinality: d.NumberOfActions[agentID],
			Discount:          cfg.General.DiscountFactor,
			DiscountHorizon:   rollout.DiscountHorizon,
		}, nil

	default: // "Global", or unset falls back to modelling every other agent
		return buildGlobalSimulator(cfg, d, agentID)
	}
}

// buildGlobalSimulator models every other agent explicitly through an
// agentmodel.Model prediction, per §4.4.1. It is also what
// DataGeneration uses regardless of the controlled agent's own
// configured simulator type, since generating training data for a local
// predictor requires ground-truth draws from every other agent.
func buildGlobalSimulator(cfg *config.Config, d *domain.Domain, agentID string) (*simulator.Global, error) {
	rollout := cfg.AgentComponent[agentID].Rollout
	others := make(map[string]agentmodel.Model, len(d.AgentIDs)-1)
	for _, id := range d.AgentIDs {
		if id == agentID {
			continue
		}
		others[id] = domain.NewAgent(d.Tag, cfg.AgentComponent[id].Type, id, d.NumberOfActions[id])
	}
	return &simulator.Global{
		Net:               d.Net,
		ControlledAgentID: agentID,
		OtherAgents:       others,
		ActionCardinality: d.NumberOfActions[agentID],
		Discount:          cfg.General.DiscountFactor,
		DiscountHorizon:   rollout.DiscountHorizon,
	}, nil
}

// buildPredictor dispatches on the feed-forward InfluencePredictor
// variants: Random needs nothing trained, Sequential loads its weights
// from modelPath.
func buildPredictor(net *dbn.DBN, local *dbn.LocalModel, cfg config.InfluencePredictorConfig) (influence.Predictor, error) {
	switch cfg.Type {
	case "Sequential":
		return influence.LoadSequential(cfg.ModelPath, net)
	default:
		return influence.NewRandom(net, sortedCopy(local.SourceFactors)), nil
	}
}

// buildRecurrentPredictor dispatches on the recurrent InfluencePredictor
// variants.
func buildRecurrentPredictor(net *dbn.DBN, local *dbn.LocalModel, cfg config.InfluencePredictorConfig) (influence.RecurrentPredictor, error) {
	switch cfg.Type {
	case "Recurrent":
		if cfg.Recurrent {
			return influence.LoadGRU(cfg.ModelPath, net, cfg.Fast)
		}
		return influence.LoadRNN(cfg.ModelPath, net)
	default:
		return influence.NewRandom(net, sortedCopy(local.SourceFactors)), nil
	}
}

func sortedCopy(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
