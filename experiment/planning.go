package experiment

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/samuelfneumann/progressbar"
	"gopkg.in/yaml.v3"

	"iaop/config"
	"iaop/episode"
)

// AgentComponentFactory builds a fresh episode.Component for one episode
// (a fresh planner tree per agent, since Planner.Reset already clears
// belief but a planning agent may also hold per-episode RNG state best
// started clean).
type AgentComponentFactory func() episode.Component

// EnvironmentFactory builds a fresh episode.Environment for one episode.
type EnvironmentFactory func() episode.Environment

// RunPlanning runs cfg.Experiment.Repeat independent episodes, logging a
// moving average of the controlled agent's discounted return after each
// one and writing a results.yaml under resultsDir. Grounded on
// original_source/src/runners/Experiment.hpp's PlanningExperiment::run():
// the repeat loop, the moving-average bookkeeping, and the fullLogging
// switch (whether every agent's trace is kept or only the controlled
// agent's) are carried over verbatim in meaning.
func RunPlanning(cfg *config.Config, makeAgents AgentComponentFactory, makeEnv EnvironmentFactory, resultsDir string) (*Result, error) {
	repeats := cfg.Experiment.Repeat
	bar := progressbar.New(50, repeats, time.Second, true)
	bar.Display()

	result := &Result{Episodes: make([]EpisodeResult, 0, repeats)}
	movingAverage := 0.0
	controlled := cfg.General.IDOfAgentToControl

	for i := 0; i < repeats; i++ {
		agents := makeAgents()
		env := makeEnv()

		episodeResult := runInstrumentedEpisode(agents, env, cfg.General.Horizon, cfg.General.DiscountFactor)

		if !cfg.Experiment.FullLogging {
			trace := episodeResult.Agents[controlled]
			episodeResult.Agents = map[string]AgentEpisodeResult{controlled: trace}
		}

		episodicReturn := episodeResult.Agents[controlled].Discounted
		movingAverage = (movingAverage*float64(i) + episodicReturn) / float64(i+1)
		log.Printf("[Episode %d] agent %s discounted return %.4f (moving average %.4f)",
			i, controlled, episodicReturn, movingAverage)

		result.Episodes = append(result.Episodes, episodeResult)
		bar.Increment()
	}
	bar.AddMessage(fmt.Sprintf("%d episodes complete", repeats))
	bar.Close()

	if err := writeResultsYAML(resultsDir, result); err != nil {
		return nil, err
	}
	return result, nil
}

func writeResultsYAML(resultsDir string, result *Result) error {
	raw, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	path := filepath.Join(resultsDir, "results.yaml")
	return os.WriteFile(path, raw, 0o644)
}
