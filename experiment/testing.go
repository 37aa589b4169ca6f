package experiment

import (
	"log"

	"iaop/config"
	"iaop/episode"
)

// RunTesting is a smoke-test experiment: it dispatches exactly one
// episode and confirms nothing panics, without collecting or persisting
// any results. Grounded on original_source/src/runners/Experiment.hpp's
// TestingExperiment, whose run() does nothing beyond confirming the
// domain/agent-component/environment construction succeeded.
func RunTesting(cfg *config.Config, agents episode.Component, env episode.Environment) error {
	loop := &episode.Loop{
		Agents:   agents,
		Env:      env,
		Horizon:  cfg.General.Horizon,
		Discount: cfg.General.DiscountFactor,
	}
	result := loop.Dispatch()
	log.Printf("testing experiment finished: %d steps dispatched", result.Steps)
	return nil
}
