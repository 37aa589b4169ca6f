package config

// InfluencePredictorConfig configures one agent's influence predictor,
// per §6's AgentComponent.Simulator.InfluencePredictor schema.
type InfluencePredictorConfig struct {
	Type                                string `mapstructure:"Type" yaml:"Type"`
	ModelPath                           string `mapstructure:"modelPath" yaml:"modelPath"`
	NumberOfHiddenStates                int    `mapstructure:"numberOfHiddenStates" yaml:"numberOfHiddenStates"`
	Recurrent                           bool   `mapstructure:"recurrent" yaml:"recurrent"`
	Fast                                bool   `mapstructure:"fast" yaml:"fast"`
	NumberOfSampledEpisodesForTraining  int    `mapstructure:"numberOfSampledEpisodesForTraining" yaml:"numberOfSampledEpisodesForTraining"`
}

// SimulatorConfig selects one agent's SingleAgentSimulator variant and,
// when not Global, its influence predictor.
type SimulatorConfig struct {
	Type               string                    `mapstructure:"Type" yaml:"Type"`
	InfluencePredictor InfluencePredictorConfig  `mapstructure:"InfluencePredictor" yaml:"InfluencePredictor"`
}

// RolloutConfig configures one agent's POMCP planner, per §6's
// AgentComponent.Rollout schema. Exactly one of NumberOfSimulationsPerStep
// or NumberOfSecondsPerStep should be set; it determines the planner's
// stopping rule.
type RolloutConfig struct {
	NumberOfParticles          int     `mapstructure:"numberOfParticles" yaml:"numberOfParticles"`
	DiscountHorizon            float64 `mapstructure:"discountHorizon" yaml:"discountHorizon"`
	ParticleReinvigoration     bool    `mapstructure:"particleReinvigoration" yaml:"particleReinvigoration"`
	ParticleReinvigorationRate float64 `mapstructure:"particleReinvigorationRate" yaml:"particleReinvigorationRate"`
	ExplorationConstant        float64 `mapstructure:"explorationConstant" yaml:"explorationConstant"`
	NumberOfSimulationsPerStep int     `mapstructure:"numberOfSimulationsPerStep" yaml:"numberOfSimulationsPerStep"`
	NumberOfSecondsPerStep     float64 `mapstructure:"numberOfSecondsPerStep" yaml:"numberOfSecondsPerStep"`
}

// AgentConfig is one entry of the AgentComponent map: what kind of agent
// controls the id, and, for planning agents, how it simulates and plans.
type AgentConfig struct {
	Type      string          `mapstructure:"Type" yaml:"Type"`
	Simulator SimulatorConfig `mapstructure:"Simulator" yaml:"Simulator"`
	Rollout   RolloutConfig   `mapstructure:"Rollout" yaml:"Rollout"`
}

// General carries the run-wide settings named in §6: which domain the
// <domain> section belongs to, the episode horizon, discount factor, and
// which agent id the experiment drives through POMCP.
type General struct {
	Domain              string  `mapstructure:"domain" yaml:"domain"`
	Horizon             int     `mapstructure:"horizon" yaml:"horizon"`
	DiscountFactor      float64 `mapstructure:"discountFactor" yaml:"discountFactor"`
	IDOfAgentToControl  string  `mapstructure:"IDOfAgentToControl" yaml:"IDOfAgentToControl"`
}

// Experiment carries the run-loop knobs from §6: how many episodes to
// repeat, whether to persist per-step replay data, and whether logging
// runs at full verbosity.
type Experiment struct {
	Repeat      int  `mapstructure:"repeat" yaml:"repeat"`
	SaveReplay  bool `mapstructure:"saveReplay" yaml:"saveReplay"`
	FullLogging bool `mapstructure:"fullLogging" yaml:"fullLogging"`
}

// Config is the parsed General/Experiment/AgentComponent sections of a
// run's YAML file. The <domain> section is deliberately not a field here:
// its shape differs per domain, so it is decoded on demand via
// DecodeDomain once the caller knows which domain package it is handing
// the bytes to.
type Config struct {
	General        General                `mapstructure:"General" yaml:"General"`
	Experiment     Experiment             `mapstructure:"Experiment" yaml:"Experiment"`
	AgentComponent map[string]AgentConfig `mapstructure:"AgentComponent" yaml:"AgentComponent"`

	raw []byte
}

var validAgentTypes = map[string]bool{
	"Random": true,
	"Fixed":  true,
	"Naive":  true,
	"POMCP":  true,
}

var validSimulatorTypes = map[string]bool{
	"Global":    true,
	"Sequential": true,
	"Recurrent": true,
}

var validPredictorTypes = map[string]bool{
	"Random":     true,
	"Sequential": true,
	"Recurrent":  true,
}

// Validate checks the General/Experiment/AgentComponent sections for the
// required fields and known type tags named in §6 and §7. It does not
// touch the domain section; domain packages validate their own section
// after DecodeDomain.
func (c *Config) Validate() error {
	if c.General.Domain == "" {
		return &Error{Op: "Validate General.domain", Err: errMissingField}
	}
	if c.General.Horizon <= 0 {
		return &Error{Op: "Validate General.horizon", Err: errMissingField}
	}
	if c.General.DiscountFactor <= 0 || c.General.DiscountFactor > 1 {
		return &Error{Op: "Validate General.discountFactor", Err: errBadDiscount}
	}
	if c.General.IDOfAgentToControl == "" {
		return &Error{Op: "Validate General.IDOfAgentToControl", Err: errMissingField}
	}
	if _, ok := c.AgentComponent[c.General.IDOfAgentToControl]; !ok {
		return &Error{Op: "Validate AgentComponent", Err: errUncontrolled}
	}

	for id, agent := range c.AgentComponent {
		if !validAgentTypes[agent.Type] {
			return &Error{Op: "Validate AgentComponent." + id + ".Type", Err: errUnknownAgent}
		}
		if agent.Type != "POMCP" {
			continue
		}
		if !validSimulatorTypes[agent.Simulator.Type] {
			return &Error{Op: "Validate AgentComponent." + id + ".Simulator.Type", Err: errUnknownSim}
		}
		if agent.Simulator.Type != "Global" && !validPredictorTypes[agent.Simulator.InfluencePredictor.Type] {
			return &Error{Op: "Validate AgentComponent." + id + ".Simulator.InfluencePredictor.Type", Err: errUnknownModel}
		}
	}
	return nil
}
