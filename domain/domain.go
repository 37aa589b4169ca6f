// Package domain loads the <domain>-tagged section of a configuration
// (spec.md §6) into a concrete 2-DBN and ground-truth environment, and
// registers the small set of domain-specific "Naive" reactive policies a
// FireFighter/GrabAChair/GridTraffic instantiation supplies. The domain
// encodings themselves are out of scope (spec.md §1): this package only
// wires the pieces the core's interfaces accept, grounded on
// original_source/src/domains/Domain.hpp, whose base class already does
// everything generic (load the DBN, expose agent specs, build the
// ground-truth Environment) and leaves only makeAtomicAgent/
// makeAtomicAgentSimulator to the FireFighter/GrabAChair/GridTraffic
// subclasses.
package domain

import (
	"sort"

	"iaop/config"
	"iaop/dbn"
)

// fileSection is the common shape every domain tag's YAML section has,
// per spec.md §6: a path to the DBN description file. Domain-specific
// knobs (e.g. GridTraffic.obsLength) are read separately by whichever
// domain-specific policy factory needs them.
type fileSection struct {
	DBNPath string `yaml:"2SDBNYamlFilePath"`
}

// Domain bundles the DBN and agent roster a configuration names.
type Domain struct {
	Tag             string
	Net             *dbn.DBN
	AgentIDs        []string
	NumberOfActions map[string]int
}

// Load builds a Domain from cfg: decodes the <domain> section to find the
// DBN file, loads and computes its full sampling order, and reads the
// agent roster out of AgentComponent (each id's action count is the
// cardinality of the DBN's "a"+id variable, per spec.md §4.1's
// role-prefix convention; an id with no such variable is an error).
func Load(cfg *config.Config) (*Domain, error) {
	var section fileSection
	if err := cfg.DecodeDomain(&section); err != nil {
		return nil, err
	}

	net, err := dbn.LoadFile(section.DBNPath)
	if err != nil {
		return nil, err
	}
	if err := net.ComputeFullSamplingOrder(); err != nil {
		return nil, err
	}

	agentIDs := make([]string, 0, len(cfg.AgentComponent))
	for id := range cfg.AgentComponent {
		agentIDs = append(agentIDs, id)
	}
	sort.Strings(agentIDs)

	actions := make(map[string]int, len(agentIDs))
	for _, id := range agentIDs {
		v, ok := net.Variables["a"+id]
		if !ok {
			return nil, &Error{Op: "Load " + id, Err: errMissingActionVariable}
		}
		actions[id] = v.Cardinality
	}

	return &Domain{
		Tag:             cfg.General.Domain,
		Net:             net,
		AgentIDs:        agentIDs,
		NumberOfActions: actions,
	}, nil
}

// Environment builds the ground-truth multi-agent environment shared by
// every domain tag: each real step places every agent's chosen action,
// steps the DBN under the full order, and reads back each agent's own
// observation/reward slice. Grounded on Domain::Environment (same file),
// whose step/reset bodies are entirely domain-agnostic already.
func (d *Domain) Environment() *Environment {
	return &Environment{net: d.Net, agentIDs: d.AgentIDs}
}

// Environment is the episode.Environment implementation every domain tag
// shares.
type Environment struct {
	net        *dbn.DBN
	agentIDs   []string
	assignment map[string]int
}

func (e *Environment) Reset() map[string]int {
	assignment, err := e.net.SampleInitialState()
	if err != nil {
		panic(err)
	}
	e.assignment = assignment
	return e.observation()
}

func (e *Environment) Step(action map[string]int) (map[string]int, map[string]float64, bool) {
	for id, a := range action {
		e.assignment["a"+id] = a
	}
	if err := e.net.Step(e.assignment, dbn.FullOrder); err != nil {
		panic(err)
	}

	reward := make(map[string]float64, len(e.agentIDs))
	for _, id := range e.agentIDs {
		r, err := e.net.ValueOf("r"+id, e.assignment)
		if err != nil {
			panic(err)
		}
		reward[id] = r
	}
	return e.observation(), reward, false
}

func (e *Environment) observation() map[string]int {
	obs := make(map[string]int, len(e.agentIDs))
	for _, id := range e.agentIDs {
		obs[id] = e.assignment["o"+id]
	}
	return obs
}
