package domain

import (
	"math/rand"

	"iaop/agentmodel"
	"iaop/aoh"
)

// ReactivePolicyFactory builds a domain-specific hand-coded policy for
// one agent within one domain tag. The concrete FireFighter/GrabAChair/
// GridTraffic behaviours this would encode are out of scope per spec.md
// §1 ("the particular domain encodings... are instantiations of the
// 2-DBN and of pluggable atomic agent behaviours, which the core accepts
// through interfaces") — each registered factory below is a placeholder
// standing in for a real domain's policy, grounded on
// FireFighterAtomicAgent.hpp/GrabAChairAtomicAgent.hpp/
// GridTrafficAtomicAgent.hpp's role as the only domain-specific piece
// original_source/src/domains/Domain.hpp's subclasses actually implement.
type ReactivePolicyFactory func(agentID string) agentmodel.ReactiveFunc

var registry = map[string]ReactivePolicyFactory{}

// Register adds or replaces the "Naive" policy factory for domainTag. A
// concrete domain package calls this from its own init() to plug in the
// real hand-coded behaviour.
func Register(domainTag string, factory ReactivePolicyFactory) {
	registry[domainTag] = factory
}

func init() {
	stayPut := func(agentID string) agentmodel.ReactiveFunc {
		return func(history *aoh.History) int { return 0 }
	}
	Register("FireFighter", stayPut)
	Register("GrabAChair", stayPut)
	Register("GridTraffic", stayPut)
}

// NewAgent builds the agentmodel.Model that drives agentID under
// agentType within domainTag: "Random" and "Fixed" are the generic
// types spec.md §6 names directly; "Naive" dispatches to the domain's
// registered ReactivePolicyFactory.
func NewAgent(domainTag, agentType, agentID string, actionCardinality int) agentmodel.Model {
	switch agentType {
	case "Fixed":
		return &agentmodel.Fixed{Action: 0}
	case "Naive":
		if factory, ok := registry[domainTag]; ok {
			return &agentmodel.Reactive{Policy: factory(agentID)}
		}
		fallthrough
	default:
		return &agentmodel.Random{Cardinality: actionCardinality}
	}
}

// NewRealAgent wraps NewAgent's Model in a ModelAgent so it can drive
// agentID for real within an episode's ground-truth environment, rather
// than only being consulted as another agent's prediction inside a
// simulator.
func NewRealAgent(domainTag, agentType, agentID string, actionCardinality int, rng *rand.Rand) agentmodel.Agent {
	return agentmodel.NewModelAgent(NewAgent(domainTag, agentType, agentID, actionCardinality), rng)
}
