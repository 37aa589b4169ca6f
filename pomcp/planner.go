package pomcp

import (
	"log"
	"math"
	"math/rand"
	"time"

	"iaop/internal/intutils"
	"iaop/simulator"
)

// Planner is a single-agent POMCP planner: a UCB1 tree search over a
// particle-filter belief, bounded per decision by a simulation-count or
// wall-clock budget.
type Planner struct {
	Sim               simulator.Simulator
	ActionCardinality int

	Particles       int // M
	Horizon         int // H
	Discount        float64
	DiscountHorizon float64

	Reinvigoration     bool
	ReinvigorationRate float64

	ExplorationConstant float64

	// Exactly one of these should be positive; it governs the stopping
	// rule for act's simulation loop.
	SimBudget int
	SecBudget float64

	// RandomizeTies overrides the default "favours the largest action
	// index" tie-break in the final greedy selection with a uniform
	// random choice among the tied actions.
	RandomizeTies bool

	Rand *rand.Rand

	tree             *Tree
	root             ObservationHandle
	horizonLeft      int
	particleDepleted bool
	lastAction       int
	loggedDepletion  bool
	lastSimCount     int
}

// Reset creates a fresh root observation node and fills its particle set
// with M samples from the simulator's initial-state distribution.
func (p *Planner) Reset() {
	p.tree = NewTree()
	p.root = p.tree.newObservationNode(p.ActionCardinality)

	root := &p.tree.obsNodes[p.root]
	root.Particles = make([]simulator.State, p.Particles)
	for i := 0; i < p.Particles; i++ {
		root.Particles[i] = p.Sim.SampleInitialState()
	}

	p.horizonLeft = p.Horizon
	p.particleDepleted = false
	p.loggedDepletion = false
}

// ParticleDepleted reports whether the current root's particle set is
// empty, in which case Act degrades to a uniformly random action.
func (p *Planner) ParticleDepleted() bool { return p.particleDepleted }

// Act runs root_simulate until the configured budget is exhausted, then
// returns the root's greedy (highest-Q) action and decrements the
// remaining horizon.
func (p *Planner) Act() int {
	if p.particleDepleted {
		action := p.Rand.Intn(p.ActionCardinality)
		p.lastAction = action
		p.horizonLeft = intutils.Max(0, p.horizonLeft-1)
		p.lastSimCount = 0
		return action
	}

	start := time.Now()
	sims := 0
	for !p.budgetExhausted(start, sims) {
		p.rootSimulate()
		sims++
	}

	action := p.bestAction(p.root, false)
	p.lastAction = action
	p.horizonLeft = intutils.Max(0, p.horizonLeft-1)
	p.lastSimCount = sims
	return action
}

func (p *Planner) budgetExhausted(start time.Time, sims int) bool {
	switch {
	case p.SimBudget > 0:
		return sims >= p.SimBudget
	case p.SecBudget > 0:
		return time.Since(start).Seconds() >= p.SecBudget
	default:
		return true
	}
}

// rootSimulate draws one state uniformly from the root's particle set
// and simulates a single rollout path from it.
func (p *Planner) rootSimulate() {
	root := &p.tree.obsNodes[p.root]
	state := root.Particles[p.Rand.Intn(len(root.Particles))].Clone()
	p.simulate(p.root, state, p.horizonLeft, 0)
}

// simulate implements §4.5.3: one depth-first simulation step, expanding
// the tree by one node per call when the chosen action's observation has
// never been seen at this node before.
func (p *Planner) simulate(obsHandle ObservationHandle, state simulator.State, horizon, depth int) float64 {
	if horizon == 0 || math.Pow(p.Discount, float64(depth)) < p.DiscountHorizon {
		return 0
	}

	if depth > 0 {
		p.tree.obsNodes[obsHandle].Particles = append(p.tree.obsNodes[obsHandle].Particles, state.Clone())
	}

	action := p.bestAction(obsHandle, true)
	observation, reward, _ := p.Sim.Step(state, action)

	actionHandle := p.tree.obsNodes[obsHandle].Children[action]
	childHandle, exists := p.tree.actionNodes[actionHandle].Children[observation]

	var r float64
	if exists {
		childReturn := p.simulate(childHandle, state, horizon-1, depth+1)
		r = reward + p.Discount*childReturn
	} else {
		childHandle = p.tree.newObservationNode(p.ActionCardinality)
		// actionNodes may have been reallocated by newObservationNode
		// appending to a different slice than the one it returns a handle
		// into, or by a nested simulate call above — always re-resolve by
		// index rather than caching a pointer across an append.
		p.tree.actionNodes[actionHandle].Children[observation] = childHandle
		rolloutReturn := p.Sim.Rollout(state, horizon-1, depth+1)
		child := &p.tree.obsNodes[childHandle]
		child.N = 1
		child.Q = rolloutReturn
		r = reward + p.Discount*rolloutReturn
	}

	// Re-resolve both nodes by index: p.simulate's recursive call and
	// p.tree.newObservationNode above can each append to p.tree.obsNodes/
	// actionNodes, reallocating the backing array and stranding any
	// pointer captured before the call.
	p.tree.obsNodes[obsHandle].update(r)
	p.tree.actionNodes[actionHandle].update(r)
	return r
}

// bestAction selects an action at obsHandle. With ucb=true, it pops the
// next untried action if any remain, else maximizes the UCB1 score.
// With ucb=false, it greedily maximizes Q with no exploration bonus.
// Ties favour the largest action index by default (">=", preserved from
// the original semantics); RandomizeTies breaks ties uniformly instead.
func (p *Planner) bestAction(obsHandle ObservationHandle, ucb bool) int {
	node := &p.tree.obsNodes[obsHandle]

	if ucb && len(node.Untried) > 0 {
		action := node.Untried[0]
		node.Untried = node.Untried[1:]
		return action
	}

	best := 0
	bestValue := math.Inf(-1)
	var tied []int

	for a := 0; a < p.ActionCardinality; a++ {
		actionNode := &p.tree.actionNodes[node.Children[a]]

		var value float64
		if ucb {
			if actionNode.N == 0 {
				value = math.Inf(1)
			} else {
				value = actionNode.Q + p.ExplorationConstant*math.Sqrt(math.Log(float64(node.N))/float64(actionNode.N))
			}
		} else {
			value = actionNode.Q
		}

		switch {
		case value > bestValue:
			bestValue = value
			best = a
			tied = tied[:0]
			tied = append(tied, a)
		case value == bestValue:
			tied = append(tied, a)
			best = a // "value >= bestValue": ties favour the largest index
		}
	}

	if p.RandomizeTies && len(tied) > 1 {
		return tied[p.Rand.Intn(len(tied))]
	}
	return best
}

// Observe extracts the subtree reached by (lastAction, realObservation)
// and replaces the root with it. A real observation never encountered
// during simulation gets a fresh empty ObservationNode. If the new
// root's particle set is empty, the planner is marked particle-depleted
// and logs once; otherwise, when enabled, reinvigoration appends fresh
// initial-state samples.
func (p *Planner) Observe(realObservation int) {
	if p.particleDepleted {
		return
	}

	oldTree := p.tree
	rootNode := oldTree.obsNodes[p.root]
	actionNode := oldTree.actionNodes[rootNode.Children[p.lastAction]]
	childHandle, exists := actionNode.Children[realObservation]

	var newTree *Tree
	var newRoot ObservationHandle
	if exists {
		newTree, newRoot = oldTree.extractSubtree(childHandle)
	} else {
		newTree = NewTree()
		newRoot = newTree.newObservationNode(p.ActionCardinality)
	}
	p.tree = newTree
	p.root = newRoot

	root := &p.tree.obsNodes[p.root]
	if len(root.Particles) == 0 {
		p.particleDepleted = true
		if !p.loggedDepletion {
			log.Printf("pomcp: root particle set depleted after observation %d", realObservation)
			p.loggedDepletion = true
		}
		return
	}

	if p.Reinvigoration {
		extra := int(float64(len(root.Particles)) * p.ReinvigorationRate)
		for i := 0; i < extra; i++ {
			root.Particles = append(root.Particles, p.Sim.SampleInitialState())
		}
	}
}

// HorizonLeft reports the remaining planning horizon.
func (p *Planner) HorizonLeft() int { return p.horizonLeft }

// LastSimCount reports how many root_simulate calls the most recent Act
// ran, 0 while the planner is in particle-depleted random-action mode.
func (p *Planner) LastSimCount() int { return p.lastSimCount }

// ParticleCount reports the current root's particle-belief size.
func (p *Planner) ParticleCount() int { return len(p.tree.obsNodes[p.root].Particles) }

// LastAction reports the action chosen by the most recent Act call.
func (p *Planner) LastAction() int { return p.lastAction }

// RootVisitCount exposes the root node's visit count, mainly for tests
// and the optional replay/snapshot hook.
func (p *Planner) RootVisitCount() int { return p.tree.obsNodes[p.root].N }

// RootActionValue exposes the root's per-action Q estimate, mainly for
// tests and the optional replay/snapshot hook.
func (p *Planner) RootActionValue(action int) float64 {
	handle := p.tree.obsNodes[p.root].Children[action]
	return p.tree.actionNodes[handle].Q
}

// ActionSnapshot is one root action's visit count and value estimate, the
// level of detail a replay collaborator needs per decision.
type ActionSnapshot struct {
	Action int
	N      int
	Q      float64
}

// Snapshot summarizes the current root's search statistics: each root
// action's (N, Q) pair. The root's own visit count is not included
// (RootVisitCount reports it). It does no
// file I/O itself; a collaborator building per-episode replay records
// (spec.md §6 "Persisted outputs") is expected to serialize this.
func (p *Planner) Snapshot() []ActionSnapshot {
	root := &p.tree.obsNodes[p.root]
	out := make([]ActionSnapshot, p.ActionCardinality)
	for a := 0; a < p.ActionCardinality; a++ {
		handle := root.Children[a]
		actionNode := &p.tree.actionNodes[handle]
		out[a] = ActionSnapshot{Action: a, N: actionNode.N, Q: actionNode.Q}
	}
	return out
}
