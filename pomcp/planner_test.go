package pomcp

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"iaop/simulator"
)

// intState is a minimal simulator.State used to drive the planner in
// isolation from the DBN/influence machinery, the way S1-S3 describe
// scenarios purely in terms of a single integer state.
type intState struct{ x int }

func (s *intState) Clone() simulator.State { return &intState{x: s.x} }

// singletonSim reproduces S1: x never changes regardless of action, and
// reward always equals x (here pinned at 0).
type singletonSim struct{ actions int }

func (s *singletonSim) SampleInitialState() simulator.State { return &intState{x: 0} }
func (s *singletonSim) Step(state simulator.State, action int) (int, float64, bool) {
	st := state.(*intState)
	return st.x, float64(st.x), false
}
func (s *singletonSim) Rollout(state simulator.State, horizon, depth int) float64 {
	return simulator.Rollout(simulator.RolloutConfig{Discount: 1, DiscountHorizon: 0, ActionCardinality: s.actions}, state, horizon, depth, rand.New(rand.NewSource(1)), s.Step)
}

// banditSim reproduces S2: x is constant, reward = action.
type banditSim struct{ actions int }

func (s *banditSim) SampleInitialState() simulator.State { return &intState{x: 0} }
func (s *banditSim) Step(state simulator.State, action int) (int, float64, bool) {
	return 0, float64(action), false
}
func (s *banditSim) Rollout(state simulator.State, horizon, depth int) float64 {
	return simulator.Rollout(simulator.RolloutConfig{Discount: 1, DiscountHorizon: 0, ActionCardinality: s.actions}, state, horizon, depth, rand.New(rand.NewSource(2)), s.Step)
}

// toggleSim reproduces S3: action 1 flips x, reward = x.
type toggleSim struct{ actions int }

func (s *toggleSim) SampleInitialState() simulator.State { return &intState{x: 0} }
func (s *toggleSim) Step(state simulator.State, action int) (int, float64, bool) {
	st := state.(*intState)
	if action == 1 {
		st.x = 1 - st.x
	}
	return st.x, float64(st.x), false
}
func (s *toggleSim) Rollout(state simulator.State, horizon, depth int) float64 {
	return simulator.Rollout(simulator.RolloutConfig{Discount: 1, DiscountHorizon: 0, ActionCardinality: s.actions}, state, horizon, depth, rand.New(rand.NewSource(3)), s.Step)
}

func newPlanner(sim simulator.Simulator, actions, particles, horizon int, seed int64) *Planner {
	return &Planner{
		Sim:                 sim,
		ActionCardinality:   actions,
		Particles:           particles,
		Horizon:             horizon,
		Discount:            1,
		DiscountHorizon:     0,
		ExplorationConstant: 0,
		SimBudget:           64,
		Rand:                rand.New(rand.NewSource(seed)),
	}
}

func TestDeterministicSingletonScenario(t *testing.T) {
	Convey("Given S1, a planner over the deterministic singleton simulator", t, func() {
		sim := &singletonSim{actions: 2}
		p := newPlanner(sim, 2, 8, 5, 1)
		p.Reset()

		Convey("every real step's reward is zero regardless of action", func() {
			for step := 0; step < 5; step++ {
				action := p.Act()
				So(action, ShouldBeBetween, -1, 2)
				obs, reward, _ := sim.Step(&intState{x: 0}, action)
				So(reward, ShouldEqual, 0)
				p.Observe(obs)
			}
		})
	})
}

func TestBanditScenario(t *testing.T) {
	Convey("Given S2, a bandit planner with no exploration bonus", t, func() {
		sim := &banditSim{actions: 2}
		p := newPlanner(sim, 2, 8, 1, 1)
		p.SimBudget = 64
		p.Reset()

		Convey("the planner picks action 1", func() {
			action := p.Act()
			So(action, ShouldEqual, 1)
		})
	})
}

func TestDelayedRewardScenario(t *testing.T) {
	Convey("Given S3, a planner over the toggle simulator with a long enough budget", t, func() {
		sim := &toggleSim{actions: 2}
		p := newPlanner(sim, 2, 16, 3, 7)
		p.SimBudget = 512
		p.Reset()

		Convey("the planner prefers action 1 on the first step", func() {
			action := p.Act()
			So(action, ShouldEqual, 1)
		})
	})
}

func TestZeroBudgetRunsNoSimulations(t *testing.T) {
	Convey("Given a planner with a zero simulation budget", t, func() {
		sim := &banditSim{actions: 3}
		p := newPlanner(sim, 3, 4, 1, 2)
		p.SimBudget = 0
		p.Reset()

		Convey("Act performs no simulations and the root stays at N=0", func() {
			p.Act()
			So(p.RootVisitCount(), ShouldEqual, 0)
		})
	})
}

func TestParticleDepletion(t *testing.T) {
	Convey("Given a planner whose real observation was never simulated", t, func() {
		sim := &banditSim{actions: 2}
		p := newPlanner(sim, 2, 4, 2, 5)
		p.Reset()

		p.Act()
		p.Observe(999) // never produced by banditSim.Step, which always returns 0

		Convey("the planner is marked particle-depleted and does not crash on the next Act", func() {
			So(p.ParticleDepleted(), ShouldBeTrue)
			action := p.Act()
			So(action, ShouldBeBetween, -1, 2)
		})
	})
}

func TestReinvigoration(t *testing.T) {
	Convey("Given S5, a planner whose pruned root already holds 8 particles", t, func() {
		sim := &banditSim{actions: 2}
		p := newPlanner(sim, 2, 8, 3, 9)
		p.Reinvigoration = true
		p.ReinvigorationRate = 0.5
		p.Reset()

		// Manually wire a child observation node with exactly 8
		// particles, standing in for the subtree extracted after a real
		// (action, observation) step.
		childHandle := p.tree.newObservationNode(p.ActionCardinality)
		particles := make([]simulator.State, 8)
		for i := range particles {
			particles[i] = sim.SampleInitialState()
		}
		p.tree.obsNodes[childHandle].Particles = particles

		rootNode := &p.tree.obsNodes[p.root]
		actionHandle := rootNode.Children[0]
		p.tree.actionNodes[actionHandle].Children[0] = childHandle
		p.lastAction = 0

		p.Observe(0)

		Convey("the new root ends up with between 12 and 13 particles", func() {
			count := len(p.tree.obsNodes[p.root].Particles)
			So(count, ShouldBeBetween, 11, 14)
		})
	})
}

func TestRolloutHorizonZeroReturnsZero(t *testing.T) {
	Convey("Given any simulator, a rollout with horizon=0 returns 0", t, func() {
		sim := &banditSim{actions: 2}
		state := sim.SampleInitialState()
		r := sim.Rollout(state, 0, 0)
		So(r, ShouldEqual, 0)
	})
}
