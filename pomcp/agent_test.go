package pomcp

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAgentAdapterDispatchesObserveAndAct(t *testing.T) {
	Convey("Given an Agent wrapping a planner over S2", t, func() {
		sim := &banditSim{actions: 2}
		p := newPlanner(sim, 2, 8, 2, 11)
		p.Rand = rand.New(rand.NewSource(11))
		agent := &Agent{Planner: p}

		agent.Reset()

		Convey("the first Act call has no observation to feed back and still returns a valid action", func() {
			action := agent.Act(0, false)
			So(action, ShouldBeBetween, -1, 2)
			So(agent.LastSimCount(), ShouldBeGreaterThan, 0)
		})

		Convey("a second Act call feeds back the real observation first", func() {
			agent.Act(0, false)
			action := agent.Act(0, true)
			So(action, ShouldBeBetween, -1, 2)
			So(agent.ParticleCount(), ShouldBeGreaterThan, 0)
		})
	})
}
