package agentmodel

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"iaop/aoh"
)

func TestRandomModel(t *testing.T) {
	Convey("Given a Random agent model over 3 actions", t, func() {
		m := &Random{Cardinality: 3}
		rng := rand.New(rand.NewSource(42))
		h := aoh.New(8)

		Convey("Step writes a valid action and advances the history", func() {
			for i := 0; i < 50; i++ {
				action := m.Step(h, rng)
				So(action, ShouldBeBetween, -1, 3)
			}
			So(h.Len(), ShouldEqual, 50)
		})
	})
}

func TestFixedModel(t *testing.T) {
	Convey("Given a Fixed agent model pinned to action 1", t, func() {
		m := &Fixed{Action: 1}
		h := aoh.New(4)

		action := m.Step(h, nil)
		So(action, ShouldEqual, 1)
		m.Observe(h, 0)
		So(h.Len(), ShouldEqual, 2)
	})
}

func TestReactiveModel(t *testing.T) {
	Convey("Given a Reactive agent model whose policy returns the parity of the history length", t, func() {
		m := &Reactive{Policy: func(h *aoh.History) int { return h.Len() % 2 }}
		h := aoh.New(4)

		first := m.Step(h, nil)
		So(first, ShouldEqual, 0)
		m.Observe(h, 0)
		second := m.Step(h, nil)
		So(second, ShouldEqual, 0)
	})
}

func TestModelAgentAdapter(t *testing.T) {
	Convey("Given a ModelAgent wrapping a Fixed model", t, func() {
		agent := NewModelAgent(&Fixed{Action: 2}, rand.New(rand.NewSource(1)))

		Convey("the first Act call has nothing to observe yet and still returns the fixed action", func() {
			So(agent.Act(0, false), ShouldEqual, 2)
		})

		Convey("Reset starts a fresh history", func() {
			agent.Act(0, false)
			agent.Act(0, true)
			agent.Reset()
			So(agent.Act(0, false), ShouldEqual, 2)
		})
	})
}
