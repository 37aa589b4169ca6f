package simulator

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"iaop/agentmodel"
	"iaop/dbn"
	"iaop/influence"
)

// buildTwoAgentNet mirrors the dbn package's TestConstructLocalModel
// fixture (network_test.go): agent 2's
// transition depends on agent 1's state, so agent 1 is an influence
// source for agent 2's local model.
func buildTwoAgentNet(t *testing.T) *dbn.DBN {
	t.Helper()
	det := func(n int) []float64 {
		row := make([]float64, n)
		row[0] = 1
		return row
	}

	x1 := &dbn.Variable{Name: "x1", Cardinality: 2, InitialDist: []float64{1, 0}}
	x1p := &dbn.Variable{Name: "x1'", Parents: []string{"x1", "a1"}, Cardinality: 2, Law: dbn.CPT,
		CPT: map[string][]float64{}}
	a1 := &dbn.Variable{Name: "a1", Cardinality: 2, InitialDist: []float64{1, 0}}

	x2 := &dbn.Variable{Name: "x2", Cardinality: 2, InitialDist: []float64{1, 0}}
	x2p := &dbn.Variable{Name: "x2'", Parents: []string{"x2", "a2", "x1"}, Cardinality: 2, Law: dbn.CPT,
		CPT: map[string][]float64{}}
	a2 := &dbn.Variable{Name: "a2", Cardinality: 2, InitialDist: []float64{1, 0}}
	o2 := &dbn.Variable{Name: "o2", Parents: []string{"x2'"}, Cardinality: 2, Law: dbn.CPT,
		CPT: map[string][]float64{}}
	r2 := &dbn.Variable{Name: "r2", Parents: []string{"x2'"}, Cardinality: 2, Values: []float64{0, 1}, Law: dbn.CPT,
		CPT: map[string][]float64{}}
	o1 := &dbn.Variable{Name: "o1", Parents: []string{"x1'"}, Cardinality: 2, Law: dbn.CPT,
		CPT: map[string][]float64{}}
	r1 := &dbn.Variable{Name: "r1", Parents: []string{"x1'"}, Cardinality: 2, Values: []float64{0, 1}, Law: dbn.CPT,
		CPT: map[string][]float64{}}

	fillAllRows(x1p, det, 2, 2)
	fillAllRows(x2p, det, 2, 2, 2)
	fillAllRows(o2, det, 2)
	fillAllRows(r2, det, 2)
	fillAllRows(o1, det, 2)
	fillAllRows(r1, det, 2)

	net, err := dbn.New(map[string]*dbn.Variable{
		"x1": x1, "x1'": x1p, "a1": a1,
		"x2": x2, "x2'": x2p, "a2": a2, "o2": o2, "r2": r2,
		"o1": o1, "r1": r1,
	})
	if err != nil {
		t.Fatalf("dbn.New: %v", err)
	}
	net.Seed(123)
	return net
}

// fillAllRows populates v's CPT with a deterministic row for every
// combination of parent cardinalities, via recursive enumeration.
func fillAllRows(v *dbn.Variable, rowFn func(int) []float64, cardinalities ...int) {
	assignment := make([]int, len(cardinalities))
	var recurse func(i int)
	recurse = func(i int) {
		if i == len(cardinalities) {
			key := make([]int, len(assignment))
			copy(key, assignment)
			setCPTRow(v, key, rowFn(v.Cardinality))
			return
		}
		for c := 0; c < cardinalities[i]; c++ {
			assignment[i] = c
			recurse(i + 1)
		}
	}
	recurse(0)
}

func setCPTRow(v *dbn.Variable, key []int, row []float64) {
	parts := make([]int, len(key))
	copy(parts, key)
	v.CPT[cptKeyFor(parts)] = row
}

// cptKeyFor mirrors dbn's unexported cptKey encoding (comma-joined
// indices), duplicated here since tests sit in a different package.
func cptKeyFor(values []int) string {
	s := ""
	for i, v := range values {
		if i > 0 {
			s += ","
		}
		s += itoa(v)
	}
	return s
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	digits := ""
	for v > 0 {
		digits = string(rune('0'+v%10)) + digits
		v /= 10
	}
	return digits
}

func TestGlobalSimulatorStep(t *testing.T) {
	Convey("Given a GlobalSimulator over agent 2 with agent 1 modeled explicitly", t, func() {
		net := buildTwoAgentNet(t)
		g := &Global{
			Net:               net,
			ControlledAgentID: "2",
			OtherAgents:       map[string]agentmodel.Model{"1": &agentmodel.Random{Cardinality: 2}},
			ActionCardinality: 2,
			Discount:          0.9,
			DiscountHorizon:   0.01,
		}

		state := g.SampleInitialState()

		Convey("Step returns a valid observation and reward without mutating a shared map across particles", func() {
			clone := state.Clone()
			obs, reward, done := g.Step(state, 0)
			So(obs, ShouldBeBetween, -1, 2)
			So(reward, ShouldBeBetween, -1, 2)
			So(done, ShouldBeFalse)

			cloneState := clone.(*GlobalState)
			So(cloneState.Assignment["x2"], ShouldEqual, 0)
		})
	})
}

func TestSequentialSimulatorAppendsHistory(t *testing.T) {
	Convey("Given a SequentialInfluenceSimulator for agent 2", t, func() {
		net := buildTwoAgentNet(t)
		model, err := net.ConstructLocalModel("2")
		So(err, ShouldBeNil)

		s := &Sequential{
			Net:               net,
			AgentID:           "2",
			LocalModel:        model,
			Predictor:         influence.NewRandom(net, model.SourceFactors),
			ActionCardinality: 2,
			Discount:          0.9,
			DiscountHorizon:   0.01,
		}

		state := s.SampleInitialState()

		Convey("each Step call appends one entry per local state plus the action", func() {
			s.Step(state, 1)
			st := state.(*SequentialState)
			So(len(st.History), ShouldEqual, len(model.LocalStates)+1)

			s.Step(state, 0)
			So(len(st.History), ShouldEqual, 2*(len(model.LocalStates)+1))
		})
	})
}

func TestRecurrentSimulatorOverwritesScratchBuffer(t *testing.T) {
	Convey("Given a RecurrentInfluenceSimulator for agent 2 backed by the Random predictor", t, func() {
		net := buildTwoAgentNet(t)
		model, err := net.ConstructLocalModel("2")
		So(err, ShouldBeNil)

		r := &Recurrent{
			Net:               net,
			AgentID:           "2",
			LocalModel:        model,
			Predictor:         influence.NewRandom(net, model.SourceFactors),
			ActionCardinality: 2,
			Discount:          0.9,
			DiscountHorizon:   0.01,
		}

		state := r.SampleInitialState().(*RecurrentState)
		So(state.IsInitial, ShouldBeTrue)

		Convey("IsInitial clears after the first Step and the scratch buffer keeps a fixed width", func() {
			r.Step(state, 0)
			So(state.IsInitial, ShouldBeFalse)
			width := len(state.LastInput)

			r.Step(state, 1)
			So(len(state.LastInput), ShouldEqual, width)
		})
	})
}
