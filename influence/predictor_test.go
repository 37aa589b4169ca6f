package influence

import (
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"

	"iaop/dbn"
)

// newZeroGRU builds a GRU whose every matrix and bias is zero, so every
// gate evaluates to a known constant and the test can pin down exact
// hidden-state and output behaviour.
func newZeroGRU(sources []string, net *dbn.DBN, hidden, input int) *GRU {
	outWidth := 0
	for _, s := range sources {
		outWidth += net.Variables[s].Cardinality
	}
	zeroDense := func(r, c int) *mat.Dense { return mat.NewDense(r, c, make([]float64, r*c)) }
	zeroVec := func(n int) *mat.VecDense { return mat.NewVecDense(n, make([]float64, n)) }
	return &GRU{
		Sources:    sources,
		Net:        net,
		HiddenSize: hidden,
		InputSize:  input,
		Fast:       true,
		Wxr:        zeroDense(hidden, input), Whr: zeroDense(hidden, hidden),
		Wxz: zeroDense(hidden, input), Whz: zeroDense(hidden, hidden),
		Wxn: zeroDense(hidden, input), Whn: zeroDense(hidden, hidden),
		Why: zeroDense(outWidth, hidden),
		bxr: zeroVec(hidden), bhr: zeroVec(hidden),
		bxz: zeroVec(hidden), bhz: zeroVec(hidden),
		bxn: zeroVec(hidden), bhn: zeroVec(hidden),
		by: zeroVec(outWidth),
	}
}

func twoSourceNet(t *testing.T) *dbn.DBN {
	t.Helper()
	u1 := &dbn.Variable{Name: "x1", Cardinality: 2, InitialDist: []float64{1, 0}}
	u2 := &dbn.Variable{Name: "x2", Cardinality: 3, InitialDist: []float64{0, 1, 0}}
	net, err := dbn.New(map[string]*dbn.Variable{"x1": u1, "x2": u2})
	if err != nil {
		t.Fatalf("dbn.New: %v", err)
	}
	return net
}

func TestRandomPredictor(t *testing.T) {
	Convey("Given a Random InfluencePredictor over two source variables", t, func() {
		net := twoSourceNet(t)
		net.Seed(7)
		r := NewRandom(net, []string{"x1", "x2"})

		Convey("every draw lands inside each variable's cardinality", func() {
			out := make(map[string]int)
			for i := 0; i < 200; i++ {
				err := r.Sample(nil, out, net.Rand())
				So(err, ShouldBeNil)
				So(out["x1"], ShouldBeBetween, -1, 2)
				So(out["x2"], ShouldBeBetween, -1, 3)
			}
		})

		Convey("it also satisfies the recurrent contract with an empty hidden state", func() {
			So(r.InitialState(), ShouldBeEmpty)
			out := make(map[string]int)
			err := r.OneStepSample(nil, nil, true, out, net.Rand())
			So(err, ShouldBeNil)
		})
	})
}

func TestGRUInitialCallUsesInitialDistribution(t *testing.T) {
	Convey("Given a GRU predictor with zero-initialized fast-path matrices", t, func() {
		net := twoSourceNet(t)
		net.Seed(3)

		hidden, input := 4, 2
		gru := newZeroGRU([]string{"x1", "x2"}, net, hidden, input)

		Convey("is_initial draws from each variable's declared initial distribution", func() {
			h := gru.InitialState()
			out := make(map[string]int)
			err := gru.OneStepSample(h, make([]float64, input), true, out, net.Rand())
			So(err, ShouldBeNil)
			So(out["x1"], ShouldEqual, 0)
			So(out["x2"], ShouldEqual, 1)
		})

		Convey("two runs from is_initial=true with the same zero input produce the same hidden sequence", func() {
			h1 := gru.InitialState()
			h2 := gru.InitialState()
			out := make(map[string]int)

			err := gru.OneStepSample(h1, make([]float64, input), true, out, net.Rand())
			So(err, ShouldBeNil)
			err = gru.OneStepSample(h1, make([]float64, input), false, out, net.Rand())
			So(err, ShouldBeNil)

			err = gru.OneStepSample(h2, make([]float64, input), true, out, rand.New(rand.NewSource(11)))
			So(err, ShouldBeNil)
			err = gru.OneStepSample(h2, make([]float64, input), false, out, rand.New(rand.NewSource(11)))
			So(err, ShouldBeNil)

			So(h1, ShouldResemble, h2)
		})
	})
}

func TestSequentialWindowEncodingPadsShortHistory(t *testing.T) {
	Convey("Given a Sequential predictor with a window of 4", t, func() {
		net := twoSourceNet(t)
		s := &Sequential{Sources: []string{"x1"}, Net: net, WindowSize: 4}

		Convey("a history shorter than the window is left-padded with zeros", func() {
			window := s.encodeWindow([]int{5, 6})
			So(window, ShouldResemble, []float64{0, 0, 5, 6})
		})

		Convey("a history longer than the window is truncated to the trailing entries", func() {
			window := s.encodeWindow([]int{1, 2, 3, 4, 5, 6})
			So(window, ShouldResemble, []float64{3, 4, 5, 6})
		})
	})
}
