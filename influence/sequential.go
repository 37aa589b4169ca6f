package influence

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"iaop/dbn"
)

// Sequential is the feed-forward InfluencePredictor: it consumes the
// entire local-factor history at once (not step by step) and maps it
// through a single linear layer into logits over every source variable.
// History is windowed to the last WindowSize entries (zero-padded on the
// left when shorter), matching a fixed-width feed-forward input.
type Sequential struct {
	Sources []string
	Net     *dbn.DBN

	WindowSize int
	W          *mat.Dense // (sum of source cardinalities) x WindowSize: direct projection, no hidden layer
	B          *mat.VecDense

	Opaque OpaqueModel // slow path: history encoded as a flat []float64
}

// Sample implements Predictor: it windows history, projects it through
// W/B (or delegates to Opaque), and draws each source variable from the
// resulting per-variable softmax.
func (s *Sequential) Sample(history []int, out map[string]int, rng *rand.Rand) error {
	window := s.encodeWindow(history)

	var logits []float64
	if s.Opaque != nil {
		_, l, err := s.Opaque.Forward(nil, window)
		if err != nil {
			return &Error{Op: "Sequential.Sample", Err: err}
		}
		logits = l
	} else {
		if s.W == nil {
			return &Error{Op: "Sequential.Sample", Err: errNoModel}
		}
		x := mat.NewVecDense(len(window), window)
		rows, _ := s.W.Dims()
		y := mat.NewVecDense(rows, nil)
		y.MulVec(s.W, x)
		y.AddVec(y, s.B)
		logits = y.RawVector().Data
	}

	return sampleLogitsInto(s.Net, s.Sources, logits, out, rng)
}

// encodeWindow takes the trailing WindowSize entries of history
// (left-padded with zeros when history is shorter) and converts them to
// float64, the fixed-width input a feed-forward layer expects.
func (s *Sequential) encodeWindow(history []int) []float64 {
	window := make([]float64, s.WindowSize)
	start := len(history) - s.WindowSize
	padding := 0
	if start < 0 {
		padding = -start
		start = 0
	}
	for i, v := range history[start:] {
		window[padding+i] = float64(v)
	}
	return window
}
