package influence

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"iaop/dbn"
)

// RNN is the simple tanh-cell recurrent InfluencePredictor: a cheaper
// alternative to GRU for domains whose influence is short-range enough
// not to need gating.
//
//	hidden' = tanh(Wx x + Wh h + b)
//	output  = Why hidden' + by
type RNN struct {
	Sources []string
	Net     *dbn.DBN

	HiddenSize int
	InputSize  int

	Wx, Wh *mat.Dense
	b      *mat.VecDense

	Why *mat.Dense
	by  *mat.VecDense
}

func (r *RNN) InitialState() []float64 {
	return make([]float64, r.HiddenSize)
}

// OneStepSample populates out for every source variable. On the first
// call of an episode (isInitial), the forward pass is skipped entirely
// and hidden is left untouched; each variable is drawn from its
// DBN-declared initial distribution instead. Every later call advances
// hidden in place from lastInput and draws from the resulting logits.
func (r *RNN) OneStepSample(hidden, lastInput []float64, isInitial bool, out map[string]int, rng *rand.Rand) error {
	if len(hidden) != r.HiddenSize || len(lastInput) != r.InputSize {
		return &Error{Op: "RNN.OneStepSample", Err: errDimensionMismatch}
	}

	if isInitial {
		for _, name := range r.Sources {
			v, ok := r.Net.Variables[name]
			if !ok {
				return &Error{Op: "RNN.OneStepSample " + name, Err: errUnknownVariable}
			}
			idx, err := v.SampleInitial(rng)
			if err != nil {
				return &Error{Op: "RNN.OneStepSample " + name, Err: err}
			}
			out[name] = idx
		}
		return nil
	}

	x := mat.NewVecDense(len(lastInput), lastInput)
	h := mat.NewVecDense(len(hidden), hidden)

	pre := mat.NewVecDense(r.HiddenSize, nil)
	pre.MulVec(r.Wx, x)

	wh := mat.NewVecDense(r.HiddenSize, nil)
	wh.MulVec(r.Wh, h)

	pre.AddVec(pre, wh)
	pre.AddVec(pre, r.b)
	applyElementwise(pre, math.Tanh)
	copy(hidden, pre.RawVector().Data)

	y := mat.NewVecDense(r.by.Len(), nil)
	y.MulVec(r.Why, pre)
	y.AddVec(y, r.by)

	return sampleLogitsInto(r.Net, r.Sources, y.RawVector().Data, out, rng)
}

// sampleLogitsInto is shared with GRU's per-variable softmax-and-draw
// split, factored out so RNN need not duplicate it.
func sampleLogitsInto(net *dbn.DBN, sources []string, logits []float64, out map[string]int, rng *rand.Rand) error {
	offset := 0
	for _, name := range sources {
		v, ok := net.Variables[name]
		if !ok {
			return &Error{Op: "sampleLogitsInto " + name, Err: errUnknownVariable}
		}
		width := v.Cardinality
		if offset+width > len(logits) {
			return &Error{Op: "sampleLogitsInto " + name, Err: errDimensionMismatch}
		}
		probs := softmax(logits[offset : offset+width])
		out[name] = dbn.SampleCategorical(probs, rng)
		offset += width
	}
	return nil
}
