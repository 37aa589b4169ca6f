package influence

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"iaop/dbn"
)

// OpaqueModel is the slow-path escape hatch for a trained recurrent
// model that the fast-path matrix decomposition cannot or should not
// reproduce (e.g. a model loaded from a format this package does not
// decompose). Forward consumes the current hidden state and input and
// returns the updated hidden state plus the pre-softmax logits over the
// concatenation of all source-variable distributions.
type OpaqueModel interface {
	Forward(hidden, input []float64) (newHidden, logits []float64, err error)
}

// GRU is the trained recurrent InfluencePredictor, decomposed into the
// standard gated-recurrent-unit matrices and executed step-wise (the
// fast path), or delegating to an OpaqueModel (the slow path) when Fast
// is false.
//
// Matrix naming follows the usual GRU equations:
//
//	reset:      r = sigmoid(Wxr x + Whr h + bxr + bhr)
//	update:     z = sigmoid(Wxz x + Whz h + bxz + bhz)
//	candidate:  n = tanh(Wxn x + r*(Whn h + bhn) + bxn)
//	hidden:     h' = (1-z)*n + z*h
//	output:     y = Why h' + by
type GRU struct {
	Sources []string // source variables u in U, in fixed output order
	Net     *dbn.DBN

	HiddenSize int
	InputSize  int

	Wxr, Whr *mat.Dense
	Wxz, Whz *mat.Dense
	Wxn, Whn *mat.Dense
	Why      *mat.Dense

	bxr, bhr *mat.VecDense
	bxz, bhz *mat.VecDense
	bxn, bhn *mat.VecDense
	by       *mat.VecDense

	Fast   bool
	Opaque OpaqueModel
}

// InitialState returns a zero hidden-state vector of configured width.
func (g *GRU) InitialState() []float64 {
	return make([]float64, g.HiddenSize)
}

// OneStepSample populates out for every source variable. On the first
// call of an episode (isInitial), the forward pass is skipped entirely
// and hidden is left untouched; each variable is drawn from its
// DBN-declared initial distribution instead. Every later call advances
// hidden in place from lastInput and draws from the resulting logits.
func (g *GRU) OneStepSample(hidden, lastInput []float64, isInitial bool, out map[string]int, rng *rand.Rand) error {
	if len(hidden) != g.HiddenSize || len(lastInput) != g.InputSize {
		return &Error{Op: "GRU.OneStepSample", Err: errDimensionMismatch}
	}

	if isInitial {
		for _, name := range g.Sources {
			v, ok := g.Net.Variables[name]
			if !ok {
				return &Error{Op: "GRU.OneStepSample " + name, Err: errUnknownVariable}
			}
			idx, err := v.SampleInitial(rng)
			if err != nil {
				return &Error{Op: "GRU.OneStepSample " + name, Err: err}
			}
			out[name] = idx
		}
		return nil
	}

	var newHidden, logits []float64
	if g.Fast {
		newHidden, logits = g.stepFast(hidden, lastInput)
	} else {
		if g.Opaque == nil {
			return &Error{Op: "GRU.OneStepSample", Err: errNoModel}
		}
		var err error
		newHidden, logits, err = g.Opaque.Forward(hidden, lastInput)
		if err != nil {
			return &Error{Op: "GRU.OneStepSample", Err: err}
		}
	}
	copy(hidden, newHidden)

	return sampleLogitsInto(g.Net, g.Sources, logits, out, rng)
}

// stepFast runs the decomposed GRU equations for a single step and
// returns the updated hidden state plus output logits.
func (g *GRU) stepFast(hidden, input []float64) ([]float64, []float64) {
	x := mat.NewVecDense(len(input), input)
	h := mat.NewVecDense(len(hidden), hidden)

	r := gateVec(g.Wxr, x, g.Whr, h, g.bxr, g.bhr, sigmoid)
	z := gateVec(g.Wxz, x, g.Whz, h, g.bxz, g.bhz, sigmoid)

	whnH := mat.NewVecDense(g.HiddenSize, nil)
	whnH.MulVec(g.Whn, h)
	whnH.AddVec(whnH, g.bhn)
	whnH.MulElemVec(whnH, r)

	wxnX := mat.NewVecDense(g.HiddenSize, nil)
	wxnX.MulVec(g.Wxn, x)
	wxnX.AddVec(wxnX, g.bxn)

	n := mat.NewVecDense(g.HiddenSize, nil)
	n.AddVec(wxnX, whnH)
	applyElementwise(n, math.Tanh)

	newHidden := mat.NewVecDense(g.HiddenSize, nil)
	for i := 0; i < g.HiddenSize; i++ {
		zi := z.AtVec(i)
		newHidden.SetVec(i, (1-zi)*n.AtVec(i)+zi*h.AtVec(i))
	}

	y := mat.NewVecDense(g.by.Len(), nil)
	y.MulVec(g.Why, newHidden)
	y.AddVec(y, g.by)

	return newHidden.RawVector().Data, y.RawVector().Data
}

func gateVec(Wx *mat.Dense, x *mat.VecDense, Wh *mat.Dense, h *mat.VecDense, bx, bh *mat.VecDense, act func(float64) float64) *mat.VecDense {
	rows, _ := Wx.Dims()
	out := mat.NewVecDense(rows, nil)
	out.MulVec(Wx, x)

	wh := mat.NewVecDense(rows, nil)
	wh.MulVec(Wh, h)

	out.AddVec(out, wh)
	out.AddVec(out, bx)
	out.AddVec(out, bh)
	applyElementwise(out, act)
	return out
}

func applyElementwise(v *mat.VecDense, f func(float64) float64) {
	for i := 0; i < v.Len(); i++ {
		v.SetVec(i, f(v.AtVec(i)))
	}
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, l := range logits[1:] {
		if l > max {
			max = l
		}
	}
	exps := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		e := math.Exp(l - max)
		exps[i] = e
		sum += e
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}
