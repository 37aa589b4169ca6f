package influence

import (
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"

	"iaop/dbn"
)

// fileMatrix is the on-disk shape of a dense matrix or vector: row-major
// values plus its declared dimensions, matching the style dbn.LoadFile
// uses for CPT rows rather than a nested-sequence encoding.
type fileMatrix struct {
	Rows   int       `yaml:"rows"`
	Cols   int       `yaml:"cols"`
	Values []float64 `yaml:"values"`
}

func (m fileMatrix) dense() *mat.Dense {
	if m.Rows == 0 || m.Cols == 0 {
		return mat.NewDense(0, 0, nil)
	}
	return mat.NewDense(m.Rows, m.Cols, m.Values)
}

func (m fileMatrix) vec() *mat.VecDense {
	return mat.NewVecDense(len(m.Values), m.Values)
}

// fileSequential is the on-disk shape a Sequential predictor's trained
// weights are saved in: modelPath points at a file with this shape.
type fileSequential struct {
	Sources    []string   `yaml:"sources"`
	WindowSize int        `yaml:"windowSize"`
	W          fileMatrix `yaml:"w"`
	B          fileMatrix `yaml:"b"`
}

// LoadSequential reads a trained feed-forward predictor from path. The
// associated net resolves Sources' cardinalities the same way every
// other DBN-scoped component does.
func LoadSequential(path string, net *dbn.DBN) (*Sequential, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "LoadSequential " + path, Err: err}
	}
	var f fileSequential
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &Error{Op: "LoadSequential " + path, Err: err}
	}
	return &Sequential{
		Sources:    f.Sources,
		Net:        net,
		WindowSize: f.WindowSize,
		W:          f.W.dense(),
		B:          f.B.vec(),
	}, nil
}

// fileGRU is the on-disk shape a trained GRU's gate matrices are saved
// in, one fileMatrix per named weight or bias in the usual GRU
// decomposition.
type fileGRU struct {
	Sources    []string   `yaml:"sources"`
	HiddenSize int        `yaml:"hiddenSize"`
	InputSize  int        `yaml:"inputSize"`
	Wxr        fileMatrix `yaml:"wxr"`
	Whr        fileMatrix `yaml:"whr"`
	Wxz        fileMatrix `yaml:"wxz"`
	Whz        fileMatrix `yaml:"whz"`
	Wxn        fileMatrix `yaml:"wxn"`
	Whn        fileMatrix `yaml:"whn"`
	Why        fileMatrix `yaml:"why"`
	Bxr        fileMatrix `yaml:"bxr"`
	Bhr        fileMatrix `yaml:"bhr"`
	Bxz        fileMatrix `yaml:"bxz"`
	Bhz        fileMatrix `yaml:"bhz"`
	Bxn        fileMatrix `yaml:"bxn"`
	Bhn        fileMatrix `yaml:"bhn"`
	By         fileMatrix `yaml:"by"`
}

// LoadGRU reads a trained recurrent predictor's gate matrices from path,
// wiring them into the fast-path GRU implementation (fast is whether the
// caller's config requests the fast matrix path over an Opaque model;
// LoadGRU never sets Opaque itself).
func LoadGRU(path string, net *dbn.DBN, fast bool) (*GRU, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "LoadGRU " + path, Err: err}
	}
	var f fileGRU
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &Error{Op: "LoadGRU " + path, Err: err}
	}
	return &GRU{
		Sources:    f.Sources,
		Net:        net,
		HiddenSize: f.HiddenSize,
		InputSize:  f.InputSize,
		Wxr:        f.Wxr.dense(), Whr: f.Whr.dense(),
		Wxz: f.Wxz.dense(), Whz: f.Whz.dense(),
		Wxn: f.Wxn.dense(), Whn: f.Whn.dense(),
		Why: f.Why.dense(),
		bxr: f.Bxr.vec(), bhr: f.Bhr.vec(),
		bxz: f.Bxz.vec(), bhz: f.Bhz.vec(),
		bxn: f.Bxn.vec(), bhn: f.Bhn.vec(),
		by:  f.By.vec(),
		Fast: fast,
	}, nil
}

// fileRNN mirrors fileGRU for the simpler tanh-cell recurrent predictor.
type fileRNN struct {
	Sources    []string   `yaml:"sources"`
	HiddenSize int        `yaml:"hiddenSize"`
	InputSize  int        `yaml:"inputSize"`
	Wx         fileMatrix `yaml:"wx"`
	Wh         fileMatrix `yaml:"wh"`
	B          fileMatrix `yaml:"b"`
	Why        fileMatrix `yaml:"why"`
	By         fileMatrix `yaml:"by"`
}

// LoadRNN reads a trained RNN predictor's matrices from path.
func LoadRNN(path string, net *dbn.DBN) (*RNN, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "LoadRNN " + path, Err: err}
	}
	var f fileRNN
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &Error{Op: "LoadRNN " + path, Err: err}
	}
	return &RNN{
		Sources:    f.Sources,
		Net:        net,
		HiddenSize: f.HiddenSize,
		InputSize:  f.InputSize,
		Wx:  f.Wx.dense(), Wh: f.Wh.dense(), b: f.B.vec(),
		Why: f.Why.dense(), by: f.By.vec(),
	}, nil
}
