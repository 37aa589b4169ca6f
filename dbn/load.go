package dbn

import (
	"os"

	"gopkg.in/yaml.v3"

	"iaop/internal/floatutils"
)

// fileVariable is the on-disk shape of a single DBN variable entry, per
// spec.md §6. CPT rows are represented as an explicit (when, probs) list
// rather than a sequence-keyed mapping, since yaml.v3 unmarshals struct
// fields far more predictably than non-string map keys.
type fileVariable struct {
	Parents     []string    `yaml:"parents"`
	Values      []float64   `yaml:"values"`
	Mode        string      `yaml:"mode"`
	CPT         []cptRow    `yaml:"CPT"`
	ExpSum      *expSumSpec `yaml:"EXPSUM"`
	NoisyExpSum *noisySpec  `yaml:"NOISYEXPSUM"`
	InitialDist []float64   `yaml:"initial_dist"`
}

type cptRow struct {
	When  []int     `yaml:"when"`
	Probs []float64 `yaml:"probs"`
}

type expSumSpec struct {
	Base int `yaml:"base"`
}

type noisySpec struct {
	Base  int     `yaml:"base"`
	Noise float64 `yaml:"noise"`
}

// LoadFile reads and parses a DBN file at path and builds a DBN from it.
// A malformed CPT row, unknown parent reference, or cyclic stage graph is
// fatal, per spec.md §4.2's failure model.
func LoadFile(path string) (*DBN, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Op: "LoadFile " + path, Err: err}
	}
	return Load(raw)
}

// Load parses a DBN file already read into memory.
func Load(raw []byte) (*DBN, error) {
	var file map[string]fileVariable
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, &Error{Op: "Load", Err: err}
	}

	variables := make(map[string]*Variable, len(file))
	for name, fv := range file {
		v, err := buildVariable(name, fv)
		if err != nil {
			return nil, err
		}
		variables[name] = v
	}

	return New(variables)
}

func buildVariable(name string, fv fileVariable) (*Variable, error) {
	v := &Variable{
		Name:        name,
		Parents:     fv.Parents,
		Values:      fv.Values,
		InitialDist: fv.InitialDist,
	}

	if len(fv.Values) > 0 {
		v.Cardinality = len(fv.Values)
	}

	if len(v.Parents) == 0 {
		// A parentless variable samples only from its initial
		// distribution; cardinality must still be known from Values or
		// from the width of that distribution.
		if v.Cardinality == 0 && len(fv.InitialDist) > 0 {
			v.Cardinality = len(fv.InitialDist)
		}
		return v, nil
	}

	switch fv.Mode {
	case "", "CPT":
		v.Law = CPT
		v.CPT = make(map[string][]float64, len(fv.CPT))
		for _, row := range fv.CPT {
			if len(row.Probs) == 0 {
				return nil, &Error{Op: "buildVariable " + name, Err: errMalformedCPT}
			}
			v.CPT[cptKey(row.When)] = row.Probs
			if v.Cardinality == 0 {
				v.Cardinality = len(row.Probs)
			}
		}

	case "SUM":
		v.Law = Sum

	case "EXPSUM":
		v.Law = ExpSum
		if fv.ExpSum == nil {
			return nil, &Error{Op: "buildVariable " + name, Err: errMalformedCPT}
		}
		v.ExpSumBase = fv.ExpSum.Base

	case "NOISYEXPSUM":
		v.Law = NoisyExpSum
		if fv.NoisyExpSum == nil {
			return nil, &Error{Op: "buildVariable " + name, Err: errMalformedCPT}
		}
		v.ExpSumBase = fv.NoisyExpSum.Base
		v.NoiseEps = floatutils.Clip(fv.NoisyExpSum.Noise, 0, 1)

	default:
		v.Law = CPT
	}

	if v.Cardinality == 0 {
		v.Cardinality = len(fv.InitialDist)
	}

	return v, nil
}
