// Package dbn implements the factored two-stage dynamic Bayesian network
// (2-DBN) that models a single environment's one-step transition,
// observation, and reward structure, and the local sub-model used for
// influence-based approximation.
package dbn

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Law identifies the sampling law a Variable uses to turn parent values
// into a value for itself.
type Law int

const (
	// CPT draws from a discrete probability vector keyed by the joint
	// parent assignment.
	CPT Law = iota
	// Sum sets value = sum(parents).
	Sum
	// ExpSum sets value = sum_i base^i * parent_i.
	ExpSum
	// NoisyExpSum is ExpSum with each parent bit independently flipped
	// with probability NoiseEps before summing.
	NoisyExpSum
)

// Role is the kind of variable encoded by the first character of its name.
type Role int

const (
	RoleState Role = iota
	RoleAction
	RoleObservation
	RoleReward
)

// RoleOf returns the Role encoded by name's leading character.
func RoleOf(name string) Role {
	if name == "" {
		panic("dbn: empty variable name")
	}
	switch name[0] {
	case 'x':
		return RoleState
	case 'a':
		return RoleAction
	case 'o':
		return RoleObservation
	case 'r':
		return RoleReward
	default:
		panic(fmt.Sprintf("dbn: variable %q has an unrecognized role prefix", name))
	}
}

// IsPrimed reports whether name carries the trailing prime that denotes
// the next-stage copy of a state variable.
func IsPrimed(name string) bool {
	return strings.HasSuffix(name, "'")
}

// Unprime strips a trailing prime from name, if present.
func Unprime(name string) string {
	return strings.TrimSuffix(name, "'")
}

// Prime appends a trailing prime to name.
func Prime(name string) string {
	return name + "'"
}

// Variable is a single factored random variable with a sampling law
// conditioned on its parents.
type Variable struct {
	Name        string
	Parents     []string
	Cardinality int
	Values      []float64 // optional index -> real-valued interpretation
	Law         Law

	// CPT maps a joint parent-index assignment (encoded by cptKey) to a
	// discrete probability vector of length Cardinality.
	CPT map[string][]float64

	ExpSumBase int     // base for ExpSum / NoisyExpSum
	NoiseEps   float64 // flip probability for NoisyExpSum

	InitialDist []float64 // optional bootstrap distribution
}

// IsStateVariable reports whether v is an unprimed state variable, i.e. a
// variable the DBN tracks across episode steps.
func (v *Variable) IsStateVariable() bool {
	return RoleOf(v.Name) == RoleState && !IsPrimed(v.Name)
}

// cptKey canonicalizes a parent-index assignment into a CPT lookup key.
func cptKey(parentValues []int) string {
	parts := make([]string, len(parentValues))
	for i, p := range parentValues {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ",")
}

// Sample dispatches on the variable's law and returns an index in
// [0, Cardinality). A CPT variable whose parentValues do not match any
// configured row is a fatal model/data mismatch.
func (v *Variable) Sample(parentValues []int, rng *rand.Rand) (int, error) {
	switch v.Law {
	case CPT:
		row, ok := v.CPT[cptKey(parentValues)]
		if !ok {
			return 0, &Error{Op: "Variable.Sample " + v.Name, Err: errMissingCPTRow}
		}
		return sampleCategorical(row, rng), nil

	case Sum:
		sum := 0
		for _, p := range parentValues {
			sum += p
		}
		return sum, nil

	case ExpSum:
		return expSum(parentValues, v.ExpSumBase), nil

	case NoisyExpSum:
		noisy := make([]int, len(parentValues))
		for i, p := range parentValues {
			bit := p
			if rng.Float64() < v.NoiseEps {
				bit = 1 - bit
			}
			noisy[i] = bit
		}
		return expSum(noisy, v.ExpSumBase), nil

	default:
		panic(fmt.Sprintf("dbn: variable %q has an unrecognized law", v.Name))
	}
}

func expSum(values []int, base int) int {
	sum := 0
	power := 1
	for _, p := range values {
		sum += power * p
		power *= base
	}
	return sum
}

// SampleInitial draws a bootstrap value for v. It fails if v has no
// configured initial distribution.
func (v *Variable) SampleInitial(rng *rand.Rand) (int, error) {
	if v.InitialDist == nil {
		return 0, &Error{Op: "Variable.SampleInitial " + v.Name, Err: errNoInitialDist}
	}
	return sampleCategorical(v.InitialDist, rng), nil
}

// SampleUniform draws an index uniformly from [0, Cardinality), used by
// the random influence predictor and by rollout action selection.
func (v *Variable) SampleUniform(rng *rand.Rand) int {
	return rng.Intn(v.Cardinality)
}

// ValueOf returns the real-valued interpretation of index: the identity
// when no explicit value map exists, else the configured lookup.
func (v *Variable) ValueOf(index int) float64 {
	if v.Values == nil {
		return float64(index)
	}
	return v.Values[index]
}

// SampleCategorical draws an index from a discrete probability vector.
// Exported so influence predictors outside this package can sample from
// a distribution using the same generator and convention as the DBN
// itself.
func SampleCategorical(weights []float64, rng *rand.Rand) int {
	return sampleCategorical(weights, rng)
}

// sampleCategorical draws an index from a discrete probability vector.
// Weights need not be normalized; a running cumulative sum against a
// single Float64 draw scaled to the total mirrors
// std::discrete_distribution's behaviour.
func sampleCategorical(weights []float64, rng *rand.Rand) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	target := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if target < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
