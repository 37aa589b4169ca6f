package dbn

import (
	"math/rand"
	"sort"
	"strconv"
	"time"
)

// FullOrder is the canonical sampling-order name spanning the whole
// network: inputs are all actions plus all stage-0 state variables,
// outputs are all stage-1 state variables plus all observation and
// reward variables.
const FullOrder = "full"

// DBN is a directed acyclic collection of DBNVariables spanning two time
// stages. It computes topological sampling orders, exposes one-step
// factored sampling, and derives local sub-models per agent.
type DBN struct {
	Variables      map[string]*Variable
	StateVariables []string // unprimed x... variables, sorted by compareNames

	samplingOrders map[string][]string
	localModels    map[string]*LocalModel

	rng *rand.Rand
}

// New builds a DBN from a set of already-parsed Variables. Parent
// references are validated: an unknown parent is a fatal load-time error.
func New(variables map[string]*Variable) (*DBN, error) {
	for name, v := range variables {
		for _, p := range v.Parents {
			if _, ok := variables[p]; !ok {
				return nil, &Error{Op: "New " + name, Err: errUnknownParent}
			}
		}
	}

	net := &DBN{
		Variables:      variables,
		samplingOrders: make(map[string][]string),
		localModels:    make(map[string]*LocalModel),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	for name, v := range variables {
		if v.IsStateVariable() {
			net.StateVariables = append(net.StateVariables, name)
		}
	}
	sort.Slice(net.StateVariables, func(i, j int) bool {
		return compareNames(net.StateVariables[i], net.StateVariables[j])
	})

	if err := net.ComputeFullSamplingOrder(); err != nil {
		return nil, err
	}

	return net, nil
}

// Seed reseeds the DBN-scoped random generator deterministically. Exposed
// so experiments can reproduce S1-S6 style scenarios; a DBN built by New
// otherwise seeds from wall-clock at construction.
func (d *DBN) Seed(seed int64) {
	d.rng = rand.New(rand.NewSource(seed))
}

// Rand returns the DBN-scoped random generator. It is consulted by both
// DBN sampling and the trained influence predictor's categorical draw;
// callers must not share it across goroutines.
func (d *DBN) Rand() *rand.Rand {
	return d.rng
}

// Step samples, in place, every variable named by the mode sampling order:
// for each variable it collects parent indices from assignment, samples
// the variable, and stores the result back. After sampling, every primed
// state variable present in the order has its value copied to the
// unprimed key, advancing time for the next call.
func (d *DBN) Step(assignment map[string]int, mode string) error {
	order, ok := d.samplingOrders[mode]
	if !ok {
		return &Error{Op: "Step " + mode, Err: errUnknownSamplingFn}
	}

	for _, name := range order {
		v := d.Variables[name]
		parentValues := make([]int, len(v.Parents))
		for i, p := range v.Parents {
			val, ok := assignment[p]
			if !ok {
				return &Error{Op: "Step " + name, Err: errMissingCPTRow}
			}
			parentValues[i] = val
		}
		sampled, err := v.Sample(parentValues, d.rng)
		if err != nil {
			return err
		}
		assignment[name] = sampled
	}

	for _, name := range order {
		if IsPrimed(name) && RoleOf(name) == RoleState {
			assignment[Unprime(name)] = assignment[name]
		}
	}
	return nil
}

// SampleInitialState samples every state variable from its initial
// distribution.
func (d *DBN) SampleInitialState() (map[string]int, error) {
	state := make(map[string]int, len(d.StateVariables))
	for _, name := range d.StateVariables {
		val, err := d.Variables[name].SampleInitial(d.rng)
		if err != nil {
			return nil, err
		}
		state[name] = val
	}
	return state, nil
}

// ValueOf looks up the real-valued interpretation of variable name's
// current value in assignment.
func (d *DBN) ValueOf(name string, assignment map[string]int) (float64, error) {
	v, ok := d.Variables[name]
	if !ok {
		return 0, &Error{Op: "ValueOf " + name, Err: errUnknownVariable}
	}
	idx, ok := assignment[name]
	if !ok {
		return 0, &Error{Op: "ValueOf " + name, Err: errMissingCPTRow}
	}
	return v.ValueOf(idx), nil
}

// ComputeFullSamplingOrder derives and caches the "full" sampling order:
// inputs are all actions and stage-0 state variables, outputs are all
// stage-1 state variables plus all observation and reward variables.
func (d *DBN) ComputeFullSamplingOrder() error {
	inputs := make(map[string]bool)
	outputs := make(map[string]bool)

	for name := range d.Variables {
		switch {
		case RoleOf(name) == RoleAction:
			inputs[name] = true
		case RoleOf(name) == RoleObservation || RoleOf(name) == RoleReward:
			outputs[name] = true
		case IsPrimed(name):
			outputs[name] = true
		default:
			inputs[name] = true
		}
	}

	return d.ComputeSamplingOrder(inputs, outputs, FullOrder)
}

// ComputeSamplingOrder produces and caches, under name, a topological
// order over the (inputs, outputs) pair using Kahn-style expansion:
// repeatedly select an unsampled output whose parents are all already
// sampled (or are inputs); if none, drag in an additional unsampled
// parent. Ties are broken by compareNames for determinism.
func (d *DBN) ComputeSamplingOrder(inputs, outputs map[string]bool, name string) error {
	toSample := make(map[string]bool, len(outputs))
	for k := range outputs {
		toSample[k] = true
	}
	sampled := make(map[string]bool, len(inputs))
	for k := range inputs {
		sampled[k] = true
	}

	var order []string

	for len(toSample) > 0 {
		candidates := make([]string, 0, len(toSample))
		for k := range toSample {
			candidates = append(candidates, k)
		}
		sort.Slice(candidates, func(i, j int) bool {
			return compareNames(candidates[i], candidates[j])
		})

		progressed := false
		dragged := false
		for _, varName := range candidates {
			v, ok := d.Variables[varName]
			if !ok {
				return &Error{Op: "ComputeSamplingOrder " + name, Err: errUnknownVariable}
			}
			allParentsSampled := true
			for _, p := range v.Parents {
				if !sampled[p] {
					allParentsSampled = false
					if !toSample[p] {
						toSample[p] = true
						dragged = true
					}
				}
			}
			if allParentsSampled {
				order = append(order, varName)
				sampled[varName] = true
				delete(toSample, varName)
				progressed = true
				break
			}
		}
		if !progressed && !dragged {
			return &Error{Op: "ComputeSamplingOrder " + name, Err: errCyclicGraph}
		}
	}

	d.samplingOrders[name] = order
	return nil
}

// SamplingOrder returns the cached order for name, if any.
func (d *DBN) SamplingOrder(name string) ([]string, bool) {
	order, ok := d.samplingOrders[name]
	return order, ok
}

// compareNames orders variable names for reproducible logging: by role
// precedence (x < a < o < r), then by shared prefix followed by numeric
// suffix, then lexicographically.
func compareNames(a, b string) bool {
	ua, ub := Unprime(a), Unprime(b)
	ra, rb := RoleOf(ua), RoleOf(ub)
	if ra != rb {
		return ra < rb
	}

	idx := 0
	for idx < len(ua) && idx < len(ub) && ua[idx] == ub[idx] {
		idx++
	}
	na, errA := strconv.Atoi(ua[idx:])
	nb, errB := strconv.Atoi(ub[idx:])
	if errA == nil && errB == nil {
		return na < nb
	}
	return ua < ub
}
