package dbn

import "sort"

// LocalOrderPrefix namespaces the cached "local" sampling order per agent,
// since each controlled agent derives its own local sub-model.
const LocalOrderPrefix = "local:"

// LocalModel is the local sub-model derived for a single controlled
// agent: the factors its own observation and reward depend on, the
// influence boundary around them, and the (placeholder) d-separation set.
type LocalModel struct {
	AgentID string

	// LocalFactors (L) is the parents (stripped of prime) of o_i and r_i,
	// plus a_i.
	LocalFactors []string
	// LocalStates (S_loc) is LocalFactors restricted to x... variables.
	LocalStates []string
	// SourceFactors (U) is variables outside L that are parents of some
	// stage-1 copy of a local factor.
	SourceFactors []string
	// DestinationFactors (D) is stage-1 copies of local factors that have
	// any parent in U.
	DestinationFactors []string
	// DSeparationSet is kept, per spec, as a conservative placeholder
	// equal to LocalFactors.
	DSeparationSet []string
}

// ConstructLocalModel derives and caches the LocalModel for agentID,
// additionally computing and caching the "local" sampling order for that
// agent (inputs L∪U, outputs {x': x∈S_loc} ∪ {o_i, r_i}).
func (d *DBN) ConstructLocalModel(agentID string) (*LocalModel, error) {
	if cached, ok := d.localModels[agentID]; ok {
		return cached, nil
	}

	obsName, rewardName := "o"+agentID, "r"+agentID
	obsVar, ok := d.Variables[obsName]
	if !ok {
		return nil, &Error{Op: "ConstructLocalModel " + agentID, Err: errUnknownVariable}
	}
	rewardVar, ok := d.Variables[rewardName]
	if !ok {
		return nil, &Error{Op: "ConstructLocalModel " + agentID, Err: errUnknownVariable}
	}

	localSet := make(map[string]bool)
	for _, p := range obsVar.Parents {
		localSet[Unprime(p)] = true
	}
	for _, p := range rewardVar.Parents {
		localSet[Unprime(p)] = true
	}
	localSet["a"+agentID] = true

	localFactors := sortedKeys(localSet)

	var localStates []string
	for _, f := range localFactors {
		if RoleOf(f) == RoleState {
			localStates = append(localStates, f)
		}
	}

	sourceSet := make(map[string]bool)
	destinationSet := make(map[string]bool)
	for _, lf := range localFactors {
		if RoleOf(lf) != RoleState {
			continue // only state local factors have a stage-1 copy
		}
		primed, ok := d.Variables[Prime(lf)]
		if !ok {
			return nil, &Error{Op: "ConstructLocalModel " + agentID, Err: errUnknownVariable}
		}
		linkedFromOutside := false
		for _, parent := range primed.Parents {
			base := Unprime(parent)
			if !localSet[base] {
				sourceSet[base] = true
				linkedFromOutside = true
			}
		}
		if linkedFromOutside {
			destinationSet[Prime(lf)] = true
		}
	}

	sourceFactors := sortedKeys(sourceSet)
	destinationFactors := sortedKeys(destinationSet)

	dsep := make([]string, len(localFactors))
	copy(dsep, localFactors)

	model := &LocalModel{
		AgentID:            agentID,
		LocalFactors:       localFactors,
		LocalStates:        localStates,
		SourceFactors:      sourceFactors,
		DestinationFactors: destinationFactors,
		DSeparationSet:     dsep,
	}

	inputs := make(map[string]bool, len(localFactors)+len(sourceFactors))
	for _, f := range localFactors {
		inputs[f] = true
	}
	for _, f := range sourceFactors {
		inputs[f] = true
	}

	outputs := make(map[string]bool, len(localStates)+2)
	for _, s := range localStates {
		outputs[Prime(s)] = true
	}
	outputs[obsName] = true
	outputs[rewardName] = true

	if err := d.ComputeSamplingOrder(inputs, outputs, LocalOrderPrefix+agentID); err != nil {
		return nil, err
	}

	d.localModels[agentID] = model
	return model, nil
}

// LocalOrderName returns the cached sampling-order name for agentID's
// local model, for use with Step.
func LocalOrderName(agentID string) string {
	return LocalOrderPrefix + agentID
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return compareNames(keys[i], keys[j]) })
	return keys
}
