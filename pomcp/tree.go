// Package pomcp implements the POMCP search tree and planner: UCB1 tree
// search over a particle-filter belief, backed by an arena-allocated
// tree of observation and action nodes addressed by typed handles rather
// than pointers.
package pomcp

import "iaop/simulator"

// ObservationHandle addresses an ObservationNode inside a Tree's arena.
type ObservationHandle int

// ActionHandle addresses an ActionNode inside a Tree's arena.
type ActionHandle int

// ObservationNode is a belief node: a visit count, a value estimate, one
// ActionNode child per action (created eagerly), a queue of actions not
// yet tried, and a particle set approximating the posterior belief
// conditioned on the history leading to this node.
type ObservationNode struct {
	N int
	Q float64

	Children []ActionHandle // indexed by action
	Untried  []int          // action indices not yet tried, in a stable order

	Particles []simulator.State
}

// ActionNode is a visit count, a value estimate, and a lazily populated
// mapping from observation to the ObservationNode it led to.
type ActionNode struct {
	N int
	Q float64

	Children map[int]ObservationHandle
}

// update applies the standard incremental running mean.
func (n *ObservationNode) update(r float64) {
	n.N++
	n.Q += (r - n.Q) / float64(n.N)
}

func (n *ActionNode) update(r float64) {
	n.N++
	n.Q += (r - n.Q) / float64(n.N)
}

// Tree is the arena backing a planner's search tree: two parallel slices
// indexed by the handles above. Pruning replaces the whole arena rather
// than mutating it in place, so the previous arena can simply be dropped
// by the garbage collector.
type Tree struct {
	obsNodes    []ObservationNode
	actionNodes []ActionNode
}

// NewTree returns an empty arena.
func NewTree() *Tree {
	return &Tree{}
}

// newObservationNode appends a fresh ObservationNode with numActions
// eagerly created ActionNode children and an untried queue covering every
// action in ascending order.
func (t *Tree) newObservationNode(numActions int) ObservationHandle {
	untried := make([]int, numActions)
	children := make([]ActionHandle, numActions)
	for a := 0; a < numActions; a++ {
		untried[a] = a
		children[a] = t.newActionNode()
	}
	t.obsNodes = append(t.obsNodes, ObservationNode{Children: children, Untried: untried})
	return ObservationHandle(len(t.obsNodes) - 1)
}

func (t *Tree) newActionNode() ActionHandle {
	t.actionNodes = append(t.actionNodes, ActionNode{Children: make(map[int]ObservationHandle)})
	return ActionHandle(len(t.actionNodes) - 1)
}

// extractSubtree copies the subtree reachable from root into a fresh
// Tree, remapping every handle along the way. The caller discards the
// old tree afterward; this is the "fresh arena" half of pruning.
func (old *Tree) extractSubtree(root ObservationHandle) (*Tree, ObservationHandle) {
	fresh := NewTree()
	obsMap := make(map[ObservationHandle]ObservationHandle)
	actionMap := make(map[ActionHandle]ActionHandle)

	var copyObs func(ObservationHandle) ObservationHandle
	var copyAction func(ActionHandle) ActionHandle

	copyObs = func(h ObservationHandle) ObservationHandle {
		if nh, ok := obsMap[h]; ok {
			return nh
		}
		src := old.obsNodes[h]
		fresh.obsNodes = append(fresh.obsNodes, ObservationNode{
			N:         src.N,
			Q:         src.Q,
			Untried:   append([]int(nil), src.Untried...),
			Particles: src.Particles,
		})
		nh := ObservationHandle(len(fresh.obsNodes) - 1)
		obsMap[h] = nh

		children := make([]ActionHandle, len(src.Children))
		for i, c := range src.Children {
			children[i] = copyAction(c)
		}
		fresh.obsNodes[nh].Children = children
		return nh
	}

	copyAction = func(h ActionHandle) ActionHandle {
		if nh, ok := actionMap[h]; ok {
			return nh
		}
		src := old.actionNodes[h]
		fresh.actionNodes = append(fresh.actionNodes, ActionNode{
			N:        src.N,
			Q:        src.Q,
			Children: make(map[int]ObservationHandle, len(src.Children)),
		})
		nh := ActionHandle(len(fresh.actionNodes) - 1)
		actionMap[h] = nh

		for obs, childObs := range src.Children {
			fresh.actionNodes[nh].Children[obs] = copyObs(childObs)
		}
		return nh
	}

	newRoot := copyObs(root)
	return fresh, newRoot
}
