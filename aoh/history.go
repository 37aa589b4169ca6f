// Package aoh implements a single agent's action-observation history: a
// typed record holding a write cursor and a growable buffer of
// interleaved actions and observations, in place of a single tape with
// an in-band cursor at slot 0.
package aoh

// History is one agent's action-observation history since the episode
// started. buf interleaves actions and observations in the order they
// occurred: a1, o1, a2, o2, ...
type History struct {
	cursor int
	buf    []int
}

// New returns an empty History with room preallocated for capacity
// entries.
func New(capacity int) *History {
	return &History{buf: make([]int, 0, capacity)}
}

// AppendAction records the agent's chosen action.
func (h *History) AppendAction(action int) {
	h.buf = append(h.buf, action)
	h.cursor++
}

// AppendObservation records the observation that followed the most
// recently appended action.
func (h *History) AppendObservation(observation int) {
	h.buf = append(h.buf, observation)
	h.cursor++
}

// Len reports how many entries (actions and observations combined) the
// history holds.
func (h *History) Len() int { return h.cursor }

// At returns the entry at slot i. Callers that know the interleaving
// convention can use it to recover the i-th action or observation.
func (h *History) At(i int) int { return h.buf[i] }

// LastAction returns the most recently appended action and whether one
// exists. History interleaves a, o, a, o, ..., so the last action is at
// an even offset from the start when the buffer's length is odd, or the
// second-to-last slot when an observation has since been appended.
func (h *History) LastAction() (int, bool) {
	for i := len(h.buf) - 1; i >= 0; i-- {
		if i%2 == 0 {
			return h.buf[i], true
		}
	}
	return 0, false
}

// Slice returns the full interleaved buffer. Callers must not mutate the
// returned slice.
func (h *History) Slice() []int { return h.buf }

// Reset clears the history back to empty, retaining its backing array.
func (h *History) Reset() {
	h.buf = h.buf[:0]
	h.cursor = 0
}

// Clone returns an independent copy, so a simulator state holding
// per-agent histories can be branched across particles without aliasing.
func (h *History) Clone() *History {
	buf := make([]int, len(h.buf))
	copy(buf, h.buf)
	return &History{cursor: h.cursor, buf: buf}
}
