// Package statetab provides the bit-history state machine shared by every context of a symbol ranking model.
//
// A State approximates the recent history of 0/1 outcomes observed at one decision node using a pair of bounded counts (n0, n1).
// Observing a bit increments its own count and discounts the opposite one, so the state favors recent evidence.
// When a count would grow past Limit, the transition is routed through the state's decay state, which halves both counts.
// The resulting table is small enough to stay in cache and every update is a single lookup.
//
// The table is generated once, when the package is initialized, and is never modified afterwards.
// It is therefore safe for concurrent use by any number of independent streams.
package statetab

import (
	"fmt"
)

// Limit is the largest value a single count may reach.
const Limit = 48

// A State is an index into the state table.
// The zero State is the initial state, representing a node with no history.
type State uint16

// An entry is one immutable row of the state table.
type entry struct {
	n0, n1 uint8    // bounded outcome counts
	next   [2]State // successor after observing a 0 or a 1
	decay  State    // same history with both counts halved
}

var table = generate()

// Len returns the number of states in the table.
func Len() int {
	return len(table)
}

// Valid reports whether s indexes a row of the table.
func (s State) Valid() bool {
	return int(s) < len(table)
}

// Next returns the state reached from s after observing bit.
func (s State) Next(bit int) State {
	return table[s].next[bit&1]
}

// Decay returns the state with the same recency ordering as s but with both counts halved.
func (s State) Decay() State {
	return table[s].decay
}

// Counts returns the number of zeros and ones remembered by s.
func (s State) Counts() (n0, n1 int) {
	e := &table[s]
	return int(e.n0), int(e.n1)
}

// Count returns the total evidence remembered by s.
func (s State) Count() int {
	e := &table[s]
	return int(e.n0) + int(e.n1)
}

func (s State) String() string {
	n0, n1 := s.Counts()
	return fmt.Sprintf("state %d (%d,%d)", uint16(s), n0, n1)
}

type counts struct {
	n0, n1 int
}

// discount reduces the count of the outcome that was not observed.
// Small counts are kept as they are, so that a single surprise does not erase a short history.
func discount(n int) int {
	if n > 2 {
		return n/2 + 1
	}
	return n
}

func halve(n int) int {
	return (n + 1) / 2
}

func (c counts) decay() counts {
	return counts{n0: halve(c.n0), n1: halve(c.n1)}
}

func (c counts) observe(bit int) counts {
	n := [2]int{c.n0, c.n1}
	if n[bit]+1 > Limit {
		d := c.decay()
		n = [2]int{d.n0, d.n1}
	}
	n[bit]++
	n[1-bit] = discount(n[1-bit])
	return counts{n0: n[0], n1: n[1]}
}

// generate enumerates the reachable count pairs breadth first, starting from (0, 0).
// Since (0, 0) is discovered first, it becomes the zero State.
func generate() []entry {
	index := map[counts]State{{}: 0}
	order := []counts{{}}
	add := func(c counts) State {
		if s, ok := index[c]; ok {
			return s
		}
		s := State(len(order))
		index[c] = s
		order = append(order, c)
		return s
	}

	rows := make([]entry, 0, 512)
	for i := 0; i < len(order); i++ {
		c := order[i]
		e := entry{n0: uint8(c.n0), n1: uint8(c.n1)}
		e.next[0] = add(c.observe(0))
		e.next[1] = add(c.observe(1))
		e.decay = add(c.decay())
		rows = append(rows, e)
	}
	if len(rows) > 1<<16 {
		panic(fmt.Sprintf("state table too large: %d", len(rows)))
	}
	return rows
}
