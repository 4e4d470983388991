package srank

import (
	"github.com/fumin/srank/statetab"
)

const (
	slotMultiplier  = 0x9e3779b97f4a7c15
	checkMultiplier = 0xc2b2ae3d27d4eb4f
)

// A slot indexes the arenas of a contextModel.
type slot uint32

// A contextModel maps the preceding Order bytes to a slot.
//
// The slots live in flat arenas: slot i owns lists[i*(R+1):(i+1)*(R+1)] and history[i*R:(i+1)*R].
// Distinct contexts that hash to the same slot are not chained.
// The slot is tagged with a check byte of its context, and is reset whenever a context with a different check byte claims it.
// Encoder and decoder reset identically, so collisions cost compression ratio but never correctness.
type contextModel struct {
	bits     uint
	capacity int
	mask     uint64
	key      uint64

	check   []uint8
	lists   []byte
	history []statetab.State

	resets int64
}

func newContextModel(opts *Options) *contextModel {
	n := 1 << uint(opts.ContextBits)
	m := &contextModel{
		bits:     uint(opts.ContextBits),
		capacity: opts.Capacity,
		mask:     ^uint64(0),
		check:    make([]uint8, n),
		lists:    make([]byte, n*(opts.Capacity+1)),
		history:  make([]statetab.State, n*opts.Capacity),
	}
	if opts.Order < 8 {
		m.mask = 1<<(8*uint(opts.Order)) - 1
	}
	return m
}

// advance folds sym into the context key.
func (m *contextModel) advance(sym byte) {
	m.key = (m.key<<8 | uint64(sym)) & m.mask
}

// current returns the slot of the current context, claiming it if it belongs to another context.
// A freshly allocated slot has check byte zero, an empty list and initial states, which is also what claiming produces.
func (m *contextModel) current() slot {
	s := slot((m.key * slotMultiplier) >> (64 - m.bits))
	c := uint8((m.key * checkMultiplier) >> 56)
	if m.check[s] != c {
		m.check[s] = c
		m.list(s).Reset()
		h := m.historyOf(s)
		for i := range h {
			h[i] = 0
		}
		m.resets++
	}
	return s
}

func (m *contextModel) list(s slot) List {
	i := int(s) * (m.capacity + 1)
	return List(m.lists[i : i+m.capacity+1])
}

func (m *contextModel) historyOf(s slot) []statetab.State {
	i := int(s) * m.capacity
	return m.history[i : i+m.capacity]
}
