package srank

import (
	"fmt"
)

// MaxCapacity is the largest supported ranking list capacity.
const MaxCapacity = 64

// A List is the ranking list of one context: an ordered, duplicate-free sequence of symbols, most favored first.
//
// A List is a view into the context model's arena.
// Its first byte holds the current length and the remaining bytes hold the symbols, so the capacity is len(l)-1.
type List []byte

// Len returns the number of symbols in the list.
func (l List) Len() int {
	return int(l[0])
}

// Cap returns the maximum number of symbols the list can hold.
func (l List) Cap() int {
	return len(l) - 1
}

// RankOf returns the rank of sym.
// The boolean is false when sym is not in the list, in which case the symbol must be escaped.
func (l List) RankOf(sym byte) (int, bool) {
	syms := l[1 : 1+l[0]]
	for i, s := range syms {
		if s == sym {
			return i, true
		}
	}
	return 0, false
}

// SymbolAt returns the symbol at rank.
func (l List) SymbolAt(rank int) byte {
	if rank >= l.Len() {
		panic(fmt.Sprintf("rank %d out of list of length %d", rank, l.Len()))
	}
	return l[1+rank]
}

// Observe moves sym to the front of the list.
// A symbol not yet in the list is inserted at the front, evicting the last symbol if the list is full.
func (l List) Observe(sym byte) {
	n := l.Len()
	end, ok := l.RankOf(sym)
	if !ok {
		end = n
		if n < l.Cap() {
			l[0]++
		} else {
			end = n - 1
		}
	}
	copy(l[2:2+end], l[1:1+end])
	l[1] = sym
}

// Reset empties the list.
func (l List) Reset() {
	l[0] = 0
}

// Symbols returns the symbols of the list, most favored first.
// The returned slice aliases the list.
func (l List) Symbols() []byte {
	return l[1 : 1+l[0]]
}
