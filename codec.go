package srank

import (
	"github.com/fumin/srank/ac"
	"github.com/fumin/srank/statetab"
)

// literalNodes is the number of internal nodes of the 8 level literal tree.
const literalNodes = 256

// Stats counts how symbols were coded.
type Stats struct {
	// Symbols is the number of symbols coded.
	Symbols int64

	// Hits[r] is the number of symbols found at rank r of their context's list.
	Hits []int64

	// Escapes is the number of symbols coded through the literal model.
	Escapes int64

	// Resets is the number of context slots claimed by a new context.
	Resets int64
}

// A bitCoder codes one binary decision given the probability that it is 1.
// An encoding bitCoder codes bit and returns it, a decoding bitCoder ignores bit and returns the decoded one.
type bitCoder interface {
	code(bit int, p ac.Prob) (int, error)
}

type encodingCoder struct {
	*ac.Encoder
}

func (c encodingCoder) code(bit int, p ac.Prob) (int, error) {
	return bit, c.Encode(bit, p)
}

type decodingCoder struct {
	*ac.Decoder
}

func (c decodingCoder) code(bit int, p ac.Prob) (int, error) {
	return c.Decode(p)
}

// A model is the complete adaptive state of one stream.
// Encoder and decoder each own one, and drive it through the same calls so their states never diverge.
type model struct {
	capacity int
	ctx      *contextModel
	probs    *probMap
	literal  [literalNodes]statetab.State
	stats    Stats
}

func newModel(opts *Options) *model {
	return &model{
		capacity: opts.Capacity,
		ctx:      newContextModel(opts),
		probs:    newProbMap(opts.Capacity+literalNodes, opts.Rate),
		stats:    Stats{Hits: make([]int64, opts.Capacity)},
	}
}

// bit codes one decision at a node whose history is *h, and whose estimates live in row.
func (m *model) bit(c bitCoder, h *statetab.State, row int, bit int) (int, error) {
	s := *h
	bit, err := c.code(bit, m.probs.predict(row, s))
	if err != nil {
		return 0, err
	}
	m.probs.update(row, s, bit)
	*h = s.Next(bit)
	return bit, nil
}

// code codes one symbol and returns it.
// When decoding, sym is ignored.
//
// The rank is coded in unary: the decision at node i is whether the symbol has rank i.
// A list of length n thus offers n decisions, and n refusals form the escape, after which the symbol is coded literally.
func (m *model) code(c bitCoder, sym byte) (byte, error) {
	s := m.ctx.current()
	list := m.ctx.list(s)
	history := m.ctx.historyOf(s)

	rank, found := list.RankOf(sym)
	hit := false
	for i := 0; i < list.Len(); i++ {
		want := 0
		if found && rank == i {
			want = 1
		}
		bit, err := m.bit(c, &history[i], i, want)
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			sym = list.SymbolAt(i)
			m.stats.Hits[i]++
			hit = true
			break
		}
	}
	if !hit {
		var err error
		if sym, err = m.codeLiteral(c, sym); err != nil {
			return 0, err
		}
		m.stats.Escapes++
	}

	list.Observe(sym)
	m.ctx.advance(sym)
	m.stats.Symbols++
	return sym, nil
}

// codeLiteral codes sym most significant bit first through a binary tree of context independent nodes.
func (m *model) codeLiteral(c bitCoder, sym byte) (byte, error) {
	node := 1
	for i := 7; i >= 0; i-- {
		bit, err := m.bit(c, &m.literal[node], m.capacity+node, int(sym>>uint(i))&1)
		if err != nil {
			return 0, err
		}
		node = node<<1 | bit
	}
	return byte(node), nil
}

func (m *model) statistics() Stats {
	st := m.stats
	st.Hits = append([]int64(nil), m.stats.Hits...)
	st.Resets = m.ctx.resets
	return st
}
