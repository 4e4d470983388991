package srank

import (
	"github.com/fumin/srank/ac"
	"github.com/fumin/srank/statetab"
)

// A probMap turns bit-history states into probabilities, and adapts them to the bits actually coded.
// Each decision node class (a row) has its own estimate per state.
type probMap struct {
	rate   uint
	states int
	p      []ac.Prob
}

func newProbMap(rows int, rate int) *probMap {
	pm := &probMap{
		rate:   uint(rate),
		states: statetab.Len(),
	}
	prior := make([]ac.Prob, pm.states)
	for i := range prior {
		s := statetab.State(i)
		_, n1 := s.Counts()
		prior[i] = ac.Clamp(int64(2*n1+1) << ac.ProbBits / int64(2*(s.Count()+1)))
	}
	pm.p = make([]ac.Prob, rows*pm.states)
	for r := 0; r < rows; r++ {
		copy(pm.p[r*pm.states:], prior)
	}
	return pm
}

// predict returns the probability that the bit at a node of row in state s is 1.
func (pm *probMap) predict(row int, s statetab.State) ac.Prob {
	return pm.p[row*pm.states+int(s)]
}

// update moves the estimate for (row, s) towards bit.
func (pm *probMap) update(row int, s statetab.State, bit int) {
	i := row*pm.states + int(s)
	p := int64(pm.p[i])
	var target int64
	if bit != 0 {
		target = 1 << ac.ProbBits
	}
	pm.p[i] = ac.Clamp(p + (target-p)>>pm.rate)
}
