// Package ac implements a binary arithmetic coder driven by externally supplied probabilities.
//
// The coder is a range coder in the style of LZMA: the interval is kept as a 64-bit low and a 32-bit range,
// and carries out of the low value are resolved with a one-byte cache plus a count of pending 0xff bytes,
// so no already written output ever needs to be revisited.
//
// Callers are responsible for causality: the probability passed to Encode and Decode for a bit must only depend on previously coded bits.
package ac

import (
	"github.com/pkg/errors"
)

// ProbBits is the precision of a Prob.
const ProbBits = 16

const (
	// ProbMin is the smallest probability accepted by the coder.
	ProbMin Prob = 32

	// ProbMax is the largest probability accepted by the coder.
	ProbMax Prob = 1<<ProbBits - 32

	// ProbHalf represents a probability of one half.
	ProbHalf Prob = 1 << (ProbBits - 1)
)

// top is the smallest range the coder keeps between two bits.
const top = 1 << 24

// A Prob is the probability that the next bit is 1, in units of 1/(1<<ProbBits).
// Valid values lie in [ProbMin, ProbMax], so that neither outcome is ever assigned a zero width interval.
type Prob uint32

// Valid reports whether p lies strictly inside (0, 1) with the margins required by the coder.
func (p Prob) Valid() bool {
	return p >= ProbMin && p <= ProbMax
}

// Clamp returns p limited to [ProbMin, ProbMax].
func Clamp(p int64) Prob {
	if p < int64(ProbMin) {
		return ProbMin
	}
	if p > int64(ProbMax) {
		return ProbMax
	}
	return Prob(p)
}

// ErrDecodeInsufficientBits is returned when there are insufficient bytes sent to a Decoder to reconstruct the original data.
var ErrDecodeInsufficientBits = errors.New("insufficient bits sent to decoder")

// ErrCorrupt is returned when the coded data could not have been produced by an Encoder.
var ErrCorrupt = errors.New("corrupt arithmetic coded data")

// bound splits nrange in proportion to p. The lower part codes a 1.
func bound(nrange uint32, p Prob) uint32 {
	if !p.Valid() {
		panic(errors.Errorf("probability %d out of range", p))
	}
	return (nrange >> ProbBits) * uint32(p)
}
