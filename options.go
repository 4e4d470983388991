package srank

import (
	"github.com/pkg/errors"
)

// Options are the model parameters of a stream.
// They are chosen when compressing and are recorded in the stream header, so Decompress needs none.
type Options struct {
	// ContextBits is the log2 of the number of context slots.
	ContextBits int

	// Order is the number of preceding bytes forming a context.
	Order int

	// Capacity is the maximum length of a ranking list.
	Capacity int

	// Rate is the adaptation shift of the probability estimator.
	// Small rates react quickly, large rates average over more history.
	Rate int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() *Options {
	return &Options{
		ContextBits: 18,
		Order:       3,
		Capacity:    16,
		Rate:        5,
	}
}

func (o *Options) validate() error {
	if o.ContextBits < 10 || o.ContextBits > 26 {
		return errors.Errorf("context bits %d outside [10, 26]", o.ContextBits)
	}
	if o.Order < 1 || o.Order > 8 {
		return errors.Errorf("order %d outside [1, 8]", o.Order)
	}
	if o.Capacity < 1 || o.Capacity > MaxCapacity {
		return errors.Errorf("capacity %d outside [1, %d]", o.Capacity, MaxCapacity)
	}
	if o.Rate < 1 || o.Rate > 10 {
		return errors.Errorf("rate %d outside [1, 10]", o.Rate)
	}
	if n := o.memory(); n > maxMemory {
		return errors.Errorf("context bits %d and capacity %d need %d bytes, more than %d", o.ContextBits, o.Capacity, n, maxMemory)
	}
	return nil
}

// maxMemory bounds the context arenas of one stream.
const maxMemory = 1 << 30

// memory returns the size in bytes of the context arenas: per slot a check byte,
// a list of Capacity+1 bytes and Capacity two-byte states.
func (o *Options) memory() int64 {
	return int64(1) << uint(o.ContextBits) * int64(3*o.Capacity+2)
}
