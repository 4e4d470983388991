package ac

import (
	"io"

	"github.com/pkg/errors"
)

// An Encoder arithmetic codes bits into a byte stream.
type Encoder struct {
	bw       io.ByteWriter
	low      uint64
	nrange   uint32
	cache    byte
	cacheLen int64
}

// NewEncoder returns an Encoder writing to bw.
// Close must be called after the last bit, otherwise the output cannot be decoded.
func NewEncoder(bw io.ByteWriter) *Encoder {
	return &Encoder{
		bw:       bw,
		nrange:   1<<32 - 1,
		cacheLen: 1,
	}
}

// Encode codes bit, where p is the probability that bit is 1.
func (e *Encoder) Encode(bit int, p Prob) error {
	b := bound(e.nrange, p)
	if bit != 0 {
		e.nrange = b
	} else {
		e.low += uint64(b)
		e.nrange -= b
	}

	// A skewed p can shrink the range by up to 11 bits, so restoring it may take two bytes.
	for e.nrange < top {
		e.nrange <<= 8
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes enough bytes to identify the final interval.
// It does not close the underlying writer.
func (e *Encoder) Close() error {
	for i := 0; i < 5; i++ {
		if err := e.shiftLow(); err != nil {
			return err
		}
	}
	return nil
}

// shiftLow shifts the top byte out of low.
// A byte is only written once it is known that no later carry can change it:
// the most recent byte below 0xff is held in cache, followed by cacheLen-1 pending 0xff bytes.
func (e *Encoder) shiftLow() error {
	if uint32(e.low) < 0xff000000 || (e.low>>32) != 0 {
		tmp := e.cache
		for {
			if err := e.bw.WriteByte(tmp + byte(e.low>>32)); err != nil {
				return errors.Wrap(err, "")
			}
			tmp = 0xff
			e.cacheLen--
			if e.cacheLen <= 0 {
				if e.cacheLen < 0 {
					panic("negative cacheLen")
				}
				break
			}
		}
		e.cache = byte(uint32(e.low) >> 24)
	}
	e.cacheLen++
	e.low = uint64(uint32(e.low) << 8)
	return nil
}
