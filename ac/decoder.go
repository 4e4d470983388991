package ac

import (
	"io"

	"github.com/pkg/errors"
)

// A Decoder decodes bits produced by an Encoder.
type Decoder struct {
	br     io.ByteReader
	nrange uint32
	code   uint32
	read   int64
}

// NewDecoder returns a Decoder reading from br.
// It primes the decoder with the first five bytes of input.
func NewDecoder(br io.ByteReader) (*Decoder, error) {
	d := &Decoder{br: br, nrange: 1<<32 - 1}
	first, err := d.readByte()
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	// The encoder always starts with an empty cache.
	if first != 0 {
		return nil, errors.Wrapf(ErrCorrupt, "first byte %#x", first)
	}
	for i := 0; i < 4; i++ {
		c, err := d.readByte()
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		d.code = d.code<<8 | uint32(c)
	}
	if d.code == d.nrange {
		return nil, errors.Wrapf(ErrCorrupt, "code %#x", d.code)
	}
	return d, nil
}

// Decode returns the next bit, given the probability p that it is 1.
// p must equal the probability the encoder used for the same bit.
func (d *Decoder) Decode(p Prob) (int, error) {
	b := bound(d.nrange, p)
	var bit int
	if d.code < b {
		d.nrange = b
		bit = 1
	} else {
		d.code -= b
		d.nrange -= b
	}

	for d.nrange < top {
		d.nrange <<= 8
		c, err := d.readByte()
		if err != nil {
			return 0, errors.Wrap(err, "")
		}
		d.code = d.code<<8 | uint32(c)
	}
	return bit, nil
}

// Read returns the number of bytes consumed from the underlying reader.
func (d *Decoder) Read() int64 {
	return d.read
}

func (d *Decoder) readByte() (byte, error) {
	c, err := d.br.ReadByte()
	if err == io.EOF {
		return 0, ErrDecodeInsufficientBits
	}
	if err != nil {
		return 0, err
	}
	d.read++
	return c, nil
}
