package srank

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// headerLen is the size of a stream header: magic, four option bytes and the original length.
const headerLen = 16

var magic = []byte("sRk\x00")

// ErrCorrupt is returned when decompressing data that is not a valid stream.
var ErrCorrupt = errors.New("corrupt stream")

type header struct {
	opts Options
	size uint64
}

func (h *header) marshalBinary() ([]byte, error) {
	if err := h.opts.validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	data := make([]byte, headerLen)
	copy(data, magic)
	data[4] = byte(h.opts.ContextBits)
	data[5] = byte(h.opts.Order)
	data[6] = byte(h.opts.Capacity)
	data[7] = byte(h.opts.Rate)
	binary.LittleEndian.PutUint64(data[8:], h.size)
	return data, nil
}

func (h *header) unmarshalBinary(data []byte) error {
	if len(data) != headerLen {
		return errors.Errorf("header length %d", len(data))
	}
	if !bytes.Equal(data[:len(magic)], magic) {
		return errors.Wrapf(ErrCorrupt, "magic %q", data[:len(magic)])
	}
	h.opts = Options{
		ContextBits: int(data[4]),
		Order:       int(data[5]),
		Capacity:    int(data[6]),
		Rate:        int(data[7]),
	}
	if err := h.opts.validate(); err != nil {
		return errors.Wrap(ErrCorrupt, err.Error())
	}
	h.size = binary.LittleEndian.Uint64(data[8:])
	return nil
}

func readHeader(r io.Reader) (*header, error) {
	data := make([]byte, headerLen)
	if _, err := io.ReadFull(r, data); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Wrap(ErrCorrupt, "short header")
		}
		return nil, errors.Wrap(err, "")
	}
	h := &header{}
	if err := h.unmarshalBinary(data); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return h, nil
}
