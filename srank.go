// Package srank provides a lossless compressor based on Symbol Ranking.
//
// For every context, formed by the few preceding bytes, the compressor keeps a short list of the symbols that recently followed it, most recent first.
// The rank of the next symbol in that list is coded as a sequence of binary decisions.
// Each decision is predicted from a bit-history state (see package statetab), turned into a probability by an adaptive estimator, and coded by a binary arithmetic coder (see package ac).
// Symbols absent from the list are escaped and coded literally by a context independent byte model.
//
// Below is an example of using the commands in this module to compress Lincoln's Gettysburg address:
//
//	go run ./compress gettysburg.txt gettys.srk
//	go run ./decompress gettys.srk gettys.dsrk
//	diff gettysburg.txt gettys.dsrk
//
// Reference:
// M. Mahoney, SR2 symbol ranking compressor, http://mattmahoney.net/dc/#sr2.
// P. Fenwick, Symbol Ranking Text Compression with Shannon Recodings, Journal of Universal Computer Science 3 (2), 1997.
package srank

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/fumin/srank/ac"
	"github.com/pkg/errors"
)

// maxSymbolsPerByte bounds the number of symbols a single byte of coded data can represent.
// Every symbol takes at least one decision, and no decision costs less than -log2(1 - ProbMin/(1<<ProbBits)) bits.
const maxSymbolsPerByte = 8 << ac.ProbBits / uint64(ac.ProbMin)

// Compress compresses size bytes read from src, and writes the stream to dst.
// A nil opts selects DefaultOptions.
func Compress(dst io.Writer, src io.Reader, size int64, opts *Options) error {
	_, err := CompressStats(dst, src, size, opts)
	return err
}

// CompressStats is like Compress, but also reports how the symbols were coded.
func CompressStats(dst io.Writer, src io.Reader, size int64, opts *Options) (Stats, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if size < 0 {
		return Stats{}, errors.Errorf("negative size %d", size)
	}
	h := header{opts: *opts, size: uint64(size)}
	data, err := h.marshalBinary()
	if err != nil {
		return Stats{}, errors.Wrap(err, "")
	}
	w := bufio.NewWriter(dst)
	if _, err := w.Write(data); err != nil {
		return Stats{}, errors.Wrap(err, "")
	}

	m := newModel(opts)
	enc := ac.NewEncoder(w)
	c := encodingCoder{enc}
	r := bufio.NewReader(src)
	for i := int64(0); i < size; i++ {
		b, err := r.ReadByte()
		if err == io.EOF {
			return Stats{}, errors.Wrapf(io.ErrUnexpectedEOF, "read %d of %d bytes", i, size)
		}
		if err != nil {
			return Stats{}, errors.Wrap(err, "")
		}
		if _, err := m.code(c, b); err != nil {
			return Stats{}, errors.Wrapf(err, "symbol %d", i)
		}
	}
	if err := enc.Close(); err != nil {
		return Stats{}, errors.Wrap(err, "")
	}
	if err := w.Flush(); err != nil {
		return Stats{}, errors.Wrap(err, "")
	}
	return m.statistics(), nil
}

// CompressFile compresses the file name and writes the stream to dst.
func CompressFile(dst io.Writer, name string, opts *Options) error {
	f, err := os.Open(name)
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := Compress(dst, f, info.Size(), opts); err != nil {
		return errors.Wrap(err, name)
	}
	return nil
}

// Decompress decompresses the stream read from src, and writes the original data to dst.
// Data may have been written to dst when an error is returned, callers must discard it.
func Decompress(dst io.Writer, src io.Reader) error {
	br := bufio.NewReader(src)
	h, err := readHeader(br)
	if err != nil {
		return errors.Wrap(err, "")
	}
	m := newModel(&h.opts)
	dec, err := ac.NewDecoder(br)
	if err != nil {
		return errors.Wrap(err, "")
	}
	c := decodingCoder{dec}
	w := bufio.NewWriter(dst)
	for i := uint64(0); i < h.size; i++ {
		if i/maxSymbolsPerByte > uint64(dec.Read()) {
			return errors.Wrapf(ErrCorrupt, "length %d too large for the coded data", h.size)
		}
		sym, err := m.code(c, 0)
		if err != nil {
			return errors.Wrapf(err, "symbol %d of %d", i, h.size)
		}
		if err := w.WriteByte(sym); err != nil {
			return errors.Wrap(err, "")
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "")
	}
	return nil
}

// Encode returns the compressed form of data.
func Encode(data []byte, opts *Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Compress(&buf, bytes.NewReader(data), int64(len(data)), opts); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return buf.Bytes(), nil
}

// Decode returns the original data of a compressed stream.
func Decode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := Decompress(&buf, bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return buf.Bytes(), nil
}

// IsCorrupt reports whether err was caused by data that is not a valid stream,
// as opposed to a failure of the underlying reader or writer.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt) || errors.Is(err, ac.ErrCorrupt) || errors.Is(err, ac.ErrDecodeInsufficientBits)
}
