package srank

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"testing"

	"github.com/golang/snappy"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCompress(t *testing.T) {
	const name = "gettysburg.txt"

	// Compress
	f, err := os.CreateTemp("", "srank.TestCompress.Compress")
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer f.Close()
	defer os.Remove(f.Name())
	if err := CompressFile(f, name, nil); err != nil {
		t.Fatalf("%v", err)
	}

	// Decompress
	_, err = f.Seek(0, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	df, err := os.CreateTemp("", "srank.TestCompress.Decompress")
	if err != nil {
		t.Fatalf("%v", err)
	}
	defer df.Close()
	defer os.Remove(df.Name())
	if err := Decompress(df, f); err != nil {
		t.Fatalf("%v", err)
	}

	// Check if the decompressed result is the same as the original file
	_, err = df.Seek(0, 0)
	if err != nil {
		t.Fatalf("%v", err)
	}
	decom, err := io.ReadAll(df)
	if err != nil {
		t.Fatalf("%v", err)
	}
	gettys, err := os.ReadFile(name)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !bytes.Equal(gettys, decom) {
		t.Errorf("%v %v", gettys, decom)
	}

	info, err := f.Stat()
	if err != nil {
		t.Fatalf("%v", err)
	}
	t.Logf("%d -> %d bytes", len(gettys), info.Size())
	if info.Size() >= int64(len(gettys)) {
		t.Errorf("no compression %d -> %d", len(gettys), info.Size())
	}
}

func TestRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 4096)
	rng.Read(random)
	gettys, err := os.ReadFile("gettysburg.txt")
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		opts *Options
	}{
		{name: "empty", data: []byte{}},
		{name: "single", data: []byte("A")},
		{name: "run", data: bytes.Repeat([]byte("A"), 10)},
		{name: "random", data: random},
		{name: "alternating", data: bytes.Repeat([]byte("ab"), 500)},
		{name: "all symbols", data: allSymbols(8)},
		{name: "gettysburg", data: gettys},
		{name: "order 1", data: gettys, opts: &Options{ContextBits: 12, Order: 1, Capacity: 4, Rate: 4}},
		{name: "order 8", data: gettys, opts: &Options{ContextBits: 20, Order: 8, Capacity: 64, Rate: 7}},
		{name: "tiny table", data: gettys, opts: &Options{ContextBits: 10, Order: 6, Capacity: 1, Rate: 1}},
		{name: "slow rate", data: random, opts: &Options{ContextBits: 16, Order: 2, Capacity: 32, Rate: 10}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			enc, err := Encode(tc.data, tc.opts)
			require.NoError(t, err)
			dec, err := Decode(enc)
			require.NoError(t, err)
			require.Equal(t, len(tc.data), len(dec))
			require.True(t, bytes.Equal(tc.data, dec))
		})
	}
}

func TestEmpty(t *testing.T) {
	enc, err := Encode(nil, nil)
	require.NoError(t, err)
	require.Len(t, enc, headerLen+5)
	dec, err := Decode(enc)
	require.NoError(t, err)
	require.Empty(t, dec)
}

func TestDeterministic(t *testing.T) {
	gettys, err := os.ReadFile("gettysburg.txt")
	require.NoError(t, err)
	a, err := Encode(gettys, nil)
	require.NoError(t, err)
	b, err := Encode(gettys, nil)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestLongRun(t *testing.T) {
	data := bytes.Repeat([]byte("A"), 100000)
	enc, err := Encode(data, nil)
	require.NoError(t, err)
	require.Less(t, len(enc), 1000)

	dec, err := Decode(enc)
	require.NoError(t, err)
	require.True(t, bytes.Equal(data, dec))

	// Snappy copies at most 64 bytes per element, symbol ranking learns that the next byte is certain.
	baseline := snappy.Encode(nil, data)
	t.Logf("srank %d, snappy %d", len(enc), len(baseline))
	require.Less(t, len(enc), len(baseline))
}

func TestRandomExpansion(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	data := make([]byte, 4096)
	rng.Read(data)
	enc, err := Encode(data, nil)
	require.NoError(t, err)
	require.Less(t, len(enc), len(data)+len(data)/8+headerLen+5)
}

func TestEscapes(t *testing.T) {
	data := bytes.Repeat([]byte("ab"), 500)
	opts := &Options{ContextBits: 16, Order: 1, Capacity: 16, Rate: 5}
	var buf bytes.Buffer
	st, err := CompressStats(&buf, bytes.NewReader(data), int64(len(data)), opts)
	require.NoError(t, err)

	// Only the first occurrence in each of the contexts "", "a" and "b" is new.
	require.EqualValues(t, 3, st.Escapes)
	require.EqualValues(t, len(data), st.Symbols)
	require.EqualValues(t, len(data)-3, st.Hits[0])
	for r := 1; r < len(st.Hits); r++ {
		require.Zero(t, st.Hits[r])
	}
}

func TestStatsSum(t *testing.T) {
	gettys, err := os.ReadFile("gettysburg.txt")
	require.NoError(t, err)
	var buf bytes.Buffer
	st, err := CompressStats(&buf, bytes.NewReader(gettys), int64(len(gettys)), nil)
	require.NoError(t, err)
	require.Len(t, st.Hits, DefaultOptions().Capacity)

	sum := st.Escapes
	for _, h := range st.Hits {
		sum += h
	}
	require.EqualValues(t, len(gettys), sum)
	require.EqualValues(t, len(gettys), st.Symbols)
	require.Greater(t, st.Resets, int64(0))
}

func TestShortInput(t *testing.T) {
	var buf bytes.Buffer
	err := Compress(&buf, bytes.NewReader([]byte("abc")), 10, nil)
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF), "%+v", err)
}

func TestInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Order = 9
	_, err := Encode([]byte("abc"), opts)
	require.Error(t, err)
	require.False(t, IsCorrupt(err))
}

func TestTruncated(t *testing.T) {
	gettys, err := os.ReadFile("gettysburg.txt")
	require.NoError(t, err)
	enc, err := Encode(gettys, nil)
	require.NoError(t, err)

	for _, n := range []int{len(enc) - 1, len(enc) / 2, headerLen + 3, headerLen, 3, 0} {
		_, err := Decode(enc[:n])
		require.Error(t, err, "length %d", n)
		require.True(t, IsCorrupt(err), "length %d: %+v", n, err)
	}
}

func TestCorrupt(t *testing.T) {
	enc, err := Encode([]byte("Four score and seven years ago"), nil)
	require.NoError(t, err)

	t.Run("magic", func(t *testing.T) {
		b := append([]byte(nil), enc...)
		b[0] = 'x'
		_, err := Decode(b)
		require.True(t, errors.Is(err, ErrCorrupt), "%+v", err)
	})
	t.Run("options", func(t *testing.T) {
		b := append([]byte(nil), enc...)
		b[6] = 0
		_, err := Decode(b)
		require.True(t, errors.Is(err, ErrCorrupt), "%+v", err)
	})
	t.Run("arena size", func(t *testing.T) {
		// Every option is in range, but together they would need gigabytes of context arenas.
		b := append([]byte("sRk\x00"), 26, 3, 64, 5, 1, 0, 0, 0, 0, 0, 0, 0)
		b = append(b, 0, 0, 0, 0, 0)
		_, err := Decode(b)
		require.True(t, errors.Is(err, ErrCorrupt), "%+v", err)
		require.True(t, IsCorrupt(err))

		_, err = Encode([]byte("abc"), &Options{ContextBits: 26, Order: 3, Capacity: 64, Rate: 5})
		require.Error(t, err)
		require.False(t, IsCorrupt(err))
	})
	t.Run("prime byte", func(t *testing.T) {
		b := append([]byte(nil), enc...)
		b[headerLen] = 0xff
		_, err := Decode(b)
		require.True(t, IsCorrupt(err), "%+v", err)
	})
	t.Run("length", func(t *testing.T) {
		b := append([]byte(nil), enc...)
		b[8+5] = 1
		_, err := Decode(b)
		require.True(t, IsCorrupt(err), "%+v", err)
	})
}

// TestConcurrent checks that independent streams coded in parallel produce the same bytes as serial runs.
func TestConcurrent(t *testing.T) {
	gettys, err := os.ReadFile("gettysburg.txt")
	require.NoError(t, err)
	inputs := [][]byte{gettys, bytes.Repeat([]byte("ab"), 500), allSymbols(4), gettys[100:], gettys[:100]}

	want := make([][]byte, len(inputs))
	for i, in := range inputs {
		want[i], err = Encode(in, nil)
		require.NoError(t, err)
	}

	got := make([][]byte, len(inputs))
	var g errgroup.Group
	for i := range inputs {
		i := i
		g.Go(func() error {
			enc, err := Encode(inputs[i], nil)
			if err != nil {
				return errors.Wrap(err, "")
			}
			dec, err := Decode(enc)
			if err != nil {
				return errors.Wrap(err, "")
			}
			if !bytes.Equal(dec, inputs[i]) {
				return errors.Errorf("input %d does not round trip", i)
			}
			got[i] = enc
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, want, got)
}

func allSymbols(repeat int) []byte {
	b := make([]byte, 0, 256*repeat)
	for r := 0; r < repeat; r++ {
		for i := 0; i < 256; i++ {
			b = append(b, byte(i))
		}
	}
	return b
}
