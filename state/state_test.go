package state_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/bridge/param"
	"pipelined.dev/bridge/state"
)

func encode(t *testing.T, s *param.Store) []byte {
	t.Helper()
	var buf bytes.Buffer
	err := state.Encode(&buf, func(id param.ID) float64 {
		v, _ := s.Get(id)
		return v
	})
	require.Nil(t, err)
	return buf.Bytes()
}

func apply(s *param.Store) func(param.ID, float64) {
	return func(id param.ID, v float64) {
		s.Set(id, v)
	}
}

func TestLayout(t *testing.T) {
	s := param.NewStore()
	b := encode(t, s)
	require.Len(t, b, state.Size)
	expected := []float64{0.5, 0.5, 0.3, 0.7}
	for i, v := range expected {
		bits := binary.LittleEndian.Uint64(b[i*8:])
		assert.Equal(t, v, math.Float64frombits(bits))
	}
}

func TestRoundTrip(t *testing.T) {
	var tests = [][param.Count]float64{
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0.1, 0.2, 0.3, 0.4},
		{math.Nextafter(0.5, 1), math.SmallestNonzeroFloat64, 1.5, -0.25},
		{math.Inf(1), math.Copysign(0, -1), 0.999999999999, 1e-300},
	}
	for _, values := range tests {
		src := param.NewStore()
		for i, v := range values {
			src.Set(param.ID(i), v)
		}
		dst := param.NewStore()
		n, err := state.Decode(bytes.NewReader(encode(t, src)), apply(dst))
		assert.Nil(t, err)
		assert.Equal(t, param.Count, n)
		got := dst.Snapshot()
		for i := range values {
			assert.Equal(t, math.Float64bits(values[i]), math.Float64bits(got[i]))
		}
	}
}

func TestTruncated(t *testing.T) {
	src := param.NewStore()
	for id := param.ID(0); id < param.Count; id++ {
		src.Set(id, 0.9)
	}
	full := encode(t, src)

	var tests = []struct {
		length  int
		applied int
	}{
		{0, 0},
		{7, 0},
		{8, 1},
		{16, 2},
		{20, 2},
		{31, 3},
		{32, 4},
	}
	for _, c := range tests {
		dst := param.NewStore()
		n, err := state.Decode(bytes.NewReader(full[:c.length]), apply(dst))
		assert.Nil(t, err)
		assert.Equal(t, c.applied, n)
		got := dst.Snapshot()
		defaults := [param.Count]float64{0.5, 0.5, 0.3, 0.7}
		for i := 0; i < param.Count; i++ {
			if i < c.applied {
				assert.Equal(t, 0.9, got[i])
			} else {
				assert.Equal(t, defaults[i], got[i])
			}
		}
	}
}

type failingReader struct {
	err error
}

func (r failingReader) Read([]byte) (int, error) {
	return 0, r.err
}

func TestDecodeError(t *testing.T) {
	errRead := errors.New("read failed")
	n, err := state.Decode(failingReader{err: errRead}, func(param.ID, float64) {
		t.Fatal("nothing must be applied")
	})
	assert.Equal(t, errRead, err)
	assert.Equal(t, 0, n)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("write failed")
}

func TestEncodeError(t *testing.T) {
	err := state.Encode(failingWriter{}, func(param.ID) float64 { return 0 })
	assert.NotNil(t, err)
}
