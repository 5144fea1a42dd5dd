// Package state encodes parameter values for host-driven save and restore.
//
// The layout is param.Count little-endian IEEE-754 doubles in ascending
// parameter order. There is no header, length prefix or version.
package state

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"pipelined.dev/bridge/param"
)

// valueSize is the encoded size of one parameter value.
const valueSize = 8

// Size is the encoded size of a complete state.
const Size = param.Count * valueSize

// Encode writes the value of every parameter to w.
func Encode(w io.Writer, value func(param.ID) float64) error {
	var buf [Size]byte
	for id := param.ID(0); id < param.Count; id++ {
		binary.LittleEndian.PutUint64(buf[int(id)*valueSize:], math.Float64bits(value(id)))
	}
	_, err := w.Write(buf[:])
	return err
}

// Decode reads parameter values from r in order and passes each to apply.
// A stream that ends early is not an error: values read so far are
// applied and the rest are left alone. A trailing partial value is
// discarded. Decode returns the number of applied values.
func Decode(r io.Reader, apply func(param.ID, float64)) (int, error) {
	var buf [valueSize]byte
	for id := param.ID(0); id < param.Count; id++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return int(id), nil
			}
			return int(id), err
		}
		apply(id, math.Float64frombits(binary.LittleEndian.Uint64(buf[:])))
	}
	return param.Count, nil
}
