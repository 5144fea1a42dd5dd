package bridge

import (
	"fmt"
	"io"

	"pipelined.dev/bridge/param"
	statefile "pipelined.dev/bridge/state"
)

// GetState writes parameter values to w.
func (b *Bridge) GetState(w io.Writer) error {
	if w == nil {
		return ErrInvalidStream
	}
	if err := statefile.Encode(w, b.value); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

// SetState reads parameter values from r, stores them and forwards them
// to the engine. A short stream restores as many parameters as it holds
// and leaves the rest unchanged.
func (b *Bridge) SetState(r io.Reader) error {
	if r == nil {
		return ErrInvalidStream
	}
	// the stream is read before the engine is taken.
	n, err := statefile.Decode(r, func(id param.ID, v float64) {
		b.params.Set(id, v)
	})
	b.exclusive(func() {
		for id := param.ID(0); id < param.ID(n); id++ {
			b.engines.SetParameter(int32(id), b.value(id))
		}
	})
	if err != nil {
		return fmt.Errorf("load state after %d parameters: %w", n, err)
	}
	if n < param.Count {
		b.log.WithField("parameters", n).Debug("partial state restored")
	}
	return nil
}

func (b *Bridge) value(id param.ID) float64 {
	v, _ := b.params.Get(id)
	return v
}
