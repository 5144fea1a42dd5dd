package bridge

import (
	"time"

	"pipelined.dev/bridge/engine"
	"pipelined.dev/bridge/metric"
	"pipelined.dev/bridge/param"
)

// AutomationEvent is a host instruction to change a parameter within a block.
type AutomationEvent struct {
	ID     param.ID
	Offset int32 // sample offset within the block, not used for resolution.
	Value  float64
}

// ProcessData is a single block processing call.
type ProcessData struct {
	// Events are applied in order before the block is processed.
	Events []AutomationEvent
	// Inputs is the input bus. It may have no channels if no input is
	// connected.
	Inputs [][]float32
	// Outputs is the output bus. It must have two channels.
	Outputs    [][]float32
	NumSamples int
}

// Process renders one block. It never allocates and never waits for the
// control thread. While a control thread calls the engine, the block is
// produced by the fallback policy. The output is always valid after a
// nil return: either as written by the engine or produced by the
// fallback policy. Only a malformed call returns an error.
func (b *Bridge) Process(data *ProcessData) error {
	if data == nil {
		return ErrInvalidBuffer
	}
	n := data.NumSamples
	if n < 0 || len(data.Outputs) < 2 || data.Outputs[0] == nil || data.Outputs[1] == nil ||
		len(data.Outputs[0]) < n || len(data.Outputs[1]) < n {
		return ErrInvalidBuffer
	}
	started := time.Now()
	owned := b.guard.tryProcess()
	if owned {
		defer b.guard.release()
	}
	caps := engine.None
	if owned {
		caps = b.engines.Current()
		if b.guard.unsent.Swap(false) {
			pushParameters(caps, b.params)
		}
	} else if len(data.Events) > 0 {
		b.guard.unsent.Store(true)
	}
	b.automate(caps, data.Events)

	// session must be loaded before zeros, it's published after them.
	var sampleRate float64
	session := b.session.Load()
	zeros := *b.zeros.Load()
	limit := len(zeros)
	if session != nil {
		sampleRate, limit = session.SampleRate, int(session.BlockSize)
	}

	outL, outR := data.Outputs[0][:n], data.Outputs[1][:n]
	inL, inR, connected := input(data.Inputs, n)
	if n > limit {
		fallback(inL, inR, outL, outR, connected)
		b.meter.Fallback(metric.BlockTooLarge)
		return ErrBlockTooLarge
	}
	if !connected {
		inL, inR = zeros[:n], zeros[:n]
	}

	reason, ok := metric.EngineBusy, false
	if owned {
		reason, ok = b.render(caps, inL, inR, outL, outR, n)
	}
	if !ok {
		fallback(inL, inR, outL, outR, connected)
		b.meter.Fallback(reason)
	}
	b.meter.Block(time.Since(started), metric.BlockDuration(sampleRate, n))
	return nil
}

// render invokes the engine. ok is false if output must be produced by
// the fallback policy.
func (b *Bridge) render(caps engine.Capabilities, inL, inR, outL, outR []float32, n int) (reason metric.Reason, ok bool) {
	if !caps.Registered() {
		return metric.NoEngine, false
	}
	if p := b.Phase(); p != Initialized && p != Active {
		return metric.NotInitialized, false
	}
	invoked, err := caps.Process(inL, inR, outL, outR, int32(n))
	switch {
	case !invoked:
		return metric.NoEngine, false
	case err != nil:
		return metric.EngineFailed, false
	}
	return 0, true
}

// automate applies the last event of every parameter to the store and
// forwards it to the engine. Events for unknown parameters are skipped.
func (b *Bridge) automate(caps engine.Capabilities, events []AutomationEvent) {
	if len(events) == 0 {
		return
	}
	var (
		last    [param.Count]float64
		changed [param.Count]bool
	)
	for _, e := range events {
		if !e.ID.Valid() {
			continue
		}
		last[e.ID] = e.Value
		changed[e.ID] = true
	}
	for id := range last {
		if !changed[id] {
			continue
		}
		b.params.Set(param.ID(id), last[id])
		caps.SetParameter(int32(id), last[id])
	}
}

// input returns stereo input channels of the bus. connected is false if
// the bus has less than two channels or any of them is too short.
func input(bus [][]float32, n int) (inL, inR []float32, connected bool) {
	if len(bus) < 2 || bus[0] == nil || bus[1] == nil || len(bus[0]) < n || len(bus[1]) < n {
		return nil, nil, false
	}
	return bus[0][:n], bus[1][:n], true
}

// fallback copies input to output if it's connected, otherwise output is
// silenced.
func fallback(inL, inR, outL, outR []float32, connected bool) {
	if connected {
		copy(outL, inL)
		copy(outR, inR)
		return
	}
	clear(outL)
	clear(outR)
}
