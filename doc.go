/*
Package bridge hands blocks of audio from a plugin host to an external
processing engine.

# Concept

The bridge sits between a host's real-time audio thread and an engine
implemented elsewhere. The engine exposes a table of optional entry
points:

	Initialize - size internal buffers for a sample rate and block size;
	Process - render one stereo block;
	SetParameter, GetParameter, ParameterCount - parameter access;
	Reset - clear residual state before audio flows;
	Dispose - release the engine.

The host always gets a valid output block. When no engine is registered,
the engine lacks Process, the session is not initialized or the engine
fails, the bridge falls back to copying input to output, or to silence
if no input is connected.

# Instances

Every plugin instance owns its own bridge:

	b := bridge.New(bridge.WithLogger(log.GetLogger()))
	b.Register(table)

Registration publishes an immutable snapshot of the table, so the audio
thread never waits for the control thread.

# Lifecycle

A bridge moves through these states:

	Uninitialized - no sample rate or block size known;
	Initialized - engine initialized, not processing;
	Active - engine was reset and audio flows;
	Disposed - engine released, terminal.

Setup initializes the engine and re-initializes it whenever the sample
rate or block size changes. SetActive toggles Initialized and Active.
Dispose releases the engine.

# Processing

Process applies the block's automation, last event per parameter wins,
then invokes the engine:

	err := b.Process(&bridge.ProcessData{
	    Events:     events,
	    Inputs:     [][]float32{inL, inR},
	    Outputs:    [][]float32{outL, outR},
	    NumSamples: n,
	})

Process fails only for malformed calls. Engine failures are absorbed by
the fallback policy. The engine is never called by both threads at once:
control operations wait for the block in flight, and a block starting
while a control operation calls the engine is produced by the fallback
policy.

# State

GetState and SetState save and restore parameter values as a fixed
sequence of little-endian doubles, see package state.
*/
package bridge
