//go:build portaudio

// Package portaudio drives a bridge from the default duplex audio device.
package portaudio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"pipelined.dev/bridge"
)

const numChannels = 2

// Host feeds blocks of the default input device through a bridge and
// plays the result on the default output device.
type Host struct {
	bridge     *bridge.Bridge
	sampleRate float64
	blockSize  int

	mu      sync.Mutex
	stream  *portaudio.Stream
	running bool

	data   bridge.ProcessData
	errors atomic.Uint64
}

// New returns a host for b. Stream is opened by Start.
func New(b *bridge.Bridge, sampleRate float64, blockSize int) *Host {
	return &Host{
		bridge:     b,
		sampleRate: sampleRate,
		blockSize:  blockSize,
	}
}

// Start sets the bridge up for the device and starts streaming.
func (h *Host) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return nil
	}
	if err := h.bridge.Setup(h.sampleRate, int32(h.blockSize)); err != nil {
		return err
	}
	if err := h.bridge.SetActive(true); err != nil {
		return err
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("error initializing portaudio: %w", err)
	}
	stream, err := portaudio.OpenDefaultStream(numChannels, numChannels, h.sampleRate, h.blockSize, h.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("error opening stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("error starting stream: %w", err)
	}
	h.stream = stream
	h.running = true
	return nil
}

// process is called by portaudio on the audio thread.
func (h *Host) process(in, out [][]float32) {
	h.data.Inputs = in
	h.data.Outputs = out
	h.data.NumSamples = 0
	if len(out) > 0 {
		h.data.NumSamples = len(out[0])
	}
	if err := h.bridge.Process(&h.data); err != nil {
		h.errors.Add(1)
	}
}

// Errors returns the number of blocks the bridge rejected.
func (h *Host) Errors() uint64 {
	return h.errors.Load()
}

// Stop stops streaming, deactivates the bridge and releases the device.
func (h *Host) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return nil
	}
	h.running = false
	if err := h.stream.Stop(); err != nil {
		return fmt.Errorf("error stopping stream: %w", err)
	}
	if err := h.stream.Close(); err != nil {
		return fmt.Errorf("error closing stream: %w", err)
	}
	if err := h.bridge.SetActive(false); err != nil {
		return err
	}
	return portaudio.Terminate()
}
