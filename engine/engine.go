// Package engine holds the entry points of an external processing engine.
//
// An engine exposes its capabilities as a Table of optional callbacks.
// Registry publishes an immutable snapshot of the table, so the audio
// thread reads the current engine with a single atomic load while the
// control thread registers or removes engines.
package engine

import (
	"errors"
	"sync/atomic"
)

// ErrPanic is reported when an engine callback panics during a call.
var ErrPanic = errors.New("engine panicked")

// Table is the set of entry points an engine provides. Every entry is
// optional; a nil entry means the engine lacks that capability.
type Table struct {
	Initialize     func(sampleRate float64, maxBlockSize int32)
	Process        func(inL, inR, outL, outR []float32, numSamples int32) error
	SetParameter   func(id int32, value float64)
	GetParameter   func(id int32) float64
	ParameterCount func() int32
	Reset          func()
	Dispose        func()
}

// Capabilities is the callable view of an engine. ok is false when no
// engine is registered or the engine lacks the requested entry point.
// Calling an absent capability is never a fault.
type Capabilities interface {
	Registered() bool
	Initialize(sampleRate float64, maxBlockSize int32) (ok bool)
	// Process returns ok=false if nothing was invoked. If the engine was
	// invoked and failed, ok is true and err describes the failure.
	Process(inL, inR, outL, outR []float32, numSamples int32) (ok bool, err error)
	SetParameter(id int32, value float64) (ok bool)
	GetParameter(id int32) (value float64, ok bool)
	ParameterCount() (count int32, ok bool)
	Reset() (ok bool)
	Dispose() (ok bool)
}

// None is the capability set used while no engine is registered.
var None Capabilities = none{}

type none struct{}

func (none) Registered() bool                                    { return false }
func (none) Initialize(float64, int32) bool                      { return false }
func (none) Process(_, _, _, _ []float32, _ int32) (bool, error) { return false, nil }
func (none) SetParameter(int32, float64) bool                    { return false }
func (none) GetParameter(int32) (float64, bool)                  { return 0, false }
func (none) ParameterCount() (int32, bool)                       { return 0, false }
func (none) Reset() bool                                         { return false }
func (none) Dispose() bool                                       { return false }

// registered wraps a private copy of the table passed to Register.
type registered struct {
	table Table
}

func (e *registered) Registered() bool {
	return true
}

func (e *registered) Initialize(sampleRate float64, maxBlockSize int32) (ok bool) {
	if e.table.Initialize == nil {
		return false
	}
	defer recoverCall(&ok)
	e.table.Initialize(sampleRate, maxBlockSize)
	return true
}

func (e *registered) Process(inL, inR, outL, outR []float32, numSamples int32) (ok bool, err error) {
	if e.table.Process == nil {
		return false, nil
	}
	defer func() {
		if r := recover(); r != nil {
			ok, err = true, ErrPanic
		}
	}()
	return true, e.table.Process(inL, inR, outL, outR, numSamples)
}

func (e *registered) SetParameter(id int32, value float64) (ok bool) {
	if e.table.SetParameter == nil {
		return false
	}
	defer recoverCall(&ok)
	e.table.SetParameter(id, value)
	return true
}

func (e *registered) GetParameter(id int32) (value float64, ok bool) {
	if e.table.GetParameter == nil {
		return 0, false
	}
	defer recoverCall(&ok)
	return e.table.GetParameter(id), true
}

func (e *registered) ParameterCount() (count int32, ok bool) {
	if e.table.ParameterCount == nil {
		return 0, false
	}
	defer recoverCall(&ok)
	return e.table.ParameterCount(), true
}

func (e *registered) Reset() (ok bool) {
	if e.table.Reset == nil {
		return false
	}
	defer recoverCall(&ok)
	e.table.Reset()
	return true
}

func (e *registered) Dispose() (ok bool) {
	if e.table.Dispose == nil {
		return false
	}
	defer recoverCall(&ok)
	e.table.Dispose()
	return true
}

// recoverCall turns a panic in a callback into a failed call.
func recoverCall(ok *bool) {
	if r := recover(); r != nil {
		*ok = false
	}
}

// snapshot boxes capabilities for atomic publication.
type snapshot struct {
	Capabilities
}

var unregistered = &snapshot{Capabilities: None}

// Registry publishes the capabilities of the current engine. The zero
// value has no engine registered. Writers must be serialized by the
// caller; readers never block.
type Registry struct {
	current atomic.Pointer[snapshot]
}

// Register publishes a copy of t, replacing any previous engine. It
// returns false only if t is nil.
func (r *Registry) Register(t *Table) bool {
	if t == nil {
		return false
	}
	r.current.Store(&snapshot{Capabilities: &registered{table: *t}})
	return true
}

// Unregister removes the current engine without calling its Dispose.
func (r *Registry) Unregister() {
	r.current.Store(unregistered)
}

// Dispose removes the current engine and then calls its Dispose entry.
// The registry is cleared even if the engine has no Dispose entry; the
// result reports whether Dispose was invoked.
func (r *Registry) Dispose() bool {
	s := r.current.Swap(unregistered)
	if s == nil {
		return false
	}
	return s.Dispose()
}

// Current returns the capabilities of the current engine.
func (r *Registry) Current() Capabilities {
	if s := r.current.Load(); s != nil {
		return s.Capabilities
	}
	return None
}

// Registered returns true if an engine is registered.
func (r *Registry) Registered() bool {
	return r.Current().Registered()
}

// Initialize invokes the engine's Initialize entry.
func (r *Registry) Initialize(sampleRate float64, maxBlockSize int32) bool {
	return r.Current().Initialize(sampleRate, maxBlockSize)
}

// Process invokes the engine's Process entry.
func (r *Registry) Process(inL, inR, outL, outR []float32, numSamples int32) (bool, error) {
	return r.Current().Process(inL, inR, outL, outR, numSamples)
}

// SetParameter invokes the engine's SetParameter entry.
func (r *Registry) SetParameter(id int32, value float64) bool {
	return r.Current().SetParameter(id, value)
}

// GetParameter invokes the engine's GetParameter entry.
func (r *Registry) GetParameter(id int32) (float64, bool) {
	return r.Current().GetParameter(id)
}

// ParameterCount invokes the engine's ParameterCount entry.
func (r *Registry) ParameterCount() (int32, bool) {
	return r.Current().ParameterCount()
}

// Reset invokes the engine's Reset entry.
func (r *Registry) Reset() bool {
	return r.Current().Reset()
}
