// Package mock provides a mock engine and allows to execute integration tests.
package mock

import (
	"fmt"
	"sync"

	"pipelined.dev/bridge/engine"
)

// Call names recorded by the engine.
const (
	Initialize     = "initialize"
	Process        = "process"
	SetParameter   = "setParameter"
	GetParameter   = "getParameter"
	ParameterCount = "parameterCount"
	Reset          = "reset"
	Dispose        = "dispose"
)

// Call is a single recorded invocation.
type Call struct {
	Name       string
	SampleRate float64
	BlockSize  int32
	NumSamples int32
	ID         int32
	Value      float64
}

func (c Call) String() string {
	switch c.Name {
	case Initialize:
		return fmt.Sprintf("%s(%v, %d)", c.Name, c.SampleRate, c.BlockSize)
	case Process:
		return fmt.Sprintf("%s(%d)", c.Name, c.NumSamples)
	case SetParameter:
		return fmt.Sprintf("%s(%d, %v)", c.Name, c.ID, c.Value)
	case GetParameter:
		return fmt.Sprintf("%s(%d)", c.Name, c.ID)
	}
	return c.Name + "()"
}

// Engine mocks an external processing engine. Calls are recorded
// in order. Process writes Gain times the input, so the default
// engine negates; set Gain to 1 for an identity engine.
type Engine struct {
	mu     sync.Mutex
	calls  []Call
	params map[int32]float64

	Gain        float32
	NumParams   int32
	ErrorOnCall error
	PanicOnCall bool
	// Omit lists entry points left out of the table.
	Omit []string
}

// Negate returns an engine which inverts its input.
func Negate() *Engine {
	return &Engine{Gain: -1, NumParams: 4}
}

// Table returns the capability table of the engine.
func (m *Engine) Table() *engine.Table {
	t := &engine.Table{
		Initialize:     m.initialize,
		Process:        m.process,
		SetParameter:   m.setParameter,
		GetParameter:   m.getParameter,
		ParameterCount: m.parameterCount,
		Reset:          m.reset,
		Dispose:        m.dispose,
	}
	for _, name := range m.Omit {
		switch name {
		case Initialize:
			t.Initialize = nil
		case Process:
			t.Process = nil
		case SetParameter:
			t.SetParameter = nil
		case GetParameter:
			t.GetParameter = nil
		case ParameterCount:
			t.ParameterCount = nil
		case Reset:
			t.Reset = nil
		case Dispose:
			t.Dispose = nil
		}
	}
	return t
}

// Calls returns recorded calls.
func (m *Engine) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Names returns names of recorded calls.
func (m *Engine) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.calls))
	for _, c := range m.calls {
		names = append(names, c.Name)
	}
	return names
}

// Count returns the number of calls with provided name.
func (m *Engine) Count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Param returns the value last received for id.
func (m *Engine) Param(id int32) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.params[id]
	return v, ok
}

// Clear forgets recorded calls.
func (m *Engine) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

func (m *Engine) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *Engine) initialize(sampleRate float64, maxBlockSize int32) {
	m.record(Call{Name: Initialize, SampleRate: sampleRate, BlockSize: maxBlockSize})
}

func (m *Engine) process(inL, inR, outL, outR []float32, numSamples int32) error {
	m.record(Call{Name: Process, NumSamples: numSamples})
	if m.PanicOnCall {
		panic("mock engine panic")
	}
	if m.ErrorOnCall != nil {
		return m.ErrorOnCall
	}
	for i := int32(0); i < numSamples; i++ {
		outL[i] = m.Gain * inL[i]
		outR[i] = m.Gain * inR[i]
	}
	return nil
}

func (m *Engine) setParameter(id int32, value float64) {
	m.record(Call{Name: SetParameter, ID: id, Value: value})
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.params == nil {
		m.params = make(map[int32]float64)
	}
	m.params[id] = value
}

func (m *Engine) getParameter(id int32) float64 {
	m.record(Call{Name: GetParameter, ID: id})
	v, _ := m.Param(id)
	return v
}

func (m *Engine) parameterCount() int32 {
	m.record(Call{Name: ParameterCount})
	return m.NumParams
}

func (m *Engine) reset() {
	m.record(Call{Name: Reset})
}

func (m *Engine) dispose() {
	m.record(Call{Name: Dispose})
}
