package main

import (
	"math"
	"sort"
	"sync/atomic"

	"pipelined.dev/bridge/engine"
	"pipelined.dev/bridge/param"
)

// Built-in engine names.
const (
	engineNone   = "none"
	engineInvert = "invert"
	engineGain   = "gain"
)

// engines returns capability tables of built-in engines. A nil table
// means no engine is registered and the bridge passes audio through.
var engines = map[string]func() *engine.Table{
	engineNone:   func() *engine.Table { return nil },
	engineInvert: func() *engine.Table { return newLevel(true).table() },
	engineGain:   func() *engine.Table { return newLevel(false).table() },
}

func engineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// level scales input by the dry level parameter. Inverting level
// negates input instead.
type level struct {
	invert bool
	params [param.Count]atomic.Uint64
}

func newLevel(invert bool) *level {
	l := &level{invert: invert}
	for _, info := range param.All() {
		l.params[info.ID].Store(math.Float64bits(info.Default))
	}
	return l
}

func (l *level) table() *engine.Table {
	return &engine.Table{
		Process:        l.process,
		SetParameter:   l.setParameter,
		GetParameter:   l.getParameter,
		ParameterCount: func() int32 { return param.Count },
	}
}

func (l *level) process(inL, inR, outL, outR []float32, numSamples int32) error {
	gain := float32(-1)
	if !l.invert {
		gain = float32(l.getParameter(int32(param.DryLevel)))
	}
	for i := int32(0); i < numSamples; i++ {
		outL[i] = gain * inL[i]
		outR[i] = gain * inR[i]
	}
	return nil
}

func (l *level) setParameter(id int32, value float64) {
	if param.ID(id).Valid() {
		l.params[id].Store(math.Float64bits(value))
	}
}

func (l *level) getParameter(id int32) float64 {
	if !param.ID(id).Valid() {
		return 0
	}
	return math.Float64frombits(l.params[id].Load())
}
