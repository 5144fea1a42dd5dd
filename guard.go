package bridge

import (
	"runtime"
	"sync/atomic"
)

// owners of the engine.
const (
	free int32 = iota
	audio
	control
)

// guard keeps engine calls of the audio thread apart from engine calls
// of control threads. The audio thread never waits: a block that finds
// the engine taken is produced by the fallback policy. Control threads
// wait for the block in flight to finish.
type guard struct {
	owner atomic.Int32
	// unsent is set when automation reached the store but not the engine.
	unsent atomic.Bool
}

// tryProcess takes the engine for one block.
func (g *guard) tryProcess() bool {
	return g.owner.CompareAndSwap(free, audio)
}

// lock takes the engine for a control thread.
func (g *guard) lock() {
	for !g.owner.CompareAndSwap(free, control) {
		runtime.Gosched()
	}
}

// release gives the engine back.
func (g *guard) release() {
	g.owner.Store(free)
}

// exclusive calls fn while no block is processed by the engine. It must
// not be nested.
func (b *Bridge) exclusive(fn func()) {
	b.guard.lock()
	defer b.guard.release()
	fn()
}
