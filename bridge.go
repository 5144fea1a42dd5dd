package bridge

import (
	"sync"
	"sync/atomic"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"pipelined.dev/bridge/engine"
	"pipelined.dev/bridge/log"
	"pipelined.dev/bridge/metric"
	"pipelined.dev/bridge/param"
)

// Defaults used until the host sets up processing.
const (
	InitialSampleRate = 48000.0
	InitialBlockSize  = 1024
	// ZeroBufferSize is the default size of the silent input substitute.
	ZeroBufferSize = 4096
)

// Session holds the processing setup the engine was initialized with.
type Session struct {
	SampleRate float64
	BlockSize  int32
}

// Bridge connects one plugin instance to an external engine.
type Bridge struct {
	uid    string
	name   string
	log    logrus.FieldLogger
	metric *metric.Metric
	meter  *metric.Meter

	engines engine.Registry
	params  *param.Store
	guard   guard

	mu      sync.Mutex // serializes control operations.
	state   state      // guarded by mu.
	phase   atomic.Int32
	session atomic.Pointer[Session]
	zeros   atomic.Pointer[[]float32]
}

// Option provides a way to set functional parameters to bridge.
type Option func(b *Bridge)

// New creates a new bridge and applies provided options.
// Returned bridge is Uninitialized and has no engine registered.
func New(options ...Option) *Bridge {
	b := &Bridge{
		uid:    newUID(),
		log:    log.Silent(),
		params: param.NewStore(),
		state:  uninitialized,
	}
	b.phase.Store(int32(Uninitialized))
	zeros := make([]float32, ZeroBufferSize)
	b.zeros.Store(&zeros)
	for _, option := range options {
		option(b)
	}
	b.log = b.log.WithFields(logrus.Fields{
		"bridge": b.uid,
		"name":   b.name,
	})
	b.meter = b.metric.Meter(b.uid)
	return b
}

// WithLogger sets logger to Bridge. If this option is not provided, silent logger is used.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(b *Bridge) {
		b.log = logger
	}
}

// WithName sets name to Bridge.
func WithName(n string) Option {
	return func(b *Bridge) {
		b.name = n
	}
}

// WithMetric adds metrics for this bridge.
func WithMetric(m *metric.Metric) Option {
	return func(b *Bridge) {
		b.metric = m
	}
}

// WithMaxBlockSize sets the size of the silent input substitute used
// before the host sets up processing.
func WithMaxBlockSize(n int) Option {
	return func(b *Bridge) {
		if n > 0 {
			zeros := make([]float32, n)
			b.zeros.Store(&zeros)
		}
	}
}

// newUID returns new unique id value.
func newUID() string {
	return xid.New().String()
}

// ID returns unique id of the bridge.
func (b *Bridge) ID() string {
	return b.uid
}

func (b *Bridge) String() string {
	if b.name != "" {
		return b.name
	}
	return b.uid
}

// Register publishes the engine's capability table. If the session is
// already initialized, the engine is initialized, receives current
// parameter values and, when active, is reset. It returns false if t is
// nil or the bridge is disposed.
func (b *Bridge) Register(t *engine.Table) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == disposed || t == nil {
		return false
	}
	b.exclusive(func() {
		b.engines.Register(t)
		if s := b.session.Load(); s != nil {
			b.initializeEngine(*s)
			b.pushParameters()
			if b.state == active {
				b.engines.Reset()
			}
		}
	})
	b.log.Debug("engine registered")
	return true
}

// Unregister removes the engine without disposing it. Processing falls
// back to pass-through. The engine is not called once Unregister returns.
func (b *Bridge) Unregister() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.exclusive(b.engines.Unregister)
	b.log.Debug("engine unregistered")
}

// Registered returns true if an engine is registered.
func (b *Bridge) Registered() bool {
	return b.engines.Registered()
}

// Parameter returns the stored value of a parameter.
func (b *Bridge) Parameter(id param.ID) (float64, error) {
	return b.params.Get(id)
}

// SetParameter stores the value of a parameter and forwards it to the
// engine.
func (b *Bridge) SetParameter(id param.ID, v float64) error {
	if err := b.params.Set(id, v); err != nil {
		return err
	}
	b.exclusive(func() {
		b.engines.SetParameter(int32(id), v)
	})
	return nil
}

// EngineParameter returns the value of a parameter as the engine reports
// it. ok is false if the engine cannot report it.
func (b *Bridge) EngineParameter(id param.ID) (v float64, ok bool) {
	if !id.Valid() {
		return 0, false
	}
	b.exclusive(func() {
		v, ok = b.engines.GetParameter(int32(id))
	})
	return v, ok
}

// EngineParameterCount returns the number of parameters the engine reports.
func (b *Bridge) EngineParameterCount() (n int32, ok bool) {
	b.exclusive(func() {
		n, ok = b.engines.ParameterCount()
	})
	return n, ok
}

// ResetParameters restores default values and forwards them to the engine.
func (b *Bridge) ResetParameters() {
	b.params.Reset()
	b.exclusive(b.pushParameters)
}

// pushParameters forwards all stored values to the engine. The caller
// must own the engine.
func (b *Bridge) pushParameters() {
	pushParameters(b.engines.Current(), b.params)
}

func pushParameters(caps engine.Capabilities, params *param.Store) {
	if !caps.Registered() {
		return
	}
	for id, v := range params.Snapshot() {
		caps.SetParameter(int32(id), v)
	}
}
