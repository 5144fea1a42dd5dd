package bridge

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Phase identifies one of the possible states bridge can be in.
type Phase int32

// Phases of a bridge.
const (
	Uninitialized Phase = iota // Uninitialized means that processing is not set up yet.
	Initialized                // Initialized means that engine is initialized, but not active.
	Active                     // Active means that engine was reset and audio flows.
	Disposed                   // Disposed means that engine was released. It's terminal.
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Active:
		return "active"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("phase(%d)", int32(p))
}

// state identifies one of the possible states bridge can be in.
type state interface {
	phase() Phase
	transition(*Bridge, eventMessage) (state, error)
}

// states
type (
	idleUninitialized struct{}
	idleInitialized   struct{}
	activeProcessing  struct{}
	finalDisposed     struct{}
)

// states variables
var (
	uninitialized idleUninitialized
	initialized   idleInitialized
	active        activeProcessing
	disposed      finalDisposed
)

// event identifies the type of event
type event int

// types of events.
const (
	setup event = iota
	activate
	deactivate
	dispose
)

func (e event) String() string {
	switch e {
	case setup:
		return "setup"
	case activate:
		return "activate"
	case deactivate:
		return "deactivate"
	case dispose:
		return "dispose"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// eventMessage is passed into state machine when host does some action.
type eventMessage struct {
	event
	session Session // new session, only for setup.
}

// Initialize sets up processing with initial defaults. Hosts call it when
// the plugin is created, before they know the actual processing setup.
func (b *Bridge) Initialize() error {
	return b.Setup(InitialSampleRate, InitialBlockSize)
}

// Setup initializes the engine for provided sample rate and maximum block
// size. A changed setup re-initializes the engine and leaves the bridge
// Initialized. The same setup again is a no-op.
func (b *Bridge) Setup(sampleRate float64, maxBlockSize int32) error {
	if sampleRate <= 0 || maxBlockSize <= 0 {
		return fmt.Errorf("%w: sample rate %v, block size %d", ErrInvalidSetup, sampleRate, maxBlockSize)
	}
	return b.send(eventMessage{
		event:   setup,
		session: Session{SampleRate: sampleRate, BlockSize: maxBlockSize},
	})
}

// SetActive toggles processing. Activation resets the engine.
func (b *Bridge) SetActive(on bool) error {
	if on {
		return b.send(eventMessage{event: activate})
	}
	return b.send(eventMessage{event: deactivate})
}

// Dispose releases the engine and clears the registry. Consequent calls
// do nothing. Process keeps producing fallback output after dispose.
func (b *Bridge) Dispose() error {
	return b.send(eventMessage{event: dispose})
}

// Phase returns the current phase of the bridge.
func (b *Bridge) Phase() Phase {
	return Phase(b.phase.Load())
}

// Session returns the setup the engine was last initialized with.
func (b *Bridge) Session() (Session, bool) {
	if s := b.session.Load(); s != nil {
		return *s, true
	}
	return Session{}, false
}

// send applies the event to the current state.
func (b *Bridge) send(e eventMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var (
		s   state
		err error
	)
	// the engine is owned until the new phase is published.
	b.exclusive(func() {
		if s, err = b.state.transition(b, e); err == nil {
			b.phase.Store(int32(s.phase()))
		}
	})
	if err != nil {
		b.log.WithFields(logrus.Fields{
			"event": e.event.String(),
			"state": b.state.phase().String(),
		}).Debug(err)
		return err
	}
	if s != b.state {
		b.log.WithField("state", s.phase().String()).Debug("state changed")
	}
	b.state = s
	return nil
}

func (s idleUninitialized) phase() Phase {
	return Uninitialized
}

func (s idleUninitialized) transition(b *Bridge, e eventMessage) (state, error) {
	switch e.event {
	case setup:
		b.initializeEngine(e.session)
		return initialized, nil
	case deactivate:
		return s, nil
	case dispose:
		b.dispose()
		return disposed, nil
	}
	return s, ErrInvalidState
}

func (s idleInitialized) phase() Phase {
	return Initialized
}

func (s idleInitialized) transition(b *Bridge, e eventMessage) (state, error) {
	switch e.event {
	case setup:
		b.reinitializeEngine(e.session)
		return s, nil
	case activate:
		b.engines.Reset()
		return active, nil
	case deactivate:
		return s, nil
	case dispose:
		b.dispose()
		return disposed, nil
	}
	return s, ErrInvalidState
}

func (s activeProcessing) phase() Phase {
	return Active
}

func (s activeProcessing) transition(b *Bridge, e eventMessage) (state, error) {
	switch e.event {
	case setup:
		if b.reinitializeEngine(e.session) {
			return initialized, nil
		}
		return s, nil
	case activate:
		return s, nil
	case deactivate:
		return initialized, nil
	case dispose:
		b.dispose()
		return disposed, nil
	}
	return s, ErrInvalidState
}

func (s finalDisposed) phase() Phase {
	return Disposed
}

func (s finalDisposed) transition(b *Bridge, e eventMessage) (state, error) {
	if e.event == dispose {
		return s, nil
	}
	return s, ErrDisposed
}

// reinitializeEngine initializes the engine if the setup has changed.
// It returns false for an unchanged setup.
func (b *Bridge) reinitializeEngine(next Session) bool {
	if current := b.session.Load(); current != nil && *current == next {
		return false
	}
	b.initializeEngine(next)
	return true
}

// initializeEngine publishes the session and initializes the engine.
// Engine buffers are sized once, so the engine is always initialized
// from scratch.
func (b *Bridge) initializeEngine(next Session) {
	if zeros := *b.zeros.Load(); len(zeros) < int(next.BlockSize) {
		grown := make([]float32, next.BlockSize)
		b.zeros.Store(&grown)
	}
	b.session.Store(&next)
	if b.engines.Initialize(next.SampleRate, next.BlockSize) {
		b.meter.Initialized()
	}
	b.log.WithFields(logrus.Fields{
		"sampleRate": next.SampleRate,
		"blockSize":  next.BlockSize,
	}).Debug("session initialized")
}

// dispose releases the engine.
func (b *Bridge) dispose() {
	if b.engines.Dispose() {
		b.log.Debug("engine disposed")
	}
}
