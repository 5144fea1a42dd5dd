package bridge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/bridge"
	"pipelined.dev/bridge/mock"
)

func TestLifecycle(t *testing.T) {
	type step struct {
		action   func(*bridge.Bridge) error
		err      error
		expected bridge.Phase
	}
	setup := func(sr float64, bs int32) func(*bridge.Bridge) error {
		return func(b *bridge.Bridge) error { return b.Setup(sr, bs) }
	}
	activate := func(b *bridge.Bridge) error { return b.SetActive(true) }
	deactivate := func(b *bridge.Bridge) error { return b.SetActive(false) }
	dispose := func(b *bridge.Bridge) error { return b.Dispose() }

	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "activate uninitialized",
			steps: []step{
				{activate, bridge.ErrInvalidState, bridge.Uninitialized},
				{deactivate, nil, bridge.Uninitialized},
			},
		},
		{
			name: "setup activate deactivate",
			steps: []step{
				{setup(sampleRate, blockSize), nil, bridge.Initialized},
				{activate, nil, bridge.Active},
				{activate, nil, bridge.Active},
				{deactivate, nil, bridge.Initialized},
				{deactivate, nil, bridge.Initialized},
			},
		},
		{
			name: "same setup while active",
			steps: []step{
				{setup(sampleRate, blockSize), nil, bridge.Initialized},
				{activate, nil, bridge.Active},
				{setup(sampleRate, blockSize), nil, bridge.Active},
			},
		},
		{
			name: "changed setup while active",
			steps: []step{
				{setup(sampleRate, blockSize), nil, bridge.Initialized},
				{activate, nil, bridge.Active},
				{setup(96000, blockSize), nil, bridge.Initialized},
			},
		},
		{
			name: "dispose",
			steps: []step{
				{setup(sampleRate, blockSize), nil, bridge.Initialized},
				{activate, nil, bridge.Active},
				{dispose, nil, bridge.Disposed},
				{dispose, nil, bridge.Disposed},
				{setup(sampleRate, blockSize), bridge.ErrDisposed, bridge.Disposed},
				{activate, bridge.ErrDisposed, bridge.Disposed},
				{deactivate, bridge.ErrDisposed, bridge.Disposed},
			},
		},
		{
			name: "dispose uninitialized",
			steps: []step{
				{dispose, nil, bridge.Disposed},
			},
		},
		{
			name: "invalid setup",
			steps: []step{
				{setup(0, blockSize), bridge.ErrInvalidSetup, bridge.Uninitialized},
				{setup(sampleRate, 0), bridge.ErrInvalidSetup, bridge.Uninitialized},
				{setup(-1, -1), bridge.ErrInvalidSetup, bridge.Uninitialized},
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			b := bridge.New()
			b.Register(mock.Negate().Table())
			for i, s := range test.steps {
				err := s.action(b)
				if s.err != nil {
					assert.ErrorIs(t, err, s.err, "step %d", i)
				} else {
					assert.Nil(t, err, "step %d", i)
				}
				assert.Equal(t, s.expected, b.Phase(), "step %d", i)
			}
		})
	}
}

func TestEngineCalls(t *testing.T) {
	m := mock.Negate()
	b := bridge.New()
	require.True(t, b.Register(m.Table()))

	require.Nil(t, b.Initialize())
	require.Nil(t, b.Setup(sampleRate, blockSize))
	require.Nil(t, b.SetActive(true))
	process(t, b, blockSize)
	// same setup is a no-op.
	require.Nil(t, b.Setup(sampleRate, blockSize))
	require.Nil(t, b.Setup(96000, blockSize))
	process(t, b, blockSize)
	require.Nil(t, b.Dispose())
	require.Nil(t, b.Dispose())

	assert.Equal(t, []mock.Call{
		{Name: mock.Initialize, SampleRate: bridge.InitialSampleRate, BlockSize: bridge.InitialBlockSize},
		{Name: mock.Initialize, SampleRate: sampleRate, BlockSize: blockSize},
		{Name: mock.Reset},
		{Name: mock.Process, NumSamples: blockSize},
		{Name: mock.Initialize, SampleRate: 96000, BlockSize: blockSize},
		{Name: mock.Process, NumSamples: blockSize},
		{Name: mock.Dispose},
	}, m.Calls())
	assert.False(t, b.Registered())
}

func TestSession(t *testing.T) {
	b := bridge.New()
	require.True(t, b.Register((&mock.Engine{Gain: 1}).Table()))
	require.Nil(t, b.Initialize())
	s, ok := b.Session()
	assert.True(t, ok)
	assert.Equal(t, bridge.Session{SampleRate: bridge.InitialSampleRate, BlockSize: bridge.InitialBlockSize}, s)

	require.Nil(t, b.Setup(sampleRate, 8192))
	s, ok = b.Session()
	assert.True(t, ok)
	assert.Equal(t, bridge.Session{SampleRate: sampleRate, BlockSize: 8192}, s)

	// engine receives zeros for disconnected input of the new size.
	out := [][]float32{make([]float32, 8192), make([]float32, 8192)}
	out[0][8191], out[1][8191] = 1, 1
	require.Nil(t, b.Process(&bridge.ProcessData{Outputs: out, NumSamples: 8192}))
	assert.Zero(t, out[0][8191])
	assert.Zero(t, out[1][8191])
}

func TestDisposeWithoutEntry(t *testing.T) {
	m := mock.Negate()
	m.Omit = []string{mock.Dispose}
	b := newBridge(t, m)
	require.Nil(t, b.Dispose())
	assert.False(t, b.Registered())
	assert.Zero(t, m.Count(mock.Dispose))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "uninitialized", bridge.Uninitialized.String())
	assert.Equal(t, "initialized", bridge.Initialized.String())
	assert.Equal(t, "active", bridge.Active.String())
	assert.Equal(t, "disposed", bridge.Disposed.String())
	assert.Equal(t, "phase(9)", bridge.Phase(9).String())
}

func process(t *testing.T, b *bridge.Bridge, n int) [][]float32 {
	t.Helper()
	in := [][]float32{make([]float32, n), make([]float32, n)}
	out := [][]float32{make([]float32, n), make([]float32, n)}
	require.Nil(t, b.Process(&bridge.ProcessData{Inputs: in, Outputs: out, NumSamples: n}))
	return out
}
