package param_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pipelined.dev/bridge/param"
)

func TestDefaults(t *testing.T) {
	s := param.NewStore()
	var tests = []struct {
		id       param.ID
		expected float64
	}{
		{param.RoomSize, 0.5},
		{param.Damping, 0.5},
		{param.WetLevel, 0.3},
		{param.DryLevel, 0.7},
	}
	for _, c := range tests {
		v, err := s.Get(c.id)
		assert.Nil(t, err)
		assert.Equal(t, c.expected, v, c.id.String())
	}
}

func TestSetGet(t *testing.T) {
	var tests = []float64{0, 1, 0.25, 0.123456789, math.SmallestNonzeroFloat64}
	s := param.NewStore()
	for id := param.ID(0); id < param.Count; id++ {
		for _, v := range tests {
			require.Nil(t, s.Set(id, v))
			got, err := s.Get(id)
			assert.Nil(t, err)
			assert.Equal(t, math.Float64bits(v), math.Float64bits(got))
		}
	}
}

func TestUnclamped(t *testing.T) {
	s := param.NewStore()
	assert.Nil(t, s.Set(param.WetLevel, 1.5))
	v, _ := s.Get(param.WetLevel)
	assert.Equal(t, 1.5, v)

	assert.Nil(t, s.Set(param.DryLevel, -0.25))
	v, _ = s.Get(param.DryLevel)
	assert.Equal(t, -0.25, v)
}

func TestUnknownParameter(t *testing.T) {
	s := param.NewStore()
	for _, id := range []param.ID{-1, param.Count, 100} {
		assert.Equal(t, param.ErrUnknownParameter, s.Set(id, 0.5))
		_, err := s.Get(id)
		assert.Equal(t, param.ErrUnknownParameter, err)
		_, err = param.Lookup(id)
		assert.ErrorIs(t, err, param.ErrUnknownParameter)
	}
	// rejected values must not land on a neighbour.
	assert.Equal(t, [param.Count]float64{0.5, 0.5, 0.3, 0.7}, s.Snapshot())
}

func TestReset(t *testing.T) {
	s := param.NewStore()
	for id := param.ID(0); id < param.Count; id++ {
		s.Set(id, 0.01)
	}
	s.Reset()
	assert.Equal(t, [param.Count]float64{0.5, 0.5, 0.3, 0.7}, s.Snapshot())
}

func TestInfo(t *testing.T) {
	all := param.All()
	require.Len(t, all, param.Count)
	for i, info := range all {
		assert.Equal(t, param.ID(i), info.ID)
		assert.Equal(t, "%", info.Unit)
		assert.True(t, info.Automatable)
		d, err := param.Default(info.ID)
		assert.Nil(t, err)
		assert.Equal(t, info.Default, d)
	}
	info, err := param.Lookup(param.WetLevel)
	assert.Nil(t, err)
	assert.Equal(t, "Wet", info.ShortName)
	assert.Equal(t, "param(7)", param.ID(7).String())
}

func TestFormatParse(t *testing.T) {
	var tests = []struct {
		value    float64
		str      string
		expected float64
	}{
		{0, "0", 0},
		{0.5, "50", 0.5},
		{0.304, "30", 0.3},
		{0.306, "31", 0.31},
		{1, "100", 1},
	}
	for _, c := range tests {
		assert.Equal(t, c.str, param.Format(c.value))
		v, err := param.Parse(c.str)
		assert.Nil(t, err)
		assert.InDelta(t, c.expected, v, 1e-12)
	}

	v, err := param.Parse(" 42% ")
	assert.Nil(t, err)
	assert.InDelta(t, 0.42, v, 1e-12)

	_, err = param.Parse("loud")
	assert.NotNil(t, err)
}

func TestByName(t *testing.T) {
	var tests = []struct {
		name     string
		expected param.ID
	}{
		{"room-size", param.RoomSize},
		{"Room Size", param.RoomSize},
		{"DAMPING", param.Damping},
		{"wet_level", param.WetLevel},
		{"wet", param.WetLevel},
		{"dry", param.DryLevel},
	}
	for _, c := range tests {
		id, err := param.ByName(c.name)
		assert.Nil(t, err, c.name)
		assert.Equal(t, c.expected, id, c.name)
	}
	_, err := param.ByName("decay")
	assert.ErrorIs(t, err, param.ErrUnknownParameter)
}
