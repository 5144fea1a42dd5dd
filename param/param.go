// Package param defines the bridge parameters and their store.
package param

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"unicode"
)

// ID identifies a parameter. Identifiers are stable across versions.
type ID int32

// Parameter identifiers.
const (
	RoomSize ID = iota
	Damping
	WetLevel
	DryLevel

	// Count is the number of parameters.
	Count = 4
)

// ErrUnknownParameter is returned when an ID is outside [0, Count).
var ErrUnknownParameter = errors.New("unknown parameter")

// Info describes a parameter to the host.
type Info struct {
	ID          ID
	Name        string
	ShortName   string
	Unit        string
	Default     float64
	Automatable bool
}

var infos = [Count]Info{
	{ID: RoomSize, Name: "Room Size", ShortName: "Room Size", Unit: "%", Default: 0.5, Automatable: true},
	{ID: Damping, Name: "Damping", ShortName: "Damping", Unit: "%", Default: 0.5, Automatable: true},
	{ID: WetLevel, Name: "Wet Level", ShortName: "Wet", Unit: "%", Default: 0.3, Automatable: true},
	{ID: DryLevel, Name: "Dry Level", ShortName: "Dry", Unit: "%", Default: 0.7, Automatable: true},
}

// Valid returns true if id addresses a parameter.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("param(%d)", int32(id))
	}
	return infos[id].Name
}

// Lookup returns the description of a parameter.
func Lookup(id ID) (Info, error) {
	if !id.Valid() {
		return Info{}, fmt.Errorf("lookup %d: %w", int32(id), ErrUnknownParameter)
	}
	return infos[id], nil
}

// ByName returns the id of a parameter by its name or short name. Case,
// spaces, dashes and underscores are ignored, so "wet-level" and
// "Wet Level" are the same.
func ByName(name string) (ID, error) {
	key := normalize(name)
	for _, info := range infos {
		if key == normalize(info.Name) || key == normalize(info.ShortName) {
			return info.ID, nil
		}
	}
	return 0, fmt.Errorf("lookup %q: %w", name, ErrUnknownParameter)
}

func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return unicode.ToLower(r)
	}, name)
}

// All returns descriptions of all parameters in ID order.
func All() []Info {
	all := make([]Info, Count)
	copy(all, infos[:])
	return all
}

// Default returns the default normalized value of a parameter.
func Default(id ID) (float64, error) {
	if !id.Valid() {
		return 0, ErrUnknownParameter
	}
	return infos[id].Default, nil
}

// Format renders a normalized value as a percentage.
func Format(v float64) string {
	return strconv.Itoa(int(v*100.0 + 0.5))
}

// Parse reads a percentage and returns the normalized value.
func Parse(s string) (float64, error) {
	percent, err := strconv.ParseInt(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return float64(percent) / 100.0, nil
}

// Store keeps normalized parameter values. Values are kept as IEEE-754
// bit patterns in atomic words, so Get and Set never block and are safe
// to call from the audio thread. Values are not clamped.
type Store struct {
	values [Count]atomic.Uint64
}

// NewStore returns a store holding default values.
func NewStore() *Store {
	s := &Store{}
	s.Reset()
	return s
}

// Set stores v for id.
func (s *Store) Set(id ID, v float64) error {
	if !id.Valid() {
		return ErrUnknownParameter
	}
	s.values[id].Store(math.Float64bits(v))
	return nil
}

// Get returns the last value stored for id.
func (s *Store) Get(id ID) (float64, error) {
	if !id.Valid() {
		return 0, ErrUnknownParameter
	}
	return math.Float64frombits(s.values[id].Load()), nil
}

// Reset restores all default values.
func (s *Store) Reset() {
	for i := range infos {
		s.values[i].Store(math.Float64bits(infos[i].Default))
	}
}

// Snapshot returns all values in ID order.
func (s *Store) Snapshot() [Count]float64 {
	var values [Count]float64
	for i := range values {
		values[i] = math.Float64frombits(s.values[i].Load())
	}
	return values
}
