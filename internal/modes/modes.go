// Package modes is the screen state machine each model instance owns:
// welcome, then mode selection, then one of the activities.
package modes

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned for a move the machine does not allow.
var ErrInvalidTransition = errors.New("invalid mode transition")

// Mode is a top-level screen state.
type Mode int

const (
	Welcome Mode = iota
	Selection
	Training
	FreePlay
	Challenge
	Info
)

var modeNames = map[Mode]string{
	Welcome:   "welcome",
	Selection: "selection",
	Training:  "training",
	FreePlay:  "free_play",
	Challenge: "challenge",
	Info:      "info",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Parse converts a name produced by String back into a Mode.
func Parse(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Playing reports whether the learner manipulates the board in m.
func (m Mode) Playing() bool {
	return m == Training || m == FreePlay || m == Challenge
}

var transitions = map[Mode][]Mode{
	Welcome:   {Selection},
	Selection: {Training, FreePlay, Challenge, Info},
	Training:  {Selection},
	FreePlay:  {Selection},
	Challenge: {Selection},
	Info:      {Selection},
}

// Hook observes a transition.
type Hook func(from, to Mode)

// Machine tracks the current mode of one model instance.
type Machine struct {
	current Mode
	onExit  []Hook
	onEnter []Hook
}

// NewMachine returns a machine in Welcome.
func NewMachine() *Machine {
	return &Machine{current: Welcome}
}

// Current returns the active mode.
func (m *Machine) Current() Mode {
	return m.current
}

// Can reports whether the machine may move to `to`.
func (m *Machine) Can(to Mode) bool {
	for _, next := range transitions[m.current] {
		if next == to {
			return true
		}
	}
	return false
}

// OnExit registers a hook run before the mode changes.
func (m *Machine) OnExit(h Hook) {
	m.onExit = append(m.onExit, h)
}

// OnEnter registers a hook run after the mode changes.
func (m *Machine) OnEnter(h Hook) {
	m.onEnter = append(m.onEnter, h)
}

// Transition moves to `to`, running exit hooks, then enter hooks.
func (m *Machine) Transition(to Mode) error {
	if !m.Can(to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.current, to)
	}
	from := m.current
	for _, h := range m.onExit {
		h(from, to)
	}
	m.current = to
	for _, h := range m.onEnter {
		h(from, to)
	}
	return nil
}
