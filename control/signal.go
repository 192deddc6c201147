// Package control provides ready-made control stream sources: a live,
// atomically triggered signal for interactive input and a block-clocked
// scripted sequence for offline rendering and tests.
package control

import (
	"sync/atomic"

	"github.com/notegraph/notegraph"
)

// Signal is a live control source. Any goroutine may post a pending command
// with NoteOn or NoteOff; the next FetchNextStream consumes it exactly once
// and places it in element 0 of the control block, with the rest Noop. Posting
// again before the graph steps replaces the pending command.
//
// The handoff is a single atomic pointer swap, so the posting thread never
// blocks the processing step and the step never blocks on the poster.
type Signal struct {
	pending atomic.Pointer[notegraph.NoteCommand]
	stream  []notegraph.NoteCommand
}

func NewSignal() *Signal {
	return &Signal{stream: make([]notegraph.NoteCommand, notegraph.ElementCount)}
}

// NoteOn posts a note-on command to be consumed by the next graph step.
func (s *Signal) NoteOn(note notegraph.Note, velocity byte) {
	s.pending.Store(&notegraph.NoteCommand{Type: notegraph.NoteOn, Velocity: velocity, Note: note})
}

// NoteOff posts a note-off command to be consumed by the next graph step.
func (s *Signal) NoteOff(note notegraph.Note) {
	s.pending.Store(&notegraph.NoteCommand{Type: notegraph.NoteOff, Note: note})
}

func (s *Signal) ControlStream() []notegraph.NoteCommand { return s.stream }

func (s *Signal) FetchNextStream() {
	if command := s.pending.Swap(nil); command != nil {
		s.stream[0] = *command
	} else {
		s.stream[0] = notegraph.NoteCommand{}
	}
}
