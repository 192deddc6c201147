package control

import (
	"sort"

	"github.com/notegraph/notegraph"
)

// Event is one scheduled command in a Sequence.
type Event struct {
	// Block is the graph step the command fires on, counted from the first
	// FetchNextStream call.
	Block    int
	Type     notegraph.CommandType
	Note     notegraph.Note
	Velocity byte
}

// Sequence is a control source that plays a fixed list of events against the
// graph's block clock: each FetchNextStream advances the clock by one block
// and emits the events scheduled for it. Should a block hold more events than
// a control stream fits, the surplus spills into the following block.
type Sequence struct {
	events []Event
	next   int
	block  int
	stream []notegraph.NoteCommand
}

// NewSequence returns a sequence playing the given events. The events are
// copied and stably sorted by block.
func NewSequence(events []Event) *Sequence {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Block < sorted[j].Block })
	return &Sequence{
		events: sorted,
		stream: make([]notegraph.NoteCommand, notegraph.ElementCount),
	}
}

// LastBlock returns the block of the latest scheduled event, or -1 for an
// empty sequence.
func (s *Sequence) LastBlock() int {
	if len(s.events) == 0 {
		return -1
	}
	return s.events[len(s.events)-1].Block
}

// Rewind resets the block clock to the start of the sequence.
func (s *Sequence) Rewind() {
	s.next = 0
	s.block = 0
	clear(s.stream)
}

func (s *Sequence) ControlStream() []notegraph.NoteCommand { return s.stream }

func (s *Sequence) FetchNextStream() {
	clear(s.stream)
	element := 0
	for s.next < len(s.events) && s.events[s.next].Block <= s.block && element < len(s.stream) {
		event := s.events[s.next]
		s.stream[element] = notegraph.NoteCommand{
			Type:     event.Type,
			Velocity: event.Velocity,
			Note:     event.Note,
		}
		element++
		s.next++
	}
	s.block++
}
