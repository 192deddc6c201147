//go:build cgo

package gomidi

import (
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/notegraph/notegraph"
)

// Source is a control stream source fed by a MIDI input port. Incoming note
// on/off messages are buffered on a channel by the driver callback and drained
// into the control block on FetchNextStream, so all events received since the
// previous graph step land at the start of the next block.
type Source struct {
	driver *rtmididrv.Driver
	in     drivers.In
	stop   func()
	events chan notegraph.NoteCommand
	stream []notegraph.NoteCommand
}

// NewSource opens the first MIDI input port whose name starts with portPrefix,
// or the first port available if portPrefix is empty.
func NewSource(portPrefix string) (*Source, error) {
	driver, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("cannot open MIDI driver: %w", err)
	}
	ins, err := driver.Ins()
	if err != nil {
		driver.Close()
		return nil, fmt.Errorf("cannot list MIDI inputs: %w", err)
	}
	var in drivers.In
	for _, candidate := range ins {
		if portPrefix == "" || strings.HasPrefix(candidate.String(), portPrefix) {
			in = candidate
			break
		}
	}
	if in == nil {
		driver.Close()
		return nil, fmt.Errorf("no MIDI input port starting with %q", portPrefix)
	}
	if err := in.Open(); err != nil {
		driver.Close()
		return nil, fmt.Errorf("opening MIDI input failed: %w", err)
	}
	s := &Source{
		driver: driver,
		in:     in,
		events: make(chan notegraph.NoteCommand, 1024),
		stream: make([]notegraph.NoteCommand, notegraph.ElementCount),
	}
	stop, err := midi.ListenTo(in, s.handleMessage)
	if err != nil {
		in.Close()
		driver.Close()
		return nil, fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	s.stop = stop
	return s, nil
}

func (s *Source) String() string { return s.in.String() }

func (s *Source) handleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8
	var command notegraph.NoteCommand
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		// MIDI velocity is 0-127, commands carry 0-255
		command = notegraph.NoteCommand{Type: notegraph.NoteOn, Velocity: velocity * 2, Note: notegraph.Note(key)}
	case msg.GetNoteOff(&channel, &key, &velocity):
		command = notegraph.NoteCommand{Type: notegraph.NoteOff, Note: notegraph.Note(key)}
	default:
		return
	}
	select {
	case s.events <- command:
	default: // if the channel is full, just drop the message
	}
}

func (s *Source) ControlStream() []notegraph.NoteCommand { return s.stream }

func (s *Source) FetchNextStream() {
	clear(s.stream)
	for element := 0; element < len(s.stream); element++ {
		select {
		case command := <-s.events:
			s.stream[element] = command
		default:
			return
		}
	}
}

// Close stops listening and releases the port and driver.
func (s *Source) Close() error {
	s.stop()
	s.in.Close()
	if err := s.driver.Close(); err != nil {
		return fmt.Errorf("closing MIDI driver failed: %w", err)
	}
	return nil
}
