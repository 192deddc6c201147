// Package notegraph is a block-based signal-processing graph for synthesizing
// sound from discrete note events. Instruments (oscillators, envelopes,
// amplifiers...) are wrapped in Containers, wired together in a Graph, and the
// whole graph is advanced one fixed-size block at a time. All buffers are
// allocated while the graph is set up; advancing the graph allocates nothing,
// so a step can be driven directly from an audio callback.
package notegraph

// BlockSize is the number of value samples in one block, the unit of work
// processed per graph step.
const BlockSize = 128

// ElementCount is the number of note commands in one control-stream block.
//
// Regardless of their element indexes, all commands in a block are defined to
// happen at the same time, at the start of the block.
const ElementCount = 128

// Value is the type transmitted in value streams.
type Value = float32

// Note identifies the note a command refers to. By default it is interpreted
// as a MIDI pitch, 0-127, but instruments are free to give it any meaning.
type Note byte

// CommandType is the type of command to be sent to an instrument.
type CommandType byte

const (
	Noop CommandType = iota
	NoteOn
	NoteOff
)

func (c CommandType) String() string {
	switch c {
	case Noop:
		return "noop"
	case NoteOn:
		return "noteon"
	case NoteOff:
		return "noteoff"
	}
	return "unknown"
}

// NoteCommand is a command to be sent to an instrument. The zero value is a
// Noop, so clearing a control stream resets it to "nothing happened".
type NoteCommand struct {
	Type     CommandType
	Velocity byte // full range of 0-255
	Note     Note
}

// InstrumentInput is the input block for an instrument. The meanings of the
// individual streams are defined by the instrument.
type InstrumentInput struct {
	// ControlStreams carry the commands sent to the instrument, one
	// ElementCount-sized slice per declared control stream.
	ControlStreams [][]NoteCommand

	// ValueStreams carry the musical values sent to the instrument, one
	// BlockSize-sized slice per declared value stream.
	ValueStreams [][]Value
}

// InstrumentOutput is the output block for an instrument, commonly used for
// audio channels.
type InstrumentOutput struct {
	ValueStreams [][]Value
}

// Instrument is a stateful block transform. It declares fixed stream counts at
// construction and fills its whole output block on every ProcessBlock call,
// keeping whatever internal state it needs (phase, envelope point, delay
// buffer) between blocks.
type Instrument interface {
	InValueStreams() int
	InControlStreams() int
	OutValueStreams() int

	// ProcessBlock consumes one input block and produces one output block.
	// The input and output always have the declared number of streams, sized
	// BlockSize / ElementCount.
	ProcessBlock(in *InstrumentInput, out *InstrumentOutput)
}

// ControlStreamSource produces one control-stream block per graph step. The
// graph calls FetchNextStream exactly once per step on every added source,
// wired or not, and then reads the current block with ControlStream.
//
// Implementations that are fed from another goroutine (a UI or input thread)
// must make updates atomically visible; FetchNextStream is called without any
// other synchronization.
type ControlStreamSource interface {
	ControlStream() []NoteCommand
	FetchNextStream()
}
