package notegraph

import "github.com/viterin/vek/vek32"

// Container owns one Instrument together with its input and output blocks,
// adapting it into the uniform unit a Graph schedules. The buffers are sized
// to the instrument's declared stream counts when the container is created and
// reused for every block after that.
type Container struct {
	instrument Instrument
	input      InstrumentInput
	output     InstrumentOutput
}

// NewContainer wraps an instrument with freshly allocated input and output
// blocks.
func NewContainer(instrument Instrument) *Container {
	c := &Container{instrument: instrument}
	c.input.ControlStreams = make([][]NoteCommand, instrument.InControlStreams())
	for i := range c.input.ControlStreams {
		c.input.ControlStreams[i] = make([]NoteCommand, ElementCount)
	}
	c.input.ValueStreams = make([][]Value, instrument.InValueStreams())
	for i := range c.input.ValueStreams {
		c.input.ValueStreams[i] = make([]Value, BlockSize)
	}
	c.output.ValueStreams = make([][]Value, instrument.OutValueStreams())
	for i := range c.output.ValueStreams {
		c.output.ValueStreams[i] = make([]Value, BlockSize)
	}
	return c
}

func (c *Container) InValueStreams() int   { return len(c.input.ValueStreams) }
func (c *Container) InControlStreams() int { return len(c.input.ControlStreams) }
func (c *Container) OutValueStreams() int  { return len(c.output.ValueStreams) }

// FeedValueStream accumulates samples into the given input stream. Multiple
// calls before ProcessNext are additive, so several upstream producers may
// land on the same stream. At most BlockSize samples are consumed.
//
// Out of range stream indexes panic; stream indexes are resolved during graph
// setup, not on the processing path.
func (c *Container) FeedValueStream(index int, samples []Value) {
	dst := c.input.ValueStreams[index]
	if len(samples) > BlockSize {
		samples = samples[:BlockSize]
	}
	vek32.Add_Inplace(dst[:len(samples)], samples)
}

// FeedControlStream overwrites the given control input stream. Only the last
// call before ProcessNext is honored; elements beyond the fed commands are
// reset to Noop.
//
// Out of range stream indexes panic.
func (c *Container) FeedControlStream(index int, commands []NoteCommand) {
	dst := c.input.ControlStreams[index]
	if len(commands) > ElementCount {
		commands = commands[:ElementCount]
	}
	n := copy(dst, commands)
	clear(dst[n:])
}

// ProcessNext runs the instrument against the accumulated input block and then
// clears the input buffers, so the next block starts from a clean accumulator.
// The output block is left intact until the next call.
func (c *Container) ProcessNext() {
	c.instrument.ProcessBlock(&c.input, &c.output)
	for _, stream := range c.input.ControlStreams {
		clear(stream)
	}
	for _, stream := range c.input.ValueStreams {
		clear(stream)
	}
}

// Output returns the most recently produced output block for the given stream
// index. The returned slice is reused on the next ProcessNext and must not be
// modified.
func (c *Container) Output(index int) []Value {
	return c.output.ValueStreams[index]
}
