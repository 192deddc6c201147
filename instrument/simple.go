package instrument

import (
	"fmt"

	"github.com/notegraph/notegraph"
	"github.com/viterin/vek/vek32"
)

// Amplifier multiplies two value streams sample by sample: stream 0 is the
// signal, stream 1 the gain.
type Amplifier struct{}

func NewAmplifier() *Amplifier { return &Amplifier{} }

func (a *Amplifier) InValueStreams() int   { return 2 }
func (a *Amplifier) InControlStreams() int { return 0 }
func (a *Amplifier) OutValueStreams() int  { return 1 }

func (a *Amplifier) ProcessBlock(in *notegraph.InstrumentInput, out *notegraph.InstrumentOutput) {
	vek32.Mul_Into(out.ValueStreams[0], in.ValueStreams[0], in.ValueStreams[1])
}

// Mixer sums a fixed number of value streams into one.
type Mixer struct {
	streams int
}

func NewMixer(streams int) *Mixer { return &Mixer{streams: streams} }

func (m *Mixer) InValueStreams() int   { return m.streams }
func (m *Mixer) InControlStreams() int { return 0 }
func (m *Mixer) OutValueStreams() int  { return 1 }

func (m *Mixer) ProcessBlock(in *notegraph.InstrumentInput, out *notegraph.InstrumentOutput) {
	output := out.ValueStreams[0]
	clear(output)
	for _, stream := range in.ValueStreams {
		vek32.Add_Inplace(output, stream)
	}
}

// MaxDelay bounds the delay line length; the buffer is a fixed array so a
// Delay never allocates after construction.
const MaxDelay = 65535

// Delay outputs its input stream delayed by a fixed number of samples,
// implemented as a circular buffer.
type Delay struct {
	// Latency is the delay time in samples.
	Latency int

	buffer      [MaxDelay + 1]float32
	bufferIndex int
}

// NewDelay returns a delay line of the given latency in samples, at most
// MaxDelay.
func NewDelay(latency int) *Delay {
	if latency < 0 || latency > MaxDelay {
		panic(fmt.Sprintf("delay latency %v out of range 0-%v", latency, MaxDelay))
	}
	return &Delay{Latency: latency}
}

func (d *Delay) InValueStreams() int   { return 1 }
func (d *Delay) InControlStreams() int { return 0 }
func (d *Delay) OutValueStreams() int  { return 1 }

func (d *Delay) ProcessBlock(in *notegraph.InstrumentInput, out *notegraph.InstrumentOutput) {
	input := in.ValueStreams[0]
	output := out.ValueStreams[0]
	for i := range output {
		d.buffer[d.bufferIndex] = input[i]
		d.bufferIndex++
		if d.bufferIndex > d.Latency {
			d.bufferIndex = 0
		}
		output[i] = d.buffer[d.bufferIndex]
	}
}

// Constant emits a fixed value every sample. It has no inputs; it is the usual
// way to feed a literal parameter, e.g. an oscillator frequency, into the
// graph.
type Constant struct {
	Value float32
}

func NewConstant(value float32) *Constant { return &Constant{Value: value} }

func (c *Constant) InValueStreams() int   { return 0 }
func (c *Constant) InControlStreams() int { return 0 }
func (c *Constant) OutValueStreams() int  { return 1 }

func (c *Constant) ProcessBlock(in *notegraph.InstrumentInput, out *notegraph.InstrumentOutput) {
	output := out.ValueStreams[0]
	for i := range output {
		output[i] = c.Value
	}
}
