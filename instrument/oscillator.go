package instrument

import (
	"math"

	"github.com/notegraph/notegraph"
)

// SineOscillator is a phase-accumulating sine generator.
//
// It declares two value input streams: stream 0 is the frequency in Hz,
// stream 1 a direct phase offset added per sample, which allows phase
// modulation. The phase lives in [0, 1), one full cycle, and is wrapped by
// repeated add/subtract so small negative increments are tolerated. The
// output stream is sin(2π·phase).
type SineOscillator struct {
	// SamplingRate is the fixed sampling rate the phase increment is derived
	// from.
	SamplingRate int

	phase float32
}

func NewSineOscillator(samplingRate int) *SineOscillator {
	return &SineOscillator{SamplingRate: samplingRate}
}

func (o *SineOscillator) InValueStreams() int   { return 2 }
func (o *SineOscillator) InControlStreams() int { return 0 }
func (o *SineOscillator) OutValueStreams() int  { return 1 }

func (o *SineOscillator) ProcessBlock(in *notegraph.InstrumentInput, out *notegraph.InstrumentOutput) {
	frequencies := in.ValueStreams[0]
	phaseOffsets := in.ValueStreams[1]
	output := out.ValueStreams[0]
	rate := float32(o.SamplingRate)
	for i := range output {
		o.phase += frequencies[i]/rate + phaseOffsets[i]
		for o.phase >= 1.0 {
			o.phase -= 1.0
		}
		for o.phase < 0.0 {
			o.phase += 1.0
		}
		output[i] = float32(math.Sin(2 * math.Pi * float64(o.phase)))
	}
}
