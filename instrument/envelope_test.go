package instrument_test

import (
	"math"
	"testing"

	"github.com/notegraph/notegraph"
	"github.com/notegraph/notegraph/instrument"
)

const errorThreshold = 1e-6

func noteOn(velocity byte) notegraph.NoteCommand {
	return notegraph.NoteCommand{Type: notegraph.NoteOn, Velocity: velocity, Note: 69}
}

func noteOff() notegraph.NoteCommand {
	return notegraph.NoteCommand{Type: notegraph.NoteOff, Note: 69}
}

// processBlock feeds the given commands (if any) to control stream 0 and
// advances the container one block, returning its output block.
func processBlock(c *notegraph.Container, commands ...notegraph.NoteCommand) []notegraph.Value {
	if len(commands) > 0 {
		c.FeedControlStream(0, commands)
	}
	c.ProcessNext()
	return c.Output(0)
}

func expectSilent(t *testing.T, block []notegraph.Value) {
	t.Helper()
	for i, v := range block {
		if v != 0.0 {
			t.Fatalf("sample %v = %v, want silence", i, v)
		}
	}
}

func expectNear(t *testing.T, i int, got, want float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > errorThreshold {
		t.Fatalf("sample %v = %v, want %v", i, got, want)
	}
}

func TestEnvelopeSilentUntilNoteOn(t *testing.T) {
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{64}, []float32{1.0}, 32))
	expectSilent(t, processBlock(c))
	// a NoteOff without a preceding NoteOn is ignored
	expectSilent(t, processBlock(c, noteOff()))
}

func TestEnvelopeRampAndSustain(t *testing.T) {
	const attack = 64
	const gain = 0.8
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{attack}, []float32{gain}, 32))
	block := processBlock(c, noteOn(255))
	for i, v := range block {
		want := float32(gain)
		if i < attack {
			want = gain * float32(i) / float32(attack)
		}
		expectNear(t, i, v, want)
	}
	// holding past the last point sustains
	block = processBlock(c)
	for i, v := range block {
		expectNear(t, i, v, gain)
	}
}

func TestEnvelopeVelocityScalesGain(t *testing.T) {
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{0}, []float32{1.0}, 32))
	block := processBlock(c, noteOn(128))
	want := float32(128) / 255.0
	for i, v := range block {
		expectNear(t, i, v, want)
	}
}

func TestEnvelopeReleaseRampsToOff(t *testing.T) {
	const release = 32
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{0}, []float32{1.0}, release))
	processBlock(c, noteOn(255)) // instant attack, sustaining at 1.0
	block := processBlock(c, noteOff())
	for i, v := range block {
		want := float32(0.0)
		if i < release {
			want = 1.0 - float32(i)/float32(release)
		}
		expectNear(t, i, v, want)
	}
	// back in the off state, following blocks are silent
	expectSilent(t, processBlock(c))
}

func TestEnvelopeNoteOffDuringRampReleasesFromHeldGain(t *testing.T) {
	const attack = 256 // spans more than one block
	const release = 16
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{attack}, []float32{1.0}, release))
	block := processBlock(c, noteOn(255))
	held := block[notegraph.BlockSize-1]
	if held <= 0 || held >= 1.0 {
		t.Fatalf("gain %v after one block should be mid-ramp", held)
	}
	// the release ramps down from the last emitted gain
	block = processBlock(c, noteOff())
	for i := 0; i < release; i++ {
		expectNear(t, i, block[i], held*(1.0-float32(i)/float32(release)))
	}
	expectNear(t, release, block[release], 0.0)
}

func TestEnvelopeZeroPointsActsAsGate(t *testing.T) {
	const release = 64
	c := notegraph.NewContainer(instrument.NewEnvelope(nil, nil, release))
	block := processBlock(c, noteOn(255))
	for i, v := range block {
		want := float32(0.0)
		if i < release {
			want = 1.0 - float32(i)/float32(release)
		}
		expectNear(t, i, v, want)
	}
}

func TestEnvelopeZeroPointsZeroReleaseIsImmediatelySilent(t *testing.T) {
	c := notegraph.NewContainer(instrument.NewEnvelope(nil, nil, 0))
	expectSilent(t, processBlock(c, noteOn(255)))
}

func TestEnvelopeSkipsZeroDurationPoints(t *testing.T) {
	const ramp = 10
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{0, ramp}, []float32{0.5, 1.0}, 32))
	block := processBlock(c, noteOn(255))
	for i, v := range block {
		want := float32(1.0)
		if i < ramp {
			// seeded from the skipped point's gain
			want = 0.5 + 0.5*float32(i)/float32(ramp)
		}
		expectNear(t, i, v, want)
	}
}

func TestEnvelopeRetriggerDuringRelease(t *testing.T) {
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{0}, []float32{1.0}, 1024))
	processBlock(c, noteOn(255))
	processBlock(c, noteOff())
	block := processBlock(c, noteOn(255))
	for i, v := range block {
		expectNear(t, i, v, 1.0)
	}
}

func TestEnvelopeMultiPoint(t *testing.T) {
	// attack to 1.0 in 32 samples, decay to 0.25 in 32 samples, sustain
	c := notegraph.NewContainer(instrument.NewEnvelope([]int{32, 32}, []float32{1.0, 0.25}, 16))
	block := processBlock(c, noteOn(255))
	for i, v := range block {
		var want float32
		switch {
		case i < 32:
			want = float32(i) / 32.0
		case i < 64:
			want = 1.0 + (0.25-1.0)*float32(i-32)/32.0
		default:
			want = 0.25
		}
		expectNear(t, i, v, want)
	}
}
