package instrument

import "github.com/notegraph/notegraph"

// Envelope is a linear multi-point envelope generator.
//
// The envelope is defined by a series of points, each with a duration in
// samples and a target gain, plus a release time. A NoteOn starts the
// envelope, which ramps linearly through the points in order; at the last
// point it sustains until a NoteOff, which starts a linear release ramp from
// the current gain down to zero. Points with zero duration are instantaneous
// and skipped. Every emitted sample is scaled by the note gain, velocity/255,
// fixed for the life of the note.
//
// With zero points the envelope behaves as an instant-attack, linear-release
// gate: a NoteOn opens it at full note gain and it decays per the release
// ramp.
//
// The envelope declares one control input stream (note on/off commands) and
// one output value stream; the note field of the commands is ignored, callers
// route per-note streams to per-note envelopes.
type Envelope struct {
	// PointTimes holds the duration of each point in samples; the first entry
	// is the attack time.
	PointTimes []int

	// PointGains holds the target gain of each point.
	PointGains []float32

	// ReleaseTime is the release ramp length in samples.
	ReleaseTime int

	// currentPoint is the envelope state: 0 = off, 1..len(points) = playing
	// that point, len(points)+1 = releasing.
	currentPoint    int
	currentTime     int     // samples elapsed in the current point
	currentNoteGain float32 // velocity-derived scalar, fixed per note
	currentGain     float32 // last emitted gain, the release ramp start
}

// NewEnvelope returns an envelope with the given point durations, point gains
// and release time, all in samples. The two point slices must be equally long.
func NewEnvelope(pointTimes []int, pointGains []float32, releaseTime int) *Envelope {
	if len(pointTimes) != len(pointGains) {
		panic("envelope point times and gains must have equal length")
	}
	return &Envelope{
		PointTimes:  pointTimes,
		PointGains:  pointGains,
		ReleaseTime: releaseTime,
	}
}

func (e *Envelope) InValueStreams() int   { return 0 }
func (e *Envelope) InControlStreams() int { return 1 }
func (e *Envelope) OutValueStreams() int  { return 1 }

func (e *Envelope) ProcessBlock(in *notegraph.InstrumentInput, out *notegraph.InstrumentOutput) {
	points := len(e.PointTimes)
	for _, command := range in.ControlStreams[0] {
		switch command.Type {
		case notegraph.NoteOn:
			e.currentTime = 0
			e.currentNoteGain = float32(command.Velocity) / 255.0
			e.currentGain = 0.0
			// skip leading zero-duration points, seeding the gain from the
			// last skipped one
			point := 1
			for points > point && e.PointTimes[point-1] == 0 {
				point++
			}
			e.currentPoint = point
			if point > 1 {
				e.currentGain = e.PointGains[point-2]
			}
		case notegraph.NoteOff:
			if e.currentPoint > 0 && e.currentPoint <= points {
				e.currentPoint = points + 1
				e.currentTime = 0
			}
		}
	}

	output := out.ValueStreams[0]
	for i := range output {
		switch {
		case e.currentPoint == 0:
			output[i] = 0.0
		case e.currentPoint <= points:
			prevGain := float32(0.0)
			if e.currentPoint > 1 {
				prevGain = e.PointGains[e.currentPoint-2]
			}
			pointTime := e.PointTimes[e.currentPoint-1]
			pointGain := e.PointGains[e.currentPoint-1]

			gain := pointGain
			if pointTime != 0 {
				currentTime := e.currentTime
				if currentTime > pointTime {
					currentTime = pointTime
				}
				gain = prevGain + (pointGain-prevGain)*(float32(currentTime)/float32(pointTime))
			}
			output[i] = gain * e.currentNoteGain
			e.currentGain = gain

			e.currentTime++
			if e.currentTime >= pointTime {
				if e.currentPoint < points {
					e.currentPoint++
					e.currentTime = 0
				}
				for e.currentPoint < points && e.PointTimes[e.currentPoint] == 0 {
					e.currentPoint++
				}
			}
		default: // releasing
			if points == 0 {
				e.currentGain = 1.0
			}
			gain := float32(0.0)
			if e.ReleaseTime != 0 {
				gain = e.currentGain * (1.0 - float32(e.currentTime)/float32(e.ReleaseTime))
			}
			output[i] = gain * e.currentNoteGain
			e.currentTime++
			if e.currentTime >= e.ReleaseTime {
				e.currentPoint = 0
				e.currentTime = 0
			}
		}
	}
}
