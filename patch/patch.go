// Package patch defines a declarative yaml format for a notegraph: which
// instruments exist, how their streams are wired, and a scripted score of note
// events, plus the builder turning a parsed patch into a ready-to-run graph.
package patch

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// DefaultSampleRate is used when a patch does not set one.
const DefaultSampleRate = 44100

type (
	// Patch is a complete declarative description of a graph: the instrument
	// list, the wiring, and a score driving the control sources. Instruments
	// are referred to by their position in the Instruments list, which equals
	// their graph slot index after Build.
	Patch struct {
		Name       string `yaml:",omitempty"`
		SampleRate int    `yaml:"samplerate,omitempty"`

		Instruments  []Instrument        `yaml:",omitempty"`
		Controls     []Control           `yaml:",omitempty"`
		Values       []ValueConnection   `yaml:",omitempty"`
		Destinations []DestinationConnection `yaml:",omitempty"`
	}

	// Instrument declares one instrument of the graph. Type selects the
	// implementation; the remaining fields parametrize it and only the fields
	// of the selected type are meaningful.
	Instrument struct {
		Name string `yaml:",omitempty"`
		Type string

		// envelope
		PointTimes  []int     `yaml:"pointtimes,flow,omitempty"`
		PointGains  []float32 `yaml:"pointgains,flow,omitempty"`
		ReleaseTime int       `yaml:"releasetime,omitempty"`

		// mixer
		Streams int `yaml:",omitempty"`

		// delay
		Latency int `yaml:",omitempty"`

		// constant
		Value float32 `yaml:",omitempty"`
	}

	// Control declares one scripted control source and the instruments it
	// drives.
	Control struct {
		Name    string  `yaml:",omitempty"`
		Targets []int   `yaml:",flow"`
		Events  []Event `yaml:",omitempty"`
	}

	// Event is one scheduled note command; Type is "on" or "off".
	Event struct {
		Block    int
		Type     string
		Note     byte `yaml:",omitempty"`
		Velocity byte `yaml:",omitempty"`
	}

	// ValueConnection wires an output value stream of one instrument into an
	// input value stream of another.
	ValueConnection struct {
		From       int `yaml:"from"`
		FromStream int `yaml:"fromstream,omitempty"`
		To         int `yaml:"to"`
		ToStream   int `yaml:"tostream,omitempty"`
	}

	// DestinationConnection wires an output value stream of an instrument
	// into an output channel.
	DestinationConnection struct {
		Channel    int `yaml:",omitempty"`
		From       int `yaml:"from"`
		FromStream int `yaml:"fromstream,omitempty"`
	}
)

// Instrument type names accepted in a patch.
const (
	TypeOscillator = "oscillator"
	TypeEnvelope   = "envelope"
	TypeAmplifier  = "amplifier"
	TypeMixer      = "mixer"
	TypeDelay      = "delay"
	TypeConstant   = "constant"
)

// Parse reads a yaml patch.
func Parse(data []byte) (Patch, error) {
	var p Patch
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Patch{}, fmt.Errorf("could not parse patch yaml: %v", err)
	}
	return p, nil
}

// Bytes serializes the patch as yaml.
func (p Patch) Bytes() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("could not marshal patch: %v", err)
	}
	return data, nil
}

// Copy makes a deep copy of a Patch.
func (p Patch) Copy() Patch {
	instruments := make([]Instrument, len(p.Instruments))
	for i, instr := range p.Instruments {
		instruments[i] = instr.Copy()
	}
	controls := make([]Control, len(p.Controls))
	for i, c := range p.Controls {
		controls[i] = c.Copy()
	}
	values := make([]ValueConnection, len(p.Values))
	copy(values, p.Values)
	destinations := make([]DestinationConnection, len(p.Destinations))
	copy(destinations, p.Destinations)
	return Patch{
		Name:         p.Name,
		SampleRate:   p.SampleRate,
		Instruments:  instruments,
		Controls:     controls,
		Values:       values,
		Destinations: destinations,
	}
}

// Copy makes a deep copy of an Instrument declaration.
func (i Instrument) Copy() Instrument {
	pointTimes := make([]int, len(i.PointTimes))
	copy(pointTimes, i.PointTimes)
	pointGains := make([]float32, len(i.PointGains))
	copy(pointGains, i.PointGains)
	ret := i
	ret.PointTimes = pointTimes
	ret.PointGains = pointGains
	return ret
}

// Copy makes a deep copy of a Control declaration.
func (c Control) Copy() Control {
	targets := make([]int, len(c.Targets))
	copy(targets, c.Targets)
	events := make([]Event, len(c.Events))
	copy(events, c.Events)
	return Control{Name: c.Name, Targets: targets, Events: events}
}
