package patch

import (
	"fmt"

	"github.com/notegraph/notegraph"
	"github.com/notegraph/notegraph/control"
	"github.com/notegraph/notegraph/instrument"
)

// Built is a patch turned into a runnable graph. Sequences holds the control
// sources built from the patch's controls, in declaration order, already added
// to the graph.
type Built struct {
	Graph     *notegraph.Graph
	Sequences []*control.Sequence
}

// ScoreBlocks returns the number of blocks until the last scheduled event has
// fired. Rendering usually continues past it to let release tails ring out.
func (b *Built) ScoreBlocks() int {
	last := -1
	for _, s := range b.Sequences {
		if s.LastBlock() > last {
			last = s.LastBlock()
		}
	}
	return last + 1
}

// Build constructs a graph wired exactly as the patch describes, with
// capacities sized to the patch. The wiring is validated, so a successfully
// built graph is ready to process.
func (p Patch) Build() (*Built, error) {
	g := notegraph.New(p.config())
	for i, decl := range p.Instruments {
		instr, err := p.makeInstrument(decl)
		if err != nil {
			return nil, fmt.Errorf("instrument %v (%v): %w", i, decl.Name, err)
		}
		if _, err := g.AddInstrument(notegraph.NewContainer(instr)); err != nil {
			return nil, fmt.Errorf("instrument %v (%v): %w", i, decl.Name, err)
		}
	}
	built := &Built{Graph: g}
	for i, decl := range p.Controls {
		events, err := controlEvents(decl.Events)
		if err != nil {
			return nil, fmt.Errorf("control %v (%v): %w", i, decl.Name, err)
		}
		sequence := control.NewSequence(events)
		index, err := g.AddControlSource(sequence)
		if err != nil {
			return nil, fmt.Errorf("control %v (%v): %w", i, decl.Name, err)
		}
		for _, target := range decl.Targets {
			if err := g.ConnectControlSource(index, target); err != nil {
				return nil, fmt.Errorf("control %v (%v): %w", i, decl.Name, err)
			}
		}
		built.Sequences = append(built.Sequences, sequence)
	}
	for i, c := range p.Values {
		if err := g.ConnectValueStream(c.From, c.FromStream, c.To, c.ToStream); err != nil {
			return nil, fmt.Errorf("value connection %v: %w", i, err)
		}
	}
	for i, c := range p.Destinations {
		if err := g.ConnectDestination(c.Channel, c.From, c.FromStream); err != nil {
			return nil, fmt.Errorf("destination connection %v: %w", i, err)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return built, nil
}

// config sizes the graph capacities to exactly what the patch uses.
func (p Patch) config() notegraph.Config {
	connections := 1
	perInstrument := make(map[int]int)
	for _, c := range p.Values {
		perInstrument[c.To]++
		if perInstrument[c.To] > connections {
			connections = perInstrument[c.To]
		}
	}
	channels := 1
	perChannel := make(map[int]int)
	for _, c := range p.Destinations {
		perChannel[c.Channel]++
		if perChannel[c.Channel] > connections {
			connections = perChannel[c.Channel]
		}
		if c.Channel+1 > channels {
			channels = c.Channel + 1
		}
	}
	return notegraph.Config{
		MaxInstruments:    len(p.Instruments),
		MaxControlSources: len(p.Controls),
		MaxConnections:    connections,
		OutputChannels:    channels,
	}
}

func (p Patch) makeInstrument(decl Instrument) (notegraph.Instrument, error) {
	switch decl.Type {
	case TypeOscillator:
		rate := p.SampleRate
		if rate <= 0 {
			rate = DefaultSampleRate
		}
		return instrument.NewSineOscillator(rate), nil
	case TypeEnvelope:
		if len(decl.PointTimes) != len(decl.PointGains) {
			return nil, fmt.Errorf("envelope has %v point times but %v point gains", len(decl.PointTimes), len(decl.PointGains))
		}
		return instrument.NewEnvelope(decl.PointTimes, decl.PointGains, decl.ReleaseTime), nil
	case TypeAmplifier:
		return instrument.NewAmplifier(), nil
	case TypeMixer:
		if decl.Streams < 1 {
			return nil, fmt.Errorf("mixer needs at least 1 stream, got %v", decl.Streams)
		}
		return instrument.NewMixer(decl.Streams), nil
	case TypeDelay:
		if decl.Latency < 0 || decl.Latency > instrument.MaxDelay {
			return nil, fmt.Errorf("delay latency %v out of range 0-%v", decl.Latency, instrument.MaxDelay)
		}
		return instrument.NewDelay(decl.Latency), nil
	case TypeConstant:
		return instrument.NewConstant(decl.Value), nil
	}
	return nil, fmt.Errorf("unknown instrument type %q", decl.Type)
}

func controlEvents(events []Event) ([]control.Event, error) {
	ret := make([]control.Event, len(events))
	for i, e := range events {
		var commandType notegraph.CommandType
		switch e.Type {
		case "on":
			commandType = notegraph.NoteOn
		case "off":
			commandType = notegraph.NoteOff
		default:
			return nil, fmt.Errorf("event %v: unknown type %q (want \"on\" or \"off\")", i, e.Type)
		}
		ret[i] = control.Event{
			Block:    e.Block,
			Type:     commandType,
			Note:     notegraph.Note(e.Note),
			Velocity: e.Velocity,
		}
	}
	return ret, nil
}
