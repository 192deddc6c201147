package notegraph

import (
	"errors"
	"fmt"

	"github.com/viterin/vek/vek32"
)

// Default graph capacities, used for zero Config fields.
const (
	DefaultMaxInstruments    = 16
	DefaultMaxControlSources = 16
	DefaultMaxConnections    = 16
	DefaultOutputChannels    = 1
)

// Config sets the fixed capacities of a Graph. All capacities are final once
// the graph is created; wiring calls fail when a capacity is exhausted.
type Config struct {
	// MaxInstruments is the number of instrument slots.
	MaxInstruments int

	// MaxControlSources is the number of control source slots.
	MaxControlSources int

	// MaxConnections bounds the number of value-stream connections into one
	// instrument and the number of destination connections into one output
	// channel.
	MaxConnections int

	// OutputChannels is the number of output channel accumulators.
	OutputChannels int
}

func (c Config) withDefaults() Config {
	if c.MaxInstruments <= 0 {
		c.MaxInstruments = DefaultMaxInstruments
	}
	if c.MaxControlSources <= 0 {
		c.MaxControlSources = DefaultMaxControlSources
	}
	if c.MaxConnections <= 0 {
		c.MaxConnections = DefaultMaxConnections
	}
	if c.OutputChannels <= 0 {
		c.OutputChannels = DefaultOutputChannels
	}
	return c
}

var (
	ErrNoInstrumentSlot   = errors.New("no free instrument slot")
	ErrNoControlSlot      = errors.New("no free control source slot")
	ErrConnectionCapacity = errors.New("connection list full")
)

type valueStreamConnection struct {
	sourceIndex            int
	sourceStreamIndex      int
	destinationStreamIndex int
}

type destinationConnection struct {
	sourceIndex       int
	sourceStreamIndex int
}

// Graph is a fixed-capacity network of instrument containers and control
// sources plus the scheduler driving them. Wiring and stepping are disjoint
// phases: the topology is set up first, then ProcessNext is called once per
// block. Filled slots keep their index for the life of the graph; connection
// records refer to slots by index, so there is no removal operation.
//
// The value-stream connections must not form a cycle; Validate reports cyclic
// wirings at setup time.
type Graph struct {
	cfg Config

	instruments    []*Container          // slot arena; nil marks a free slot
	controlSources []ControlStreamSource // slot arena; nil marks a free slot

	controlConnections     []int                     // per instrument slot; -1 means unbound
	valueConnections       [][]valueStreamConnection // per destination instrument slot
	destinationConnections [][]destinationConnection // per output channel
	outputChannels         [][]Value

	// scratch for the order scan, reused every step
	order     []int
	processed []bool
}

// New creates an empty graph with the given capacities. Zero Config fields
// fall back to the Default* constants.
func New(cfg Config) *Graph {
	cfg = cfg.withDefaults()
	g := &Graph{
		cfg:                    cfg,
		instruments:            make([]*Container, cfg.MaxInstruments),
		controlSources:         make([]ControlStreamSource, cfg.MaxControlSources),
		controlConnections:     make([]int, cfg.MaxInstruments),
		valueConnections:       make([][]valueStreamConnection, cfg.MaxInstruments),
		destinationConnections: make([][]destinationConnection, cfg.OutputChannels),
		outputChannels:         make([][]Value, cfg.OutputChannels),
		order:                  make([]int, 0, cfg.MaxInstruments),
		processed:              make([]bool, cfg.MaxInstruments),
	}
	for i := range g.controlConnections {
		g.controlConnections[i] = -1
	}
	for i := range g.valueConnections {
		g.valueConnections[i] = make([]valueStreamConnection, 0, cfg.MaxConnections)
	}
	for i := range g.destinationConnections {
		g.destinationConnections[i] = make([]destinationConnection, 0, cfg.MaxConnections)
	}
	for i := range g.outputChannels {
		g.outputChannels[i] = make([]Value, BlockSize)
	}
	return g
}

// OutputChannels returns the number of output channel accumulators.
func (g *Graph) OutputChannels() int { return g.cfg.OutputChannels }

// AddInstrument inserts a container into the first free instrument slot and
// returns its slot index.
func (g *Graph) AddInstrument(c *Container) (int, error) {
	for i := range g.instruments {
		if g.instruments[i] == nil {
			g.instruments[i] = c
			return i, nil
		}
	}
	return 0, ErrNoInstrumentSlot
}

// AddControlSource inserts a control source into the first free control slot
// and returns its slot index.
func (g *Graph) AddControlSource(source ControlStreamSource) (int, error) {
	for i := range g.controlSources {
		if g.controlSources[i] == nil {
			g.controlSources[i] = source
			return i, nil
		}
	}
	return 0, ErrNoControlSlot
}

func (g *Graph) instrumentAt(index int) (*Container, error) {
	if index < 0 || index >= len(g.instruments) {
		return nil, fmt.Errorf("instrument index %v out of range 0-%v", index, len(g.instruments)-1)
	}
	if g.instruments[index] == nil {
		return nil, fmt.Errorf("no instrument in slot %v", index)
	}
	return g.instruments[index], nil
}

// ConnectControlSource binds a control source to an instrument's control
// input. An instrument has at most one control source; binding again
// overwrites the previous binding.
func (g *Graph) ConnectControlSource(controlIndex, instrumentIndex int) error {
	if controlIndex < 0 || controlIndex >= len(g.controlSources) {
		return fmt.Errorf("control source index %v out of range 0-%v", controlIndex, len(g.controlSources)-1)
	}
	if g.controlSources[controlIndex] == nil {
		return fmt.Errorf("no control source in slot %v", controlIndex)
	}
	if _, err := g.instrumentAt(instrumentIndex); err != nil {
		return err
	}
	g.controlConnections[instrumentIndex] = controlIndex
	return nil
}

// ConnectValueStream connects an output value stream of the source instrument
// to an input value stream of the destination instrument. Several connections
// may target the same destination stream; their contributions add up.
func (g *Graph) ConnectValueStream(sourceIndex, sourceStreamIndex, destinationIndex, destinationStreamIndex int) error {
	source, err := g.instrumentAt(sourceIndex)
	if err != nil {
		return err
	}
	destination, err := g.instrumentAt(destinationIndex)
	if err != nil {
		return err
	}
	if sourceStreamIndex < 0 || sourceStreamIndex >= source.OutValueStreams() {
		return fmt.Errorf("instrument %v has no output stream %v", sourceIndex, sourceStreamIndex)
	}
	if destinationStreamIndex < 0 || destinationStreamIndex >= destination.InValueStreams() {
		return fmt.Errorf("instrument %v has no input stream %v", destinationIndex, destinationStreamIndex)
	}
	if len(g.valueConnections[destinationIndex]) == g.cfg.MaxConnections {
		return fmt.Errorf("instrument %v: %w", destinationIndex, ErrConnectionCapacity)
	}
	g.valueConnections[destinationIndex] = append(g.valueConnections[destinationIndex], valueStreamConnection{
		sourceIndex:            sourceIndex,
		sourceStreamIndex:      sourceStreamIndex,
		destinationStreamIndex: destinationStreamIndex,
	})
	return nil
}

// ConnectDestination connects an output value stream of an instrument to an
// output channel accumulator. All destinations of a channel are summed.
func (g *Graph) ConnectDestination(channel, sourceIndex, sourceStreamIndex int) error {
	if channel < 0 || channel >= len(g.destinationConnections) {
		return fmt.Errorf("output channel %v out of range 0-%v", channel, len(g.destinationConnections)-1)
	}
	source, err := g.instrumentAt(sourceIndex)
	if err != nil {
		return err
	}
	if sourceStreamIndex < 0 || sourceStreamIndex >= source.OutValueStreams() {
		return fmt.Errorf("instrument %v has no output stream %v", sourceIndex, sourceStreamIndex)
	}
	if len(g.destinationConnections[channel]) == g.cfg.MaxConnections {
		return fmt.Errorf("output channel %v: %w", channel, ErrConnectionCapacity)
	}
	g.destinationConnections[channel] = append(g.destinationConnections[channel], destinationConnection{
		sourceIndex:       sourceIndex,
		sourceStreamIndex: sourceStreamIndex,
	})
	return nil
}

// ProcessOrder resolves the value-stream dependencies and returns the order in
// which the filled instrument slots are processed: an instrument comes after
// every instrument feeding one of its input streams. The returned slice is
// reused by the graph and valid until the next ProcessOrder or ProcessNext
// call.
//
// Slots on a dependency cycle never become eligible and are left out of the
// order; Validate turns that into an error at setup time.
func (g *Graph) ProcessOrder() []int {
	g.order = g.order[:0]
	clear(g.processed)
	for {
		progress := false
		for i, instrument := range g.instruments {
			if instrument == nil || g.processed[i] {
				continue
			}
			ready := true
			for _, connection := range g.valueConnections[i] {
				if !g.processed[connection.sourceIndex] {
					ready = false
					break
				}
			}
			if ready {
				g.processed[i] = true
				g.order = append(g.order, i)
				progress = true
			}
		}
		if !progress {
			return g.order
		}
	}
}

// Validate checks the wired topology. It currently detects one defect: a
// dependency cycle among the value-stream connections, which would leave the
// cyclic instruments permanently unscheduled. Call it once after wiring, not
// per step.
func (g *Graph) Validate() error {
	order := g.ProcessOrder()
	filled := 0
	for _, instrument := range g.instruments {
		if instrument != nil {
			filled++
		}
	}
	if len(order) == filled {
		return nil
	}
	var cyclic []int
	for i, instrument := range g.instruments {
		if instrument != nil && !g.processed[i] {
			cyclic = append(cyclic, i)
		}
	}
	return fmt.Errorf("value stream connections form a cycle through instrument slots %v", cyclic)
}

// ProcessNext advances the whole graph by one block: the output accumulators
// are cleared, every control source fetches its next block, every instrument
// is fed and processed in dependency order, and the connected outputs are
// summed into the output channels. It performs no allocation and no fallible
// operation.
func (g *Graph) ProcessNext() {
	for _, channel := range g.outputChannels {
		clear(channel)
	}

	// Recomputed every step; cheap next to the block math, and keeps rewiring
	// between steps safe.
	order := g.ProcessOrder()

	for _, source := range g.controlSources {
		if source != nil {
			source.FetchNextStream()
		}
	}

	for _, index := range order {
		instrument := g.instruments[index]
		for _, connection := range g.valueConnections[index] {
			if source := g.instruments[connection.sourceIndex]; source != nil {
				instrument.FeedValueStream(connection.destinationStreamIndex, source.Output(connection.sourceStreamIndex))
			}
		}
		if controlIndex := g.controlConnections[index]; controlIndex >= 0 {
			if source := g.controlSources[controlIndex]; source != nil {
				stream := source.ControlStream()
				for j := 0; j < instrument.InControlStreams(); j++ {
					instrument.FeedControlStream(j, stream)
				}
			}
		}
		instrument.ProcessNext()
	}

	for channel, connections := range g.destinationConnections {
		for _, connection := range connections {
			if source := g.instruments[connection.sourceIndex]; source != nil {
				vek32.Add_Inplace(g.outputChannels[channel], source.Output(connection.sourceStreamIndex))
			}
		}
	}
}

// Output returns the accumulated block of the given output channel. The slice
// is valid until the next ProcessNext call and must not be modified.
func (g *Graph) Output(channel int) []Value {
	return g.outputChannels[channel]
}
