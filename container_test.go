package notegraph_test

import (
	"testing"

	"github.com/notegraph/notegraph"
)

// captureInstrument records the input block it was given on each ProcessBlock
// call and fills its output with a marker value.
type captureInstrument struct {
	inValues, inControls, outValues int

	marker       notegraph.Value
	seenValues   [][]notegraph.Value
	seenControls [][]notegraph.NoteCommand
}

func (c *captureInstrument) InValueStreams() int   { return c.inValues }
func (c *captureInstrument) InControlStreams() int { return c.inControls }
func (c *captureInstrument) OutValueStreams() int  { return c.outValues }

func (c *captureInstrument) ProcessBlock(in *notegraph.InstrumentInput, out *notegraph.InstrumentOutput) {
	c.seenValues = make([][]notegraph.Value, len(in.ValueStreams))
	for i, stream := range in.ValueStreams {
		c.seenValues[i] = append([]notegraph.Value(nil), stream...)
	}
	c.seenControls = make([][]notegraph.NoteCommand, len(in.ControlStreams))
	for i, stream := range in.ControlStreams {
		c.seenControls[i] = append([]notegraph.NoteCommand(nil), stream...)
	}
	for _, stream := range out.ValueStreams {
		for i := range stream {
			stream[i] = c.marker
		}
	}
}

func ones(n int) []notegraph.Value {
	ret := make([]notegraph.Value, n)
	for i := range ret {
		ret[i] = 1.0
	}
	return ret
}

func TestContainerStreamCounts(t *testing.T) {
	c := notegraph.NewContainer(&captureInstrument{inValues: 3, inControls: 2, outValues: 1})
	if got := c.InValueStreams(); got != 3 {
		t.Errorf("InValueStreams() = %v, want 3", got)
	}
	if got := c.InControlStreams(); got != 2 {
		t.Errorf("InControlStreams() = %v, want 2", got)
	}
	if got := c.OutValueStreams(); got != 1 {
		t.Errorf("OutValueStreams() = %v, want 1", got)
	}
}

func TestFeedValueStreamIsAdditive(t *testing.T) {
	capture := &captureInstrument{inValues: 1, outValues: 1}
	c := notegraph.NewContainer(capture)
	c.FeedValueStream(0, ones(notegraph.BlockSize))
	c.FeedValueStream(0, ones(notegraph.BlockSize))
	c.ProcessNext()
	for i, v := range capture.seenValues[0] {
		if v != 2.0 {
			t.Fatalf("input sample %v = %v, want 2.0", i, v)
		}
	}
}

func TestFeedValueStreamShortInput(t *testing.T) {
	capture := &captureInstrument{inValues: 1, outValues: 1}
	c := notegraph.NewContainer(capture)
	c.FeedValueStream(0, ones(3))
	c.ProcessNext()
	for i, v := range capture.seenValues[0] {
		want := notegraph.Value(0.0)
		if i < 3 {
			want = 1.0
		}
		if v != want {
			t.Fatalf("input sample %v = %v, want %v", i, v, want)
		}
	}
}

func TestFeedControlStreamOverwrites(t *testing.T) {
	capture := &captureInstrument{inControls: 1, outValues: 1}
	c := notegraph.NewContainer(capture)
	first := make([]notegraph.NoteCommand, 5)
	for i := range first {
		first[i] = notegraph.NoteCommand{Type: notegraph.NoteOn, Velocity: 255, Note: 60}
	}
	second := []notegraph.NoteCommand{{Type: notegraph.NoteOff, Note: 61}}
	c.FeedControlStream(0, first)
	c.FeedControlStream(0, second)
	c.ProcessNext()
	if got := capture.seenControls[0][0]; got != second[0] {
		t.Errorf("element 0 = %v, want %v", got, second[0])
	}
	for i, command := range capture.seenControls[0][1:] {
		if command != (notegraph.NoteCommand{}) {
			t.Fatalf("element %v = %v, want noop", i+1, command)
		}
	}
}

func TestInputsClearedAfterProcess(t *testing.T) {
	capture := &captureInstrument{inValues: 1, inControls: 1, outValues: 1}
	c := notegraph.NewContainer(capture)
	c.FeedValueStream(0, ones(notegraph.BlockSize))
	c.FeedControlStream(0, []notegraph.NoteCommand{{Type: notegraph.NoteOn, Velocity: 255, Note: 69}})
	c.ProcessNext()
	c.ProcessNext() // nothing fed in between
	for i, v := range capture.seenValues[0] {
		if v != 0.0 {
			t.Fatalf("value sample %v = %v after clearing, want 0", i, v)
		}
	}
	for i, command := range capture.seenControls[0] {
		if command != (notegraph.NoteCommand{}) {
			t.Fatalf("control element %v = %v after clearing, want noop", i, command)
		}
	}
}

func TestOutputHeldUntilNextProcess(t *testing.T) {
	capture := &captureInstrument{outValues: 2, marker: 0.5}
	c := notegraph.NewContainer(capture)
	c.ProcessNext()
	for index := 0; index < 2; index++ {
		for i, v := range c.Output(index) {
			if v != 0.5 {
				t.Fatalf("output %v sample %v = %v, want 0.5", index, i, v)
			}
		}
	}
}
