package notegraph

import "fmt"

// Render drives the graph for the given number of blocks and returns the
// rendered samples of output channel 0.
func Render(g *Graph, blocks int) []Value {
	buffer := make([]Value, 0, blocks*BlockSize)
	for i := 0; i < blocks; i++ {
		g.ProcessNext()
		buffer = append(buffer, g.Output(0)...)
	}
	return buffer
}

// RenderTo drives the graph for the given number of blocks, writing each block
// of output channel 0 to the sink as it is produced. The sink's pace sets the
// step cadence, so a device-backed sink effectively clocks the graph.
func RenderTo(sink AudioSink, g *Graph, blocks int) error {
	for i := 0; i < blocks; i++ {
		g.ProcessNext()
		if err := sink.WriteAudio(g.Output(0)); err != nil {
			return fmt.Errorf("writing block %v to sink: %w", i, err)
		}
	}
	return nil
}
