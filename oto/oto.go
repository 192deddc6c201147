// Package oto implements the notegraph audio interfaces on top of
// github.com/ebitengine/oto/v3, playing rendered blocks on the default audio
// device.
package oto

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/ebitengine/oto/v3"

	"github.com/notegraph/notegraph"
)

// Context wraps an oto context opened for mono float32 output.
type Context struct {
	context    *oto.Context
	sampleRate int
}

// NewContext opens the audio device at the given sample rate. Only one context
// may exist per process.
func NewContext(sampleRate int) (*Context, error) {
	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	}
	context, ready, err := oto.NewContext(options)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int { return c.sampleRate }

// Output starts a player and returns a sink writing to it. The player pulls
// from a pipe, so WriteAudio blocks once the device buffer is full; a loop
// stepping a graph and writing its output is thereby paced by the hardware.
func (c *Context) Output() notegraph.AudioSink {
	reader, writer := io.Pipe()
	player := c.context.NewPlayer(reader)
	player.Play()
	return &Output{player: player, writer: writer}
}

// Close suspends the audio device. The oto context itself cannot be closed.
func (c *Context) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

// Output is an AudioSink feeding one oto player.
type Output struct {
	player    *oto.Player
	writer    *io.PipeWriter
	tmpBuffer []byte
}

// WriteAudio queues one buffer of samples for playback, blocking while the
// device is saturated.
func (o *Output) WriteAudio(buffer []float32) error {
	// reuse the old capacity of tmpBuffer, saving it back for the next call
	o.tmpBuffer = appendFloat32LE(o.tmpBuffer[:0], buffer)
	if _, err := o.writer.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

// Close stops playback and releases the player.
func (o *Output) Close() error {
	o.writer.Close()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func appendFloat32LE(to []byte, buffer []float32) []byte {
	for _, v := range buffer {
		to = binary.LittleEndian.AppendUint32(to, math.Float32bits(v))
	}
	return to
}
