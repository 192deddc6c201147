// notegraph-demo is a small interactive synth: a two-voice patch where the
// second oscillator phase-modulates the first. Each line read from standard
// input plucks a note; with -m, notes come from a MIDI input port instead.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/notegraph/notegraph"
	"github.com/notegraph/notegraph/control"
	"github.com/notegraph/notegraph/instrument"
	"github.com/notegraph/notegraph/oto"
)

func main() {
	rate := flag.Int("rate", 44100, "Sampling rate in Hz.")
	frequency := flag.Float64("f", 440, "Base frequency of the first voice in Hz; the modulating voice runs at 1.3 times it.")
	hold := flag.Duration("hold", 300*time.Millisecond, "How long a plucked note is held before release.")
	useMIDI := flag.Bool("m", false, "Take notes from a MIDI input port instead of standard input (requires a build with cgo).")
	port := flag.String("port", "", "Prefix of the MIDI input port name to open; empty opens the first port.")
	flag.Parse()

	var source notegraph.ControlStreamSource
	trigger := control.NewSignal()
	source = trigger
	if *useMIDI {
		midiSource, closeMIDI, err := newMIDISource(*port)
		if err != nil {
			fatal(err)
		}
		defer closeMIDI()
		source = midiSource
	}

	g := buildGraph(*rate, float32(*frequency), source)

	context, err := oto.NewContext(*rate)
	if err != nil {
		fatal(fmt.Errorf("could not acquire audio context: %v", err))
	}
	defer context.Close()
	sink := context.Output()
	defer sink.Close()

	// the sink blocks while the device is saturated, so this loop runs at the
	// speed of the hardware
	go func() {
		for {
			g.ProcessNext()
			if err := sink.WriteAudio(g.Output(0)); err != nil {
				return
			}
		}
	}()

	if *useMIDI {
		fmt.Println("playing from MIDI, ctrl-c to quit")
		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
		return
	}

	fmt.Println("enter to pluck, a number (0-255) to change velocity, ctrl-d to quit")
	const note = notegraph.Note(69)
	velocity := byte(255)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if n, err := strconv.Atoi(scanner.Text()); err == nil && n >= 0 && n <= 255 {
			velocity = byte(n)
		}
		trigger.NoteOn(note, velocity)
		time.AfterFunc(*hold, func() { trigger.NoteOff(note) })
	}
}

// buildGraph wires the demo patch: constant → oscillator → amplifier gated by
// an envelope, with a second, quieter voice at 1.3x the frequency feeding the
// first oscillator's phase input.
func buildGraph(rate int, frequency float32, source notegraph.ControlStreamSource) *notegraph.Graph {
	g := notegraph.New(notegraph.Config{})

	osc := addInstrument(g, instrument.NewSineOscillator(rate))
	env := addInstrument(g, instrument.NewEnvelope([]int{0}, []float32{1.0}, rate/2))
	amp := addInstrument(g, instrument.NewAmplifier())
	freq := addInstrument(g, instrument.NewConstant(frequency))
	zero := addInstrument(g, instrument.NewConstant(0))
	freq2 := addInstrument(g, instrument.NewConstant(frequency*1.3))
	osc2 := addInstrument(g, instrument.NewSineOscillator(rate))
	amp2 := addInstrument(g, instrument.NewAmplifier())
	env2 := addInstrument(g, instrument.NewEnvelope([]int{0}, []float32{0.125}, rate/2))

	controlIndex, err := g.AddControlSource(source)
	check(err)
	check(g.ConnectControlSource(controlIndex, env))
	check(g.ConnectControlSource(controlIndex, env2))

	check(g.ConnectValueStream(freq, 0, osc, 0))
	check(g.ConnectValueStream(osc, 0, amp, 0))
	check(g.ConnectValueStream(env, 0, amp, 1))
	check(g.ConnectValueStream(freq2, 0, osc2, 0))
	check(g.ConnectValueStream(zero, 0, osc2, 1))
	check(g.ConnectValueStream(osc2, 0, amp2, 0))
	check(g.ConnectValueStream(env2, 0, amp2, 1))
	check(g.ConnectValueStream(amp2, 0, osc, 1))

	check(g.ConnectDestination(0, amp, 0))
	check(g.Validate())
	return g
}

func addInstrument(g *notegraph.Graph, instr notegraph.Instrument) int {
	index, err := g.AddInstrument(notegraph.NewContainer(instr))
	check(err)
	return index
}

func check(err error) {
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
