// Package gomidi provides a control stream source reading note events from a
// MIDI input port, via gitlab.com/gomidi/midi and the rtmidi driver. The
// driver needs cgo; without cgo the package contains no implementation.
package gomidi
