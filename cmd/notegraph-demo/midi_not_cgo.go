//go:build !cgo

package main

import (
	"errors"

	"github.com/notegraph/notegraph"
)

func newMIDISource(portPrefix string) (notegraph.ControlStreamSource, func() error, error) {
	return nil, nil, errors.New("MIDI input needs a build with cgo enabled")
}
