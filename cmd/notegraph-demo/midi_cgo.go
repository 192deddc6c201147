//go:build cgo

package main

import (
	"github.com/notegraph/notegraph"
	"github.com/notegraph/notegraph/gomidi"
)

func newMIDISource(portPrefix string) (notegraph.ControlStreamSource, func() error, error) {
	source, err := gomidi.NewSource(portPrefix)
	if err != nil {
		return nil, nil, err
	}
	return source, source.Close, nil
}
