package notegraph

// AudioSink consumes rendered output blocks.
type AudioSink interface {
	WriteAudio(buffer []float32) error
	Close() error
}

// AudioContext is a factory for audio sinks, typically backed by an audio
// device.
type AudioContext interface {
	Output() AudioSink
	Close() error
}
