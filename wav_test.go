package notegraph_test

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/notegraph/notegraph"
)

func TestWavFloat32(t *testing.T) {
	buffer := []notegraph.Value{0.0, 0.5, -0.5, 1.0}
	data, err := notegraph.Wav(buffer, 44100, 1, false)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Fatal("missing RIFF/WAVE markers")
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 3 {
		t.Errorf("wave format = %v, want 3 (IEEE float)", format)
	}
	if channels := binary.LittleEndian.Uint16(data[22:24]); channels != 1 {
		t.Errorf("channels = %v, want 1", channels)
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 44100 {
		t.Errorf("sample rate = %v, want 44100", rate)
	}
	// float32 header is 58 bytes up to and including the data chunk size
	payload := data[len(data)-4*len(buffer):]
	if got := math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8])); got != 0.5 {
		t.Errorf("sample 1 = %v, want 0.5", got)
	}
}

func TestWavPCM16Clamps(t *testing.T) {
	buffer := []notegraph.Value{2.0, -2.0}
	data, err := notegraph.Wav(buffer, 48000, 1, true)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		t.Errorf("wave format = %v, want 1 (PCM)", format)
	}
	payload := data[len(data)-2*len(buffer):]
	if got := int16(binary.LittleEndian.Uint16(payload[0:2])); got != math.MaxInt16 {
		t.Errorf("sample 0 = %v, want %v", got, math.MaxInt16)
	}
	if got := int16(binary.LittleEndian.Uint16(payload[2:4])); got != math.MinInt16 {
		t.Errorf("sample 1 = %v, want %v", got, math.MinInt16)
	}
}

func TestRaw(t *testing.T) {
	buffer := []notegraph.Value{0.25, -0.25, 0.75}
	data, err := notegraph.Raw(buffer, false)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if len(data) != 4*len(buffer) {
		t.Fatalf("raw float32 data is %v bytes, want %v", len(data), 4*len(buffer))
	}
	pcm, err := notegraph.Raw(buffer, true)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if len(pcm) != 2*len(buffer) {
		t.Fatalf("raw pcm16 data is %v bytes, want %v", len(pcm), 2*len(buffer))
	}
}
