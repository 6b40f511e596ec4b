package decode

import (
	"errors"
	"io"
	"testing"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

func TestNewMemorySource_RejectsEmptyBuffer(t *testing.T) {
	_, err := NewMemorySource(nil, Format{SampleRate: 48000, Channels: 2})
	if !errors.Is(err, fault.ErrInsufficientData) {
		t.Fatalf("error = %v, want fault.ErrInsufficientData", err)
	}
}

func TestNewMemorySource_RejectsZeroChannels(t *testing.T) {
	_, err := NewMemorySource([]float64{0.1}, Format{SampleRate: 48000})
	if !errors.Is(err, fault.ErrChannelCountMismatch) {
		t.Fatalf("error = %v, want fault.ErrChannelCountMismatch", err)
	}
}

func TestNewMemorySource_RejectsMisalignedBuffer(t *testing.T) {
	_, err := NewMemorySource([]float64{0.1, 0.2, 0.3}, Format{SampleRate: 48000, Channels: 2})
	if !errors.Is(err, fault.ErrChannelCountMismatch) {
		t.Fatalf("error = %v, want fault.ErrChannelCountMismatch", err)
	}
}

func TestMemorySource_NextFrame(t *testing.T) {
	source, err := NewMemorySource([]float64{0.1, 0.2, 0.3, 0.4}, Format{SampleRate: 48000, Channels: 2})
	if err != nil {
		t.Fatalf("NewMemorySource: %v", err)
	}

	if source.Frames() != 2 {
		t.Fatalf("Frames() = %d, want 2", source.Frames())
	}

	first, err := source.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}

	if len(first) != 2 || first[0] != 0.1 || first[1] != 0.2 {
		t.Errorf("first frame = %v, want [0.1 0.2]", first)
	}

	if _, err = source.NextFrame(); err != nil {
		t.Fatalf("NextFrame: %v", err)
	}

	if _, err = source.NextFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("NextFrame past end = %v, want io.EOF", err)
	}
}
