package decode

import (
	"fmt"
	"io"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

// MemorySource is a FrameSource backed by an already-decoded interleaved
// float64 buffer. Both the WAV collaborator and the ffmpeg collaborator
// decode into one of these before handing it to the engine, since both
// underlying libraries naturally produce a full buffer rather than a true
// streaming API; test code also builds MemorySource directly from synthetic
// signals.
type MemorySource struct {
	format  Format
	samples []float64
	pos     int // frame index
}

// NewMemorySource wraps an interleaved float64 buffer as a FrameSource.
// Fails with fault.ErrInsufficientData if samples is empty, and with
// fault.ErrChannelCountMismatch if its length isn't a multiple of channels.
func NewMemorySource(samples []float64, format Format) (*MemorySource, error) {
	if format.Channels <= 0 {
		return nil, fmt.Errorf("%w: %d channels", fault.ErrChannelCountMismatch, format.Channels)
	}

	if len(samples)%format.Channels != 0 {
		return nil, fmt.Errorf("%w: %d samples not divisible by %d channels",
			fault.ErrChannelCountMismatch, len(samples), format.Channels)
	}

	if len(samples) == 0 {
		return nil, fault.ErrInsufficientData
	}

	return &MemorySource{format: format, samples: samples}, nil
}

func (m *MemorySource) Format() Format {
	return m.format
}

func (m *MemorySource) NextFrame() ([]float64, error) {
	frames := len(m.samples) / m.format.Channels
	if m.pos >= frames {
		return nil, io.EOF
	}

	offset := m.pos * m.format.Channels
	frame := m.samples[offset : offset+m.format.Channels]
	m.pos++

	return frame, nil
}

// Frames reports the total frame count in the buffer.
func (m *MemorySource) Frames() int {
	return len(m.samples) / m.format.Channels
}
