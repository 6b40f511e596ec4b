package decode

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

// DecodeWAV opens path, validates it as PCM WAV via go-audio/wav, and decodes
// it into a MemorySource of normalized float64 frames.
func DecodeWAV(path string) (*MemorySource, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens a user-specified audio file
	if err != nil {
		return nil, fmt.Errorf("%w: %w", fault.ErrDecoderFailure, err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%w: not a valid WAV file: %s", fault.ErrDecoderFailure, path)
	}

	pcmBuffer, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: reading PCM data: %w", fault.ErrDecoderFailure, err)
	}

	floatBuf := pcmBuffer.AsFloat32Buffer()

	channels := int(decoder.NumChans)
	if channels <= 0 {
		channels = floatBuf.Format.NumChannels
	}

	if channels <= 0 {
		return nil, fmt.Errorf("%w: WAV file reports zero channels", fault.ErrDecoderFailure)
	}

	samples := make([]float64, len(floatBuf.Data))
	for i, s := range floatBuf.Data {
		samples[i] = float64(s)
	}

	return NewMemorySource(samples, Format{
		SampleRate: int(decoder.SampleRate),
		Channels:   channels,
	})
}
