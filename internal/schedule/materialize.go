package schedule

import (
	"errors"
	"fmt"
	"io"

	"github.com/farcloser/leqm-nrt/internal/decode"
	"github.com/farcloser/leqm-nrt/internal/fault"
)

// Materialize drains source into one interleaved float64 buffer and reports
// the total frame count. The Block Scheduler needs random access to slice
// the time axis into contiguous partitions; every FrameSource this project
// ships (WAV, ffmpeg) already decodes its input into a full in-memory buffer
// internally, so materializing once here — rather than re-implementing a
// second buffering layer on top of FrameSource — is the simplest contract
// that still keeps the scheduler decoupled from how frames were produced.
func Materialize(source decode.FrameSource) ([]float64, decode.Format, int64, error) {
	format := source.Format()

	var (
		samples []float64
		frames  int64
	)

	for {
		frame, err := source.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, format, 0, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		samples = append(samples, frame...)
		frames++
	}

	if frames == 0 {
		return nil, format, 0, fault.ErrInsufficientData
	}

	return samples, format, frames, nil
}
