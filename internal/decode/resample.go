package decode

import (
	"fmt"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

// ResampleLinear converts an interleaved buffer from fromRate to toRate by
// per-channel linear interpolation. This is the collaborator-side fallback
// for sample rates without a tabulated M-weighting coefficient set: the
// measurement core itself never resamples, it only rejects. Linear
// interpolation attenuates content near Nyquist, which is acceptable for the
// weighting-curve rates this is used between (44.1/48kHz neighborhood).
func ResampleLinear(samples []float64, fromRate, toRate, channels int) ([]float64, error) {
	if fromRate == toRate {
		return samples, nil
	}

	if fromRate <= 0 || toRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: resample %dHz -> %dHz with %d channels",
			fault.ErrInvalidArgument, fromRate, toRate, channels)
	}

	inputFrames := len(samples) / channels
	if inputFrames < 2 {
		return nil, fmt.Errorf("%w: %d frames is too short to resample", fault.ErrInsufficientData, inputFrames)
	}

	ratio := float64(toRate) / float64(fromRate)
	outputFrames := int(float64(inputFrames) * ratio)
	out := make([]float64, outputFrames*channels)

	for outFrame := 0; outFrame < outputFrames; outFrame++ {
		srcPos := float64(outFrame) / ratio
		srcFrame := int(srcPos)
		frac := srcPos - float64(srcFrame)

		if srcFrame >= inputFrames-1 {
			srcFrame = inputFrames - 2
			frac = 1.0
		}

		for ch := 0; ch < channels; ch++ {
			a := samples[srcFrame*channels+ch]
			b := samples[(srcFrame+1)*channels+ch]
			out[outFrame*channels+ch] = a + frac*(b-a)
		}
	}

	return out, nil
}
