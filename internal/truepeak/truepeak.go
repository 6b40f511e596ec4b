// Package truepeak implements the true-peak estimator: integer-ratio
// polyphase FIR oversampling with a max-|x| tracker. The filter bank is
// generated once at construction from a Kaiser-windowed sinc prototype.
package truepeak

import "math"

const (
	defaultKaiserBeta = 5.0
	tapsPerPhase      = 48
)

// Estimator tracks the oversampled peak for every channel of a stream,
// using a polyphase FIR generated once at construction from a Kaiser
// prototype, normalized per-phase to unity gain.
type Estimator struct {
	oversample int
	phases     [][]float64 // phases[p] holds tapsPerPhase coefficients
	history    [][]float64 // per-channel input history ring, len == tapsPerPhase
	peakAbs    []float64   // per-channel running max |upsampled sample|
}

// New allocates an Estimator for channels channels at oversample factor os
// (default 4 when os <= 0).
func New(channels, oversample int) *Estimator {
	if oversample <= 0 {
		oversample = 4
	}

	phases := buildPolyphase(oversample, tapsPerPhase, defaultKaiserBeta)

	history := make([][]float64, channels)
	for ch := range history {
		history[ch] = make([]float64, tapsPerPhase)
	}

	return &Estimator{
		oversample: oversample,
		phases:     phases,
		history:    history,
		peakAbs:    make([]float64, channels),
	}
}

// Process feeds one sample on channel through the polyphase bank, updating
// that channel's running oversampled peak.
func (e *Estimator) Process(channel int, sample float64) {
	h := e.history[channel]

	for i := len(h) - 1; i >= 1; i-- {
		h[i] = h[i-1]
	}

	h[0] = sample

	for _, taps := range e.phases {
		var y float64
		for i, tap := range taps {
			y += tap * h[i]
		}

		if abs := math.Abs(y); abs > e.peakAbs[channel] {
			e.peakAbs[channel] = abs
		}
	}
}

// PeakAbs reports the running max absolute upsampled value for channel.
func (e *Estimator) PeakAbs(channel int) float64 {
	return e.peakAbs[channel]
}

// PeakDB converts channel's running peak to dB using the same ISO reference
// offset convention as the Reducer: TP = 20*log10(max_abs_upsampled) + offset.
func (e *Estimator) PeakDB(channel int, referenceOffsetDB float64) float64 {
	peak := e.peakAbs[channel]
	if peak <= 0 {
		return 0.0
	}

	return 20*math.Log10(peak) + referenceOffsetDB
}

// buildPolyphase generates oversample phases of tapsPerPhase coefficients
// each from a Kaiser-windowed sinc prototype of length oversample*tapsPerPhase,
// normalized so each phase sums to unity gain.
func buildPolyphase(oversample, tapsPerPhase int, beta float64) [][]float64 {
	protoLen := oversample * tapsPerPhase
	prototype := make([]float64, protoLen)
	center := float64(protoLen-1) / 2.0

	denom := bessel0(beta)

	for n := range prototype {
		x := float64(n) - center
		sinc := sincValue(x / float64(oversample))

		ratio := 1 - math.Pow((float64(n)-center)/center, 2)
		if ratio < 0 {
			ratio = 0
		}

		window := bessel0(beta*math.Sqrt(ratio)) / denom
		prototype[n] = sinc * window
	}

	phases := make([][]float64, oversample)

	for p := range phases {
		taps := make([]float64, tapsPerPhase)

		var sum float64

		for k := range taps {
			idx := k*oversample + p
			if idx < len(prototype) {
				taps[k] = prototype[idx]
				sum += taps[k]
			}
		}

		if sum != 0 {
			for k := range taps {
				taps[k] /= sum
			}
		}

		phases[p] = taps
	}

	return phases
}

func sincValue(x float64) float64 {
	if x == 0 {
		return 1.0
	}

	px := math.Pi * x

	return math.Sin(px) / px
}

// bessel0 computes the zeroth-order modified Bessel function of the first
// kind via its power series, for the Kaiser window.
func bessel0(x float64) float64 {
	sum := 1.0
	term := 1.0

	for k := 1; k < 25; k++ {
		term *= (x / (2 * float64(k))) * (x / (2 * float64(k)))
		sum += term

		if term < 1e-12*sum {
			break
		}
	}

	return sum
}
