// Package reduce combines global squared-sample
// accumulators into final dB-SPL numbers with the ISO calibration offset.
package reduce

import "math"

// ReferenceOffsetDB converts normalized digital RMS to dB SPL at the ISO
// calibration point (20*log10(20 uPa / 0 dBFS-equivalent pressure), plus
// calibration). A -20dBFS sine (peak 0.1) reads 85 dB SPL unweighted.
const ReferenceOffsetDB = 108.010299957

// DecimalDigits is the rounding precision applied to every reported
// measurement.
const DecimalDigits = 4

// EnergyToLevel converts a mean squared-sample power to dB SPL using the
// reference offset. meanPower <= 0 reports 0 (silence), never NaN or -Inf.
func EnergyToLevel(meanPower float64) float64 {
	if meanPower <= 0 || math.IsNaN(meanPower) {
		return 0.0
	}

	level := 20*math.Log10(math.Sqrt(meanPower)) + ReferenceOffsetDB
	if level < 0 {
		return 0.0
	}

	return level
}

// LeqM computes the final M-weighted Leq from the weighted energy sum and
// total mono sample count.
func LeqM(csum float64, nMonoSamples uint64) float64 {
	if nMonoSamples == 0 {
		return 0.0
	}

	return EnergyToLevel(csum / float64(nMonoSamples))
}

// LeqNoWeight computes the unweighted Leq from the raw energy sum and total
// mono sample count.
func LeqNoWeight(sum float64, nMonoSamples uint64) float64 {
	if nMonoSamples == 0 {
		return 0.0
	}

	return EnergyToLevel(sum / float64(nMonoSamples))
}

// Round rounds val to DecimalDigits decimal digits for reporting. Internal
// math stays 64-bit float throughout; only the reported value is rounded.
func Round(val float64) float64 {
	scale := math.Pow(10, float64(DecimalDigits))

	return math.Round(val*scale) / scale
}
