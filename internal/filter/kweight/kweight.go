// Package kweight implements the ITU-R BS.1770-4 K-weighting pre-filter: a
// high-shelf stage around 1.5kHz cascaded with an RLB high-pass around 38Hz,
// followed by per-channel BS.1770 gain weighting. Coefficients are derived at
// runtime from the analog prototype via the bilinear transform rather than
// tabulated, so any sample rate gets an exact cascade.
package kweight

import "math"

// biquad holds one Direct-Form-II-Transposed biquad's coefficients.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// biquadState holds one channel's transposed-form delay elements.
type biquadState struct {
	z1, z2 float64
}

func (s *biquadState) process(b biquad, in float64) float64 {
	out := b.b0*in + s.z1
	s.z1 = b.b1*in - b.a1*out + s.z2
	s.z2 = b.b2*in - b.a2*out

	return out
}

// shelfAndHighpass derives the pre-filter (high-shelf) and RLB (high-pass)
// biquads for sampleRate from the BS.1770-4 analog prototype.
func shelfAndHighpass(sampleRate int) (pre, rlb biquad) {
	fs := float64(sampleRate)

	f0 := 1681.974450955533
	gainDB := 3.999843853973347
	q := 0.7071752369554196

	k := math.Tan(math.Pi * f0 / fs)
	vh := math.Pow(10, gainDB/20)
	vb := math.Pow(vh, 0.4996667741545416)

	a0 := 1 + k/q + k*k
	pre.b0 = (vh + vb*k/q + k*k) / a0
	pre.b1 = 2 * (k*k - vh) / a0
	pre.b2 = (vh - vb*k/q + k*k) / a0
	pre.a1 = 2 * (k*k - 1) / a0
	pre.a2 = (1 - k/q + k*k) / a0

	f0 = 38.13547087602444
	q = 0.5003270373238773

	k = math.Tan(math.Pi * f0 / fs)

	a0 = 1 + k/q + k*k
	rlb.b0 = 1 / a0
	rlb.b1 = -2 / a0
	rlb.b2 = 1 / a0
	rlb.a1 = 2 * (k*k - 1) / a0
	rlb.a2 = (1 - k/q + k*k) / a0

	return pre, rlb
}

// DefaultChannelGains returns the BS.1770 channel weighting vector for a
// standard layout: mono/stereo get unity gain on every channel; layouts with
// more than 4 channels apply the 1.41 (~+1.5dB) surround gain to channels 3
// and 4 (Ls/Rs, 0-indexed) and zero out channel index 5 (LFE) when present.
func DefaultChannelGains(channels int) []float64 {
	gains := make([]float64, channels)
	for ch := range gains {
		gains[ch] = 1.0
	}

	if channels > 4 {
		gains[3] = 1.41
		gains[4] = 1.41
	}

	if channels >= 6 {
		gains[5] = 0 // LFE contributes zero
	}

	return gains
}

// Filter is a per-channel K-weighting cascade plus channel gain vector. A
// Filter's channel gains can be reconfigured for non-5.1 layouts by passing a
// custom vector to New.
type Filter struct {
	pre, rlb biquad
	states   []struct {
		pre, rlb biquadState
	}
	gains    []float64
	ampGains []float64
}

// New allocates a K-weighting Filter for sampleRate and the given per-channel
// gain vector (len(gains) == channel count). Use DefaultChannelGains for the
// standard BS.1770 layout.
func New(sampleRate int, gains []float64) *Filter {
	pre, rlb := shelfAndHighpass(sampleRate)

	f := &Filter{
		pre:   pre,
		rlb:   rlb,
		gains: append([]float64(nil), gains...),
	}
	f.states = make([]struct{ pre, rlb biquadState }, len(gains))

	// The BS.1770 channel weights multiply each channel's mean-square
	// power, so the amplitude-domain factor is their square root: squaring
	// the returned sample then contributes exactly gain*filtered^2.
	f.ampGains = make([]float64, len(gains))
	for ch, gain := range f.gains {
		f.ampGains[ch] = math.Sqrt(gain)
	}

	return f
}

// Process K-weights one sample on channel and applies the square root of
// that channel's BS.1770 power weight, returning the weighted sample ready
// for squaring.
func (f *Filter) Process(channel int, sample float64) float64 {
	st := &f.states[channel]
	filtered := st.pre.process(f.pre, sample)
	filtered = st.rlb.process(f.rlb, filtered)

	return f.ampGains[channel] * filtered
}

// Channels reports how many channel states this Filter maintains.
func (f *Filter) Channels() int {
	return len(f.gains)
}
