package mweight

import (
	"fmt"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

// state is the per-channel history ring for one filter instance: previous
// input samples x[n-k] and previous output samples y[n-k], sized by the
// longest taps of the coefficient set in use. Zero-initialized; no special
// warm-up handling beyond that, so the transient at stream/partition start
// is accepted.
type state struct {
	xHistory []float64
	yHistory []float64
}

func (s *state) processIIR(c Coefficients, sample float64) float64 {
	for i := len(s.xHistory) - 1; i >= 1; i-- {
		s.xHistory[i] = s.xHistory[i-1]
	}

	s.xHistory[0] = sample

	var y float64
	for i := range c.B {
		y += c.B[i] * s.xHistory[i]
	}

	for i := 1; i < len(c.A); i++ {
		y -= c.A[i] * s.yHistory[i-1]
	}

	for i := len(s.yHistory) - 1; i >= 1; i-- {
		s.yHistory[i] = s.yHistory[i-1]
	}

	if len(s.yHistory) > 0 {
		s.yHistory[0] = y
	}

	return y
}

func (s *state) convolve(taps []float64, sample float64) float64 {
	for i := len(s.xHistory) - 1; i >= 1; i-- {
		s.xHistory[i] = s.xHistory[i-1]
	}

	s.xHistory[0] = sample

	var y float64
	for i, tap := range taps {
		y += tap * s.xHistory[i]
	}

	return y
}

// FilterBank is a per-channel M-weighting filter, either the tabulated IIR
// (default) or the 21-tap FIR equivalent when convolution mode is selected.
// Each channel's state is exclusively owned by the FilterBank instance that
// processes it; a Block Scheduler partition that wants continuity across
// blocks must reuse the same FilterBank, not create a new one per block.
type FilterBank struct {
	coeffs   Coefficients
	firTaps  []float64
	useFIR   bool
	channels int
	states   []state
}

// New allocates a FilterBank for sampleRate and channels using the IIR table.
// Fails with fault.ErrUnsupportedSampleRate if no coefficient set exists.
func New(sampleRate, channels int) (*FilterBank, error) {
	coeffs, ok := Lookup(sampleRate)
	if !ok {
		return nil, fmt.Errorf("%w: %d Hz", fault.ErrUnsupportedSampleRate, sampleRate)
	}

	fb := &FilterBank{
		coeffs:   coeffs,
		channels: channels,
		states:   make([]state, channels),
	}

	for ch := range fb.states {
		fb.states[ch] = state{
			xHistory: make([]float64, len(coeffs.B)),
			yHistory: make([]float64, len(coeffs.A)-1),
		}
	}

	return fb, nil
}

// NewFIR allocates a FilterBank that convolves with the 21-tap impulse
// response instead of running the IIR recurrence (--convpoints mode).
func NewFIR(channels int) *FilterBank {
	taps := FIRTaps()

	fb := &FilterBank{
		firTaps:  taps,
		useFIR:   true,
		channels: channels,
		states:   make([]state, channels),
	}

	for ch := range fb.states {
		fb.states[ch] = state{xHistory: make([]float64, len(taps))}
	}

	return fb
}

// Process applies the filter to one sample on the given channel, mutating
// that channel's history in place. History shifts happen after each call.
func (fb *FilterBank) Process(channel int, sample float64) float64 {
	s := &fb.states[channel]
	if fb.useFIR {
		return s.convolve(fb.firTaps, sample)
	}

	return s.processIIR(fb.coeffs, sample)
}

// Channels reports how many per-channel states this bank maintains.
func (fb *FilterBank) Channels() int {
	return fb.channels
}
