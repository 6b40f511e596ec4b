package truepeak

import (
	"math"
	"testing"
)

func feedSine(e *Estimator, channel int, amp, freq float64, sampleRate, frames int) {
	for i := 0; i < frames; i++ {
		e.Process(channel, amp*math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
}

func TestEstimator_SilenceHasZeroPeak(t *testing.T) {
	e := New(1, 4)

	for i := 0; i < 1000; i++ {
		e.Process(0, 0)
	}

	if got := e.PeakAbs(0); got != 0 {
		t.Errorf("PeakAbs = %v, want 0", got)
	}

	if got := e.PeakDB(0, 108.010299957); got != 0 {
		t.Errorf("PeakDB of silence = %v, want 0", got)
	}
}

// The oversampled peak must never undercut the raw sample peak by more than
// a fraction of a dB: the interpolator sits between samples, not below them.
func TestEstimator_PeakBoundsSamplePeak(t *testing.T) {
	e := New(1, 4)
	feedSine(e, 0, 0.5, 997, 48000, 48000)

	samplePeakDB := 20 * math.Log10(0.5)
	truePeakDB := 20 * math.Log10(e.PeakAbs(0))

	if truePeakDB < samplePeakDB-0.1 {
		t.Errorf("true peak %v dB undercuts sample peak %v dB by more than 0.1", truePeakDB, samplePeakDB)
	}
}

func TestEstimator_ChannelsAreIndependent(t *testing.T) {
	e := New(2, 4)
	feedSine(e, 0, 0.8, 1000, 48000, 4800)

	if got := e.PeakAbs(1); got != 0 {
		t.Errorf("channel 1 peak = %v, want 0 (only channel 0 was driven)", got)
	}

	if got := e.PeakAbs(0); got < 0.7 {
		t.Errorf("channel 0 peak = %v, want near 0.8", got)
	}
}

func TestEstimator_DefaultOversampling(t *testing.T) {
	e := New(1, 0)
	if e.oversample != 4 {
		t.Errorf("oversample = %d, want default 4", e.oversample)
	}

	if len(e.phases) != 4 {
		t.Errorf("phases = %d, want 4", len(e.phases))
	}
}

func TestBuildPolyphase_PhasesSumToUnity(t *testing.T) {
	phases := buildPolyphase(4, tapsPerPhase, defaultKaiserBeta)

	for p, taps := range phases {
		var sum float64
		for _, tap := range taps {
			sum += tap
		}

		if math.Abs(sum-1.0) > 1e-12 {
			t.Errorf("phase %d tap sum = %v, want 1.0", p, sum)
		}
	}
}
