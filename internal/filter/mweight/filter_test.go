package mweight

import (
	"errors"
	"math"
	"testing"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

func TestNew_UnsupportedSampleRate(t *testing.T) {
	_, err := New(96000, 2)
	if !errors.Is(err, fault.ErrUnsupportedSampleRate) {
		t.Fatalf("New(96000, 2) error = %v, want fault.ErrUnsupportedSampleRate", err)
	}
}

func TestNew_SupportedSampleRates(t *testing.T) {
	for _, rate := range []int{44100, 48000} {
		fb, err := New(rate, 2)
		if err != nil {
			t.Fatalf("New(%d, 2) unexpected error: %v", rate, err)
		}

		if fb.Channels() != 2 {
			t.Errorf("Channels() = %d, want 2", fb.Channels())
		}
	}
}

func TestFilterBank_SilenceStaysZero(t *testing.T) {
	fb, err := New(48000, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 1000; i++ {
		if got := fb.Process(0, 0); got != 0 {
			t.Fatalf("Process(0, 0) at sample %d = %v, want 0", i, got)
		}
	}
}

func TestFilterBank_PerChannelStateIndependence(t *testing.T) {
	fb, err := New(48000, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Drive channel 0 hard, leave channel 1 silent; channel 1 must be
	// unaffected by channel 0's history.
	for i := 0; i < 100; i++ {
		fb.Process(0, 1.0)

		if got := fb.Process(1, 0); got != 0 {
			t.Fatalf("channel 1 leaked energy from channel 0 at sample %d: %v", i, got)
		}
	}
}

func TestFilterBank_FIRDoesNotPanic(t *testing.T) {
	fb := NewFIR(1)

	for i := 0; i < len(FIRTaps())+5; i++ {
		v := fb.Process(0, math.Sin(float64(i)))
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("FIR output at sample %d is non-finite: %v", i, v)
		}
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup(44100); !ok {
		t.Error("Lookup(44100) not found")
	}

	if _, ok := Lookup(96000); ok {
		t.Error("Lookup(96000) unexpectedly found")
	}

	rates := SupportedRates()
	if len(rates) != 2 {
		t.Errorf("SupportedRates() = %v, want 2 entries", rates)
	}
}
