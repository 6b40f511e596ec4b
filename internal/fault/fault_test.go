package fault

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify_DirectSentinel(t *testing.T) {
	if got := Classify(ErrUnsupportedSampleRate); got != KindUnsupportedSampleRate {
		t.Errorf("Classify = %q, want %q", got, KindUnsupportedSampleRate)
	}
}

func TestClassify_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrDecoderFailure, errors.New("bad header"))
	if got := Classify(err); got != KindDecoderFailure {
		t.Errorf("Classify = %q, want %q", got, KindDecoderFailure)
	}
}

func TestClassify_UnknownError(t *testing.T) {
	if got := Classify(errors.New("something else")); got != "" {
		t.Errorf("Classify = %q, want empty", got)
	}
}

func TestExitCode(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindUnsupportedSampleRate, 1},
		{KindChannelCountMismatch, 1},
		{KindInvalidArgument, 1},
		{KindDecoderFailure, 2},
		{KindMissingRequirements, 2},
		{KindTimeout, 2},
		{KindCommandFailure, 2},
		{KindInvalidJSON, 2},
		{KindReadFailure, 2},
		{KindNumericFailure, 3},
		{KindInsufficientData, 3},
		{Kind(""), 1},
	}

	for _, c := range cases {
		if got := ExitCode(c.kind); got != c.want {
			t.Errorf("ExitCode(%q) = %d, want %d", c.kind, got, c.want)
		}
	}
}
