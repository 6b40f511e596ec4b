// Package fault defines the sentinel error taxonomy shared by every stage of the
// loudness engine and its decoding/reporting collaborators. Call sites wrap a
// sentinel with the underlying cause using the double-%w idiom so callers can
// errors.Is against either the taxonomy or the concrete failure.
package fault

import "errors"

var (
	// ErrUnsupportedSampleRate is returned when no M-weighting coefficient
	// table exists for the stream's sample rate and no collaborator resampled
	// it first.
	ErrUnsupportedSampleRate = errors.New("unsupported sample rate")

	// ErrChannelCountMismatch is returned when a component receives a channel
	// count that disagrees with the one it was configured for.
	ErrChannelCountMismatch = errors.New("channel count mismatch")

	// ErrDecoderFailure wraps an opaque failure surfaced by an upstream decoder
	// collaborator (WAV parsing, ffmpeg/ffprobe subprocess failure).
	ErrDecoderFailure = errors.New("decoder failure")

	// ErrInsufficientData is returned when a stream yields zero frames.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNumericFailure is returned when an accumulator observes NaN or an
	// infinite value it cannot recover from.
	ErrNumericFailure = errors.New("numeric failure")

	// ErrCancelledByUser marks a run that was cancelled mid-stream; it never
	// reaches the caller as an error, only as a metadata bit on a partial result.
	ErrCancelledByUser = errors.New("cancelled by user")

	// ErrGatingFloorReached marks an LKFS/dialogue-gated run where no block
	// survived gating; reported as "below_floor", not surfaced as an error.
	ErrGatingFloorReached = errors.New("gating floor reached")

	// ErrMissingRequirements is returned when a required external binary
	// (ffmpeg, ffprobe) is not on PATH.
	ErrMissingRequirements = errors.New("missing requirements")

	// ErrTimeout is returned when a subprocess collaborator exceeds its
	// context deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrCommandFailure wraps a non-zero exit from a subprocess collaborator.
	ErrCommandFailure = errors.New("command failed")

	// ErrInvalidJSON is returned when a collaborator's JSON output cannot be
	// parsed.
	ErrInvalidJSON = errors.New("invalid json")

	// ErrReadFailure wraps an I/O error while reading frames from a source.
	ErrReadFailure = errors.New("read failure")

	// ErrInvalidArgument is returned for malformed CLI/config input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Kind identifies one of the taxonomy entries above for structured error
// records ({"error": {"kind": ..., "detail": ...}}).
type Kind string

const (
	KindUnsupportedSampleRate Kind = "UnsupportedSampleRate"
	KindChannelCountMismatch  Kind = "ChannelCountMismatch"
	KindDecoderFailure        Kind = "DecoderFailure"
	KindInsufficientData      Kind = "InsufficientData"
	KindNumericFailure        Kind = "NumericFailure"
	KindCancelledByUser       Kind = "CancelledByUser"
	KindGatingFloorReached    Kind = "GatingFloorReached"
	KindMissingRequirements   Kind = "MissingRequirements"
	KindTimeout               Kind = "Timeout"
	KindCommandFailure        Kind = "CommandFailure"
	KindInvalidJSON           Kind = "InvalidJSON"
	KindReadFailure           Kind = "ReadFailure"
	KindInvalidArgument       Kind = "InvalidArgument"
)

var kindBySentinel = map[error]Kind{
	ErrUnsupportedSampleRate: KindUnsupportedSampleRate,
	ErrChannelCountMismatch:  KindChannelCountMismatch,
	ErrDecoderFailure:        KindDecoderFailure,
	ErrInsufficientData:      KindInsufficientData,
	ErrNumericFailure:        KindNumericFailure,
	ErrCancelledByUser:       KindCancelledByUser,
	ErrGatingFloorReached:    KindGatingFloorReached,
	ErrMissingRequirements:   KindMissingRequirements,
	ErrTimeout:               KindTimeout,
	ErrCommandFailure:        KindCommandFailure,
	ErrInvalidJSON:           KindInvalidJSON,
	ErrReadFailure:           KindReadFailure,
	ErrInvalidArgument:       KindInvalidArgument,
}

// Classify maps err to the taxonomy Kind of a sentinel it wraps, or "" if
// err does not wrap any known sentinel. When err wraps more than one
// sentinel, which of their Kinds is returned is not defined.
func Classify(err error) Kind {
	for sentinel, kind := range kindBySentinel {
		if errors.Is(err, sentinel) {
			return kind
		}
	}

	return ""
}

// ExitCode maps a Kind to the process exit code mandated by the CLI contract:
// 1 invalid argument/unsupported input, 2 decoding failure, 3 processing error.
func ExitCode(kind Kind) int {
	switch kind {
	case KindUnsupportedSampleRate, KindChannelCountMismatch, KindInvalidArgument:
		return 1
	case KindDecoderFailure, KindMissingRequirements, KindTimeout, KindCommandFailure, KindInvalidJSON, KindReadFailure:
		return 2
	case KindNumericFailure, KindInsufficientData:
		return 3
	default:
		return 1
	}
}
