// Package leqm measures the perceived loudness of motion-picture audio as
// Leq(M) per ISO 21727, with optional unweighted Leq, per-channel stats,
// true-peak, short-term and long-window series, the Allen metric, and
// BS.1770-4 LKFS with absolute/relative/level/dialogue gating.
package leqm

/*
Usage:

	source, err := leqm.NewMemorySource(samples, leqm.Format{SampleRate: 48000, Channels: 2})
	result, err := leqm.Measure(ctx, source, leqm.DefaultOptions())
	fmt.Printf("Leq(M): %.4f dB\n", result.LeqM)

	// LKFS with gating
	opts := leqm.DefaultOptions()
	opts.LKFS = true
	result, err := leqm.Measure(ctx, source, opts)
	if result.Gating.BelowFloor {
	    fmt.Println("below_floor")
	}

	// Per-block series and the Allen metric
	opts := leqm.DefaultOptions()
	opts.BufferMS = 750
	opts.LogLeqM10 = true
	result, err := leqm.Measure(ctx, source, opts)
	fmt.Printf("Allen: %.4f\n", result.Allen)
*/

import (
	"context"

	"github.com/farcloser/leqm-nrt/internal/config"
	"github.com/farcloser/leqm-nrt/internal/decode"
	"github.com/farcloser/leqm-nrt/internal/engine"
)

// Format describes a decoded stream's sample rate and channel layout.
type Format = decode.Format

// FrameSource is the decoder contract the engine consumes: anything yielding
// interleaved float64 frames normalized to [-1, 1].
type FrameSource = decode.FrameSource

// Options configures a measurement run; zero values fall back to defaults at
// validation time.
type Options = config.Config

// Result is the full measurement outcome.
type Result = engine.Result

// ChannelStat is one channel's reduced statistics within a Result.
type ChannelStat = engine.ChannelStat

// GatingOutcome is the LKFS gating block of a Result.
type GatingOutcome = engine.GatingOutcome

// DefaultOptions returns an Options with every field at its default:
// 850ms blocks, CPU-count workers, 10-minute long window, 80dB Allen
// threshold, 4x true-peak oversampling.
func DefaultOptions() Options {
	return config.Default()
}

// NewMemorySource wraps an already-decoded interleaved buffer as a
// FrameSource.
func NewMemorySource(samples []float64, format Format) (FrameSource, error) {
	return decode.NewMemorySource(samples, format)
}

// Measure drives source through the block-scheduled measurement pipeline and
// reduces it to a Result. Cancelling ctx truncates the run (Result.Truncated)
// rather than failing it.
func Measure(ctx context.Context, source FrameSource, opts Options) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{}, err
	}

	return engine.Run(ctx, source, opts)
}
