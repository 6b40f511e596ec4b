package schedule

import (
	"math"

	"github.com/farcloser/leqm-nrt/internal/energy"
	"github.com/farcloser/leqm-nrt/internal/filter/mweight"
)

// BlockSample is one ungated block's contribution to the logging series:
// its start frame, the weighted energy accumulated by one partition over
// that block, and the sample count behind it. Partitions that own disjoint channels at
// the same StartFrame (StrategyPerChannel) each emit one BlockSample per
// chunk; the scheduler merges same-StartFrame samples across partitions
// before handing the series out, so the series always reflects every
// channel regardless of which parallelism strategy produced it.
type BlockSample struct {
	StartFrame  int64
	SumWeighted float64
	NSamples    uint64
}

// UngatedResult is one partition's contribution from the ungated worker: its
// aggregated per-channel energy (indexed the same as Partition.Channels),
// the per-block series the logging series consumes, and whether
// cancellation truncated it.
type UngatedResult struct {
	Channels  []int
	Energy    []energy.Channel
	Blocks    []BlockSample
	Truncated bool
}

// ProcessUngated runs the ungated worker over one partition: calibrate,
// M-weight, square, and locally accumulate every sample in
// [p.StartFrame, p.EndFrame) in chunks of bufferFrames, checking cancelled
// once per chunk (between blocks, not between samples). samples is the full
// interleaved stream buffer; totalChannels is its channel stride.
func ProcessUngated(
	p Partition,
	samples []float64,
	totalChannels int,
	bufferFrames int64,
	filters *mweight.FilterBank,
	calGain func(int) float64,
	cancelled func() bool,
) UngatedResult {
	local := make([]energy.Channel, len(p.Channels))
	blocks := make([]BlockSample, 0, (p.EndFrame-p.StartFrame)/maxInt64(bufferFrames, 1)+1)

	if bufferFrames <= 0 {
		bufferFrames = p.EndFrame - p.StartFrame
		if bufferFrames <= 0 {
			bufferFrames = 1
		}
	}

	truncated := false

	for blockStart := p.StartFrame; blockStart < p.EndFrame; blockStart += bufferFrames {
		if cancelled != nil && cancelled() {
			truncated = true

			break
		}

		blockEnd := blockStart + bufferFrames
		if blockEnd > p.EndFrame {
			blockEnd = p.EndFrame
		}

		var blockWeighted float64

		var blockSamples uint64

		for frame := blockStart; frame < blockEnd; frame++ {
			base := frame * int64(totalChannels)

			for ci, ch := range p.Channels {
				raw := samples[base+int64(ch)]
				gained := raw * calGain(ch)
				weighted := filters.Process(ci, gained)

				local[ci].SumWeighted += weighted * weighted
				local[ci].SumUnweighted += raw * raw
				local[ci].NSamples++

				if abs := math.Abs(raw); abs > local[ci].PeakAbs {
					local[ci].PeakAbs = abs
				}

				blockWeighted += weighted * weighted
				blockSamples++
			}
		}

		blocks = append(blocks, BlockSample{
			StartFrame:  blockStart,
			SumWeighted: blockWeighted,
			NSamples:    blockSamples,
		})
	}

	return UngatedResult{Channels: p.Channels, Energy: local, Blocks: blocks, Truncated: truncated}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}

	return b
}
