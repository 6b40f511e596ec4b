// Package schedule implements the block scheduler and the two worker kinds
// that consume its blocks: the ungated Leq(M) worker and the gated
// loudness-block worker. The scheduler owns the stream buffer and the
// partition/channel assignment strategy; workers own nothing but the
// FilterState of the partition or channel stream they were handed.
package schedule

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/farcloser/leqm-nrt/internal/energy"
	"github.com/farcloser/leqm-nrt/internal/filter/kweight"
	"github.com/farcloser/leqm-nrt/internal/filter/mweight"
	"github.com/farcloser/leqm-nrt/internal/gate"
)

// UngatedRunResult is the outcome of driving the whole stream through the
// ungated worker pool: a merged, StartFrame-ordered block series for the
// logging series and whether cancellation truncated any partition.
type UngatedRunResult struct {
	Series    []BlockSample
	Truncated bool
}

// RunUngated plans the stream into partitions per the scheduling heuristic,
// drives each partition through the ungated worker with bounded
// concurrency (the sync.WaitGroup + semaphore-channel barrier in
// RunParallel), commits every partition's local energy into globalEnergy,
// and merges the per-partition block series into one StartFrame-ordered
// series spanning every channel.
func RunUngated(
	samples []float64,
	totalChannels int,
	frames int64,
	workers int,
	bufferFrames int64,
	makeFilters func(n int) (*mweight.FilterBank, error),
	calGain func(int) float64,
	cancelled func() bool,
	globalEnergy *energy.Global,
) (UngatedRunResult, error) {
	partitions := Plan(frames, totalChannels, workers)

	slog.Debug("schedule.RunUngated", "partitions", len(partitions), "frames", frames, "workers", workers)

	var (
		filterErrMu sync.Mutex
		filterErr   error
	)

	// The stream buffer is already fully materialized, so every partition
	// jumps straight from planning to FULL; each worker goroutine advances
	// only its own partition's state.
	for i := range partitions {
		partitions[i].State = StateFull
	}

	results := RunParallel(workers, partitions, func(idx int, p Partition) UngatedResult {
		partitions[idx].State = StateDispatched

		filters, err := makeFilters(len(p.Channels))
		if err != nil {
			filterErrMu.Lock()
			filterErr = err
			filterErrMu.Unlock()

			return UngatedResult{Channels: p.Channels}
		}

		result := ProcessUngated(p, samples, totalChannels, bufferFrames, filters, calGain, cancelled)
		partitions[idx].State = StateProcessed

		return result
	})

	if filterErr != nil {
		return UngatedRunResult{}, filterErr
	}

	truncated := false
	seriesByStart := make(map[int64]BlockSample)

	for i, r := range results {
		if r.Truncated {
			truncated = true
		}

		globalEnergy.Add(expandByGlobalChannel(r.Channels, r.Energy, totalChannels))
		partitions[i].State = StateCommitted

		for _, b := range r.Blocks {
			merged := seriesByStart[b.StartFrame]
			merged.StartFrame = b.StartFrame
			merged.SumWeighted += b.SumWeighted
			merged.NSamples += b.NSamples
			seriesByStart[b.StartFrame] = merged
		}
	}

	series := make([]BlockSample, 0, len(seriesByStart))
	for _, b := range seriesByStart {
		series = append(series, b)
	}

	sort.Slice(series, func(i, j int) bool { return series[i].StartFrame < series[j].StartFrame })

	for i := range partitions {
		partitions[i].State = StateDone
	}

	slog.Debug("schedule.RunUngated", "stage", "done", "blocks", len(series), "truncated", truncated)

	return UngatedRunResult{Series: series, Truncated: truncated}, nil
}

// expandByGlobalChannel re-indexes a partition's per-local-channel energy
// deltas back onto the stream's full channel indices, since energy.Global
// is sized by the stream's total channel count, not a partition's subset.
func expandByGlobalChannel(channels []int, local []energy.Channel, totalChannels int) []energy.Channel {
	full := make([]energy.Channel, totalChannels)
	for ci, ch := range channels {
		full[ch] = local[ci]
	}

	return full
}

// RunGated plans the stream into hop-aligned time partitions spanning every
// channel (PlanGated) and drives each through the gated worker,
// appending every 400ms block it produces into pool. Returns true if
// cancellation truncated any partition.
func RunGated(
	samples []float64,
	totalChannels, sampleRate int,
	frames int64,
	workers int,
	makeFilters func(gains []float64) *kweight.Filter,
	channelGains []float64,
	pool *gate.Pool,
	classifier SpeechClassifier,
	cancelled func() bool,
) bool {
	blockFrames, hopFrames := gatedFrameCounts(sampleRate)
	partitions := PlanGated(frames, totalChannels, workers, blockFrames, hopFrames)

	slog.Debug("schedule.RunGated", "partitions", len(partitions), "frames", frames, "workers", workers)

	results := RunParallel(workers, partitions, func(_ int, p Partition) bool {
		filters := makeFilters(channelGains)

		return ProcessGated(p, samples, totalChannels, sampleRate, filters, pool, classifier, cancelled)
	})

	truncated := false

	for _, t := range results {
		if t {
			truncated = true
		}
	}

	slog.Debug("schedule.RunGated", "stage", "done", "truncated", truncated)

	return truncated
}
