package schedule

// Strategy selects how the Block Scheduler divides a stream among workers.
type Strategy int

const (
	// StrategyPerChannel assigns one worker per channel: each channel is a
	// single sequential stream with one FilterState, eliminating partition
	// boundary transients at the cost of parallelism when channels <= 2.
	StrategyPerChannel Strategy = iota

	// StrategyPerTimePartition splits the time axis into P contiguous
	// partitions, each covering every channel; each partition starts from
	// zero filter history, accepting a short warm-up transient at every
	// partition boundary.
	StrategyPerTimePartition
)

// PartitionState is the Block Scheduler's per-partition lifecycle, tracked
// for diagnostics; the dispatcher below drives partitions straight through
// it without exposing intermediate states to callers.
type PartitionState int

const (
	StateReady PartitionState = iota
	StateFilling
	StateFull
	StateDispatched
	StateProcessed
	StateCommitted
	StateDone
)

// Partition is one contiguous unit of scheduling work: a frame range and the
// channel indices it owns. In StrategyPerChannel mode every partition covers
// the whole stream but a single channel; in StrategyPerTimePartition mode
// every partition covers every channel but a fraction of the stream.
type Partition struct {
	Index      int
	StartFrame int64
	EndFrame   int64
	Channels   []int
	State      PartitionState
}

// ChooseStrategy implements the scheduler heuristic: prefer per-channel
// parallelism whenever there are at least as many channels as workers
// (channels >= workers), since that eliminates boundary transients entirely;
// otherwise fall back to per-time partitioning with workers/channels
// contiguous partitions shared across all channels.
func ChooseStrategy(channels, workers int) (Strategy, int) {
	if workers < 1 {
		workers = 1
	}

	if channels >= workers {
		return StrategyPerChannel, channels
	}

	partitions := workers / channels
	if partitions < 1 {
		partitions = 1
	}

	return StrategyPerTimePartition, partitions
}

// Plan builds the partition list for totalFrames frames across channels
// channels, using workers worker slots.
func Plan(totalFrames int64, channels, workers int) []Partition {
	strategy, count := ChooseStrategy(channels, workers)

	allChannels := make([]int, channels)
	for ch := range allChannels {
		allChannels[ch] = ch
	}

	if strategy == StrategyPerChannel {
		partitions := make([]Partition, channels)
		for ch := range partitions {
			partitions[ch] = Partition{
				Index:      ch,
				StartFrame: 0,
				EndFrame:   totalFrames,
				Channels:   []int{ch},
				State:      StateReady,
			}
		}

		return partitions
	}

	partitions := make([]Partition, count)
	frameStep := totalFrames / int64(count)

	for i := range partitions {
		start := int64(i) * frameStep
		end := start + frameStep

		if i == count-1 {
			end = totalFrames // last partition absorbs the remainder
		}

		partitions[i] = Partition{
			Index:      i,
			StartFrame: start,
			EndFrame:   end,
			Channels:   allChannels,
			State:      StateReady,
		}
	}

	return partitions
}

// PlanGated builds the partition list for the gated worker. Gated blocks
// must span every channel (the block mean-square sums across channels), so
// gated partitioning is always along the time axis regardless of the ungated
// heuristic: block starts are dealt out hop-aligned in contiguous runs, one
// run per worker slot. A partition's frame range covers everything its last
// block reads, so ranges of adjacent partitions overlap by up to
// blockFrames-hopFrames frames; each block start is owned by exactly one
// partition.
func PlanGated(totalFrames int64, channels, workers int, blockFrames, hopFrames int64) []Partition {
	if blockFrames <= 0 || hopFrames <= 0 || totalFrames < blockFrames {
		return nil
	}

	if workers < 1 {
		workers = 1
	}

	totalStarts := (totalFrames-blockFrames)/hopFrames + 1

	count := int64(workers)
	if count > totalStarts {
		count = totalStarts
	}

	allChannels := make([]int, channels)
	for ch := range allChannels {
		allChannels[ch] = ch
	}

	partitions := make([]Partition, count)
	startsPer := totalStarts / count

	for i := range partitions {
		firstStart := int64(i) * startsPer
		lastStart := firstStart + startsPer - 1

		if int64(i) == count-1 {
			lastStart = totalStarts - 1 // last partition absorbs the remainder
		}

		partitions[i] = Partition{
			Index:      i,
			StartFrame: firstStart * hopFrames,
			EndFrame:   lastStart*hopFrames + blockFrames,
			Channels:   allChannels,
			State:      StateReady,
		}
	}

	return partitions
}
