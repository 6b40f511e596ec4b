// Package energy implements the per-channel and global squared-sample
// accumulators. Workers accumulate locally for an entire block, then
// commit once under a single mutex-protected critical section; there is no
// per-sample locking.
package energy

import "sync"

// Channel is one channel's accumulated energy for a block or for the whole
// stream: sum of squared weighted samples, sum of squared raw samples, peak
// absolute raw sample, and the sample count that produced them.
type Channel struct {
	SumWeighted   float64
	SumUnweighted float64
	PeakAbs       float64
	NSamples      uint64
}

// Merge folds delta into c, keeping the merge commutative and associative so
// the final result does not depend on commit order.
func (c *Channel) Merge(delta Channel) {
	c.SumWeighted += delta.SumWeighted
	c.SumUnweighted += delta.SumUnweighted
	c.NSamples += delta.NSamples

	if delta.PeakAbs > c.PeakAbs {
		c.PeakAbs = delta.PeakAbs
	}
}

// Global is the stream-wide aggregate over all channels: csum (weighted),
// sum (unweighted), and n_mono_samples (frames * channels). It is created at
// stream start, mutated by workers under a single lock, and read once at the
// end by the Reducer.
type Global struct {
	mu sync.Mutex

	CSum         float64
	Sum          float64
	NMonoSamples uint64

	PerChannel []Channel
}

// NewGlobal allocates a Global accumulator for the given channel count.
func NewGlobal(channels int) *Global {
	return &Global{PerChannel: make([]Channel, channels)}
}

// Add atomically merges a worker's local per-channel deltas into the global
// accumulator. This is the only write path into Global; commit granularity
// is one block, never one sample.
func (g *Global) Add(deltas []Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for ch, delta := range deltas {
		g.PerChannel[ch].Merge(delta)
		g.CSum += delta.SumWeighted
		g.Sum += delta.SumUnweighted
		g.NMonoSamples += delta.NSamples
	}
}

// Snapshot returns a copy of the current aggregate state, safe to read after
// the processing barrier.
func (g *Global) Snapshot() (csum, sum float64, nMono uint64, perChannel []Channel) {
	g.mu.Lock()
	defer g.mu.Unlock()

	perChannel = make([]Channel, len(g.PerChannel))
	copy(perChannel, g.PerChannel)

	return g.CSum, g.Sum, g.NMonoSamples, perChannel
}
