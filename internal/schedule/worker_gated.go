package schedule

import (
	"github.com/farcloser/leqm-nrt/internal/filter/kweight"
	"github.com/farcloser/leqm-nrt/internal/gate"
)

// GatedBlockMS and GatedHopMS are the default gated block parameters: 400ms
// blocks at 100ms hop, i.e. 75% overlap, per ITU-R BS.1770-4.
const (
	GatedBlockMS = 400
	GatedHopMS   = 100
)

// SpeechClassifier mirrors config.SpeechClassifier without importing the
// config package, keeping schedule independent of the CLI layer; nil means
// every block passes the dialogue gate (p_b defaults to 1.0).
type SpeechClassifier interface {
	Classify(samples []float64, channels int) float64
}

// ProcessGated runs the gated worker over one gated partition from
// PlanGated, emitting one GatingPool record per overlapping 400ms block
// whose start the partition owns. The partition's whole sample range is
// K-weighted once, in stream order, before any window is summed: overlapping
// blocks must never re-drive the stateful filter over samples it already
// consumed, or its history becomes time-discontinuous at every hop.
// samples is the full interleaved stream buffer; totalChannels is its
// channel stride; sampleRate converts block/hop milliseconds to frame counts.
func ProcessGated(
	p Partition,
	samples []float64,
	totalChannels, sampleRate int,
	filters *kweight.Filter,
	pool *gate.Pool,
	classifier SpeechClassifier,
	cancelled func() bool,
) (truncated bool) {
	blockFrames, hopFrames := gatedFrameCounts(sampleRate)

	span := p.EndFrame - p.StartFrame
	if span < blockFrames {
		return false
	}

	channels := len(p.Channels)
	weighted := make([]float64, span*int64(channels))

	for frame := p.StartFrame; frame < p.EndFrame; frame++ {
		base := frame * int64(totalChannels)
		out := (frame - p.StartFrame) * int64(channels)

		for ci, ch := range p.Channels {
			weighted[out+int64(ci)] = filters.Process(ci, samples[base+int64(ch)])
		}
	}

	for blockStart := p.StartFrame; blockStart+blockFrames <= p.EndFrame; blockStart += hopFrames {
		if cancelled != nil && cancelled() {
			return true
		}

		local := blockStart - p.StartFrame
		window := weighted[local*int64(channels) : (local+blockFrames)*int64(channels)]

		var sumSquares float64
		for _, w := range window {
			sumSquares += w * w
		}

		meanSquare := sumSquares / float64(len(window))

		speechProb := 1.0
		if classifier != nil {
			rawBase := blockStart * int64(totalChannels)
			raw := samples[rawBase : rawBase+blockFrames*int64(totalChannels)]
			speechProb = classifier.Classify(raw, totalChannels)
		}

		pool.Append(gate.Record{
			StartFrame: blockStart,
			MeanSquare: meanSquare,
			SpeechProb: speechProb,
		})
	}

	return false
}

func gatedFrameCounts(sampleRate int) (blockFrames, hopFrames int64) {
	blockFrames = int64(sampleRate) * GatedBlockMS / 1000
	hopFrames = int64(sampleRate) * GatedHopMS / 1000

	if blockFrames <= 0 {
		blockFrames = 1
	}

	if hopFrames <= 0 {
		hopFrames = 1
	}

	return blockFrames, hopFrames
}
