package gate

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Mode selects the relative-threshold strategy applied after the absolute
// gate: none (plain BS.1770 relative gate), level (user-supplied Leq(M)
// threshold replaces the relative gate), or dialogue (additionally requires
// a minimum speech probability).
type Mode int

const (
	ModeNone Mode = iota
	ModeLevel
	ModeDialogue
)

// AbsoluteGateLUFS is the default absolute gate floor, Gamma_abs.
const AbsoluteGateLUFS = -70.0

// RelativeGateOffsetLU is the relative gate's offset below the mean of
// blocks surviving the absolute gate.
const RelativeGateOffsetLU = -10.0

// DefaultSpeechThreshold is the dialogue gate's minimum passing probability.
const DefaultSpeechThreshold = 0.33

// Result is the outcome of running the Gating Engine over a GatingPool.
type Result struct {
	LKFS          float64
	SurvivorCount int
	BelowFloor    bool // true when zero blocks survive gating
	Percentiles   []float64
}

// blockLoudness converts one block's K-weighted mean-square power to LUFS
// using BS.1770's constant offset.
func blockLoudness(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return math.Inf(-1)
	}

	return -0.691 + 10*math.Log10(meanSquare)
}

// Run applies the absolute gate, then the relative/level/dialogue gate
// selected by mode, and reduces the surviving blocks to a final LKFS.
func Run(records []Record, mode Mode, levelGateLUFS, speechThreshold float64) Result {
	absoluteSurvivors := make([]Record, 0, len(records))

	for _, r := range records {
		if blockLoudness(r.MeanSquare) >= AbsoluteGateLUFS {
			absoluteSurvivors = append(absoluteSurvivors, r)
		}
	}

	if len(absoluteSurvivors) == 0 {
		return Result{BelowFloor: true}
	}

	relativeThreshold := relativeThresholdFor(absoluteSurvivors, mode, levelGateLUFS)

	survivors := make([]Record, 0, len(absoluteSurvivors))

	for _, r := range absoluteSurvivors {
		loud := blockLoudness(r.MeanSquare)
		if loud < relativeThreshold {
			continue
		}

		if mode == ModeDialogue && r.SpeechProb < speechThreshold {
			continue
		}

		survivors = append(survivors, r)
	}

	if len(survivors) == 0 {
		return Result{BelowFloor: true}
	}

	meanPower := meanMeanSquare(survivors)

	return Result{
		LKFS:          blockLoudness(meanPower),
		SurvivorCount: len(survivors),
		Percentiles:   percentiles(survivors),
	}
}

// relativeThresholdFor computes Gamma_rel: the loudness of the absolute-gate
// survivors' mean power minus 10 LU, or the user-supplied level gate
// threshold when mode is ModeLevel. The mean is taken over powers and only
// then converted to LUFS; averaging the per-block dB values instead would
// skew the threshold low on non-constant content.
func relativeThresholdFor(survivors []Record, mode Mode, levelGateLUFS float64) float64 {
	if mode == ModeLevel {
		return levelGateLUFS
	}

	return blockLoudness(meanMeanSquare(survivors)) + RelativeGateOffsetLU
}

func meanMeanSquare(records []Record) float64 {
	values := make([]float64, len(records))
	for i, r := range records {
		values[i] = r.MeanSquare
	}

	return stat.Mean(values, nil)
}

// percentiles reports the 10th/50th/90th percentile block loudness among the
// surviving records, returned in Result.Percentiles as an LKFS diagnostic.
func percentiles(records []Record) []float64 {
	loudness := make([]float64, len(records))
	for i, r := range records {
		loudness[i] = blockLoudness(r.MeanSquare)
	}

	sortFloat64s(loudness)

	return []float64{
		stat.Quantile(0.10, stat.Empirical, loudness, nil),
		stat.Quantile(0.50, stat.Empirical, loudness, nil),
		stat.Quantile(0.90, stat.Empirical, loudness, nil),
	}
}

func sortFloat64s(values []float64) {
	for i := 1; i < len(values); i++ {
		j := i
		for j > 0 && values[j-1] > values[j] {
			values[j-1], values[j] = values[j], values[j-1]
			j--
		}
	}
}
