package gate

import (
	"math"
	"testing"
)

// lufsToMeanSquare inverts blockLoudness: the mean-square power whose block
// loudness is exactly lufs.
func lufsToMeanSquare(lufs float64) float64 {
	return math.Pow(10, (lufs+0.691)/10)
}

func recordsAt(lufs ...float64) []Record {
	records := make([]Record, len(lufs))
	for i, l := range lufs {
		records[i] = Record{StartFrame: int64(i), MeanSquare: lufsToMeanSquare(l), SpeechProb: 1.0}
	}

	return records
}

func TestRun_AbsoluteGateDiscardsQuietBlocks(t *testing.T) {
	// Two blocks below the -70 LUFS floor, two above; only the loud ones may
	// contribute.
	records := recordsAt(-80, -75, -20, -20)

	result := Run(records, ModeNone, 0, DefaultSpeechThreshold)

	if result.BelowFloor {
		t.Fatal("BelowFloor = true, want survivors")
	}

	if result.SurvivorCount != 2 {
		t.Errorf("SurvivorCount = %d, want 2", result.SurvivorCount)
	}

	if math.Abs(result.LKFS-(-20)) > 1e-9 {
		t.Errorf("LKFS = %v, want -20", result.LKFS)
	}
}

func TestRun_RelativeGateDiscardsBlocksTenLUBelowMean(t *testing.T) {
	// The power mean of the absolute survivors is about -21.2; the -40 block
	// sits more than 10 LU below it and must be dropped from the final average.
	records := recordsAt(-20, -20, -20, -40)

	result := Run(records, ModeNone, 0, DefaultSpeechThreshold)

	if result.SurvivorCount != 3 {
		t.Errorf("SurvivorCount = %d, want 3 (relative gate drops the -40 block)", result.SurvivorCount)
	}

	if math.Abs(result.LKFS-(-20)) > 1e-9 {
		t.Errorf("LKFS = %v, want -20", result.LKFS)
	}
}

// The relative threshold derives from the mean of the survivors' powers,
// not the mean of their dB values: one loud block pulls the power mean (and
// so the threshold) up far more than it pulls the dB mean. Here the power
// mean lands near -21.3 LUFS, so the -32 block falls below Gamma_rel even
// though a mean-of-dB threshold (about -36.2) would have kept it.
func TestRun_RelativeThresholdUsesPowerMean(t *testing.T) {
	records := recordsAt(-15, -28, -28, -28, -32)

	result := Run(records, ModeNone, 0, DefaultSpeechThreshold)

	if result.SurvivorCount != 4 {
		t.Errorf("SurvivorCount = %d, want 4 (power-mean threshold drops the -32 block)", result.SurvivorCount)
	}
}

func TestRun_EmptyPoolIsBelowFloor(t *testing.T) {
	result := Run(nil, ModeNone, 0, DefaultSpeechThreshold)
	if !result.BelowFloor {
		t.Error("BelowFloor = false for an empty pool, want true")
	}
}

func TestRun_AllBelowAbsoluteGateIsBelowFloor(t *testing.T) {
	result := Run(recordsAt(-80, -90), ModeNone, 0, DefaultSpeechThreshold)
	if !result.BelowFloor {
		t.Error("BelowFloor = false when nothing clears -70 LUFS, want true")
	}
}

func TestRun_LevelGateReplacesRelativeThreshold(t *testing.T) {
	records := recordsAt(-20, -30, -40)

	// A -25 level gate keeps only the -20 block; the relative gate would
	// have kept more.
	result := Run(records, ModeLevel, -25, DefaultSpeechThreshold)

	if result.SurvivorCount != 1 {
		t.Errorf("SurvivorCount = %d, want 1", result.SurvivorCount)
	}

	if math.Abs(result.LKFS-(-20)) > 1e-9 {
		t.Errorf("LKFS = %v, want -20", result.LKFS)
	}
}

func TestRun_DialogueGateRequiresSpeechProbability(t *testing.T) {
	records := recordsAt(-20, -20, -20)
	records[0].SpeechProb = 0.9
	records[1].SpeechProb = 0.5
	records[2].SpeechProb = 0.1 // below the default 0.33 threshold

	result := Run(records, ModeDialogue, 0, DefaultSpeechThreshold)

	if result.SurvivorCount != 2 {
		t.Errorf("SurvivorCount = %d, want 2 (speech gate drops the 0.1 block)", result.SurvivorCount)
	}
}

// Raising the level-gate threshold can only shrink the survivor set and can
// never raise it.
func TestRun_GateMonotonicity(t *testing.T) {
	records := recordsAt(-18, -22, -26, -30, -34, -38)

	prevSurvivors := len(records) + 1

	for _, threshold := range []float64{-40, -32, -24, -16} {
		result := Run(records, ModeLevel, threshold, DefaultSpeechThreshold)

		survivors := result.SurvivorCount
		if result.BelowFloor {
			survivors = 0
		}

		if survivors > prevSurvivors {
			t.Fatalf("threshold %v: survivors grew from %d to %d", threshold, prevSurvivors, survivors)
		}

		prevSurvivors = survivors
	}
}

func TestRun_PercentilesAreOrdered(t *testing.T) {
	result := Run(recordsAt(-30, -28, -26, -24, -22, -20), ModeNone, 0, DefaultSpeechThreshold)

	if len(result.Percentiles) != 3 {
		t.Fatalf("Percentiles len = %d, want 3", len(result.Percentiles))
	}

	p10, p50, p90 := result.Percentiles[0], result.Percentiles[1], result.Percentiles[2]
	if p10 > p50 || p50 > p90 {
		t.Errorf("Percentiles = %v, want non-decreasing", result.Percentiles)
	}
}

func TestPool_SnapshotOrdersByStartFrame(t *testing.T) {
	pool := NewPool(4)
	pool.Append(Record{StartFrame: 300, MeanSquare: 1})
	pool.Append(Record{StartFrame: 100, MeanSquare: 1})
	pool.Append(Record{StartFrame: 200, MeanSquare: 1})

	snap := pool.Snapshot()

	for i := 1; i < len(snap); i++ {
		if snap[i-1].StartFrame > snap[i].StartFrame {
			t.Fatalf("Snapshot out of order at %d: %v", i, snap)
		}
	}
}
