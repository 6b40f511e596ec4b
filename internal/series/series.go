// Package series implements the logging series: the per-block Leq(M)
// log, the sliding 10-minute Leq(M,10m) series, and the Allen metric derived
// from it.
package series

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/farcloser/leqm-nrt/internal/reduce"
	"github.com/farcloser/leqm-nrt/internal/schedule"
)

// Point is one entry of the short-term or long-window series: a timestamp in
// seconds from stream start and the Leq(M) value at that point.
type Point struct {
	Seconds float64
	LeqM    float64
}

// ShortTerm converts the scheduler's merged per-block energy series into a
// per-block Leq(M) log, one entry per ungated block in stream order.
func ShortTerm(blocks []schedule.BlockSample, sampleRate int) []Point {
	points := make([]Point, len(blocks))

	for i, b := range blocks {
		meanPower := 0.0
		if b.NSamples > 0 {
			meanPower = b.SumWeighted / float64(b.NSamples)
		}

		points[i] = Point{
			Seconds: float64(b.StartFrame) / float64(sampleRate),
			LeqM:    reduce.EnergyToLevel(meanPower),
		}
	}

	return points
}

// LongWindowBlocks computes W_long, the number of short-term blocks spanning
// longPeriodMinutes at the given block duration.
func LongWindowBlocks(longPeriodMinutes float64, bufferMS int) int {
	if bufferMS <= 0 {
		bufferMS = 850
	}

	windowMS := longPeriodMinutes * 60000

	blocks := int(windowMS / float64(bufferMS))
	if blocks < 1 {
		blocks = 1
	}

	return blocks
}

// LongWindow computes the sliding mean of short over a window of windowBlocks
// short-term points, using gonum's stat.Mean rather than a hand-rolled
// running-sum loop, one output point per completed window.
func LongWindow(short []Point, windowBlocks int) []Point {
	if windowBlocks < 1 {
		windowBlocks = 1
	}

	if len(short) < windowBlocks {
		return nil
	}

	values := make([]float64, len(short))
	for i, p := range short {
		values[i] = p.LeqM
	}

	out := make([]Point, 0, len(short)-windowBlocks+1)

	for start := 0; start+windowBlocks <= len(values); start++ {
		window := values[start : start+windowBlocks]
		out = append(out, Point{
			Seconds: short[start].Seconds,
			LeqM:    stat.Mean(window, nil),
		})
	}

	return out
}

// Allen computes the Allen metric: the thresholded sum of long-window values
// at or above thresholdDB, divided by the total program duration in minutes.
// totalSeconds is the full stream duration, not just the windowed portion.
func Allen(long []Point, thresholdDB, totalSeconds float64) float64 {
	if totalSeconds <= 0 || len(long) == 0 {
		return 0.0
	}

	values := make([]float64, 0, len(long))

	for _, p := range long {
		if p.LeqM >= thresholdDB {
			values = append(values, p.LeqM)
		}
	}

	if len(values) == 0 {
		return 0.0
	}

	sum := floats.Sum(values)

	return sum / (totalSeconds / 60.0)
}
