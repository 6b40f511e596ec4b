// Package engine wires the measurement core — filters, scheduler, workers,
// accumulators, gating, series, true peak, reducer — into one entry point:
// Run takes a decoded FrameSource and a Config and produces a Result.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/farcloser/leqm-nrt/internal/config"
	"github.com/farcloser/leqm-nrt/internal/decode"
	"github.com/farcloser/leqm-nrt/internal/energy"
	"github.com/farcloser/leqm-nrt/internal/fault"
	"github.com/farcloser/leqm-nrt/internal/filter/kweight"
	"github.com/farcloser/leqm-nrt/internal/filter/mweight"
	"github.com/farcloser/leqm-nrt/internal/gate"
	"github.com/farcloser/leqm-nrt/internal/reduce"
	"github.com/farcloser/leqm-nrt/internal/schedule"
	"github.com/farcloser/leqm-nrt/internal/series"
	"github.com/farcloser/leqm-nrt/internal/truepeak"
)

// ChannelStat is one channel's final reduced statistics.
type ChannelStat struct {
	Channel    int
	PeakDB     float64
	AverageDB  float64
	TruePeakDB float64
}

// GatingOutcome reports the Gating Engine's result when LKFS or dialogue
// gating was requested; zero value means gating was not run.
type GatingOutcome struct {
	Enabled       bool
	LKFS          float64
	SurvivorCount int
	BelowFloor    bool
	Percentiles   []float64
}

// Result is the engine's full return value: measurements, channel stats,
// series, true peak, gating outcome, and a truncated flag for cancelled runs.
type Result struct {
	LeqM            float64
	LeqNoWeight     float64
	MeanPower       float64
	MeanPowerW      float64
	ChannelStats    []ChannelStat
	ShortTerm       []series.Point
	LongWindow      []series.Point
	Allen           float64
	TruePeakDB      float64
	Gating          GatingOutcome
	Truncated       bool
	Frames          int64
	Channels        int
	SampleRate      int
	DurationSec     float64
	ProcessingNotes []string
}

// Run materializes source, drives it through the Block Scheduler and
// workers, and reduces the result. ctx cancellation is observed via a
// single atomic.Bool flag polled by workers between blocks, per the
// concurrency model: on cancellation the run finishes with Truncated set
// rather than returning an error.
func Run(ctx context.Context, source decode.FrameSource, cfg config.Config) (Result, error) {
	format := source.Format()

	slog.Debug("engine.Run", "stage", "start", "sample_rate", format.SampleRate, "channels", format.Channels)

	samples, _, frames, err := schedule.Materialize(source)
	if err != nil {
		return Result{}, err
	}

	var cancelled atomic.Bool

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()

	go func() {
		<-watchCtx.Done()

		if ctx.Err() != nil {
			cancelled.Store(true)
		}
	}()

	isCancelled := cancelled.Load

	globalEnergy := energy.NewGlobal(format.Channels)

	bufferFrames := int64(format.SampleRate) * int64(cfg.BufferMS) / 1000
	if bufferFrames <= 0 {
		bufferFrames = 1
	}

	if cfg.ConvPoints <= 0 {
		// Validate once, sequentially, before fanning out: every partition's
		// FilterBank shares the same sample rate, so a missing coefficient
		// table fails identically everywhere. Checking it up front avoids a
		// data race from every worker goroutine writing the same error
		// concurrently once RunParallel starts.
		if _, ok := mweight.Lookup(format.SampleRate); !ok {
			return Result{}, fmt.Errorf("%w: %d Hz", fault.ErrUnsupportedSampleRate, format.SampleRate)
		}
	}

	makeFilters := func(n int) (*mweight.FilterBank, error) {
		if cfg.ConvPoints > 0 {
			return mweight.NewFIR(n), nil
		}

		return mweight.New(format.SampleRate, n)
	}

	ungatedResult, err := schedule.RunUngated(
		samples, format.Channels, frames, cfg.Workers, bufferFrames,
		makeFilters, cfg.CalibrationGain, isCancelled, globalEnergy,
	)
	if err != nil {
		return Result{}, err
	}

	csum, sum, nMono, perChannel := globalEnergy.Snapshot()

	notes := make([]string, 0, 2)
	if nMono == 0 {
		return Result{}, fault.ErrInsufficientData
	}

	if !isFinite(csum) || !isFinite(sum) {
		return Result{}, fmt.Errorf("%w: accumulated energy csum=%v sum=%v", fault.ErrNumericFailure, csum, sum)
	}

	leqM := reduce.LeqM(csum, nMono)

	leqNoWeight := 0.0
	if cfg.LeqNoWeight {
		leqNoWeight = reduce.LeqNoWeight(sum, nMono)
	}

	if leqM == 0.0 {
		notes = append(notes, "silent")
	}

	tp := truepeak.New(format.Channels, cfg.Oversampling)
	if cfg.TruePeak {
		for frame := int64(0); frame < frames; frame++ {
			base := frame * int64(format.Channels)
			for ch := 0; ch < format.Channels; ch++ {
				tp.Process(ch, samples[base+int64(ch)])
			}
		}
	}

	channelStats := make([]ChannelStat, format.Channels)

	for ch := 0; ch < format.Channels; ch++ {
		meanPower := 0.0
		if perChannel[ch].NSamples > 0 {
			meanPower = perChannel[ch].SumWeighted / float64(perChannel[ch].NSamples)
		}

		stat := ChannelStat{
			Channel:   ch,
			PeakDB:    reduce.EnergyToLevel(perChannel[ch].PeakAbs * perChannel[ch].PeakAbs),
			AverageDB: reduce.EnergyToLevel(meanPower),
		}

		if cfg.TruePeak {
			stat.TruePeakDB = tp.PeakDB(ch, reduce.ReferenceOffsetDB)
		}

		channelStats[ch] = stat
	}

	overallTruePeak := 0.0

	if cfg.TruePeak {
		for _, stat := range channelStats {
			if stat.TruePeakDB > overallTruePeak {
				overallTruePeak = stat.TruePeakDB
			}
		}
	}

	shortTerm := series.ShortTerm(ungatedResult.Series, format.SampleRate)

	var longWindow []series.Point

	allen := 0.0

	durationSec := float64(frames) / float64(format.SampleRate)

	if cfg.LogLeqM10 {
		windowBlocks := series.LongWindowBlocks(cfg.LongPeriodMinutes, cfg.BufferMS)
		longWindow = series.LongWindow(shortTerm, windowBlocks)
		allen = series.Allen(longWindow, cfg.AllenThresholdDB, durationSec)
	}

	gatingOutcome := GatingOutcome{}
	gatingTruncated := false

	if cfg.LKFS || cfg.DolbyDI {
		gatingOutcome, gatingTruncated = runGating(samples, format, frames, cfg, isCancelled)
	}

	truncated := ungatedResult.Truncated || gatingTruncated

	if truncated {
		notes = append(notes, "truncated")
	}

	slog.Debug("engine.Run", "stage", "done", "leq_m", leqM, "truncated", truncated)

	return Result{
		LeqM:            reduce.Round(leqM),
		LeqNoWeight:     reduce.Round(leqNoWeight),
		MeanPower:       sum / float64(nMono),
		MeanPowerW:      csum / float64(nMono),
		ChannelStats:    channelStats,
		ShortTerm:       shortTerm,
		LongWindow:      longWindow,
		Allen:           reduce.Round(allen),
		TruePeakDB:      reduce.Round(overallTruePeak),
		Gating:          gatingOutcome,
		Truncated:       truncated,
		Frames:          frames,
		Channels:        format.Channels,
		SampleRate:      format.SampleRate,
		DurationSec:     durationSec,
		ProcessingNotes: notes,
	}, nil
}

func runGating(samples []float64, format decode.Format, frames int64, cfg config.Config, cancelled func() bool) (GatingOutcome, bool) {
	gains := kweight.DefaultChannelGains(format.Channels)
	pool := gate.NewPool(int(frames) / 100) //nolint:gosec // rough capacity hint only

	makeFilters := func(channelGains []float64) *kweight.Filter {
		return kweight.New(format.SampleRate, channelGains)
	}

	truncated := schedule.RunGated(samples, format.Channels, format.SampleRate, frames, cfg.Workers, makeFilters, gains, pool, adaptClassifier(cfg.SpeechClassifier), cancelled)

	mode := gate.ModeNone

	switch {
	case cfg.DolbyDI || cfg.GateMode == config.GateDialogue:
		mode = gate.ModeDialogue
	case cfg.GateMode == config.GateLevel:
		mode = gate.ModeLevel
	}

	result := gate.Run(pool.Snapshot(), mode, cfg.LevelGateDB, cfg.SpeechThreshold)

	if result.BelowFloor {
		return GatingOutcome{Enabled: true, BelowFloor: true}, truncated
	}

	return GatingOutcome{
		Enabled:       true,
		LKFS:          reduce.Round(result.LKFS),
		SurvivorCount: result.SurvivorCount,
		Percentiles:   result.Percentiles,
	}, truncated
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// adaptClassifier bridges config.SpeechClassifier to schedule.SpeechClassifier
// (identical shape, kept as distinct types so schedule stays independent of
// the config/CLI layer).
func adaptClassifier(c config.SpeechClassifier) schedule.SpeechClassifier {
	if c == nil {
		return nil
	}

	return classifierAdapter{c}
}

type classifierAdapter struct {
	inner config.SpeechClassifier
}

func (a classifierAdapter) Classify(samples []float64, channels int) float64 {
	return a.inner.Classify(samples, channels)
}
