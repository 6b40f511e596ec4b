package report

import (
	"github.com/farcloser/leqm-nrt/internal/engine"
	"github.com/farcloser/leqm-nrt/internal/series"
)

// Metadata is the report's metadata block.
type Metadata struct {
	File                string           `json:"file"`
	OriginalSampleRate  int              `json:"original_sample_rate"`
	EffectiveSampleRate int              `json:"effective_sample_rate"`
	Channels            int              `json:"channels"`
	Frames              int64            `json:"frames"`
	DurationSeconds     measurementFloat `json:"duration_seconds"`
}

// Measurements is the report's measurements block.
type Measurements struct {
	LeqM              measurementFloat `json:"leq_m"`
	LeqNoWeight       measurementFloat `json:"leq_no_weight"`
	MeanPower         measurementFloat `json:"mean_power"`
	MeanPowerWeighted measurementFloat `json:"mean_power_weighted"`
}

// ChannelStatRecord is one entry of the JSON schema's channel_stats array.
type ChannelStatRecord struct {
	Channel    int              `json:"channel"`
	PeakDB     measurementFloat `json:"peak_db"`
	AverageDB  measurementFloat `json:"average_db"`
	TruePeakDB measurementFloat `json:"true_peak_db,omitempty"`
}

// ExecutionRecord is the report's execution block, present with --timing.
type ExecutionRecord struct {
	BinaryPath    string           `json:"binary_path"`
	BinaryVersion string           `json:"binary_version"`
	ExecSeconds   measurementFloat `json:"execution_seconds"`
	SpeedIndex    measurementFloat `json:"speed_index"`
	Mbps          measurementFloat `json:"mbps"`
}

// GatingRecord is the optional LKFS/dialogue-gating block, present only when
// --lkfs or --dolbydi was requested.
type GatingRecord struct {
	LKFS          measurementFloat `json:"lkfs,omitempty"`
	SurvivorCount int              `json:"survivor_count"`
	BelowFloor    bool             `json:"below_floor"`
}

// SeriesPoint is one entry of the logged short-term or long-window series.
type SeriesPoint struct {
	Seconds measurementFloat `json:"seconds"`
	LeqM    measurementFloat `json:"leq_m"`
}

// Record is the top-level JSON report document.
type Record struct {
	Metadata          Metadata            `json:"metadata"`
	Measurements      Measurements        `json:"measurements"`
	ReferenceOffsetDB float64             `json:"reference_offset_db"`
	ChannelStats      []ChannelStatRecord `json:"channel_stats"`
	Execution         *ExecutionRecord    `json:"execution,omitempty"`
	TruePeakDB        measurementFloat    `json:"true_peak_db,omitempty"`
	Allen             measurementFloat    `json:"allen_metric,omitempty"`
	Gating            *GatingRecord       `json:"gating,omitempty"`
	LogLeqM           []SeriesPoint       `json:"log_leq_m,omitempty"`
	LogLeqM10         []SeriesPoint       `json:"log_leq_m_10min,omitempty"`
	ProcessingNotes   []string            `json:"processing_notes,omitempty"`
	Truncated         bool                `json:"truncated,omitempty"`
}

// ErrorRecord is the structured error document:
// {"error": {"kind": "...", "detail": "..."}}.
type ErrorRecord struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody holds the taxonomy kind and a human-readable detail string.
type ErrorBody struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// Build assembles a Record from the engine's result, the source file path,
// the original (pre-decode) sample rate, and execution metadata.
func Build(
	result engine.Result,
	inputPath string,
	originalSampleRate int,
	exec ExecutionInfo,
	cfgLogLeqM, cfgLogLeqM10, cfgTiming bool,
) Record {
	channelStats := make([]ChannelStatRecord, len(result.ChannelStats))

	for i, cs := range result.ChannelStats {
		channelStats[i] = ChannelStatRecord{
			Channel:    cs.Channel,
			PeakDB:     measurementFloat(cs.PeakDB),
			AverageDB:  measurementFloat(cs.AverageDB),
			TruePeakDB: measurementFloat(cs.TruePeakDB),
		}
	}

	rec := Record{
		Metadata: Metadata{
			File:                inputPath,
			OriginalSampleRate:  originalSampleRate,
			EffectiveSampleRate: result.SampleRate,
			Channels:            result.Channels,
			Frames:              result.Frames,
			DurationSeconds:     measurementFloat(result.DurationSec),
		},
		Measurements: Measurements{
			LeqM:              measurementFloat(result.LeqM),
			LeqNoWeight:       measurementFloat(result.LeqNoWeight),
			MeanPower:         measurementFloat(result.MeanPower),
			MeanPowerWeighted: measurementFloat(result.MeanPowerW),
		},
		ReferenceOffsetDB: 108.010299957,
		ChannelStats:      channelStats,
		TruePeakDB:        measurementFloat(result.TruePeakDB),
		Allen:             measurementFloat(result.Allen),
		ProcessingNotes:   result.ProcessingNotes,
		Truncated:         result.Truncated,
	}

	if cfgTiming {
		rec.Execution = &ExecutionRecord{
			BinaryPath:    exec.BinaryPath,
			BinaryVersion: exec.BinaryVersion,
			ExecSeconds:   measurementFloat(exec.ExecSeconds),
			SpeedIndex:    measurementFloat(exec.SpeedIndex),
			Mbps:          measurementFloat(exec.Mbps),
		}
	}

	if result.Gating.Enabled {
		rec.Gating = &GatingRecord{
			LKFS:          measurementFloat(result.Gating.LKFS),
			SurvivorCount: result.Gating.SurvivorCount,
			BelowFloor:    result.Gating.BelowFloor,
		}
	}

	if cfgLogLeqM {
		rec.LogLeqM = toSeriesPoints(result.ShortTerm)
	}

	if cfgLogLeqM10 {
		rec.LogLeqM10 = toSeriesPoints(result.LongWindow)
	}

	return rec
}

func toSeriesPoints(points []series.Point) []SeriesPoint {
	out := make([]SeriesPoint, len(points))
	for i, p := range points {
		out[i] = SeriesPoint{Seconds: measurementFloat(p.Seconds), LeqM: measurementFloat(p.LeqM)}
	}

	return out
}
