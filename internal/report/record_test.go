package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/farcloser/leqm-nrt/internal/engine"
	"github.com/farcloser/leqm-nrt/internal/series"
)

func sampleResult() engine.Result {
	return engine.Result{
		LeqM:        78.9336,
		LeqNoWeight: 85.0,
		ChannelStats: []engine.ChannelStat{
			{Channel: 0, PeakDB: 88.0, AverageDB: 78.9},
		},
		ShortTerm:   []series.Point{{Seconds: 0, LeqM: 78.9}},
		LongWindow:  []series.Point{{Seconds: 0, LeqM: 78.9}},
		Frames:      96000,
		Channels:    1,
		SampleRate:  48000,
		DurationSec: 2.0,
	}
}

func TestBuild_SeriesOnlyWhenRequested(t *testing.T) {
	exec := ExecutionInfo{BinaryPath: "/usr/bin/leqm-nrt", BinaryVersion: "test"}

	bare := Build(sampleResult(), "in.wav", 48000, exec, false, false, false)
	if bare.LogLeqM != nil || bare.LogLeqM10 != nil || bare.Execution != nil {
		t.Errorf("Build without toggles populated optional blocks: %+v", bare)
	}

	full := Build(sampleResult(), "in.wav", 48000, exec, true, true, true)
	if len(full.LogLeqM) != 1 || len(full.LogLeqM10) != 1 {
		t.Errorf("Build with logging toggles: LogLeqM=%d LogLeqM10=%d, want 1/1", len(full.LogLeqM), len(full.LogLeqM10))
	}

	if full.Execution == nil || full.Execution.BinaryPath != "/usr/bin/leqm-nrt" {
		t.Errorf("Build with timing toggle: Execution = %+v", full.Execution)
	}
}

func TestBuild_GatingOnlyWhenEnabled(t *testing.T) {
	result := sampleResult()

	rec := Build(result, "in.wav", 48000, ExecutionInfo{}, false, false, false)
	if rec.Gating != nil {
		t.Error("Gating block present without gating enabled")
	}

	result.Gating = engine.GatingOutcome{Enabled: true, LKFS: -23.1, SurvivorCount: 42}

	rec = Build(result, "in.wav", 48000, ExecutionInfo{}, false, false, false)
	if rec.Gating == nil || rec.Gating.SurvivorCount != 42 {
		t.Errorf("Gating = %+v, want survivor count 42", rec.Gating)
	}
}

func TestWriteJSON_ContainsMandatedFields(t *testing.T) {
	var buf bytes.Buffer

	rec := Build(sampleResult(), "in.wav", 48000, ExecutionInfo{}, false, false, false)
	if err := WriteJSON(&buf, rec); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	out := buf.String()

	for _, want := range []string{
		`"leq_m": 78.9336`,
		`"reference_offset_db": 108.010299957`,
		`"channel_stats"`,
		`"original_sample_rate": 48000`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteText_RendersSummary(t *testing.T) {
	var buf bytes.Buffer

	rec := Build(sampleResult(), "in.wav", 48000, ExecutionInfo{}, false, false, false)
	if err := WriteText(&buf, rec); err != nil {
		t.Fatalf("WriteText: %v", err)
	}

	out := buf.String()

	if !strings.Contains(out, "Leq(M): 78.9336 dB") {
		t.Errorf("text output missing Leq(M) line:\n%s", out)
	}

	if !strings.Contains(out, "in.wav") {
		t.Errorf("text output missing file name:\n%s", out)
	}
}
