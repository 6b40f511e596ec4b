package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

func TestMeasurementFloat_MarshalJSON(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{85.0, "85.0"},
		{85.12345, "85.1235"},
		{85.123456789, "85.1235"},
		{85.1000, "85.1"},
		{0.0, "0.0"},
		{-3.0103, "-3.0103"},
		{108.010299957, "108.0103"},
	}

	for _, c := range cases {
		got, err := measurementFloat(c.in).MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%v): %v", c.in, err)
		}

		if string(got) != c.want {
			t.Errorf("MarshalJSON(%v) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestWriteErrorJSON_CarriesTaxonomyKind(t *testing.T) {
	var buf bytes.Buffer

	err := WriteErrorJSON(&buf, fault.ErrUnsupportedSampleRate)
	if err != nil {
		t.Fatalf("WriteErrorJSON: %v", err)
	}

	var rec ErrorRecord
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if rec.Error.Kind != string(fault.KindUnsupportedSampleRate) {
		t.Errorf("Kind = %q, want %q", rec.Error.Kind, fault.KindUnsupportedSampleRate)
	}

	if rec.Error.Detail == "" {
		t.Error("Detail is empty, want the error message")
	}
}

func TestWriteErrorJSON_UnknownKind(t *testing.T) {
	var buf bytes.Buffer

	if err := WriteErrorJSON(&buf, errors.New("something else")); err != nil {
		t.Fatalf("WriteErrorJSON: %v", err)
	}

	if !strings.Contains(buf.String(), `"kind": "Unknown"`) {
		t.Errorf("output = %s, want kind Unknown", buf.String())
	}
}

func TestWriteLogFile_TwoColumnFormat(t *testing.T) {
	var buf bytes.Buffer

	points := []SeriesPoint{
		{Seconds: 0, LeqM: 78.9336},
		{Seconds: 0.85, LeqM: 80.1},
	}

	if err := WriteLogFile(&buf, points); err != nil {
		t.Fatalf("WriteLogFile: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}

	if lines[0] != "0.0000\t78.9336" {
		t.Errorf("line 0 = %q, want %q", lines[0], "0.0000\t78.9336")
	}

	if lines[1] != "0.8500\t80.1000" {
		t.Errorf("line 1 = %q, want %q", lines[1], "0.8500\t80.1000")
	}
}
