package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

// WriteJSON serializes rec to w as the top-level JSON report document.
func WriteJSON(w io.Writer, rec Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(rec); err != nil {
		return fmt.Errorf("writing json report: %w", err)
	}

	return nil
}

// WriteErrorJSON serializes err as a structured error record:
// {"error": {"kind": "...", "detail": "..."}}.
func WriteErrorJSON(w io.Writer, err error) error {
	kind := fault.Classify(err)
	if kind == "" {
		kind = "Unknown"
	}

	rec := ErrorRecord{Error: ErrorBody{Kind: string(kind), Detail: err.Error()}}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if encodeErr := encoder.Encode(rec); encodeErr != nil {
		return fmt.Errorf("writing error report: %w", encodeErr)
	}

	return nil
}

// WriteLogFile writes the two-column (seconds, dB) time series consumed by
// --logfile. It is written in addition to the JSON report, which still
// embeds the series whenever the matching logging toggle is set.
func WriteLogFile(w io.Writer, points []SeriesPoint) error {
	for _, p := range points {
		if _, err := fmt.Fprintf(w, "%.4f\t%.4f\n", float64(p.Seconds), float64(p.LeqM)); err != nil {
			return fmt.Errorf("writing logfile: %w", err)
		}
	}

	return nil
}
