package report

import (
	"fmt"
	"io"
)

// WriteText renders rec as a grouped, human-readable summary: one line per
// measurement, key properties surfaced up front rather than the full JSON
// tree.
func WriteText(w io.Writer, rec Record) error {
	lines := []string{
		fmt.Sprintf("file: %s", rec.Metadata.File),
		fmt.Sprintf("sample_rate: %d Hz, channels: %d, duration: %.2fs",
			rec.Metadata.EffectiveSampleRate, rec.Metadata.Channels, float64(rec.Metadata.DurationSeconds)),
		"",
		fmt.Sprintf("Leq(M): %.4f dB", float64(rec.Measurements.LeqM)),
	}

	if rec.Measurements.LeqNoWeight != 0 {
		lines = append(lines, fmt.Sprintf("Leq(noW): %.4f dB", float64(rec.Measurements.LeqNoWeight)))
	}

	if rec.TruePeakDB != 0 {
		lines = append(lines, fmt.Sprintf("true peak: %.4f dBTP", float64(rec.TruePeakDB)))
	}

	if rec.Allen != 0 {
		lines = append(lines, fmt.Sprintf("Allen metric: %.4f", float64(rec.Allen)))
	}

	if rec.Gating != nil {
		if rec.Gating.BelowFloor {
			lines = append(lines, "LKFS: below_floor")
		} else {
			lines = append(lines, fmt.Sprintf("LKFS: %.4f (%d blocks survived gating)",
				float64(rec.Gating.LKFS), rec.Gating.SurvivorCount))
		}
	}

	lines = append(lines, "", "channel stats:")

	for _, ch := range rec.ChannelStats {
		line := fmt.Sprintf("  [%d] peak: %.4f dB  average: %.4f dB", ch.Channel, float64(ch.PeakDB), float64(ch.AverageDB))
		if ch.TruePeakDB != 0 {
			line += fmt.Sprintf("  true_peak: %.4f dB", float64(ch.TruePeakDB))
		}

		lines = append(lines, line)
	}

	if len(rec.ProcessingNotes) > 0 {
		lines = append(lines, "", "notes:")

		for _, note := range rec.ProcessingNotes {
			lines = append(lines, "  - "+note)
		}
	}

	if rec.Execution != nil {
		lines = append(lines, "",
			fmt.Sprintf("execution: %.2fs, speed_index=%.1f, mbps=%.2f",
				float64(rec.Execution.ExecSeconds), float64(rec.Execution.SpeedIndex), float64(rec.Execution.Mbps)))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("writing text report: %w", err)
		}
	}

	return nil
}
