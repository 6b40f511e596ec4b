//nolint:tagliatelle
package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

const (
	ffprobeName    = "ffprobe"
	ffprobeTimeout = 60 * time.Second
)

// probeResult is the subset of ffprobe's JSON output this collaborator needs:
// sample rate, channel count and duration for the selected audio stream.
type probeResult struct {
	Streams []struct {
		SampleRate string `json:"sample_rate"`
		Channels   int    `json:"channels"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

// Probed holds the metadata ffprobe reported for one input file.
type Probed struct {
	Format      Format
	DurationSec float64
}

// binaryAvailable checks whether name is resolvable on PATH.
func binaryAvailable(name string) (string, bool) {
	path, err := exec.LookPath(name)

	return path, err == nil
}

// Probe runs ffprobe against path and returns the audio stream at
// streamIndex's format and duration (0-based, matching --stream).
func Probe(ctx context.Context, path string, streamIndex int) (Probed, error) {
	slog.Debug("decode.Probe", "path", path, "stream", streamIndex, "stage", "start")

	ffprobePath, found := binaryAvailable(ffprobeName)
	if !found {
		return Probed{}, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, ffprobeName)
	}

	ctx, cancel := context.WithTimeout(ctx, ffprobeTimeout)
	defer cancel()

	selector := fmt.Sprintf("a:%d", streamIndex)

	//nolint:gosec // path is intentionally user-provided input for probing media files
	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "error",
		"-select_streams", selector,
		"-show_entries", "stream=sample_rate,channels,duration",
		"-of", "json",
		path,
	)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("decode.Probe", "path", path, "stage", "timeout")

			return Probed{}, fmt.Errorf("%w: after %v", fault.ErrTimeout, ffprobeTimeout)
		}

		slog.Debug("decode.Probe", "path", path, "stage", "error")

		return Probed{}, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	var parsed probeResult
	if err = json.Unmarshal(output, &parsed); err != nil {
		return Probed{}, fmt.Errorf("%w: %w", fault.ErrInvalidJSON, err)
	}

	if len(parsed.Streams) == 0 {
		return Probed{}, fmt.Errorf("%w: ffprobe returned no audio streams", fault.ErrDecoderFailure)
	}

	stream := parsed.Streams[0]

	sampleRate, err := strconv.Atoi(stream.SampleRate)
	if err != nil {
		return Probed{}, fmt.Errorf("%w: invalid sample rate %q", fault.ErrDecoderFailure, stream.SampleRate)
	}

	if stream.Channels <= 0 {
		return Probed{}, fmt.Errorf("%w: stream reports %d channels", fault.ErrChannelCountMismatch, stream.Channels)
	}

	duration := 0.0
	if stream.Duration != "" {
		if val, parseErr := strconv.ParseFloat(stream.Duration, 64); parseErr == nil {
			duration = val
		}
	}

	slog.Debug("decode.Probe", "path", path, "stage", "done", "sample_rate", sampleRate, "channels", stream.Channels)

	return Probed{
		Format:      Format{SampleRate: sampleRate, Channels: stream.Channels},
		DurationSec: duration,
	}, nil
}
