package decode

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"time"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

const (
	ffmpegName    = "ffmpeg"
	ffmpegTimeout = 5 * time.Minute
)

// DecodeFFmpeg pipes path through ffmpeg to raw interleaved 32-bit float PCM
// at targetSampleRate and decodes it into a MemorySource. Runs under
// context.WithTimeout and reports fault.ErrMissingRequirements when the
// binary isn't on PATH. ffmpeg handles any container/codec and resamples
// with -ar, so this path also serves sample rates the filter tables don't
// cover.
func DecodeFFmpeg(ctx context.Context, path string, channels, targetSampleRate, streamIndex int) (*MemorySource, error) {
	slog.Debug("decode.DecodeFFmpeg", "path", path, "stream", streamIndex, "stage", "start")

	ffmpegPath, found := binaryAvailable(ffmpegName)
	if !found {
		return nil, fmt.Errorf("%w: %s", fault.ErrMissingRequirements, ffmpegName)
	}

	ctx, cancel := context.WithTimeout(ctx, ffmpegTimeout)
	defer cancel()

	args := []string{"-v", "error", "-i", path, "-map", fmt.Sprintf("0:a:%d", streamIndex)}
	if channels > 0 {
		args = append(args, "-ac", strconv.Itoa(channels))
	}

	args = append(args, "-ar", strconv.Itoa(targetSampleRate), "-f", "f32le", "-acodec", "pcm_f32le", "pipe:1")

	//nolint:gosec // path and args are built from validated CLI/probe input
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: creating ffmpeg stdout pipe: %w", fault.ErrDecoderFailure, err)
	}

	if err = cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting ffmpeg: %w (%s)", fault.ErrDecoderFailure, err, stderr.String())
	}

	raw, readErr := io.ReadAll(stdout)

	waitErr := cmd.Wait()

	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		slog.Debug("decode.DecodeFFmpeg", "path", path, "stage", "timeout")

		return nil, fmt.Errorf("%w: after %v", fault.ErrTimeout, ffmpegTimeout)
	case waitErr != nil:
		slog.Debug("decode.DecodeFFmpeg", "path", path, "stage", "error")

		return nil, fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), waitErr)
	case readErr != nil:
		return nil, fmt.Errorf("%w: reading decoded samples: %w", fault.ErrDecoderFailure, readErr)
	}

	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("%w: decoded byte stream not aligned to 32-bit float samples", fault.ErrDecoderFailure)
	}

	totalSamples := len(raw) / 4
	if channels > 0 && totalSamples%channels != 0 {
		return nil, fmt.Errorf("%w: decoded samples not divisible by channel count", fault.ErrDecoderFailure)
	}

	samples := make([]float64, totalSamples)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4 : (i+1)*4])
		samples[i] = float64(math.Float32frombits(bits))
	}

	slog.Debug("decode.DecodeFFmpeg", "path", path, "stage", "done", "frames", totalSamples/channels)

	return NewMemorySource(samples, Format{SampleRate: targetSampleRate, Channels: channels})
}
