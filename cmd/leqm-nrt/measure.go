package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	leqm "github.com/farcloser/leqm-nrt"
	"github.com/farcloser/leqm-nrt/internal/config"
	"github.com/farcloser/leqm-nrt/internal/decode"
	"github.com/farcloser/leqm-nrt/internal/fault"
	"github.com/farcloser/leqm-nrt/internal/filter/mweight"
	"github.com/farcloser/leqm-nrt/internal/report"
)

var errInvalidArgCount = errors.New("expected exactly one argument: the input audio file path")

func measureCommand() *cli.Command {
	return &cli.Command{
		Name:      "measure",
		Usage:     "Measure Leq(M) and optional auxiliary metrics for one audio file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "convpoints", Usage: "Use FIR convolution instead of IIR (any N > 0 selects the fixed 21-point response)"},
			&cli.IntFlag{Name: "numcpus", Usage: "Worker count (default: CPU count)"},
			&cli.StringFlag{Name: "chconfcal", Usage: "Comma-separated per-channel calibration gain in dB"},
			&cli.BoolFlag{Name: "leqnw", Usage: "Also emit unweighted Leq"},
			&cli.BoolFlag{Name: "logleqm", Usage: "Emit per-block Leq(M) series"},
			&cli.BoolFlag{Name: "logleqm10", Usage: "Emit 10-minute sliding series and Allen metric"},
			&cli.FloatFlag{Name: "longperiod", Usage: "Long-window duration in minutes", Value: 10},
			&cli.IntFlag{Name: "buffersize", Usage: "Block size in ms (750 recommended for --logleqm10)", Value: 850},
			&cli.FloatFlag{Name: "threshold", Usage: "Allen metric threshold in dB", Value: 80},
			&cli.BoolFlag{Name: "lkfs", Usage: "Enable BS.1770-4 LKFS with gating"},
			&cli.BoolFlag{Name: "dolbydi", Usage: "Enable dialogue-gated LKFS(DI) / Leq(M,DI)"},
			&cli.IntFlag{Name: "chgateconf", Usage: "Gating mode: 0 none, 1 level, 2 dialogue"},
			&cli.FloatFlag{Name: "agsthreshold", Usage: "Speech probability threshold", Value: 0.33},
			&cli.FloatFlag{Name: "levelgate", Usage: "Force level gating at this Leq(M) threshold in dB"},
			&cli.BoolFlag{Name: "truepeak", Usage: "Emit true-peak"},
			&cli.IntFlag{Name: "oversampling", Usage: "True-peak oversampling factor", Value: 4},
			&cli.BoolFlag{Name: "timing", Usage: "Emit execution timing"},
			&cli.StringFlag{Name: "format", Usage: "Decoder backend: wav or ffmpeg", Value: "wav"},
			&cli.IntFlag{Name: "stream", Usage: "Audio stream index to extract when --format ffmpeg"},
			&cli.StringFlag{Name: "logfile", Usage: "Write the two-column (seconds, dB) series to PATH"},
			&cli.BoolFlag{Name: "json", Usage: "Render JSON output", Value: true},
			&cli.BoolFlag{Name: "text", Usage: "Render text output instead of JSON"},
		},
		Action: runMeasure,
	}
}

func runMeasure(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	inputPath := cmd.Args().First()
	start := time.Now()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return writeFailure(err)
	}

	source, originalSampleRate, err := openSource(ctx, inputPath, cmd)
	if err != nil {
		return writeFailure(err)
	}

	result, err := leqm.Measure(ctx, source, cfg)
	if err != nil {
		return writeFailure(err)
	}

	execInfo, err := report.GatherExecutionInfo(inputPath, start, result.DurationSec)
	if err != nil {
		return writeFailure(err)
	}

	rec := report.Build(result, inputPath, originalSampleRate, execInfo, cfg.LogLeqM, cfg.LogLeqM10, cfg.Timing)

	if logfile := cmd.String("logfile"); logfile != "" {
		if err := writeLogFile(logfile, rec); err != nil {
			return writeFailure(err)
		}
	}

	if cmd.Bool("text") {
		return report.WriteText(os.Stdout, rec) //nolint:wrapcheck
	}

	return report.WriteJSON(os.Stdout, rec) //nolint:wrapcheck
}

func writeLogFile(path string, rec report.Record) error {
	points := rec.LogLeqM
	if len(points) == 0 {
		points = rec.LogLeqM10
	}

	file, err := os.Create(path) //nolint:gosec // CLI-specified output destination
	if err != nil {
		return fmt.Errorf("%w: creating logfile: %w", fault.ErrInvalidArgument, err)
	}
	defer file.Close()

	return report.WriteLogFile(file, points) //nolint:wrapcheck
}

func writeFailure(err error) error {
	if reportErr := report.WriteErrorJSON(os.Stderr, err); reportErr != nil {
		return reportErr
	}

	return err
}

func buildConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Default()

	if n := cmd.Int("numcpus"); n > 0 {
		cfg.Workers = int(n)
	}

	cfg.BufferMS = int(cmd.Int("buffersize"))
	cfg.ConvPoints = int(cmd.Int("convpoints"))
	cfg.LeqNoWeight = cmd.Bool("leqnw")
	cfg.LogLeqM = cmd.Bool("logleqm")
	cfg.LogLeqM10 = cmd.Bool("logleqm10")
	cfg.LongPeriodMinutes = cmd.Float("longperiod")
	cfg.AllenThresholdDB = cmd.Float("threshold")
	cfg.LKFS = cmd.Bool("lkfs")
	cfg.DolbyDI = cmd.Bool("dolbydi")
	cfg.SpeechThreshold = cmd.Float("agsthreshold")
	cfg.LevelGateDB = cmd.Float("levelgate")
	cfg.TruePeak = cmd.Bool("truepeak")
	cfg.Oversampling = int(cmd.Int("oversampling"))
	cfg.Timing = cmd.Bool("timing")

	switch cmd.Int("chgateconf") {
	case 1:
		cfg.GateMode = config.GateLevel
	case 2:
		cfg.GateMode = config.GateDialogue
	default:
		cfg.GateMode = config.GateNone
	}

	if raw := cmd.String("chconfcal"); raw != "" {
		gains, err := parseCalibrationGains(raw)
		if err != nil {
			return config.Config{}, err
		}

		cfg.CalibrationGainDB = gains
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

func parseCalibrationGains(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	gains := make([]float64, len(parts))

	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: --chconfcal entry %q: %w", fault.ErrInvalidArgument, p, err)
		}

		gains[i] = v
	}

	return gains, nil
}

func openSource(ctx context.Context, path string, cmd *cli.Command) (decode.FrameSource, int, error) {
	switch cmd.String("format") {
	case "ffmpeg":
		streamIndex := int(cmd.Int("stream"))

		probed, err := decode.Probe(ctx, path, streamIndex)
		if err != nil {
			return nil, 0, err
		}

		// ffmpeg does the resampling when the probed rate has no
		// M-weighting table; FIR mode accepts any rate as-is.
		target := probed.Format.SampleRate
		if _, ok := mweight.Lookup(target); !ok && cmd.Int("convpoints") <= 0 {
			target = mweight.NearestSupportedRate(target)
		}

		source, err := decode.DecodeFFmpeg(ctx, path, probed.Format.Channels, target, streamIndex)
		if err != nil {
			return nil, 0, err
		}

		return source, probed.Format.SampleRate, nil
	default:
		source, err := decode.DecodeWAV(path)
		if err != nil {
			return nil, 0, err
		}

		return resampleIfNeeded(source, int(cmd.Int("convpoints")))
	}
}

// resampleIfNeeded linearly resamples a decoded WAV to the nearest tabulated
// M-weighting rate when the file's rate has no coefficient set and FIR
// convolution mode isn't selected. The engine itself rejects untabulated
// rates; resampling is this collaborator's job.
func resampleIfNeeded(source *decode.MemorySource, convPoints int) (decode.FrameSource, int, error) {
	format := source.Format()

	if convPoints > 0 {
		return source, format.SampleRate, nil
	}

	if _, ok := mweight.Lookup(format.SampleRate); ok {
		return source, format.SampleRate, nil
	}

	target := mweight.NearestSupportedRate(format.SampleRate)

	samples, err := drainFrames(source)
	if err != nil {
		return nil, 0, err
	}

	resampled, err := decode.ResampleLinear(samples, format.SampleRate, target, format.Channels)
	if err != nil {
		return nil, 0, err
	}

	out, err := decode.NewMemorySource(resampled, decode.Format{SampleRate: target, Channels: format.Channels})
	if err != nil {
		return nil, 0, err
	}

	return out, format.SampleRate, nil
}

func drainFrames(source decode.FrameSource) ([]float64, error) {
	var samples []float64

	for {
		frame, err := source.NextFrame()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("%w: %w", fault.ErrReadFailure, err)
		}

		samples = append(samples, frame...)
	}

	return samples, nil
}

func exitCodeFor(err error) int {
	return fault.ExitCode(fault.Classify(err))
}
