package report

import (
	"os"
	"path/filepath"
	"time"
)

// ExecutionInfo is the run's execution metadata: binary identity, wall-clock
// timing, and the two derived throughput figures reported alongside the
// measurements.
type ExecutionInfo struct {
	BinaryPath    string
	BinaryVersion string
	ExecSeconds   float64
	SpeedIndex    float64 // audio seconds / wall seconds
	Mbps          float64 // input file MB / wall seconds
}

// Version is the build-time version string, overridable via -ldflags.
var Version = "development"

// GatherExecutionInfo resolves the running binary's canonical path, measures
// elapsed wall time since start, and derives speed_index/mbps from the
// decoded audio duration and the input file's size on disk.
func GatherExecutionInfo(inputPath string, start time.Time, audioDurationSeconds float64) (ExecutionInfo, error) {
	executable, err := os.Executable()
	if err != nil {
		executable = os.Args[0]
	} else if resolved, resolveErr := filepath.EvalSymlinks(executable); resolveErr == nil {
		executable = resolved
	}

	fileInfo, err := os.Stat(inputPath)
	if err != nil {
		return ExecutionInfo{}, err
	}

	execSeconds := time.Since(start).Seconds()
	if execSeconds < 0 {
		execSeconds = 0
	}

	speedIndex := 0.0
	if execSeconds > 0 {
		speedIndex = audioDurationSeconds / execSeconds
	}

	mbps := 0.0
	if execSeconds > 0 {
		mbps = (float64(fileInfo.Size()) / 1_000_000.0) / execSeconds
	}

	return ExecutionInfo{
		BinaryPath:    executable,
		BinaryVersion: Version,
		ExecSeconds:   execSeconds,
		SpeedIndex:    speedIndex,
		Mbps:          mbps,
	}, nil
}
