// Package config defines the single configuration object the CLI builds from
// flags and passes to the engine, the only thing crossing from the
// CLI layer into the measurement core.
package config

import (
	"fmt"
	"math"
	"runtime"

	"github.com/farcloser/leqm-nrt/internal/fault"
)

// GateMode selects the Gating Engine's relative-threshold strategy.
type GateMode int

const (
	GateNone     GateMode = iota // no LKFS gating; ungated Leq(M) only
	GateLevel                    // --levelgate: user-supplied Leq(M) threshold
	GateDialogue                 // --dolbydi / --chgateconf 2: speech-probability gate
)

// Config is the engine's full configuration, built by the CLI from flags.
type Config struct {
	// Worker count (--numcpus). 0 means "use runtime.NumCPU()".
	Workers int

	// BufferMS is the ungated block size in milliseconds (--buffersize).
	BufferMS int

	// ConvPoints, when > 0, selects FIR convolution instead of the
	// tabulated IIR (--convpoints). The kernel is always the fixed
	// 21-point impulse response; the value only switches the mode.
	ConvPoints int

	// CalibrationGainDB is a per-channel calibration gain in dB
	// (--chconfcal). Empty means 0dB (gain 1.0) on every channel.
	CalibrationGainDB []float64

	// LeqNoWeight also computes the unweighted Leq (--leqnw).
	LeqNoWeight bool

	// LogLeqM emits the per-block Leq(M) series (--logleqm).
	LogLeqM bool

	// LogLeqM10 emits the 10-minute sliding series and Allen metric
	// (--logleqm10).
	LogLeqM10 bool

	// LongPeriodMinutes is the long-window duration (--longperiod).
	LongPeriodMinutes float64

	// AllenThresholdDB is the Allen metric's inclusion threshold (--threshold).
	AllenThresholdDB float64

	// LKFS enables BS.1770-4 LKFS with gating (--lkfs).
	LKFS bool

	// DolbyDI enables dialogue-gated LKFS(DI)/Leq(M,DI) (--dolbydi).
	DolbyDI bool

	// GateMode selects none/level/dialogue gating (--chgateconf).
	GateMode GateMode

	// SpeechThreshold is the minimum speech probability to pass the
	// dialogue gate (--agsthreshold).
	SpeechThreshold float64

	// LevelGateDB forces level gating at this Leq(M) threshold (--levelgate).
	LevelGateDB float64

	// TruePeak emits the true-peak estimate (--truepeak).
	TruePeak bool

	// Oversampling is the true-peak oversampling factor (--oversampling).
	Oversampling int

	// Timing emits execution timing metadata (--timing).
	Timing bool

	// SpeechClassifier, when non-nil, supplies per-block speech probability
	// for the dialogue gate. nil means every block passes (p_b = 1.0), which
	// keeps --dolbydi runnable without a real classifier wired in.
	SpeechClassifier SpeechClassifier
}

// SpeechClassifier is the opaque external collaborator dialogue gating
// delegates classification to; the core only consumes its probability.
type SpeechClassifier interface {
	Classify(samples []float64, channels int) float64
}

// Default returns a Config with every field at its spec-mandated default.
func Default() Config {
	return Config{
		Workers:           runtime.NumCPU(),
		BufferMS:          850,
		LongPeriodMinutes: 10,
		AllenThresholdDB:  80,
		SpeechThreshold:   0.33,
		Oversampling:      4,
	}
}

// Validate checks the configuration for obviously invalid combinations and
// fills in zero-valued fields with their defaults.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}

	if c.BufferMS <= 0 {
		c.BufferMS = 850
	}

	if c.LongPeriodMinutes <= 0 {
		c.LongPeriodMinutes = 10
	}

	if c.Oversampling <= 0 {
		c.Oversampling = 4
	}

	if c.ConvPoints < 0 {
		return fmt.Errorf("%w: --convpoints must be >= 0, got %d", fault.ErrInvalidArgument, c.ConvPoints)
	}

	if c.SpeechThreshold < 0 || c.SpeechThreshold > 1 {
		return fmt.Errorf("%w: --agsthreshold must be in [0,1], got %v", fault.ErrInvalidArgument, c.SpeechThreshold)
	}

	return nil
}

// CalibrationGain returns the linear calibration gain for channel ch,
// defaulting to 1.0 when unconfigured.
func (c *Config) CalibrationGain(ch int) float64 {
	if ch < 0 || ch >= len(c.CalibrationGainDB) {
		return 1.0
	}

	return dbToLinear(c.CalibrationGainDB[ch])
}

func dbToLinear(db float64) float64 {
	if db == 0 {
		return 1.0
	}

	return math.Pow(10, db/20)
}
