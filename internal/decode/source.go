// Package decode provides the PCM decoder collaborators: concrete
// FrameSource implementations the measurement core pulls interleaved float64
// frames from. The core never imports this package's subprocess/codec
// dependencies directly — it only depends on the FrameSource contract.
package decode

// Format describes a decoded stream's sample rate and channel layout.
type Format struct {
	SampleRate int
	Channels   int
}

// FrameSource is the contract the Block Scheduler consumes: anything that can
// yield interleaved float64 frames plus the format they were decoded at.
type FrameSource interface {
	Format() Format
	// NextFrame returns one interleaved frame (len == Format().Channels).
	// Returns io.EOF once the stream is exhausted.
	NextFrame() ([]float64, error)
}
