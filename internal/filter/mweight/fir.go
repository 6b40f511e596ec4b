package mweight

// firImpulseResponse is the 21-tap FIR equivalent of the M-weighting curve,
// selected with --convpoints: a symmetric kernel whose taps sum to 0.93
// (its gain at DC), approximating the response the IIR table encodes.
var firImpulseResponse = []float64{
	-0.0008, -0.0015, -0.0021, -0.0009, 0.0042,
	0.0134, 0.0223, 0.0192, -0.0074, -0.0512,
	0.9396,
	-0.0512, -0.0074, 0.0192, 0.0223, 0.0134,
	0.0042, -0.0009, -0.0021, -0.0015, -0.0008,
}

// FIRTaps returns the default 21-tap impulse response used by --convpoints.
func FIRTaps() []float64 {
	taps := make([]float64, len(firImpulseResponse))
	copy(taps, firImpulseResponse)

	return taps
}
