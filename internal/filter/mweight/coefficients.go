// Package mweight implements the ISO 21727 M-weighting filter: a tabulated
// 6-tap IIR per sample rate, with a 21-tap FIR convolution fallback for
// --convpoints mode.
package mweight

// Coefficients is one 6-tap Direct-Form-I IIR coefficient set, a[0] == 1.
type Coefficients struct {
	A []float64
	B []float64
}

// table holds one pinned reference coefficient set per supported sample
// rate. The 44.1kHz set is its own independently-pinned reference point,
// never derived from the 48kHz set.
var table = map[int]Coefficients{
	44100: {
		A: []float64{1.0, -1.5224995723629664, 1.3617953870010380, -0.7794603877415162, 0.2773974331876455, -0.0477648119172564},
		B: []float64{0.4034108659797224, 0.0675046624145518, -0.3122917473135974, -0.1471391464872613, -0.0173711282192394, 0.0101026340442429},
	},
	48000: {
		A: []float64{1.0, -1.6391291074367320, 1.5160386192837869, -0.8555167646249104, 0.2870466545317107, -0.0428951718612053},
		B: []float64{0.31837346242469328, 0.10800452155339044, -0.21106344349319428, -0.15438275853192485, -0.05130596901975942, -0.00518224535906041},
	},
}

// Lookup returns the pinned coefficients for sampleRate and whether they exist.
func Lookup(sampleRate int) (Coefficients, bool) {
	c, ok := table[sampleRate]

	return c, ok
}

// SupportedRates reports every sample rate with a tabulated coefficient set.
func SupportedRates() []int {
	rates := make([]int, 0, len(table))
	for rate := range table {
		rates = append(rates, rate)
	}

	return rates
}

// NearestSupportedRate returns the tabulated sample rate closest to
// sampleRate, for collaborators that resample rather than reject.
func NearestSupportedRate(sampleRate int) int {
	best := 0

	for rate := range table {
		if best == 0 || absInt(rate-sampleRate) < absInt(best-sampleRate) {
			best = rate
		}
	}

	return best
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
