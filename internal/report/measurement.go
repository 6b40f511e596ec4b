// Package report renders a measurement result as JSON, text, or an optional
// logfile time series, and gathers the execution metadata that goes
// alongside it.
package report

import (
	"fmt"
	"math"
	"strings"
)

// measurementFloat is a float64 whose JSON encoding rounds to four decimal
// digits and trims trailing zeros while keeping at least one digit after the
// point, matching every numeric field in the reported schema.
type measurementFloat float64

// MarshalJSON implements the trimmed fixed-point serialization mandated by
// the external interface: round to 4 decimals, format fixed-point, strip
// trailing zeros but never strip down past one digit.
func (m measurementFloat) MarshalJSON() ([]byte, error) {
	v := math.Round(float64(m)*1e4) / 1e4
	formatted := fmt.Sprintf("%.4f", v)

	if strings.Contains(formatted, ".") {
		formatted = strings.TrimRight(formatted, "0")
		if strings.HasSuffix(formatted, ".") {
			formatted += "0"
		}
	}

	return []byte(formatted), nil
}
