package exchange

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseFloat parses a string-encoded exchange numeric through decimal to
// avoid the intermediate float rounding of strconv on long fractional
// strings. Empty or malformed input yields nil, never zero: absence must
// stay distinguishable from a true zero downstream.
func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// ParseScaled parses like ParseFloat, then multiplies by scale. Used for
// venues that report fractional daily change (0.05 meaning 5%).
func ParseScaled(s string, scale float64) *float64 {
	p := ParseFloat(s)
	if p == nil {
		return nil
	}
	v := *p * scale
	return &v
}
