// Package format renders prices, volumes, and quantities for display.
// Every function is total: nil inputs produce a placeholder, never a panic.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder is the glyph rendered for absent values.
const Placeholder = "−"

// maxSubUnitSignificant caps the significant digits shown for prices below
// one basis point. Fixed six-decimal formatting would collapse anything
// under 1e-6 to "0.000000"; instead the zero run is kept and up to eight
// significant digits follow it.
const maxSubUnitSignificant = 8

// Price formats a price with magnitude-dependent precision.
func Price(price *float64) string {
	if price == nil {
		return Placeholder
	}
	p := *price
	switch {
	case p == 0:
		return "0.00"
	case p >= 100000:
		return groupThousands(trimTrailingZeros(strconv.FormatFloat(p, 'f', 2, 64)))
	case p >= 1000:
		return strconv.FormatFloat(p, 'f', 2, 64)
	case p >= 1:
		return strconv.FormatFloat(p, 'f', 4, 64)
	case p >= 0.0001:
		return strconv.FormatFloat(p, 'f', 6, 64)
	default:
		return subBasisPoint(p)
	}
}

// subBasisPoint renders prices in (0, 0.0001): count the leading zero
// fractional digits, then show up to maxSubUnitSignificant significant
// digits after them.
func subBasisPoint(p float64) string {
	s := strconv.FormatFloat(p, 'f', 20, 64)
	frac, ok := strings.CutPrefix(s, "0.")
	if !ok {
		return strconv.FormatFloat(p, 'f', 10, 64)
	}
	zeros := 0
	for zeros < len(frac) && frac[zeros] == '0' {
		zeros++
	}
	if zeros == len(frac) {
		return strconv.FormatFloat(p, 'f', 10, 64)
	}
	significant := len(frac) - zeros
	if significant > maxSubUnitSignificant {
		significant = maxSubUnitSignificant
	}
	return strconv.FormatFloat(p, 'f', zeros+significant, 64)
}

// Volume formats a 24h turnover with B/M/K suffix scaling.
func Volume(volume *float64) string {
	if volume == nil {
		return Placeholder
	}
	v := *volume
	switch {
	case v == 0:
		return "0"
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// Change formats a 24h change percentage as an unsigned magnitude; the
// caller renders direction separately.
func Change(change *float64) string {
	if change == nil {
		return "0.00"
	}
	c := *change
	if c < 0 {
		c = -c
	}
	return fmt.Sprintf("%.2f", c)
}

// Quantity formats an order size. Large sizes scale like Volume; sizes
// below unit magnitude keep fixed fractional precision that suffixing
// would hide.
func Quantity(qty *float64) string {
	if qty == nil {
		return Placeholder
	}
	q := *qty
	switch {
	case q >= 1e6:
		return fmt.Sprintf("%.2fM", q/1e6)
	case q >= 1e3:
		return fmt.Sprintf("%.2fK", q/1e3)
	case q >= 1:
		return fmt.Sprintf("%.4f", q)
	default:
		return fmt.Sprintf("%.6f", q)
	}
}

// RelativeTime renders how long ago t was, at minute/hour/day granularity.
func RelativeTime(t time.Time, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}

// trimTrailingZeros removes trailing fractional zeros and a dangling dot.
func trimTrailingZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// groupThousands inserts comma separators into the integer part of s.
func groupThousands(s string) string {
	intPart, fracPart, hasFrac := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	n := len(intPart)
	if n > 3 {
		var b strings.Builder
		first := n % 3
		if first > 0 {
			b.WriteString(intPart[:first])
		}
		for i := first; i < n; i += 3 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(intPart[i : i+3])
		}
		intPart = b.String()
	}

	if neg {
		intPart = "-" + intPart
	}
	if hasFrac {
		return intPart + "." + fracPart
	}
	return intPart
}
