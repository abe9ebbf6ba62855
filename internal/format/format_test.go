package format

import (
	"strings"
	"testing"
	"time"
)

func fp(v float64) *float64 { return &v }

func TestPrice(t *testing.T) {
	cases := []struct {
		name string
		in   *float64
		want string
	}{
		{"nil", nil, Placeholder},
		{"zero", fp(0), "0.00"},
		{"grouped", fp(123456.789), "123,456.79"},
		{"grouped no fraction", fp(100000), "100,000"},
		{"thousands", fp(1234.567), "1234.57"},
		{"unit range", fp(1.5), "1.5000"},
		{"sub unit", fp(0.5), "0.500000"},
		{"basis point boundary", fp(0.0001), "0.000100"},
		{"sub basis point", fp(0.000003456), "0.0000034560000"},
	}
	for _, tc := range cases {
		if got := Price(tc.in); got != tc.want {
			t.Errorf("%s: Price = %q, want %q", tc.name, got, tc.want)
		}
	}
}

// Prices below 1e-4 must keep their leading zero run plus up to eight
// significant digits; naive six-decimal formatting would render them as
// "0.000000".
func TestPriceSubBasisPointDigits(t *testing.T) {
	cases := []struct {
		in        float64
		wantZeros int
	}{
		{0.000003456, 5},
		{0.00000001234, 7},
		{0.00009, 4},
		{3e-10, 9},
	}
	for _, tc := range cases {
		got := Price(fp(tc.in))
		frac, ok := strings.CutPrefix(got, "0.")
		if !ok {
			t.Fatalf("Price(%g) = %q, want leading \"0.\"", tc.in, got)
		}
		zeros := 0
		for zeros < len(frac) && frac[zeros] == '0' {
			zeros++
		}
		if zeros != tc.wantZeros {
			t.Errorf("Price(%g) = %q: %d leading zeros, want %d", tc.in, got, zeros, tc.wantZeros)
		}
		if sig := len(frac) - zeros; sig != maxSubUnitSignificant {
			t.Errorf("Price(%g) = %q: %d significant digits, want %d", tc.in, got, sig, maxSubUnitSignificant)
		}
		if strings.Trim(frac, "0") == "" {
			t.Errorf("Price(%g) = %q: all digits truncated away", tc.in, got)
		}
	}
}

func TestVolume(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, Placeholder},
		{fp(0), "0"},
		{fp(2500000000), "2.50B"},
		{fp(1500000), "1.50M"},
		{fp(12345), "12.35K"},
		{fp(999), "999.00"},
	}
	for _, tc := range cases {
		if got := Volume(tc.in); got != tc.want {
			t.Errorf("Volume(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestChange(t *testing.T) {
	if got := Change(nil); got != "0.00" {
		t.Errorf("Change(nil) = %q, want 0.00", got)
	}
	if got := Change(fp(-3.456)); got != "3.46" {
		t.Errorf("Change(-3.456) = %q, want 3.46", got)
	}
	if got := Change(fp(3.456)); got != "3.46" {
		t.Errorf("Change(3.456) = %q, want 3.46", got)
	}
}

func TestQuantity(t *testing.T) {
	cases := []struct {
		in   *float64
		want string
	}{
		{nil, Placeholder},
		{fp(2500000), "2.50M"},
		{fp(1500), "1.50K"},
		{fp(2.34567), "2.3457"},
		{fp(0.5), "0.500000"},
		{fp(0), "0.000000"},
	}
	for _, tc := range cases {
		if got := Quantity(tc.in); got != tc.want {
			t.Errorf("Quantity(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRelativeTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tc := range cases {
		if got := RelativeTime(now.Add(-tc.ago), now); got != tc.want {
			t.Errorf("RelativeTime(-%v) = %q, want %q", tc.ago, got, tc.want)
		}
	}
}
