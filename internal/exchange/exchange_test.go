package exchange

import (
	"errors"
	"testing"

	"github.com/spotdeck/spotdeck/internal/domain"
)

func TestParseFloat(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"97000.5", domain.Float(97000.5)},
		{"  42 ", domain.Float(42)},
		{"0", domain.Float(0)},
		{"-1.5", domain.Float(-1.5)},
		{"", nil},
		{"garbage", nil},
	}
	for _, tc := range cases {
		got := ParseFloat(tc.in)
		switch {
		case tc.want == nil && got != nil:
			t.Errorf("ParseFloat(%q) = %v, want nil", tc.in, *got)
		case tc.want != nil && got == nil:
			t.Errorf("ParseFloat(%q) = nil, want %v", tc.in, *tc.want)
		case tc.want != nil && *got != *tc.want:
			t.Errorf("ParseFloat(%q) = %v, want %v", tc.in, *got, *tc.want)
		}
	}
}

func TestParseScaled(t *testing.T) {
	got := ParseScaled("0.05", 100)
	if got == nil || *got != 5 {
		t.Fatalf("ParseScaled(0.05, 100) = %v, want 5", got)
	}
	if ParseScaled("", 100) != nil {
		t.Fatal("ParseScaled of empty input must be nil")
	}
}

type fakeAdapter struct {
	Adapter
	name domain.Exchange
}

func (f fakeAdapter) Name() domain.Exchange { return f.name }

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		fakeAdapter{name: "LBANK"},
		fakeAdapter{name: "GATEIO"},
		fakeAdapter{name: "LBANK"}, // duplicate, ignored
	)

	if got := r.Names(); len(got) != 2 || got[0] != "LBANK" || got[1] != "GATEIO" {
		t.Fatalf("Names = %v, want [LBANK GATEIO]", got)
	}
	if len(r.All()) != 2 {
		t.Fatalf("All returned %d adapters, want 2", len(r.All()))
	}

	if _, err := r.Get("LBANK"); err != nil {
		t.Fatalf("Get(LBANK): %v", err)
	}
	_, err := r.Get("MEXC")
	if !errors.Is(err, domain.ErrUnknownExchange) {
		t.Fatalf("Get(MEXC) error = %v, want ErrUnknownExchange", err)
	}
}
