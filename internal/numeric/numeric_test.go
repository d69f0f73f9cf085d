package numeric

import (
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{"nil", nil, 0, false},
		{"float", 12.5, 12.5, true},
		{"int", 7, 7, true},
		{"nan", math.NaN(), 0, false},
		{"plain", "1500", 1500, true},
		{"thousands", "1,234,567.89", 1234567.89, true},
		{"currency prefix", "SAR 50,000", 50000, true},
		{"currency suffix", "65,000 SAR", 65000, true},
		{"arabic currency", "٣٬٠٠٠ ر.س", 3000, true},
		{"arabic digits", "١٢٣٤", 1234, true},
		{"persian digits", "۱۲۳", 123, true},
		{"arabic decimal", "١٢٫٥", 12.5, true},
		{"parentheses negative", "(2,500.00)", -2500, true},
		{"leading minus", "-300", -300, true},
		{"dollar", "$1,200", 1200, true},
		{"multiple dots keep last", "1.234.56", 1234.56, true},
		{"percent", "20%", 20, true},
		{"blank", "   ", 0, false},
		{"dash", "-", 0, false},
		{"text", "n/a", 0, false},
		{"date", "2024-01-15", 0, false},
		{"scientific", "1e3", 1000, true},
		{"nan text", "NaN", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Parse(tt.in)
			if ok != tt.ok {
				t.Fatalf("Parse(%v) ok = %v, want %v (value %v)", tt.in, ok, tt.ok, got)
			}
			if ok && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Parse(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseIsPure(t *testing.T) {
	for i := 0; i < 3; i++ {
		got, ok := Parse("SAR 1,000")
		if !ok || got != 1000 {
			t.Fatalf("run %d: got %v %v", i, got, ok)
		}
	}
}

func TestPtrAndRound(t *testing.T) {
	if Ptr("abc") != nil {
		t.Error("Ptr of text should be nil")
	}
	if p := Ptr("12"); p == nil || *p != 12 {
		t.Errorf("Ptr(12) = %v", p)
	}
	if got := Round(2.675, 2); got != 2.68 {
		t.Errorf("Round = %v, want 2.68", got)
	}
}
