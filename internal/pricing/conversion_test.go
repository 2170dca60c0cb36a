package pricing

import "testing"

func TestConversionFromInput(t *testing.T) {
	tests := []struct {
		value    float64
		inverted bool
		want     float64
	}{
		{150, false, 150},
		{0.25, false, 0.25},
		{800, true, 0.00125},
		{2, true, 0.5},
	}
	for _, tt := range tests {
		got := ConversionFromInput(tt.value, tt.inverted)
		if got != tt.want {
			t.Errorf("ConversionFromInput(%v, %v) = %v, want %v", tt.value, tt.inverted, got, tt.want)
		}
	}
}

func TestDisplayConversionRoundTrip(t *testing.T) {
	for _, inverted := range []bool{false, true} {
		for _, v := range []float64{0.5, 1, 2, 150, 800} {
			stored := ConversionFromInput(v, inverted)
			if got := DisplayConversion(stored, inverted); got != v {
				t.Errorf("DisplayConversion(ConversionFromInput(%v, %v)) = %v, want %v", v, inverted, got, v)
			}
		}
	}
}

func TestFormatConversion(t *testing.T) {
	tests := []struct {
		conv           float64
		base, purchase string
		inverted       bool
		want           string
	}{
		{150, "g", "units", false, "1 g = 150 units"},
		{0.00125, "g", "bottle", true, "1 bottle = 800 g"},
		{2, "l", "bottles", false, "1 l = 2 bottles"},
		{0.5, "l", "glass", true, "1 glass = 2 l"},
		{1.5, "kg", "bags", false, "1 kg = 1.5 bags"},
		{3, "kg", "bag", true, "1 bag = 0.33333 kg"},
	}
	for _, tt := range tests {
		got := FormatConversion(tt.conv, tt.base, tt.purchase, tt.inverted)
		if got != tt.want {
			t.Errorf("FormatConversion(%v, %q, %q, %v) = %q, want %q", tt.conv, tt.base, tt.purchase, tt.inverted, got, tt.want)
		}
	}
}
