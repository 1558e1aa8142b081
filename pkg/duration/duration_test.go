package duration

import "testing"

func TestHumanize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"PT2H", "2 hours"},
		{"PT1H30M", "1 hours 30 minutes"},
		{"PT45M", "45 minutes"},
		{"PT0H20M", "20 minutes"},
		{"PT3H0M", "3 hours"},
		{"PT", NotSpecified},
		{"PT0M", NotSpecified},
		{"PT30S", NotSpecified},
		{"PT1H5M30S", "1 hours 5 minutes"},
		{"P1DT2H", "P1DT2H"},
		{"Not Available", "Not Available"},
		{"", ""},
		{"45 minutes", "45 minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Humanize(tt.input); got != tt.want {
				t.Errorf("Humanize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
