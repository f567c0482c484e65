package inbox

import "testing"

func TestUniqueSenders(t *testing.T) {
	tests := []struct {
		name   string
		emails []string
		want   int
	}{
		{"empty", nil, 0},
		{"duplicates collapse", []string{"a@x", "a@x", "b@x"}, 2},
		{"null emails ignored", []string{"", "a@x", ""}, 1},
		{"all distinct", []string{"a@x", "b@x", "c@x"}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uniqueSenders(tt.emails); got != tt.want {
				t.Errorf("uniqueSenders(%v) = %d, want %d", tt.emails, got, tt.want)
			}
		})
	}
}
