package validate

import "testing"

func TestPhone(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"89991370000", true},
		{"80000000000", true},
		{"81234567890", false}, // blocked tail
		{"89990000000", false}, // blocked tail
		{"8999000000X", false}, // non-digit
		{"7999137000", false},  // wrong length
		{"79991370000", false}, // wrong leading digit
		{"899913700001", false},
		{"8999137000", false},
		{"", false},
		{"8 999137000", false},
	}
	for _, tc := range cases {
		if got := Phone(tc.input); got != tc.want {
			t.Errorf("Phone(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestTaxID(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"1234567890", true},
		{"123456789012", true},
		{"12345", false},
		{"12345678901", false},
		{"1234567890123", false},
		{"123456789a", false},
		{"", false},
		{"  34567890", false},
	}
	for _, tc := range cases {
		if got := TaxID(tc.input); got != tc.want {
			t.Errorf("TaxID(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}
