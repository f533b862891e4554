package phone

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		previous string
		want     string
	}{
		{"empty input", "", "", ""},
		{"no digits", "abc--", "", ""},
		{"single digit", "9", "", "+7 (9"},
		{"three digits", "999", "", "+7 (999"},
		{"four digits", "9991", "", "+7 (999) 1"},
		{"ten digits", "9991234567", "", "+7 (999) 123-45-67"},
		{"with country code 7", "79991234567", "", "+7 (999) 123-45-67"},
		{"with trunk prefix 8", "89991234567", "", "+7 (999) 123-45-67"},
		{"already masked", "+7 (999) 123-45-67", "", "+7 (999) 123-45-67"},
		{"overflow truncated", "999123456789999", "", "+7 (999) 123-45-67"},
		{"deletion passes through", "+7 (999) 123-45-6", "+7 (999) 123-45-67", "+7 (999) 123-45-6"},
		{"deletion to empty", "", "+7 (9", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.raw, tt.previous)
			if got != tt.want {
				t.Errorf("Format(%q, %q) = %q, want %q", tt.raw, tt.previous, got, tt.want)
			}
		})
	}
}

func TestDigits(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+7 (999) 123-45-67", "79991234567"},
		{"abc", ""},
		{"8 999 123 45 67", "89991234567"},
	}

	for _, tt := range tests {
		if got := Digits(tt.in); got != tt.want {
			t.Errorf("Digits(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want bool
	}{
		{"identical", "+7 (999) 123-45-67", "+7 (999) 123-45-67", true},
		{"masked vs raw", "+7 (999) 123-45-67", "79991234567", true},
		{"country code vs trunk prefix", "79991234567", "89991234567", true},
		{"without country code", "9991234567", "+7 (999) 123-45-67", true},
		{"different numbers", "+7 (999) 123-45-67", "+7 (999) 765-43-21", false},
		{"empty side", "", "+7 (999) 123-45-67", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
