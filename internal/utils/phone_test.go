package utils

import "testing"

func TestLocalFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already local", "0702322277", "0702322277"},
		{"country code", "254702322277", "0702322277"},
		{"plus prefix", "+254702322277", "0702322277"},
		{"bare subscriber", "702322277", "0702322277"},
		{"with spaces", "0702 322 277", "0702322277"},
		{"with dashes", "0702-322-277", "0702322277"},
		{"too short passthrough", "12345", "12345"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LocalFormat(tt.input); got != tt.want {
				t.Errorf("LocalFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestInternationalFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"local form", "0702322277", "254702322277"},
		{"already international", "254702322277", "254702322277"},
		{"plus prefix", "+254702322277", "254702322277"},
		{"bare subscriber", "702322277", "254702322277"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InternationalFormat(tt.input); got != tt.want {
				t.Errorf("InternationalFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocalInternationalRoundTrip(t *testing.T) {
	inputs := []string{"0702322277", "254702322277", "+254 702 322 277"}
	for _, in := range inputs {
		if got := LocalFormat(InternationalFormat(in)); got != "0702322277" {
			t.Errorf("round trip of %q = %q, want 0702322277", in, got)
		}
	}
}
