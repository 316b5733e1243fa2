package util

import (
	"strings"
	"testing"
)

func TestGenerateRandomID(t *testing.T) {
	tests := []struct {
		name       string
		prefix     string
		hexLength  int
		wantPrefix string
		wantLength int // expected total length: prefix + hexLength
	}{
		{
			name:       "quote session ID format",
			prefix:     "q_",
			hexLength:  32,
			wantPrefix: "q_",
			wantLength: 34, // 2 + 32
		},
		{
			name:       "visualizer session ID format",
			prefix:     "v_",
			hexLength:  32,
			wantPrefix: "v_",
			wantLength: 34, // 2 + 32
		},
		{
			name:       "custom prefix",
			prefix:     "test_",
			hexLength:  16,
			wantPrefix: "test_",
			wantLength: 21, // 5 + 16
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRandomID(tt.prefix, tt.hexLength)

			if !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("GenerateRandomID() = %v, want prefix %v", got, tt.wantPrefix)
			}

			if len(got) != tt.wantLength {
				t.Errorf("GenerateRandomID() length = %v, want %v", len(got), tt.wantLength)
			}

			hexPart := got[len(tt.wantPrefix):]
			if !isValidHex(hexPart) {
				t.Errorf("GenerateRandomID() hex part = %v is not valid hex", hexPart)
			}
		})
	}
}

func TestGenerateRandomHex(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   int
	}{
		{"zero length", 0, 0},
		{"negative length", -1, 0},
		{"small length", 8, 8},
		{"medium length", 16, 16},
		{"large length", 64, 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRandomHex(tt.length)

			if len(got) != tt.want {
				t.Errorf("GenerateRandomHex() length = %v, want %v", len(got), tt.want)
			}

			if tt.want > 0 && !isValidHex(got) {
				t.Errorf("GenerateRandomHex() = %v is not valid hex", got)
			}
		})
	}
}

func TestSessionIDGenerators(t *testing.T) {
	quote := GenerateQuoteSessionID()
	if !strings.HasPrefix(quote, "q_") || len(quote) != 34 {
		t.Errorf("GenerateQuoteSessionID() = %v, want q_ prefix and length 34", quote)
	}

	viz := GenerateVisualizerSessionID()
	if !strings.HasPrefix(viz, "v_") || len(viz) != 34 {
		t.Errorf("GenerateVisualizerSessionID() = %v, want v_ prefix and length 34", viz)
	}

	// Two draws should not collide with 128 bits of entropy.
	if GenerateQuoteSessionID() == GenerateQuoteSessionID() {
		t.Error("GenerateQuoteSessionID() produced duplicate IDs")
	}
}

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		name         string
		value        string
		defaultValue bool
		want         bool
	}{
		{"empty uses default true", "", true, true},
		{"empty uses default false", "", false, false},
		{"true literal", "true", false, true},
		{"numeric one", "1", false, true},
		{"yes", "yes", false, true},
		{"on with whitespace", " on ", false, true},
		{"uppercase FALSE", "FALSE", true, false},
		{"numeric zero", "0", true, false},
		{"no", "no", true, false},
		{"off", "off", true, false},
		{"garbage uses default", "maybe", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "RENOFLOW_TEST_BOOL"
			if tt.value == "" {
				t.Setenv(key, "")
			} else {
				t.Setenv(key, tt.value)
			}

			if got := ParseBoolEnv(key, tt.defaultValue); got != tt.want {
				t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func isValidHex(s string) bool {
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
	}
	return true
}
