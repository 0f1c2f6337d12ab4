package colors

import "testing"

func TestHexRoundTrip(t *testing.T) {
	argb, err := ParseHex("#1A2B3C")
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}
	if argb != 0xFF1A2B3C {
		t.Errorf("Expected 0xFF1A2B3C, got %#x", argb)
	}
	if got := FormatHex(argb); got != "#1A2B3C" {
		t.Errorf("Expected #1A2B3C, got %s", got)
	}
}

func TestParseHexWithAlpha(t *testing.T) {
	argb, err := ParseHex("#801A2B3C")
	if err != nil {
		t.Fatalf("ParseHex failed: %v", err)
	}
	if argb != 0x801A2B3C {
		t.Errorf("Expected 0x801A2B3C, got %#x", argb)
	}
}

func TestParseHexRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "#FFF", "red", "#GGGGGG", "#12345"} {
		if _, err := ParseHex(s); err == nil {
			t.Errorf("Expected error for %q", s)
		}
	}
}

func TestFormatHexDropsAlpha(t *testing.T) {
	if got := FormatHex(Default); got != "#FFFFFF" {
		t.Errorf("Expected #FFFFFF for the default color, got %s", got)
	}
}
