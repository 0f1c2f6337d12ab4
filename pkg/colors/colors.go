package colors

import (
	"fmt"
	"strconv"
	"strings"
)

// Default is the color assigned when the remote side sends none (opaque white,
// matching what the list service itself uses as a placeholder).
const Default int64 = 0xFFFFFFFF

// FormatHex renders an ARGB color as the "#RRGGBB" form the wire schema
// expects. The alpha channel is display-local and is not sent.
func FormatHex(argb int64) string {
	return fmt.Sprintf("#%06X", argb&0xFFFFFF)
}

// ParseHex parses "#RRGGBB" or "#AARRGGBB" into an ARGB value. A six-digit
// value gets an opaque alpha channel.
func ParseHex(s string) (int64, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return 0, fmt.Errorf("invalid color %q: want #RRGGBB or #AARRGGBB", s)
	}
	v, err := strconv.ParseInt(hex, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v |= 0xFF000000
	}
	return v, nil
}
