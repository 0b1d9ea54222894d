package core

import "strconv"

// Color is the foreground color of a screen cell.
type Color uint8

const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightCyan
	ColorOrange
	ColorGray
)

// ansi256 maps colors to ANSI 256-color codes. ColorDefault has none.
var ansi256 = [...]int{
	ColorDefault:      -1,
	ColorRed:          1,
	ColorGreen:        2,
	ColorYellow:       3,
	ColorBlue:         4,
	ColorMagenta:      5,
	ColorCyan:         6,
	ColorWhite:        7,
	ColorBrightRed:    9,
	ColorBrightGreen:  10,
	ColorBrightYellow: 11,
	ColorBrightCyan:   14,
	ColorOrange:       208,
	ColorGray:         244,
}

// ANSI returns the ANSI 256-color code as a string, or "" for the
// terminal default.
func (c Color) ANSI() string {
	if int(c) >= len(ansi256) || ansi256[c] < 0 {
		return ""
	}
	return strconv.Itoa(ansi256[c])
}

// HealthColor picks a color for a remaining-health fraction in [0, 1].
func HealthColor(frac float64) Color {
	switch {
	case frac > 0.66:
		return ColorBrightGreen
	case frac > 0.33:
		return ColorYellow
	default:
		return ColorBrightRed
	}
}
