package core

// Color represents a foreground color for a screen cell.
// The platform maps each value to an ANSI color.
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
	ColorBrightWhite
	ColorOrange
	ColorGray
)
