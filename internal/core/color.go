// Package core holds the rendering surface shared by engines and the platform.
// It has no terminal dependencies so engines stay pure and testable.
package core

// Color represents a foreground color for a screen cell.
// Values map to ANSI 256-color codes in the platform layer.
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
	ColorOrange
	ColorGray
)

// PieceColor returns the conventional color for a tetromino letter
// (I, O, T, S, Z, J, L). Unknown letters are drawn in gray.
func PieceColor(piece rune) Color {
	switch piece {
	case 'I', 'i':
		return ColorCyan
	case 'O', 'o':
		return ColorYellow
	case 'T', 't':
		return ColorMagenta
	case 'S', 's':
		return ColorGreen
	case 'Z', 'z':
		return ColorRed
	case 'J', 'j':
		return ColorBlue
	case 'L', 'l':
		return ColorOrange
	default:
		return ColorGray
	}
}
