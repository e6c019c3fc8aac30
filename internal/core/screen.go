package core

import (
	"strings"
)

// Cell is a single character position on a Screen.
type Cell struct {
	Rune  rune
	Color Color
}

var blankCell = Cell{Rune: ' ', Color: ColorDefault}

// Screen is a 2D cell buffer used as a rendering surface.
// Engines draw their board and piece queue into a Screen; the platform
// converts it to styled terminal output.
type Screen struct {
	width  int
	height int
	cells  [][]Cell
}

// NewScreen creates a new screen buffer with the given dimensions.
// Negative dimensions are treated as zero.
func NewScreen(width, height int) *Screen {
	s := &Screen{
		width:  max(width, 0),
		height: max(height, 0),
	}
	s.allocate()
	s.Clear()
	return s
}

func (s *Screen) allocate() {
	s.cells = make([][]Cell, s.height)
	for y := range s.cells {
		s.cells[y] = make([]Cell, s.width)
	}
}

// Width returns the screen width in characters.
func (s *Screen) Width() int {
	return s.width
}

// Height returns the screen height in characters.
func (s *Screen) Height() int {
	return s.height
}

// Resize changes the screen dimensions, preserving content where possible.
func (s *Screen) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width == s.width && height == s.height {
		return
	}

	old := s.cells
	oldW, oldH := s.width, s.height

	s.width = width
	s.height = height
	s.allocate()
	s.Clear()

	for y := 0; y < min(oldH, height); y++ {
		copy(s.cells[y], old[y][:min(oldW, width)])
	}
}

// Clear fills the entire screen with uncolored spaces.
func (s *Screen) Clear() {
	s.Fill(' ', ColorDefault)
}

// Fill fills the entire screen with the given rune and color.
func (s *Screen) Fill(r rune, c Color) {
	for y := range s.cells {
		for x := range s.cells[y] {
			s.cells[y][x] = Cell{Rune: r, Color: c}
		}
	}
}

// Set places a colored rune at the given position.
// Out-of-bounds coordinates are silently ignored.
func (s *Screen) Set(x, y int, r rune, c Color) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.cells[y][x] = Cell{Rune: r, Color: c}
}

// Cell returns the cell at the given position.
// Returns a blank cell for out-of-bounds coordinates.
func (s *Screen) Cell(x, y int) Cell {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return blankCell
	}
	return s.cells[y][x]
}

// Get returns the rune at the given position.
func (s *Screen) Get(x, y int) rune {
	return s.Cell(x, y).Rune
}

// DrawText writes a string horizontally starting at (x, y).
// Characters that extend beyond screen bounds are clipped.
func (s *Screen) DrawText(x, y int, text string, c Color) {
	i := 0
	for _, r := range text {
		s.Set(x+i, y, r, c)
		i++
	}
}

// DrawBox draws a box outline using box-drawing characters.
func (s *Screen) DrawBox(x, y, w, h int, c Color) {
	if w < 2 || h < 2 {
		return
	}
	right, bottom := x+w-1, y+h-1

	s.Set(x, y, '┌', c)
	s.Set(right, y, '┐', c)
	s.Set(x, bottom, '└', c)
	s.Set(right, bottom, '┘', c)

	for i := x + 1; i < right; i++ {
		s.Set(i, y, '─', c)
		s.Set(i, bottom, '─', c)
	}
	for j := y + 1; j < bottom; j++ {
		s.Set(x, j, '│', c)
		s.Set(right, j, '│', c)
	}
}

// String converts the screen buffer to plain text, one line per row.
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow(s.width*s.height + s.height)

	for y := 0; y < s.height; y++ {
		if y > 0 {
			sb.WriteRune('\n')
		}
		sb.WriteString(s.Row(y))
	}
	return sb.String()
}

// Row returns the specified row as a plain string.
func (s *Screen) Row(y int) string {
	if y < 0 || y >= s.height {
		return strings.Repeat(" ", s.width)
	}
	runes := make([]rune, s.width)
	for x, cell := range s.cells[y] {
		runes[x] = cell.Rune
	}
	return string(runes)
}
