// Package core provides the screen types shared by the grid view and the
// terminal backends. It keeps backend free of any dependency on the view.
package core

import (
	"github.com/mattn/go-runewidth"
)

// Attribute represents text attributes (bold, reverse, ...).
type Attribute uint16

// Text attribute flags.
const (
	AttrNone      Attribute = 0
	AttrBold      Attribute = 1 << iota
	AttrDim                 // Faint text
	AttrItalic              // Italic text
	AttrUnderline           // Underlined text
	AttrReverse             // Swap fg/bg
)

// Has returns true if the attribute set contains attr.
func (a Attribute) Has(attr Attribute) bool {
	return a&attr != 0
}

// Color is a terminal color: default, palette index or RGB.
type Color struct {
	R, G, B uint8
	// If Indexed is true, R holds the palette index.
	Indexed bool
	// Default selects the terminal's own color.
	Default bool
}

// ColorDefault is the terminal's default color.
var ColorDefault = Color{Default: true}

// Common colors.
var (
	ColorBlack  = Color{}
	ColorWhite  = Color{R: 255, G: 255, B: 255}
	ColorRed    = Color{R: 205, G: 49, B: 49}
	ColorYellow = Color{R: 229, G: 229, B: 16}
	ColorBlue   = Color{R: 36, G: 114, B: 200}
	ColorGray   = Color{R: 128, G: 128, B: 128}
)

// ColorFromRGB creates a true color.
func ColorFromRGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b}
}

// ColorFromIndex creates a palette color.
func ColorFromIndex(index uint8) Color {
	return Color{R: index, Indexed: true}
}

// IsDefault returns true for the terminal default color.
func (c Color) IsDefault() bool {
	return c.Default
}

// Style is the visual style of a screen cell.
type Style struct {
	Foreground Color
	Background Color
	Attributes Attribute
}

// DefaultStyle returns the terminal's default style.
func DefaultStyle() Style {
	return Style{Foreground: ColorDefault, Background: ColorDefault}
}

// WithForeground returns s with fg as foreground.
func (s Style) WithForeground(fg Color) Style {
	s.Foreground = fg
	return s
}

// WithBackground returns s with bg as background.
func (s Style) WithBackground(bg Color) Style {
	s.Background = bg
	return s
}

// Bold returns s in bold.
func (s Style) Bold() Style {
	s.Attributes |= AttrBold
	return s
}

// Reverse returns s in reverse video.
func (s Style) Reverse() Style {
	s.Attributes |= AttrReverse
	return s
}

// Underline returns s underlined.
func (s Style) Underline() Style {
	s.Attributes |= AttrUnderline
	return s
}

// Cell is a single screen cell.
type Cell struct {
	Rune  rune
	Width int
	Style Style
}

// EmptyCell returns a blank cell in the default style.
func EmptyCell() Cell {
	return Cell{Rune: ' ', Width: 1, Style: DefaultStyle()}
}

// NewStyledCell creates a cell for r in style.
func NewStyledCell(r rune, style Style) Cell {
	return Cell{Rune: r, Width: RuneWidth(r), Style: style}
}

// RuneWidth returns the display width of r.
func RuneWidth(r rune) int {
	if r < 32 || r == 0x7F {
		return 0
	}
	return runewidth.RuneWidth(r)
}

// StringWidth returns the display width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate cuts s to at most w columns, ending in tail when cut.
func Truncate(s string, w int, tail string) string {
	return runewidth.Truncate(s, w, tail)
}

// Pad fills s with spaces to exactly w columns, cutting it if longer.
func Pad(s string, w int) string {
	return runewidth.FillRight(runewidth.Truncate(s, w, ""), w)
}

// ScreenRect is a rectangle of screen cells; Bottom and Right are
// exclusive.
type ScreenRect struct {
	Top    int
	Left   int
	Bottom int
	Right  int
}

// RectFromSize creates a rectangle from position and size.
func RectFromSize(top, left, height, width int) ScreenRect {
	return ScreenRect{Top: top, Left: left, Bottom: top + height, Right: left + width}
}

// Width returns the width of the rectangle.
func (r ScreenRect) Width() int {
	return max(r.Right-r.Left, 0)
}

// Height returns the height of the rectangle.
func (r ScreenRect) Height() int {
	return max(r.Bottom-r.Top, 0)
}

// IsEmpty reports whether the rectangle has no area.
func (r ScreenRect) IsEmpty() bool {
	return r.Width() == 0 || r.Height() == 0
}

// Contains reports whether column x of row y lies inside r.
func (r ScreenRect) Contains(x, y int) bool {
	return y >= r.Top && y < r.Bottom && x >= r.Left && x < r.Right
}
