package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/particles/internal/physics"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille dot grid. Each cell carries the colour of the last
// dot set in it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Tint          [][]physics.Color
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Tint:   make([][]physics.Color, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Tint[i] = make([]physics.Color, w)
	}
	c.Clear()
	return c
}

// Set sets a dot at (x, y) in sub-pixel coordinates. The canvas size in
// sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int, color physics.Color) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	c.Tint[row][col] = color
}

// Disc fills every dot within r of (cx, cy). A radius under one dot still
// marks the centre.
func (c *Canvas) Disc(cx, cy, r float64, color physics.Color) {
	if r < 0.5 {
		c.Set(int(cx), int(cy), color)
		return
	}
	x0, x1 := int(cx-r), int(cx+r)
	y0, y1 := int(cy-r), int(cy+r)
	// clip before scanning so huge bodies stay cheap
	x0, x1 = clamp(x0, 0, c.Width*2-1), clamp(x1, 0, c.Width*2-1)
	y0, y1 = clamp(y0, 0, c.Height*4-1), clamp(y1, 0, c.Height*4-1)
	for y := y0; y <= y1; y++ {
		dy := float64(y) - cy
		for x := x0; x <= x1; x++ {
			dx := float64(x) - cx
			if dx*dx+dy*dy <= r*r {
				c.Set(x, y, color)
			}
		}
	}
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Tint[i][j] = 0
		}
	}
}

// Plain renders without colour.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// String renders runs of equally tinted cells with one style each.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.tintAt(i, j) == c.tintAt(i, start) {
				continue
			}
			run := string(row[start:j])
			if t := c.tintAt(i, start); t != 0 {
				run = particleStyle(t).Render(run)
			}
			b.WriteString(run)
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (c *Canvas) tintAt(row, col int) physics.Color {
	if c.Grid[row][col] == blank {
		return 0
	}
	return c.Tint[row][col]
}

var styleCache = map[physics.Color]lipgloss.Style{}

// particleStyle maps a packed colour to a foreground style. Alpha is
// ignored except that fully transparent particles are drawn dim.
func particleStyle(color physics.Color) lipgloss.Style {
	if s, ok := styleCache[color]; ok {
		return s
	}
	hex := color.Hex()
	if _, _, _, a := color.Components(); a == 0 {
		hex = "#303030"
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	styleCache[color] = s
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
