package viz

import (
	"math"

	"github.com/san-kum/particles/internal/physics"
)

// Camera maps world coordinates onto canvas dots. Braille dots are close
// enough to square that one scale serves both axes.
type Camera struct {
	X, Y  float64 // world point at the canvas centre
	Scale float64 // dots per world unit
}

const (
	minScale = 1e-6
	maxScale = 1e6
)

// Fit centres the camera on the particles' bounding box, radii included,
// and scales it to fill a w x h dot area with a small margin.
func Fit(ps []physics.Particle, w, h int) Camera {
	if len(ps) == 0 || w <= 0 || h <= 0 {
		return Camera{Scale: 1}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := range ps {
		p := &ps[i]
		minX = math.Min(minX, p.X-p.Radius)
		maxX = math.Max(maxX, p.X+p.Radius)
		minY = math.Min(minY, p.Y-p.Radius)
		maxY = math.Max(maxY, p.Y+p.Radius)
	}
	cam := Camera{X: (minX + maxX) / 2, Y: (minY + maxY) / 2, Scale: 1}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX <= 0 && spanY <= 0 {
		return cam
	}
	const margin = 0.9
	sx := float64(w) * margin / spanX
	sy := float64(h) * margin / spanY
	cam.Scale = clampScale(math.Min(sx, sy))
	return cam
}

// Project returns the dot position of a world point on a w x h dot area.
func (c Camera) Project(x, y float64, w, h int) (float64, float64) {
	return float64(w)/2 + (x-c.X)*c.Scale, float64(h)/2 + (y-c.Y)*c.Scale
}

// Zoom multiplies the scale by f, keeping the centre fixed.
func (c *Camera) Zoom(f float64) {
	c.Scale = clampScale(c.Scale * f)
}

// Pan moves the view by dx, dy dots.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx / c.Scale
	c.Y += dy / c.Scale
}

func clampScale(s float64) float64 {
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 1
	}
	return math.Max(minScale, math.Min(maxScale, s))
}

// Draw clears the canvas and plots every particle as a disc.
func (c Camera) Draw(cv *Canvas, ps []physics.Particle) {
	cv.Clear()
	w, h := cv.Width*2, cv.Height*4
	for i := range ps {
		p := &ps[i]
		x, y := c.Project(p.X, p.Y, w, h)
		r := p.Radius * c.Scale
		if x+r < 0 || y+r < 0 || x-r >= float64(w) || y-r >= float64(h) {
			continue
		}
		cv.Disc(x, y, r, p.Color)
	}
}
