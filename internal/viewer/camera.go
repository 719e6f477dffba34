package viewer

import (
	"math"

	"github.com/Garsondee/supply-lines/internal/game"
)

const (
	pixelsPerUnit = 160.0
	zoomMin       = 0.25
	zoomMax       = 4.0
)

// Camera maps world units (y up) onto a viewport in pixels (y down). X and Y
// are the world coordinates shown at the viewport centre.
type Camera struct {
	X, Y float64
	Zoom float64
}

func (c *Camera) scale() float64 { return pixelsPerUnit * c.Zoom }

// WorldToScreen returns the pixel position of p inside a vpW x vpH viewport.
func (c *Camera) WorldToScreen(p game.Vec2, vpW, vpH int) (float32, float32) {
	s := c.scale()
	sx := (p.X-c.X)*s + float64(vpW)/2
	sy := float64(vpH)/2 - (p.Y-c.Y)*s
	return float32(sx), float32(sy)
}

// ScreenToWorld is the inverse of WorldToScreen.
func (c *Camera) ScreenToWorld(sx, sy float64, vpW, vpH int) game.Vec2 {
	s := c.scale()
	return game.V(
		c.X+(sx-float64(vpW)/2)/s,
		c.Y-(sy-float64(vpH)/2)/s,
	)
}

// Length converts a world distance into pixels.
func (c *Camera) Length(d float64) float32 { return float32(d * c.scale()) }

// ZoomBy multiplies the zoom, clamped to the allowed range.
func (c *Camera) ZoomBy(f float64) {
	c.Zoom = math.Max(zoomMin, math.Min(zoomMax, c.Zoom*f))
}

// Pan moves the camera by a screen-space offset in pixels.
func (c *Camera) Pan(dx, dy float64) {
	s := c.scale()
	c.X += dx / s
	c.Y -= dy / s
}
