package viewer

import "github.com/Garsondee/supply-lines/internal/game"

// segmentHitsBuilding reports whether the segment a-c crosses the footprint
// of b. Segments that merely start or end on the building's door are fine.
func segmentHitsBuilding(a, c game.Vec2, b *game.Building) bool {
	minX, minY := b.Origin.X, b.Origin.Y
	maxX, maxY := minX+b.Width, minY+b.Width

	// Liang-Barsky clip against the footprint.
	t0, t1 := 0.0, 1.0
	dx, dy := c.X-a.X, c.Y-a.Y
	edges := [4][2]float64{
		{-dx, a.X - minX},
		{dx, maxX - a.X},
		{-dy, a.Y - minY},
		{dy, maxY - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	// Only grazing the boundary does not count.
	const slop = 1e-6
	return t1-t0 > slop
}

// previewBlocked reports whether the segment a-c passes through any building.
func previewBlocked(a, c game.Vec2, buildings []*game.Building) bool {
	for _, b := range buildings {
		if segmentHitsBuilding(a, c, b) {
			return true
		}
	}
	return false
}
