package world

import "math"

// LineOfSight reports whether a straight line from a to b crosses no wall
// tile. Grid traversal is an integer DDA walk over the cells the segment
// passes through; cover tiles do not block sight, only walls do.
func (m *Map) LineOfSight(a, b Vec2) bool {
	ca, cb := TileOf(a), TileOf(b)
	if m.At(ca) == TileWall || m.At(cb) == TileWall {
		return false
	}

	dx := b.X - a.X
	dy := b.Y - a.Y

	stepX, stepY := 0, 0
	tMaxX, tMaxY := math.Inf(1), math.Inf(1)
	tDeltaX, tDeltaY := math.Inf(1), math.Inf(1)

	if dx > 0 {
		stepX = 1
		tMaxX = (float64(ca.X+1) - a.X) / dx
		tDeltaX = 1 / dx
	} else if dx < 0 {
		stepX = -1
		tMaxX = (a.X - float64(ca.X)) / -dx
		tDeltaX = -1 / dx
	}
	if dy > 0 {
		stepY = 1
		tMaxY = (float64(ca.Y+1) - a.Y) / dy
		tDeltaY = 1 / dy
	} else if dy < 0 {
		stepY = -1
		tMaxY = (a.Y - float64(ca.Y)) / -dy
		tDeltaY = -1 / dy
	}

	cur := ca
	for cur != cb {
		if tMaxX < tMaxY {
			cur.X += stepX
			tMaxX += tDeltaX
		} else {
			cur.Y += stepY
			tMaxY += tDeltaY
		}
		if m.At(cur) == TileWall {
			return false
		}
	}
	return true
}

// InVisionCone reports whether target falls inside a view cone at origin
// facing dir, with the given half-angle (radians) and range. A zero facing
// direction sees all around, which keeps stationary guards from going blind.
func InVisionCone(origin, dir, target Vec2, halfAngle, maxRange float64) bool {
	to := target.Sub(origin)
	d := to.Len()
	if d > maxRange {
		return false
	}
	if d == 0 {
		return true
	}
	fd := dir.Normalize()
	if fd == (Vec2{}) {
		return true
	}
	cos := (to.X*fd.X + to.Y*fd.Y) / d
	return cos >= math.Cos(halfAngle)
}
