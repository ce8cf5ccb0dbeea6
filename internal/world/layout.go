// Patrol route planning — scores open floor for watchability and lays out
// one waypoint loop per guard.
package world

import (
	"math/rand"
	"sort"
)

// PatrolRoutes derives count waypoint loops over the facility floor.
// Waypoints favor open, watchable tiles and keep a minimum spacing so a
// route actually walks the guard somewhere. Deterministic for a fixed seed.
func PatrolRoutes(m *Map, count int, seed int64) [][]Vec2 {
	rng := rand.New(rand.NewSource(seed + 300))

	type scored struct {
		coord TileCoord
		score float64
	}
	var candidates []scored
	for y := 1; y < m.Height-1; y++ {
		for x := 1; x < m.Width-1; x++ {
			c := TileCoord{X: x, Y: y}
			if m.At(c) != TileFloor {
				continue
			}
			s := openness(m, c)
			if s > 0 {
				candidates = append(candidates, scored{c, s})
			}
		}
	}
	// Stable order before shuffling keeps results independent of map
	// iteration order.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.coord.Y != b.coord.Y {
			return a.coord.Y < b.coord.Y
		}
		return a.coord.X < b.coord.X
	})

	const (
		waypointsPerRoute = 4
		minSpacing        = 5.0
	)

	routes := make([][]Vec2, 0, count)
	used := make(map[TileCoord]bool)

	for g := 0; g < count; g++ {
		var route []Vec2
		// Seed each route from a different region of the candidate list.
		offset := 0
		if len(candidates) > 0 {
			offset = rng.Intn(len(candidates))
		}
		for i := 0; i < len(candidates) && len(route) < waypointsPerRoute; i++ {
			c := candidates[(offset+i)%len(candidates)]
			if used[c.coord] {
				continue
			}
			p := c.coord.Center()
			if tooCloseTo(route, p, minSpacing) {
				continue
			}
			used[c.coord] = true
			route = append(route, p)
		}
		if len(route) == 0 {
			// Degenerate map; post the guard at the first open tile.
			for _, c := range candidates {
				route = append(route, c.coord.Center())
				break
			}
		}
		orderLoop(route)
		routes = append(routes, route)
	}
	return routes
}

// openness counts walkable tiles in the 5x5 neighborhood; a guard posted
// in a doorway sees less than one in a hall.
func openness(m *Map, c TileCoord) float64 {
	open := 0
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if m.Walkable(TileCoord{X: c.X + dx, Y: c.Y + dy}) {
				open++
			}
		}
	}
	return float64(open) / 25.0
}

func tooCloseTo(route []Vec2, p Vec2, minDist float64) bool {
	for _, w := range route {
		if Dist(w, p) < minDist {
			return true
		}
	}
	return false
}

// orderLoop arranges waypoints nearest-neighbor in place so the walk
// doesn't zig-zag across the facility.
func orderLoop(route []Vec2) {
	for i := 0; i < len(route)-2; i++ {
		best := i + 1
		bestD := Dist(route[i], route[best])
		for j := i + 2; j < len(route); j++ {
			if d := Dist(route[i], route[j]); d < bestD {
				best, bestD = j, d
			}
		}
		route[i+1], route[best] = route[best], route[i+1]
	}
}
