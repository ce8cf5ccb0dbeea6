// Facility generation using layered simplex noise.
// A structure layer carves rooms and corridors out of solid wall, a
// clutter layer scatters cover, then fixed features (entries, alarm
// panels) are placed on walkable floor.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds facility generation parameters.
type GenConfig struct {
	Width  int
	Height int
	Seed   int64 // Random seed (0 = random)

	WallThreshold float64 // Structure noise above this stays wall (0.0-1.0)
	CoverDensity  float64 // Fraction of open floor converted to cover
	AlarmPanels   int     // Panels to place
	Entries       int     // Intruder insertion points on the perimeter
}

// DefaultGenConfig returns a mid-sized facility.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Width:         48,
		Height:        32,
		WallThreshold: 0.62,
		CoverDensity:  0.06,
		AlarmPanels:   3,
		Entries:       2,
	}
}

// SmallTestConfig returns a tiny facility for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Width:         20,
		Height:        14,
		Seed:          42,
		WallThreshold: 0.62,
		CoverDensity:  0.08,
		AlarmPanels:   1,
		Entries:       1,
	}
}

// Generate creates a complete facility map. Deterministic for a fixed
// non-zero seed.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	structNoise := opensimplex.NewNormalized(seed)
	clutterNoise := opensimplex.NewNormalized(seed + 1)
	rng := rand.New(rand.NewSource(seed + 2))

	m := NewMap(cfg.Width, cfg.Height)

	// Carve open space out of solid wall. The perimeter always stays wall.
	for y := 1; y < cfg.Height-1; y++ {
		for x := 1; x < cfg.Width-1; x++ {
			c := TileCoord{X: x, Y: y}
			fx, fy := float64(x), float64(y)

			structure := octaveNoise(structNoise, fx, fy, 4, 0.10, 0.5)
			if structure > cfg.WallThreshold {
				continue
			}
			m.Set(c, TileFloor)
		}
	}

	// Guarantee corridors: open a horizontal and a vertical spine so no
	// noise roll can split the facility into unreachable halves.
	midY := cfg.Height / 2
	for x := 1; x < cfg.Width-1; x++ {
		m.Set(TileCoord{X: x, Y: midY}, TileFloor)
	}
	midX := cfg.Width / 2
	for y := 1; y < cfg.Height-1; y++ {
		m.Set(TileCoord{X: midX, Y: y}, TileFloor)
	}

	// Scatter cover on open floor adjacent to walls, where crates and
	// consoles would plausibly sit.
	for y := 1; y < cfg.Height-1; y++ {
		for x := 1; x < cfg.Width-1; x++ {
			c := TileCoord{X: x, Y: y}
			if m.At(c) != TileFloor || !adjacentToWall(m, c) {
				continue
			}
			clutter := octaveNoise(clutterNoise, float64(x), float64(y), 3, 0.25, 0.5)
			if clutter > 1.0-cfg.CoverDensity*4 {
				m.Set(c, TileCover)
				m.CoverPoints = append(m.CoverPoints, c)
			}
		}
	}

	placeEntries(m, cfg.Entries, rng)
	placeAlarmPanels(m, cfg.AlarmPanels, rng)

	return m
}

// octaveNoise samples multi-octave normalized noise for organic layouts.
func octaveNoise(n opensimplex.Noise, x, y float64, octaves int, freq, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	f := freq

	for i := 0; i < octaves; i++ {
		total += n.Eval2(x*f, y*f) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		f *= 2
	}
	return total / maxValue
}

func adjacentToWall(m *Map, c TileCoord) bool {
	for _, d := range [4]TileCoord{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if m.At(TileCoord{X: c.X + d.X, Y: c.Y + d.Y}) == TileWall {
			return true
		}
	}
	return false
}

// placeEntries opens insertion points just inside the perimeter, each
// backed by a cleared pocket of floor so entities never spawn in a wall.
func placeEntries(m *Map, count int, rng *rand.Rand) {
	for i := 0; i < count; i++ {
		// Alternate left and right walls, spread vertically.
		x := 1
		if i%2 == 1 {
			x = m.Width - 2
		}
		y := 2 + rng.Intn(m.Height-4)

		entry := TileCoord{X: x, Y: y}
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				c := TileCoord{X: x + dx, Y: y + dy}
				if m.InBounds(c) && c.X > 0 && c.X < m.Width-1 && c.Y > 0 && c.Y < m.Height-1 {
					m.Set(c, TileFloor)
				}
			}
		}
		m.Set(entry, TileEntry)
		m.Entries = append(m.Entries, entry)
	}
}

// placeAlarmPanels puts panels on floor tiles far from the entries, so
// reaching one under pressure is a meaningful trek.
func placeAlarmPanels(m *Map, count int, rng *rand.Rand) {
	for i := 0; i < count; i++ {
		var best TileCoord
		bestScore := -1.0
		// Sampled search; exhaustive placement quality is not worth the scan.
		for try := 0; try < 200; try++ {
			c := TileCoord{X: 1 + rng.Intn(m.Width-2), Y: 1 + rng.Intn(m.Height-2)}
			if m.At(c) != TileFloor {
				continue
			}
			score := math.Inf(1)
			for _, e := range m.Entries {
				if d := Dist(c.Center(), e.Center()); d < score {
					score = d
				}
			}
			for _, p := range m.AlarmPanels {
				// Keep panels spread apart.
				if d := Dist(c.Center(), p.Center()); d < 6 {
					score = -1
					break
				}
			}
			if score > bestScore {
				best, bestScore = c, score
			}
		}
		if bestScore < 0 {
			continue
		}
		m.Set(best, TileAlarmPanel)
		m.AlarmPanels = append(m.AlarmPanels, best)
	}
}
