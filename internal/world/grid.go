// Package world provides the facility tile grid, spatial queries, and
// line-of-sight checks. The grid is a flat array of tile kinds indexed by
// integer coordinates; entities move in continuous space on top of it.
package world

import (
	"fmt"
	"math"
)

// Vec2 is a continuous position or direction on the facility floor.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Normalize returns the unit vector, or zero for a zero vector.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Dist returns the euclidean distance between two points.
func Dist(a, b Vec2) float64 {
	return a.Sub(b).Len()
}

// TileCoord addresses one grid cell.
type TileCoord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Center returns the continuous position at the middle of the cell.
func (c TileCoord) Center() Vec2 {
	return Vec2{float64(c.X) + 0.5, float64(c.Y) + 0.5}
}

// TileOf maps a continuous position to its containing cell.
func TileOf(p Vec2) TileCoord {
	return TileCoord{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

// TileKind enumerates what occupies a grid cell.
type TileKind uint8

const (
	TileFloor      TileKind = iota // Open, walkable
	TileWall                       // Blocks movement and sight
	TileCover                      // Walkable; crouching here grants cover
	TileAlarmPanel                 // Walkable; guards can trip the facility alarm
	TileEntry                      // Walkable; intruder insertion point
)

var tileNames = [...]string{
	TileFloor:      "floor",
	TileWall:       "wall",
	TileCover:      "cover",
	TileAlarmPanel: "alarm_panel",
	TileEntry:      "entry",
}

// TileName returns a human-readable tile kind name.
func TileName(k TileKind) string {
	if int(k) < len(tileNames) {
		return tileNames[k]
	}
	return "unknown"
}

// Map holds the complete facility grid plus placement indexes built at
// generation time. Immutable after Generate.
type Map struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// Row-major tile kinds, indexed y*Width+x.
	Tiles []TileKind `json:"-"`

	// Indexes for spatial queries.
	CoverPoints []TileCoord `json:"cover_points"`
	AlarmPanels []TileCoord `json:"alarm_panels"`
	Entries     []TileCoord `json:"entries"`
}

// NewMap creates an all-wall map of the given dimensions.
func NewMap(width, height int) *Map {
	tiles := make([]TileKind, width*height)
	for i := range tiles {
		tiles[i] = TileWall
	}
	return &Map{Width: width, Height: height, Tiles: tiles}
}

// InBounds reports whether the cell lies on the grid.
func (m *Map) InBounds(c TileCoord) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

// At returns the tile kind at the cell; out-of-bounds reads as wall, so
// callers never need a separate bounds check before a walkability test.
func (m *Map) At(c TileCoord) TileKind {
	if !m.InBounds(c) {
		return TileWall
	}
	return m.Tiles[c.Y*m.Width+c.X]
}

// Set writes a tile kind. Panics out of bounds; generation only.
func (m *Map) Set(c TileCoord, k TileKind) {
	m.Tiles[c.Y*m.Width+c.X] = k
}

// Walkable reports whether an entity can occupy the cell.
func (m *Map) Walkable(c TileCoord) bool {
	return m.At(c) != TileWall
}

// WalkableAt reports whether an entity can occupy the continuous position.
func (m *Map) WalkableAt(p Vec2) bool {
	return m.Walkable(TileOf(p))
}

// NearestCover returns the closest cover tile within radius of pos.
func (m *Map) NearestCover(pos Vec2, radius float64) (TileCoord, bool) {
	return nearestOf(m.CoverPoints, pos, radius)
}

// NearestAlarmPanel returns the closest alarm panel within radius of pos.
func (m *Map) NearestAlarmPanel(pos Vec2, radius float64) (TileCoord, bool) {
	return nearestOf(m.AlarmPanels, pos, radius)
}

func nearestOf(points []TileCoord, pos Vec2, radius float64) (TileCoord, bool) {
	var (
		best  TileCoord
		bestD = radius
		found bool
	)
	for _, c := range points {
		d := Dist(c.Center(), pos)
		if d <= bestD {
			best, bestD, found = c, d, true
		}
	}
	return best, found
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(%dx%d, cover=%d, alarms=%d)", m.Width, m.Height, len(m.CoverPoints), len(m.AlarmPanels))
}
