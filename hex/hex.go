// Package hex provides axial coordinates for the hexagonal cell grid.
// The third cube coordinate s is derived: s = -q - r.
package hex

import "math"

// Coord is a position on the hex grid in axial coordinates.
type Coord struct {
	Q int `yaml:"q" csv:"q"`
	R int `yaml:"r" csv:"r"`
}

// Origin is the grid center. Craft layouts place the core here by convention.
var Origin = Coord{}

// Directions are the six neighbor offsets, counter-clockwise from east.
var Directions = [6]Coord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// S returns the implicit third cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord {
	return Coord{Q: c.Q + o.Q, R: c.R + o.R}
}

// Scale returns c scaled by k.
func (c Coord) Scale(k int) Coord {
	return Coord{Q: c.Q * k, R: c.R * k}
}

// Neighbor returns the adjacent coordinate in direction d (0-5, wrapped).
func (c Coord) Neighbor(d int) Coord {
	return c.Add(Directions[((d%6)+6)%6])
}

// Neighbors returns all six adjacent coordinates.
func (c Coord) Neighbors() [6]Coord {
	var out [6]Coord
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

// Distance returns the number of steps between two coordinates.
func Distance(a, b Coord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	return max(dq, dr, ds)
}

// Adjacent reports whether a and b share an edge.
func Adjacent(a, b Coord) bool {
	return Distance(a, b) == 1
}

// Ring returns the coordinates exactly radius steps from center,
// starting at the south-west corner and walking counter-clockwise.
func Ring(center Coord, radius int) []Coord {
	if radius <= 0 {
		return []Coord{center}
	}
	out := make([]Coord, 0, 6*radius)
	c := center.Add(Directions[4].Scale(radius))
	for side := 0; side < 6; side++ {
		for step := 0; step < radius; step++ {
			out = append(out, c)
			c = c.Neighbor(side)
		}
	}
	return out
}

// Spiral returns center followed by rings 1..radius.
func Spiral(center Coord, radius int) []Coord {
	out := []Coord{center}
	for r := 1; r <= radius; r++ {
		out = append(out, Ring(center, r)...)
	}
	return out
}

// ToPixel projects a coordinate onto a plane for pointy-top hexagons of the
// given circumradius.
func ToPixel(c Coord, size float32) (x, y float32) {
	q := float64(c.Q)
	r := float64(c.R)
	s := float64(size)
	x = float32(s * (math.Sqrt(3)*q + math.Sqrt(3)/2*r))
	y = float32(s * (1.5 * r))
	return x, y
}

// FromPixel returns the coordinate containing the given point.
func FromPixel(x, y, size float32) Coord {
	px := float64(x) / float64(size)
	py := float64(y) / float64(size)
	q := math.Sqrt(3)/3*px - 1.0/3*py
	r := 2.0 / 3 * py
	return round(q, r)
}

func round(fq, fr float64) Coord {
	fs := -fq - fr
	q := math.Round(fq)
	r := math.Round(fr)
	s := math.Round(fs)

	dq := math.Abs(q - fq)
	dr := math.Abs(r - fr)
	ds := math.Abs(s - fs)

	if dq > dr && dq > ds {
		q = -r - s
	} else if dr > ds {
		r = -q - s
	}
	return Coord{Q: int(q), R: int(r)}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
