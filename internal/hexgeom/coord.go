package hexgeom

// Axial represents axial coordinates (q, r).
type Axial struct {
	Q int `yaml:"q" json:"q"`
	R int `yaml:"r" json:"r"`
}

// Cube represents cube coordinates (x, y, z) with x+y+z=0.
type Cube struct {
	X int
	Y int
	Z int
}

// Directions for axial neighbors, starting east and turning counter-clockwise.
var Directions = [6]Axial{
	{+1, 0}, {+1, -1}, {0, -1}, {-1, 0}, {-1, +1}, {0, +1},
}

// Add returns a+b in axial space.
func (a Axial) Add(b Axial) Axial { return Axial{a.Q + b.Q, a.R + b.R} }

// Neighbor returns the adjacent coordinate in direction dir (0..5, wrapping).
func (a Axial) Neighbor(dir int) Axial {
	dir %= 6
	if dir < 0 {
		dir += 6
	}
	return a.Add(Directions[dir])
}

// Neighbors returns the six adjacent coordinates.
func (a Axial) Neighbors() [6]Axial {
	var out [6]Axial
	for i, d := range Directions {
		out[i] = a.Add(d)
	}
	return out
}

// ToCube converts axial to cube.
func (a Axial) ToCube() Cube {
	return Cube{X: a.Q, Y: -a.Q - a.R, Z: a.R}
}

// ToAxial converts cube to axial.
func (c Cube) ToAxial() Axial { return Axial{Q: c.X, R: c.Z} }

// Distance returns the hex distance between a and b.
func Distance(a, b Axial) int {
	ac, bc := a.ToCube(), b.ToCube()
	dx := abs(ac.X - bc.X)
	dy := abs(ac.Y - bc.Y)
	dz := abs(ac.Z - bc.Z)
	if dx > dy && dx > dz {
		return dx
	}
	if dy > dz {
		return dy
	}
	return dz
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
