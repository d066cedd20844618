package math

// Bounds is an axis-aligned bounding box. The zero value is empty.
type Bounds struct {
	Min, Max Vec3
	valid    bool
}

// BoundsOf returns the bounding box of a set of vertex positions.
func BoundsOf(points [][3]float32) Bounds {
	var b Bounds
	for _, p := range points {
		b = b.Extend(FromArray(p))
	}
	return b
}

// Empty reports whether the box contains no points.
func (b Bounds) Empty() bool {
	return !b.valid
}

// Extend returns the box grown to contain p.
func (b Bounds) Extend(p Vec3) Bounds {
	if !b.valid {
		return Bounds{Min: p, Max: p, valid: true}
	}
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p), valid: true}
}

// Union returns the box containing both boxes.
func (b Bounds) Union(other Bounds) Bounds {
	switch {
	case !other.valid:
		return b
	case !b.valid:
		return other
	}
	return b.Extend(other.Min).Extend(other.Max)
}

// Size returns the box extent along each axis.
func (b Bounds) Size() Vec3 {
	if !b.valid {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Vec3 {
	if !b.valid {
		return Vec3{}
	}
	return b.Min.Add(b.Max).Scale(0.5)
}
