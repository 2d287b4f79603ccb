// Package geom is a third-party style package exposed through an alias.
package geom

import "math"

// Vec is a 2D vector.
type Vec struct {
	X, Y float64

	scale float64
}

// Len returns the euclidean length.
func (v *Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Scale multiplies both components in place.
func (v *Vec) Scale(f float64) {
	v.X *= f
	v.Y *= f
}

func (v *Vec) normalize() {}
