package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BoundingBox is an axis-aligned box. The zero value is empty (Defined
// false) and merges as the identity element.
type BoundingBox struct {
	Min, Max mgl64.Vec3
	Defined  bool
}

// MergePoint grows the box to contain the given point.
func (b *BoundingBox) MergePoint(p mgl64.Vec3) {
	if !b.Defined {
		b.Min, b.Max = p, p
		b.Defined = true
		return
	}
	for i := 0; i < 3; i++ {
		b.Min[i] = math.Min(b.Min[i], p[i])
		b.Max[i] = math.Max(b.Max[i], p[i])
	}
}

// Merge grows the box to contain another box.
func (b *BoundingBox) Merge(other BoundingBox) {
	if !other.Defined {
		return
	}
	b.MergePoint(other.Min)
	b.MergePoint(other.Max)
}

// Center returns the box center, or the zero vector for an empty box.
func (b BoundingBox) Center() mgl64.Vec3 {
	if !b.Defined {
		return mgl64.Vec3{}
	}
	return b.Min.Add(b.Max).Mul(0.5)
}

// Size returns the box extents.
func (b BoundingBox) Size() mgl64.Vec3 {
	if !b.Defined {
		return mgl64.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners of the box.
func (b BoundingBox) Corners() []mgl64.Vec3 {
	return []mgl64.Vec3{
		{b.Min.X(), b.Min.Y(), b.Min.Z()},
		{b.Max.X(), b.Min.Y(), b.Min.Z()},
		{b.Min.X(), b.Max.Y(), b.Min.Z()},
		{b.Max.X(), b.Max.Y(), b.Min.Z()},
		{b.Min.X(), b.Min.Y(), b.Max.Z()},
		{b.Max.X(), b.Min.Y(), b.Max.Z()},
		{b.Min.X(), b.Max.Y(), b.Max.Z()},
		{b.Max.X(), b.Max.Y(), b.Max.Z()},
	}
}

// TransformedBox returns the axis-aligned box of the given points after
// applying a transform.
func TransformedBox(m mgl64.Mat4, points []mgl64.Vec3) BoundingBox {
	var box BoundingBox
	for _, p := range points {
		box.MergePoint(TransformPoint(m, p))
	}
	return box
}
