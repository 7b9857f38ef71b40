package kernel

import "github.com/go-gl/mathgl/mgl64"

// HullPoints returns the eight bounding-box corners of a solid, used as the
// convex-hull approximation for plate items.
func HullPoints(s Solid) []mgl64.Vec3 {
	min, max := s.BoundingBox()
	return []mgl64.Vec3{
		{min[0], min[1], min[2]},
		{max[0], min[1], min[2]},
		{min[0], max[1], min[2]},
		{max[0], max[1], min[2]},
		{min[0], min[1], max[2]},
		{max[0], min[1], max[2]},
		{min[0], max[1], max[2]},
		{max[0], max[1], max[2]},
	}
}
