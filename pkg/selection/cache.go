package selection

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/scene"
)

// transformCache is the decomposed snapshot of one transform level, taken
// at gesture start, together with its pre-multiplied matrices.
type transformCache struct {
	position mgl64.Vec3
	rotation mgl64.Vec3
	scaling  mgl64.Vec3
	mirror   mgl64.Vec3

	rotationMatrix mgl64.Mat4
	scaleMatrix    mgl64.Mat4
	mirrorMatrix   mgl64.Mat4
	fullMatrix     mgl64.Mat4
}

func snapshotTransform(t *scene.Transformation) transformCache {
	return transformCache{
		position:       t.Offset(),
		rotation:       t.Rotation(),
		scaling:        t.ScalingFactor(),
		mirror:         t.Mirror(),
		rotationMatrix: scene.RotationMatrix(t.Rotation()),
		scaleMatrix:    scene.ScaleMatrix(t.ScalingFactor()),
		mirrorMatrix:   scene.ScaleMatrix(t.Mirror()),
		fullMatrix:     t.Matrix(),
	}
}

// itemCache is the per-item snapshot read by the transform engine for the
// duration of one drag gesture.
type itemCache struct {
	volume   transformCache
	instance transformCache
}

// StartDragging snapshots every item's transforms and the shared dragging
// center pivot from the current live state. Must be called once before any
// transform call of a gesture.
func (s *Selection) StartDragging() {
	if !s.valid {
		return
	}
	s.setCaches()
}

func (s *Selection) setCaches() {
	s.snapshot = make(map[int]itemCache, len(s.items))
	for i, item := range s.items {
		s.snapshot[i] = itemCache{
			volume:   snapshotTransform(item.VolumeTransform()),
			instance: snapshotTransform(item.InstanceTransform()),
		}
	}
	s.draggingCenter = s.BoundingBox().Center()
}
