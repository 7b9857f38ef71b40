package selection

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/scene"
)

// syncRotation selects how instance rotations are propagated to unselected
// siblings after an Instance-mode transform.
type syncRotation int

const (
	// syncRotationNone leaves sibling rotations untouched. Used for Z-only
	// rotations, where X/Y stay synchronized throughout the gesture.
	syncRotationNone syncRotation = iota
	// syncRotationFull forces the source rotation verbatim, including Z.
	// Used after flattening.
	syncRotationFull
	// syncRotationGeneral keeps the sibling's own Z offset: the sibling
	// receives the source X/Y and its Z is shifted by the same delta.
	syncRotationGeneral
)

// rotationXYZDiff returns the rotation taking the first Euler orientation
// to the second, as a quaternion.
func rotationXYZDiff(from, to mgl64.Vec3) mgl64.Quat {
	return scene.EulerToQuat(to).Mul(scene.EulerToQuat(from).Inverse())
}

// rotationDiffZ returns the signed Z angle between two orientations known
// to differ only by a rotation around Z.
func rotationDiffZ(from, to mgl64.Vec3) float64 {
	axis, angle := quatToAxisAngle(rotationXYZDiff(from, to))
	if math.Abs(angle) > 1e-8 {
		debugAssert(math.Abs(axis.X()) < 1e-8 && math.Abs(axis.Y()) < 1e-8,
			"rotations differ by more than a Z rotation")
	}
	if axis.Z() < 0 {
		return -angle
	}
	return angle
}

// quatToAxisAngle decomposes a unit quaternion. A near-identity rotation
// returns a zero angle with the Z axis.
func quatToAxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	n := q.V.Len()
	if n < 1e-12 {
		return mgl64.Vec3{0, 0, 1}, 0
	}
	angle := 2 * math.Atan2(n, q.W)
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	return q.V.Mul(1 / n), angle
}

// rotationXYSynchronized reports whether two orientations differ only by a
// rotation around Z.
func rotationXYSynchronized(from, to mgl64.Vec3) bool {
	axis, angle := quatToAxisAngle(rotationXYZDiff(from, to))
	if math.Abs(angle) < 1e-8 {
		return true
	}
	return math.Abs(axis.X()) < 1e-8 && math.Abs(axis.Y()) < 1e-8 &&
		math.Abs(math.Abs(axis.Z())-1) < 1e-8
}

// InstanceRotationsSynchronized reports whether, for every document object,
// all of its instances differ only by a rotation around Z. This is the
// invariant the synchronizer maintains across the whole document.
func InstanceRotationsSynchronized(items []scene.Item, tree scene.Tree) bool {
	for objectIdx := 0; objectIdx < tree.ObjectCount(); objectIdx++ {
		first := -1
		for i, item := range items {
			if item.ObjectIdx() == objectIdx {
				first = i
				break
			}
		}
		if first == -1 {
			continue
		}
		rotation0 := items[first].InstanceTransform().Rotation()
		for _, item := range items[first+1:] {
			if item.ObjectIdx() != objectIdx {
				continue
			}
			if !rotationXYSynchronized(item.InstanceTransform().Rotation(), rotation0) {
				return false
			}
		}
	}
	return true
}

// synchronizeUnselectedInstances propagates scaling, mirror and (depending
// on the policy) rotation from every selected item to the other instances
// of the same object.
func (s *Selection) synchronizeUnselectedInstances(sync syncRotation) {
	done := make(map[int]struct{}, len(s.list))
	for i := range s.list {
		done[i] = struct{}{}
	}

	for _, i := range s.Indices() {
		if len(done) == len(s.items) {
			break
		}

		item := s.items[i]
		objectIdx := item.ObjectIdx()
		if objectIdx < 0 {
			// Wipe tower and friends have no document siblings.
			continue
		}

		instanceIdx := item.InstanceIdx()
		rotation := item.InstanceTransform().Rotation()
		scalingFactor := item.InstanceTransform().ScalingFactor()
		mirror := item.InstanceTransform().Mirror()

		for j, sibling := range s.items {
			if len(done) == len(s.items) {
				break
			}
			if _, ok := done[j]; ok {
				continue
			}
			if sibling.ObjectIdx() != objectIdx || sibling.InstanceIdx() == instanceIdx {
				continue
			}

			debugAssert(rotationXYSynchronized(
				s.snapshot[i].instance.rotation, s.snapshot[j].instance.rotation),
				"cached sibling rotations out of sync")

			switch sync {
			case syncRotationNone:
				// Z-only rotation, the sibling keeps its own Z. X/Y must stay
				// synchronized from start to end of the gesture.
				debugAssert(rotationXYSynchronized(rotation, sibling.InstanceTransform().Rotation()),
					"sibling X/Y rotation diverged during Z rotation")
			case syncRotationFull:
				sibling.InstanceTransform().SetRotation(rotation)
			case syncRotationGeneral:
				zDiff := rotationDiffZ(s.snapshot[i].instance.rotation, s.snapshot[j].instance.rotation)
				sibling.InstanceTransform().SetRotation(
					mgl64.Vec3{rotation.X(), rotation.Y(), rotation.Z() + zDiff})
			}

			sibling.InstanceTransform().SetScalingFactor(scalingFactor)
			sibling.InstanceTransform().SetMirror(mirror)

			done[j] = struct{}{}
		}
	}

	verifyInstanceRotationsSynchronized(s.items, s.tree)
}

// synchronizeUnselectedVolumes copies offset, rotation, scaling and mirror
// from every selected item to the other occurrences of the same (object,
// volume) definition across instances.
func (s *Selection) synchronizeUnselectedVolumes() {
	for _, i := range s.Indices() {
		item := s.items[i]
		objectIdx := item.ObjectIdx()
		if objectIdx < 0 {
			continue
		}

		volumeIdx := item.VolumeIdx()
		offset := item.VolumeTransform().Offset()
		rotation := item.VolumeTransform().Rotation()
		scalingFactor := item.VolumeTransform().ScalingFactor()
		mirror := item.VolumeTransform().Mirror()

		for j, sibling := range s.items {
			if j == i {
				continue
			}
			if sibling.ObjectIdx() != objectIdx || sibling.VolumeIdx() != volumeIdx {
				continue
			}

			sibling.VolumeTransform().SetOffset(offset)
			sibling.VolumeTransform().SetRotation(rotation)
			sibling.VolumeTransform().SetScalingFactor(scalingFactor)
			sibling.VolumeTransform().SetMirror(mirror)
		}
	}
}
