package selection

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/scene"
)

// TransformationType configures a rotation along three independent axes:
// frame (world vs local), values (absolute vs relative) and grouping (joint
// rigid body vs independent per item). The zero value is world, absolute,
// joint.
type TransformationType uint8

const (
	TransformationLocal TransformationType = 1 << iota
	TransformationRelative
	TransformationIndependent
)

// World reports whether values are given in the world frame.
func (t TransformationType) World() bool { return t&TransformationLocal == 0 }

// Local reports whether values are given in the item's local frame.
func (t TransformationType) Local() bool { return t&TransformationLocal != 0 }

// Absolute reports whether values replace the current transform.
func (t TransformationType) Absolute() bool { return t&TransformationRelative == 0 }

// Relative reports whether values are deltas on the current transform.
func (t TransformationType) Relative() bool { return t&TransformationRelative != 0 }

// Joint reports whether the selection moves as one rigid body.
func (t TransformationType) Joint() bool { return t&TransformationIndependent == 0 }

// Independent reports whether each item transforms around its own origin.
func (t TransformationType) Independent() bool { return t&TransformationIndependent != 0 }

// Translate displaces every selected item. Volume-mode items (and the wipe
// tower) move their volume offset: directly when local, otherwise the
// displacement is mapped into the volume's local space by inverting the
// cached instance rotation, scale and mirror. Instance-mode items move
// their instance offset in world space.
func (s *Selection) Translate(displacement mgl64.Vec3, local bool) {
	if !s.valid {
		return
	}

	for _, i := range s.Indices() {
		item := s.items[i]
		c := s.snapshot[i]
		if s.mode == Volume || item.IsWipeTower() {
			if local {
				item.VolumeTransform().SetOffset(c.volume.position.Add(displacement))
			} else {
				inv := c.instance.rotationMatrix.
					Mul4(c.instance.scaleMatrix).
					Mul4(c.instance.mirrorMatrix).Inv()
				localDisplacement := scene.TransformDirection(inv, displacement)
				item.VolumeTransform().SetOffset(c.volume.position.Add(localDisplacement))
			}
		} else if s.mode == Instance {
			item.InstanceTransform().SetOffset(c.instance.position.Add(displacement))
		}
	}

	if s.mode == Instance {
		s.synchronizeUnselectedInstances(syncRotationNone)
	} else {
		s.synchronizeUnselectedVolumes()
	}

	s.bboxDirty = true
}

// Rotate rotates the selection. A zero rotation restores every selected
// item to its cached rotation and position, cancelling the gesture in
// progress. Only one rotation component is expected to be changing.
func (s *Selection) Rotate(rotation mgl64.Vec3, transformationType TransformationType) {
	if !s.valid {
		return
	}

	// Only relative rotation values are allowed in the world frame.
	debugAssert(!transformationType.World() || transformationType.Relative(),
		"world rotations must be relative")

	rotAxisMax := scene.X
	if rotation.ApproxEqualThreshold(mgl64.Vec3{}, 1e-12) {
		for _, i := range s.Indices() {
			item := s.items[i]
			c := s.snapshot[i]
			if s.mode == Instance {
				item.InstanceTransform().SetRotation(c.instance.rotation)
				item.InstanceTransform().SetOffset(c.instance.position)
			} else if s.mode == Volume {
				item.VolumeTransform().SetRotation(c.volume.rotation)
				item.VolumeTransform().SetOffset(c.volume.position)
			}
		}
	} else {
		rotAxisMax = dominantAxis(rotation)

		// For a generic rotation we rotate the first instance of each object
		// and then let the others follow its Z rotation, since X/Y rotation
		// never diverges between instances of one object.
		objectInstanceFirst := make(map[int]int)
		rotateInstance := func(item scene.Item, i int) {
			c := s.snapshot[i]
			if firstIdx, ok := objectInstanceFirst[item.ObjectIdx()]; ok && rotAxisMax != scene.Z {
				first := s.items[firstIdx]
				r := first.InstanceTransform().Rotation()
				zDiff := rotationDiffZ(s.snapshot[firstIdx].instance.rotation, c.instance.rotation)
				item.InstanceTransform().SetRotation(mgl64.Vec3{r.X(), r.Y(), r.Z() + zDiff})
				return
			}

			var newRotation mgl64.Vec3
			switch {
			case transformationType.World():
				newRotation = scene.ExtractEulerAngles(
					scene.RotationMatrix(rotation).Mul4(c.instance.rotationMatrix))
			case transformationType.Absolute():
				newRotation = rotation
			default:
				newRotation = rotation.Add(c.instance.rotation)
			}
			if rotAxisMax == scene.Z && transformationType.Joint() {
				// Rotate the instance offset around the shared pivot.
				zDelta := mgl64.Vec3{0, 0, newRotation.Z() - c.instance.rotation.Z()}
				offset := scene.TransformDirection(scene.RotationMatrix(zDelta),
					c.instance.position.Sub(s.draggingCenter))
				item.InstanceTransform().SetOffset(s.draggingCenter.Add(offset))
			}
			item.InstanceTransform().SetRotation(newRotation)
			objectInstanceFirst[item.ObjectIdx()] = i
		}

		singleFullInstance := s.IsSingleFullInstance()
		singleVolume := s.IsSingleVolume() || s.IsSingleModifier()
		for _, i := range s.Indices() {
			item := s.items[i]
			c := s.snapshot[i]
			switch {
			case singleFullInstance:
				rotateInstance(item, i)
			case singleVolume:
				if transformationType.Independent() {
					t := item.VolumeTransform()
					t.SetRotation(t.Rotation().Add(rotation))
				} else {
					m := scene.RotationMatrix(rotation)
					item.VolumeTransform().SetRotation(
						scene.ExtractEulerAngles(m.Mul4(c.volume.rotationMatrix)))
				}
			case s.mode == Instance:
				rotateInstance(item, i)
			case s.mode == Volume:
				m := scene.RotationMatrix(rotation)
				newRotation := scene.ExtractEulerAngles(m.Mul4(c.volume.rotationMatrix))
				if transformationType.Joint() {
					localPivot := scene.TransformPoint(c.instance.fullMatrix.Inv(), s.draggingCenter)
					offset := scene.TransformDirection(m, c.volume.position.Sub(localPivot))
					item.VolumeTransform().SetOffset(localPivot.Add(offset))
				}
				item.VolumeTransform().SetRotation(newRotation)
			}
		}
	}

	if s.mode == Instance {
		if rotAxisMax == scene.Z {
			s.synchronizeUnselectedInstances(syncRotationNone)
		} else {
			s.synchronizeUnselectedInstances(syncRotationGeneral)
		}
	} else if s.mode == Volume {
		s.synchronizeUnselectedVolumes()
	}

	s.bboxDirty = true
}

// FlatteningRotate rotates each selected instance so that the face with the
// given normal (in untransformed local coordinates) lies on the bed. The
// whole selection is expected to belong to one object.
func (s *Selection) FlatteningRotate(normal mgl64.Vec3) {
	if !s.valid {
		return
	}

	for _, i := range s.Indices() {
		c := s.snapshot[i]

		sm := c.instance.scaleMatrix
		scaling := mgl64.Vec3{1 / sm.At(0, 0), 1 / sm.At(1, 1), 1 / sm.At(2, 2)}
		mm := c.instance.mirrorMatrix
		mirror := mgl64.Vec3{mm.At(0, 0), mm.At(1, 1), mm.At(2, 2)}
		rotation := scene.ExtractEulerAngles(c.instance.rotationMatrix)

		transformedNormal := scene.TransformDirection(
			scene.AssembleTransform(mgl64.Vec3{}, rotation, scaling, mirror), normal).Normalize()

		var axis mgl64.Vec3
		if transformedNormal.Z() > 0.999 {
			axis = mgl64.Vec3{1, 0, 0}
		} else {
			axis = transformedNormal.Cross(mgl64.Vec3{0, 0, -1}).Normalize()
		}

		extraRotation := mgl64.HomogRotate3D(math.Acos(-transformedNormal.Z()), axis)
		newRotation := scene.ExtractEulerAngles(extraRotation.Mul4(c.instance.rotationMatrix))
		s.items[i].InstanceTransform().SetRotation(newRotation)
	}

	// Synchronize the Z rotation as well, otherwise flattening one of
	// several identical instances leaves the others behind.
	if s.mode == Instance {
		s.synchronizeUnselectedInstances(syncRotationFull)
	}

	s.bboxDirty = true
}

// Scale scales the selection. A single full instance or single volume
// scales directly; any other shape recomposes the scale matrix, extracts
// per-axis magnitudes and, unless local, repositions items so the group
// scales rigidly about the shared pivot.
func (s *Selection) Scale(scale mgl64.Vec3, local bool) {
	if !s.valid {
		return
	}

	singleFullInstance := s.IsSingleFullInstance()
	singleVolume := s.IsSingleVolume() || s.IsSingleModifier()
	for _, i := range s.Indices() {
		item := s.items[i]
		c := s.snapshot[i]
		switch {
		case singleFullInstance:
			item.InstanceTransform().SetScalingFactor(scale)
		case singleVolume:
			item.VolumeTransform().SetScalingFactor(scale)
		case s.mode == Instance:
			m := scene.ScaleMatrix(scale)
			newScale := columnNorms(m.Mul4(c.instance.scaleMatrix))
			if !local {
				item.InstanceTransform().SetOffset(s.draggingCenter.Add(
					scene.TransformDirection(m, c.instance.position.Sub(s.draggingCenter))))
			}
			item.InstanceTransform().SetScalingFactor(newScale)
		case s.mode == Volume:
			m := scene.ScaleMatrix(scale)
			newScale := columnNorms(m.Mul4(c.volume.scaleMatrix))
			if !local {
				offset := scene.TransformDirection(m,
					c.volume.position.Add(c.instance.position).Sub(s.draggingCenter))
				item.VolumeTransform().SetOffset(
					s.draggingCenter.Sub(c.instance.position).Add(offset))
			}
			item.VolumeTransform().SetScalingFactor(newScale)
		}
	}

	if s.mode == Instance {
		s.synchronizeUnselectedInstances(syncRotationNone)
	} else if s.mode == Volume {
		s.synchronizeUnselectedVolumes()
	}

	s.ensureOnBed()

	s.bboxDirty = true
}

// Mirror negates the mirror factor on the given axis for a single full
// instance or for Volume-mode items; other shapes are left unchanged.
func (s *Selection) Mirror(axis scene.Axis) {
	if !s.valid {
		return
	}

	singleFullInstance := s.IsSingleFullInstance()
	for _, i := range s.Indices() {
		item := s.items[i]
		if singleFullInstance {
			t := item.InstanceTransform()
			t.SetMirrorAxis(axis, -t.MirrorAxis(axis))
		} else if s.mode == Volume {
			t := item.VolumeTransform()
			t.SetMirrorAxis(axis, -t.MirrorAxis(axis))
		}
	}

	if s.mode == Instance {
		s.synchronizeUnselectedInstances(syncRotationNone)
	} else if s.mode == Volume {
		s.synchronizeUnselectedVolumes()
	}

	s.bboxDirty = true
}

// TranslateObject adds a world-space offset to every live item of the given
// object, selected or not, bypassing the gesture cache. Used for bulk
// document moves outside a selection drag.
func (s *Selection) TranslateObject(objectIdx int, displacement mgl64.Vec3) {
	if !s.valid {
		return
	}

	for _, item := range s.items {
		if item.ObjectIdx() == objectIdx {
			t := item.InstanceTransform()
			t.SetOffset(t.Offset().Add(displacement))
		}
	}

	s.bboxDirty = true
}

// TranslateInstance adds a world-space offset to every live item of the
// given (object, instance), selected or not, bypassing the gesture cache.
func (s *Selection) TranslateInstance(objectIdx, instanceIdx int, displacement mgl64.Vec3) {
	if !s.valid {
		return
	}

	for _, item := range s.items {
		if item.ObjectIdx() == objectIdx && item.InstanceIdx() == instanceIdx {
			t := item.InstanceTransform()
			t.SetOffset(t.Offset().Add(displacement))
		}
	}

	s.bboxDirty = true
}

// ensureOnBed drops every instance so that the lowest point of its
// non-modifier volumes sits on the bed plane.
func (s *Selection) ensureOnBed() {
	type objInst struct{ obj, inst int }
	minZ := make(map[objInst]float64)

	for _, item := range s.items {
		if item.IsWipeTower() || item.IsModifier() {
			continue
		}
		z := item.TransformedConvexHullBox().Min.Z()
		key := objInst{item.ObjectIdx(), item.InstanceIdx()}
		if cur, ok := minZ[key]; !ok || z < cur {
			minZ[key] = z
		}
	}

	for _, item := range s.items {
		key := objInst{item.ObjectIdx(), item.InstanceIdx()}
		if z, ok := minZ[key]; ok {
			t := item.InstanceTransform()
			t.SetOffsetAxis(scene.Z, t.Offset().Z()-z)
		}
	}
}

// dominantAxis returns the axis with the largest rotation magnitude.
func dominantAxis(rotation mgl64.Vec3) scene.Axis {
	axis := scene.X
	best := math.Abs(rotation.X())
	if v := math.Abs(rotation.Y()); v > best {
		axis, best = scene.Y, v
	}
	if v := math.Abs(rotation.Z()); v > best {
		axis = scene.Z
	}
	return axis
}

// columnNorms extracts per-axis scale magnitudes from the upper-left 3x3
// block of a composed matrix, discarding skew.
func columnNorms(m mgl64.Mat4) mgl64.Vec3 {
	return mgl64.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
}
