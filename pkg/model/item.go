package model

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/chazu/plater/pkg/scene"
)

// Item is one renderable leaf: a volume of one instance of one object, or
// the wipe tower. Items carry their own copies of the volume and instance
// transforms; the selection synchronizer keeps sibling copies consistent
// and CommitTransforms folds them back into the document.
type Item struct {
	objectIdx   int
	instanceIdx int
	volumeIdx   int

	modifier  bool
	wipeTower bool
	selected  bool
	disabled  bool

	hull      []mgl64.Vec3
	volumeT   scene.Transformation
	instanceT scene.Transformation

	objectSerial   uint64
	volumeSerial   uint64
	instanceSerial uint64
}

// ObjectIdx returns the owning object index, -1 for the wipe tower.
func (it *Item) ObjectIdx() int { return it.objectIdx }

// InstanceIdx returns the owning instance index.
func (it *Item) InstanceIdx() int { return it.instanceIdx }

// VolumeIdx returns the volume index, negative for auxiliary shapes.
func (it *Item) VolumeIdx() int { return it.volumeIdx }

// IsModifier reports whether the item is a modifier volume.
func (it *Item) IsModifier() bool { return it.modifier }

// IsWipeTower reports whether the item is the wipe tower.
func (it *Item) IsWipeTower() bool { return it.wipeTower }

// Selected reports the selection flag.
func (it *Item) Selected() bool { return it.selected }

// SetSelected sets the selection flag.
func (it *Item) SetSelected(selected bool) { it.selected = selected }

// Disabled reports the UI disabled flag.
func (it *Item) Disabled() bool { return it.disabled }

// SetDisabled sets the UI disabled flag.
func (it *Item) SetDisabled(disabled bool) { it.disabled = disabled }

// VolumeTransform exposes the item's volume-level transform.
func (it *Item) VolumeTransform() *scene.Transformation { return &it.volumeT }

// InstanceTransform exposes the item's instance-level transform.
func (it *Item) InstanceTransform() *scene.Transformation { return &it.instanceT }

// Hull returns the convex-hull points in local coordinates.
func (it *Item) Hull() []mgl64.Vec3 { return it.hull }

// WorldMatrix returns the composed instance∘volume transform.
func (it *Item) WorldMatrix() mgl64.Mat4 {
	return it.instanceT.Matrix().Mul4(it.volumeT.Matrix())
}

// TransformedConvexHullBox returns the axis-aligned box of the hull after
// applying instance and volume transforms.
func (it *Item) TransformedConvexHullBox() scene.BoundingBox {
	return scene.TransformedBox(it.WorldMatrix(), it.hull)
}
