// Package scene defines the abstract scene-graph contracts for Plater.
// Concrete implementations (pkg/model) provide the document-backed items
// behind these interfaces. The abstraction keeps the selection core free
// of any knowledge about how volumes and instances are stored.
package scene

// Axis identifies one of the three coordinate axes.
type Axis int

const (
	X Axis = iota
	Y
	Z
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return "?"
}

// Item is a single renderable leaf of the scene: one volume of one instance
// of one object. Items carry their own copies of the volume-level and
// instance-level transforms; keeping sibling copies consistent is the job
// of the selection synchronizer.
type Item interface {
	// ObjectIdx returns the owning object index, or a negative value for
	// items that do not belong to the document (wipe tower).
	ObjectIdx() int
	// InstanceIdx returns the owning instance index within the object.
	InstanceIdx() int
	// VolumeIdx returns the volume index within the object. Negative values
	// denote auxiliary shapes (supports, pads) that are rendered but not
	// part of the editable document.
	VolumeIdx() int

	IsModifier() bool
	IsWipeTower() bool

	Selected() bool
	SetSelected(selected bool)
	Disabled() bool
	SetDisabled(disabled bool)

	// VolumeTransform and InstanceTransform expose the two decomposed
	// transform levels for in-place mutation.
	VolumeTransform() *Transformation
	InstanceTransform() *Transformation

	// TransformedConvexHullBox returns the axis-aligned box of the item's
	// convex hull after applying instance and volume transforms.
	TransformedConvexHullBox() BoundingBox
}

// Tree exposes the per-object volume and instance counts of the document.
// The selection classifier only needs the arithmetic, not the storage.
type Tree interface {
	ObjectCount() int
	VolumeCount(objectIdx int) int
	InstanceCount(objectIdx int) int
}
