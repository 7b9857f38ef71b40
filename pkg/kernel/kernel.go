// Package kernel defines the abstract geometry kernel interface used to
// author volume shapes for the plate. Implementations (sdfx) provide the
// primitives and tessellation behind this interface, so the rest of the
// system never touches the geometry backend directly.
package kernel

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives used for plate volumes.
	Box(x, y, z float64) Solid
	Cylinder(height, radius float64) Solid

	// Mesh output for rendering.
	ToMesh(s Solid) (*Mesh, error)
}
