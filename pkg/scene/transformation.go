package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transformation is a decomposed affine transform: translation, XYZ Euler
// rotation (radians), anisotropic scaling and per-axis mirroring (±1).
// The composed matrix is cached and rebuilt lazily after mutation.
type Transformation struct {
	offset   mgl64.Vec3
	rotation mgl64.Vec3
	scaling  mgl64.Vec3
	mirror   mgl64.Vec3

	matrix mgl64.Mat4
	dirty  bool
}

// NewTransformation returns an identity transformation.
func NewTransformation() Transformation {
	return Transformation{
		scaling: mgl64.Vec3{1, 1, 1},
		mirror:  mgl64.Vec3{1, 1, 1},
		matrix:  mgl64.Ident4(),
	}
}

// Offset returns the translation component.
func (t *Transformation) Offset() mgl64.Vec3 { return t.offset }

// Rotation returns the XYZ Euler angles in radians.
func (t *Transformation) Rotation() mgl64.Vec3 { return t.rotation }

// ScalingFactor returns the per-axis scaling factors.
func (t *Transformation) ScalingFactor() mgl64.Vec3 { return t.scaling }

// Mirror returns the per-axis mirror factors (±1).
func (t *Transformation) Mirror() mgl64.Vec3 { return t.mirror }

// MirrorAxis returns the mirror factor for one axis.
func (t *Transformation) MirrorAxis(a Axis) float64 { return t.mirror[a] }

// SetOffset replaces the translation component.
func (t *Transformation) SetOffset(offset mgl64.Vec3) {
	t.offset = offset
	t.dirty = true
}

// SetOffsetAxis replaces one coordinate of the translation component.
func (t *Transformation) SetOffsetAxis(a Axis, v float64) {
	t.offset[a] = v
	t.dirty = true
}

// SetRotation replaces the XYZ Euler angles (radians).
func (t *Transformation) SetRotation(rotation mgl64.Vec3) {
	t.rotation = rotation
	t.dirty = true
}

// SetScalingFactor replaces the per-axis scaling factors.
func (t *Transformation) SetScalingFactor(scaling mgl64.Vec3) {
	t.scaling = scaling
	t.dirty = true
}

// SetMirror replaces the per-axis mirror factors.
func (t *Transformation) SetMirror(mirror mgl64.Vec3) {
	t.mirror = mirror
	t.dirty = true
}

// SetMirrorAxis replaces the mirror factor for one axis.
func (t *Transformation) SetMirrorAxis(a Axis, v float64) {
	t.mirror[a] = v
	t.dirty = true
}

// Matrix returns the composed transform
// translate ∘ rotZ ∘ rotY ∘ rotX ∘ scale ∘ mirror.
func (t *Transformation) Matrix() mgl64.Mat4 {
	if t.dirty {
		t.matrix = AssembleTransform(t.offset, t.rotation, t.scaling, t.mirror)
		t.dirty = false
	}
	return t.matrix
}

// RotationMatrix returns the homogeneous rotation matrix for XYZ Euler
// angles, composed as Rz·Ry·Rx.
func RotationMatrix(rotation mgl64.Vec3) mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(rotation.Z()).
		Mul4(mgl64.HomogRotate3DY(rotation.Y())).
		Mul4(mgl64.HomogRotate3DX(rotation.X()))
}

// ScaleMatrix returns the homogeneous scaling matrix for the given factors.
// Mirror matrices are scale matrices with ±1 factors.
func ScaleMatrix(scaling mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Scale3D(scaling.X(), scaling.Y(), scaling.Z())
}

// AssembleTransform composes translation, rotation, scaling and mirror into
// a single matrix, applied right to left.
func AssembleTransform(offset, rotation, scaling, mirror mgl64.Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(offset.X(), offset.Y(), offset.Z()).
		Mul4(RotationMatrix(rotation)).
		Mul4(ScaleMatrix(scaling)).
		Mul4(ScaleMatrix(mirror))
}

// ExtractEulerAngles decomposes a pure rotation matrix (composed as
// Rz·Ry·Rx) back into XYZ Euler angles.
func ExtractEulerAngles(m mgl64.Mat4) mgl64.Vec3 {
	// cos(y) magnitude from the first column.
	cy := math.Sqrt(m.At(0, 0)*m.At(0, 0) + m.At(1, 0)*m.At(1, 0))
	var x, y, z float64
	if cy >= 1e-6 {
		x = math.Atan2(m.At(2, 1), m.At(2, 2))
		y = math.Atan2(-m.At(2, 0), cy)
		z = math.Atan2(m.At(1, 0), m.At(0, 0))
	} else {
		// Gimbal lock: y = ±π/2, x and z are coupled.
		x = math.Atan2(-m.At(1, 2), m.At(1, 1))
		y = math.Atan2(-m.At(2, 0), cy)
		z = 0
	}
	return mgl64.Vec3{x, y, z}
}

// TransformPoint applies a homogeneous transform to a point.
func TransformPoint(m mgl64.Mat4, p mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}

// TransformDirection applies a homogeneous transform to a direction,
// ignoring the translation component.
func TransformDirection(m mgl64.Mat4, d mgl64.Vec3) mgl64.Vec3 {
	return m.Mul4x1(d.Vec4(0)).Vec3()
}

// EulerToQuat converts XYZ Euler angles to a quaternion with the same
// Rz·Ry·Rx composition order used by RotationMatrix.
func EulerToQuat(rotation mgl64.Vec3) mgl64.Quat {
	qz := mgl64.QuatRotate(rotation.Z(), mgl64.Vec3{0, 0, 1})
	qy := mgl64.QuatRotate(rotation.Y(), mgl64.Vec3{0, 1, 0})
	qx := mgl64.QuatRotate(rotation.X(), mgl64.Vec3{1, 0, 0})
	return qz.Mul(qy).Mul(qx)
}
