package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func mat4ApproxEq(a, b mgl64.Mat4) bool {
	return a.ApproxEqualThreshold(b, 1e-9)
}

func vec3ApproxEq(a, b mgl64.Vec3) bool {
	return a.ApproxEqualThreshold(b, 1e-9)
}

func TestNewTransformationIsIdentity(t *testing.T) {
	tr := NewTransformation()
	if !mat4ApproxEq(tr.Matrix(), mgl64.Ident4()) {
		t.Errorf("identity transformation matrix = %v, want identity", tr.Matrix())
	}
	if got := tr.ScalingFactor(); !vec3ApproxEq(got, mgl64.Vec3{1, 1, 1}) {
		t.Errorf("scaling = %v, want (1,1,1)", got)
	}
	if got := tr.Mirror(); !vec3ApproxEq(got, mgl64.Vec3{1, 1, 1}) {
		t.Errorf("mirror = %v, want (1,1,1)", got)
	}
}

func TestMatrixRebuildsAfterMutation(t *testing.T) {
	tr := NewTransformation()
	tr.SetOffset(mgl64.Vec3{1, 2, 3})

	p := TransformPoint(tr.Matrix(), mgl64.Vec3{0, 0, 0})
	if !vec3ApproxEq(p, mgl64.Vec3{1, 2, 3}) {
		t.Errorf("translated origin = %v, want (1,2,3)", p)
	}

	tr.SetOffsetAxis(Z, 10)
	p = TransformPoint(tr.Matrix(), mgl64.Vec3{0, 0, 0})
	if !vec3ApproxEq(p, mgl64.Vec3{1, 2, 10}) {
		t.Errorf("after SetOffsetAxis, origin = %v, want (1,2,10)", p)
	}
}

func TestRotationMatrixComposition(t *testing.T) {
	// Rz·Ry·Rx applied to the X unit vector with a pure Z rotation.
	m := RotationMatrix(mgl64.Vec3{0, 0, math.Pi / 2})
	got := TransformDirection(m, mgl64.Vec3{1, 0, 0})
	if !vec3ApproxEq(got, mgl64.Vec3{0, 1, 0}) {
		t.Errorf("Rz(90°)·x = %v, want (0,1,0)", got)
	}

	// X rotation is applied first.
	m = RotationMatrix(mgl64.Vec3{math.Pi / 2, 0, math.Pi / 2})
	got = TransformDirection(m, mgl64.Vec3{0, 1, 0})
	// Rx(90°): y -> z, then Rz(90°): z -> z.
	if !vec3ApproxEq(got, mgl64.Vec3{0, 0, 1}) {
		t.Errorf("Rz·Rx applied to y = %v, want (0,0,1)", got)
	}
}

func TestExtractEulerAnglesRoundTrip(t *testing.T) {
	cases := []mgl64.Vec3{
		{0, 0, 0},
		{0.3, 0, 0},
		{0, -0.7, 0},
		{0, 0, 2.1},
		{0.2, 0.4, -0.9},
		{-1.2, 0.8, 3.0},
	}
	for _, rot := range cases {
		m := RotationMatrix(rot)
		back := RotationMatrix(ExtractEulerAngles(m))
		if !mat4ApproxEq(m, back) {
			t.Errorf("round trip of %v changed the rotation", rot)
		}
	}
}

func TestExtractEulerAnglesGimbalLock(t *testing.T) {
	rot := mgl64.Vec3{0.4, math.Pi / 2, 0}
	m := RotationMatrix(rot)
	back := RotationMatrix(ExtractEulerAngles(m))
	if !mat4ApproxEq(m, back) {
		t.Errorf("gimbal lock round trip changed the rotation")
	}
}

func TestAssembleTransformOrder(t *testing.T) {
	// Mirror and scale apply before rotation, translation last.
	m := AssembleTransform(
		mgl64.Vec3{100, 0, 0},
		mgl64.Vec3{0, 0, math.Pi / 2},
		mgl64.Vec3{2, 1, 1},
		mgl64.Vec3{-1, 1, 1},
	)
	// (1,0,0) -> mirror (-1,0,0) -> scale (-2,0,0) -> Rz(90°) (0,-2,0)
	// -> translate (100,-2,0).
	got := TransformPoint(m, mgl64.Vec3{1, 0, 0})
	if !vec3ApproxEq(got, mgl64.Vec3{100, -2, 0}) {
		t.Errorf("composed transform of (1,0,0) = %v, want (100,-2,0)", got)
	}
}

func TestTransformDirectionIgnoresTranslation(t *testing.T) {
	m := mgl64.Translate3D(5, 5, 5)
	got := TransformDirection(m, mgl64.Vec3{1, 0, 0})
	if !vec3ApproxEq(got, mgl64.Vec3{1, 0, 0}) {
		t.Errorf("direction through translation = %v, want (1,0,0)", got)
	}
}

func TestEulerToQuatMatchesRotationMatrix(t *testing.T) {
	cases := []mgl64.Vec3{
		{0.3, 0, 0},
		{0, 0.5, 0},
		{0, 0, -1.1},
		{0.2, -0.4, 0.9},
	}
	for _, rot := range cases {
		qm := EulerToQuat(rot).Mat4()
		rm := RotationMatrix(rot)
		if !mat4ApproxEq(qm, rm) {
			t.Errorf("quaternion and matrix disagree for %v", rot)
		}
	}
}
