package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestBoundingBoxMergePoint(t *testing.T) {
	var box BoundingBox
	if box.Defined {
		t.Fatal("zero box must be undefined")
	}

	box.MergePoint(mgl64.Vec3{1, 2, 3})
	if !box.Defined {
		t.Fatal("box undefined after first point")
	}
	if !vec3ApproxEq(box.Min, mgl64.Vec3{1, 2, 3}) || !vec3ApproxEq(box.Max, mgl64.Vec3{1, 2, 3}) {
		t.Errorf("single-point box = [%v, %v]", box.Min, box.Max)
	}

	box.MergePoint(mgl64.Vec3{-1, 5, 0})
	if !vec3ApproxEq(box.Min, mgl64.Vec3{-1, 2, 0}) {
		t.Errorf("min = %v, want (-1,2,0)", box.Min)
	}
	if !vec3ApproxEq(box.Max, mgl64.Vec3{1, 5, 3}) {
		t.Errorf("max = %v, want (1,5,3)", box.Max)
	}
}

func TestBoundingBoxMergeEmptyIsIdentity(t *testing.T) {
	var box BoundingBox
	box.MergePoint(mgl64.Vec3{0, 0, 0})
	box.MergePoint(mgl64.Vec3{2, 2, 2})

	box.Merge(BoundingBox{})
	if !vec3ApproxEq(box.Min, mgl64.Vec3{0, 0, 0}) || !vec3ApproxEq(box.Max, mgl64.Vec3{2, 2, 2}) {
		t.Errorf("merging an empty box changed [%v, %v]", box.Min, box.Max)
	}
}

func TestBoundingBoxCenterAndSize(t *testing.T) {
	var box BoundingBox
	box.MergePoint(mgl64.Vec3{-5, -5, 0})
	box.MergePoint(mgl64.Vec3{5, 5, 10})

	if got := box.Center(); !vec3ApproxEq(got, mgl64.Vec3{0, 0, 5}) {
		t.Errorf("center = %v, want (0,0,5)", got)
	}
	if got := box.Size(); !vec3ApproxEq(got, mgl64.Vec3{10, 10, 10}) {
		t.Errorf("size = %v, want (10,10,10)", got)
	}

	var empty BoundingBox
	if got := empty.Center(); !vec3ApproxEq(got, mgl64.Vec3{}) {
		t.Errorf("empty center = %v, want zero", got)
	}
}

func TestTransformedBox(t *testing.T) {
	points := []mgl64.Vec3{
		{-1, -1, -1},
		{1, 1, 1},
	}
	m := mgl64.Translate3D(10, 0, 0)
	box := TransformedBox(m, points)
	if !vec3ApproxEq(box.Min, mgl64.Vec3{9, -1, -1}) {
		t.Errorf("min = %v, want (9,-1,-1)", box.Min)
	}
	if !vec3ApproxEq(box.Max, mgl64.Vec3{11, 1, 1}) {
		t.Errorf("max = %v, want (11,1,1)", box.Max)
	}

	if got := len(box.Corners()); got != 8 {
		t.Errorf("corner count = %d, want 8", got)
	}
}
