package camera

import (
	"math"
	"testing"

	"lvlviewer/pkg/shading"
)

func approxEq(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestUnprojectCenter(t *testing.T) {
	c := New(shading.Vec2{X: 512, Y: 512}, DefaultScale, 1280, 720)

	p := c.Unproject(640, 360)
	if !approxEq(p.X, 512) || !approxEq(p.Y, 512) {
		t.Errorf("screen center unprojects to %+v, want camera position", p)
	}
}

func TestUnprojectScalesWithZoom(t *testing.T) {
	c := New(shading.Vec2{X: 100, Y: 100}, 1.0/16.0, 800, 600)

	// 16 pixels right of center is one tile at this scale.
	p := c.Unproject(400+16, 300)
	if !approxEq(p.X, 101) {
		t.Errorf("16px offset unprojects to x = %v, want 101", p.X)
	}
}

func TestMVPCenterMapsToClipOrigin(t *testing.T) {
	c := New(shading.Vec2{X: 512, Y: 512}, DefaultScale, 1024, 768)

	out := shading.TransformVertex(c.MVP(), c.Position)
	if !approxEq(out.ClipPos.X, 0) || !approxEq(out.ClipPos.Y, 0) {
		t.Errorf("camera position maps to clip %+v, want origin", out.ClipPos)
	}
}

func TestMVPOrientation(t *testing.T) {
	c := New(shading.Vec2{X: 512, Y: 512}, DefaultScale, 1024, 768)
	mvp := c.MVP()

	// World +Y (downward on the map) must map to clip -Y (down on screen).
	below := shading.TransformVertex(mvp, shading.Vec2{X: 512, Y: 600})
	if below.ClipPos.Y >= 0 {
		t.Errorf("point below center maps to clip y = %v, want negative", below.ClipPos.Y)
	}
	right := shading.TransformVertex(mvp, shading.Vec2{X: 600, Y: 512})
	if right.ClipPos.X <= 0 {
		t.Errorf("point right of center maps to clip x = %v, want positive", right.ClipPos.X)
	}
}

func TestMVPRoundTripsWithUnproject(t *testing.T) {
	c := New(shading.Vec2{X: 312.5, Y: 700.25}, 1.0/32.0, 1280, 720)
	mvp := c.MVP()

	// A world point obtained via Unproject must land on the matching
	// clip-space position for the same pixel.
	sx, sy := 900.0, 200.0
	world := c.Unproject(sx, sy)
	out := shading.TransformVertex(mvp, world)

	wantX := (float32(sx) - 640) / 640
	wantY := -(float32(sy) - 360) / 360
	if !approxEq(out.ClipPos.X, wantX) {
		t.Errorf("clip x = %v, want %v", out.ClipPos.X, wantX)
	}
	if !approxEq(out.ClipPos.Y, wantY) {
		t.Errorf("clip y = %v, want %v", out.ClipPos.Y, wantY)
	}
}

func TestPan(t *testing.T) {
	c := New(shading.Vec2{X: 512, Y: 512}, 1.0/16.0, 800, 600)

	// Dragging the map 32px right moves the camera 2 tiles left.
	c.Pan(32, 0)
	if !approxEq(c.Position.X, 510) {
		t.Errorf("position x = %v, want 510", c.Position.X)
	}
}

func TestDragAccumulates(t *testing.T) {
	c := New(shading.Vec2{X: 512, Y: 512}, 1.0/16.0, 800, 600)

	c.StartDrag(100, 100)
	c.Drag(116, 100)
	c.Drag(116, 132)
	c.EndDrag()

	if !approxEq(c.Position.X, 511) || !approxEq(c.Position.Y, 510) {
		t.Errorf("position after drag = %+v, want (511, 510)", c.Position)
	}
	if c.IsDragging() {
		t.Error("still dragging after EndDrag")
	}
}

func TestZoomAtKeepsCursorAnchored(t *testing.T) {
	c := New(shading.Vec2{X: 512, Y: 512}, 1.0/16.0, 800, 600)

	sx, sy := 600.0, 150.0
	before := c.Unproject(sx, sy)
	c.ZoomAt(1, sx, sy)
	after := c.Unproject(sx, sy)

	if !approxEq(before.X, after.X) || !approxEq(before.Y, after.Y) {
		t.Errorf("anchor moved from %+v to %+v during zoom", before, after)
	}
	if c.Scale >= 1.0/16.0 {
		t.Errorf("scale = %v, want smaller after zooming in", c.Scale)
	}
}

func TestScaleClamping(t *testing.T) {
	c := New(shading.Vec2{}, MaxScale, 800, 600)
	c.ZoomOut()
	if c.Scale > MaxScale {
		t.Errorf("scale %v exceeds max %v", c.Scale, MaxScale)
	}

	c.Scale = MinScale
	c.ZoomIn()
	if c.Scale < MinScale {
		t.Errorf("scale %v below min %v", c.Scale, MinScale)
	}
}

func TestSurfaceSizeRoundsUpToEven(t *testing.T) {
	c := New(shading.Vec2{X: 0, Y: 0}, DefaultScale, 801, 601)

	// An odd surface behaves as the next even size: the center pixel of
	// an 802-wide surface unprojects to the camera position.
	p := c.Unproject(401, 301)
	if !approxEq(p.X, 0) || !approxEq(p.Y, 0) {
		t.Errorf("center of odd surface unprojects to %+v, want origin", p)
	}
}
