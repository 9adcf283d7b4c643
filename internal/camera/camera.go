// Package camera provides the 2D world-space camera for the map view and
// builds the model-view-projection matrix the renderer uploads each frame.
package camera

import (
	"lvlviewer/pkg/shading"
)

const (
	// MinScale and MaxScale bound the zoom range, in world units per
	// screen pixel.
	MinScale = 1.0 / 256.0
	MaxScale = 1.0
)

// DefaultScale shows a tile at 16 screen pixels, the tileset's native size.
const DefaultScale = 1.0 / 16.0

// Camera is the map viewport: a center position in world (tile) units and
// a zoom scale.
type Camera struct {
	// Position is the world coordinate at the center of the view.
	Position shading.Vec2

	// Scale is world units per screen pixel.
	Scale float32

	surfaceWidth  float32
	surfaceHeight float32

	isDragging bool
	lastDragX  float64
	lastDragY  float64
}

// New creates a camera centered on position with the given surface size.
func New(position shading.Vec2, scale float32, surfaceWidth, surfaceHeight int) *Camera {
	c := &Camera{
		Position: position,
		Scale:    clampScale(scale),
	}
	c.SetSurfaceSize(surfaceWidth, surfaceHeight)
	return c
}

// SetSurfaceSize updates the camera for a resized drawing surface.
func (c *Camera) SetSurfaceSize(width, height int) {
	// Round up to even so the projection box stays symmetric around a
	// pixel edge, keeping tile edges crisp.
	c.surfaceWidth = float32((width + 1) &^ 1)
	c.surfaceHeight = float32((height + 1) &^ 1)
}

// Projection returns the orthographic projection for the current surface.
// World Y grows downward, so the top/bottom planes are swapped.
func (c *Camera) Projection() shading.Mat4 {
	// Each half of the box extends width/2 pixels from the center;
	// halving the scale folds that division in.
	s := c.Scale * 0.5
	left := -c.surfaceWidth * s
	right := c.surfaceWidth * s
	bottom := c.surfaceHeight * s
	top := -c.surfaceHeight * s
	return shading.Orthographic(left, right, bottom, top, 0, 1)
}

// View returns the view matrix translating the camera position to origin.
func (c *Camera) View() shading.Mat4 {
	return shading.Translation(-c.Position.X, -c.Position.Y, 0)
}

// MVP returns the combined matrix the vertex stage consumes.
func (c *Camera) MVP() shading.Mat4 {
	return c.Projection().Mul(c.View())
}

// Unproject maps a screen position (pixels, origin top-left) to world
// coordinates.
func (c *Camera) Unproject(screenX, screenY float64) shading.Vec2 {
	offsetX := float32(screenX) - c.surfaceWidth/2
	offsetY := float32(screenY) - c.surfaceHeight/2
	return shading.Vec2{
		X: c.Position.X + offsetX*c.Scale,
		Y: c.Position.Y + offsetY*c.Scale,
	}
}

// Pan moves the camera by a screen-pixel delta.
func (c *Camera) Pan(deltaX, deltaY float64) {
	c.Position.X -= float32(deltaX) * c.Scale
	c.Position.Y -= float32(deltaY) * c.Scale
}

// ZoomAt applies a wheel zoom, keeping the world point under the cursor
// fixed on screen. Positive steps zoom in.
func (c *Camera) ZoomAt(steps float64, screenX, screenY float64) {
	anchor := c.Unproject(screenX, screenY)

	factor := float32(1)
	for i := 0.0; i < steps; i++ {
		factor *= 0.8
	}
	for i := 0.0; i > steps; i-- {
		factor *= 1.25
	}
	c.Scale = clampScale(c.Scale * factor)

	// Re-anchor: the cursor must unproject to the same world point.
	after := c.Unproject(screenX, screenY)
	c.Position.X += anchor.X - after.X
	c.Position.Y += anchor.Y - after.Y
}

// ZoomIn zooms one step toward the view center.
func (c *Camera) ZoomIn() {
	c.Scale = clampScale(c.Scale * 0.5)
}

// ZoomOut zooms one step away from the view center.
func (c *Camera) ZoomOut() {
	c.Scale = clampScale(c.Scale * 2)
}

// StartDrag begins a drag operation at a screen position.
func (c *Camera) StartDrag(x, y float64) {
	c.isDragging = true
	c.lastDragX = x
	c.lastDragY = y
}

// Drag continues a drag operation, panning by the cursor movement.
func (c *Camera) Drag(x, y float64) {
	if !c.isDragging {
		return
	}
	c.Pan(x-c.lastDragX, y-c.lastDragY)
	c.lastDragX = x
	c.lastDragY = y
}

// EndDrag ends a drag operation.
func (c *Camera) EndDrag() {
	c.isDragging = false
}

// IsDragging reports whether a drag is in progress.
func (c *Camera) IsDragging() bool {
	return c.isDragging
}

func clampScale(s float32) float32 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}
