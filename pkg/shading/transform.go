// Package shading implements the per-vertex and per-pixel logic of the tile
// map renderer: projecting quad vertices into clip space, classifying a
// world-space position into a tile id, deciding whether that tile is visible,
// and sampling the visible tile's color from a layered atlas.
//
// Everything here is a pure function of its inputs. The functions are invoked
// once per vertex or once per covered pixel, in any order, with no state
// shared between invocations. The same logic runs on the GPU via the WGSL
// shader in internal/renderer; this package is the CPU reference used by the
// software renderer and the tests.
package shading

// StageOutput is what the vertex stage produces: a clip-space position for
// the rasterizer and the untransformed world position, which the pipeline
// interpolates across the quad before it reaches the per-pixel stages.
type StageOutput struct {
	ClipPos Vec4
	World   Vec2
}

// TransformVertex maps a local 2D vertex position into clip space using the
// model-view-projection matrix and forwards the position unchanged as the
// world-space coordinate. Any input is accepted; there are no failure modes.
func TransformVertex(mvp Mat4, p Vec2) StageOutput {
	return StageOutput{
		ClipPos: mvp.TransformVec4(Vec4{X: p.X, Y: p.Y, Z: 0, W: 1}),
		World:   p,
	}
}
