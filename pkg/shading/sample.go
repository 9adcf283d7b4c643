package shading

import "math"

// uvOffset shifts world coordinates before the fractional wrap so that the
// positions just outside the map (where the border tile is drawn) still
// produce well-aligned UVs. Whole-unit translations are invariant under the
// wrap, so the offset never changes which texel a position maps to.
const uvOffset = 2.0

// WrapUV converts a world position into a wrapped UV coordinate in [0, 1),
// tiling the atlas image across every world unit cell.
func WrapUV(x, y float32) (u, v float32) {
	return fract(x + uvOffset), fract(y + uvOffset)
}

func fract(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}

// SampleTile samples the color of tile id at world position (x, y). The id
// must be a visible id produced by Classify, which guarantees
// 1 <= id <= TileIDMaxRenderable; layer id-1 then exists in a correctly
// bound atlas. An id the atlas has no layer for reads as transparent black,
// which only happens when the host bound an undersized atlas.
func SampleTile(atlas *TileAtlas, cfg SamplerConfig, id TileID, x, y float32) RGBA {
	layer := int(id) - 1
	if layer < 0 || layer >= atlas.Layers() {
		return RGBA{}
	}
	u, v := WrapUV(x, y)
	if cfg.Filter == FilterLinear {
		return sampleLinear(atlas, layer, u, v)
	}
	return sampleNearest(atlas, layer, u, v)
}

// ShadePixel runs the full per-pixel stage: classify the world position,
// then sample the visible tile. The second return is false when the pixel
// is discarded and no color is written.
func ShadePixel(grid *TileGrid, atlas *TileAtlas, cfg SamplerConfig, x, y float32) (RGBA, bool) {
	c := Classify(grid, x, y)
	if !c.Visible {
		return RGBA{}, false
	}
	return SampleTile(atlas, cfg, c.Tile, x, y), true
}

func sampleNearest(atlas *TileAtlas, layer int, u, v float32) RGBA {
	size := atlas.LayerSize()
	x := int(u * float32(size))
	y := int(v * float32(size))
	return atlas.texel(layer, x, y)
}

func sampleLinear(atlas *TileAtlas, layer int, u, v float32) RGBA {
	size := atlas.LayerSize()

	// Texel centers sit at (i+0.5)/size.
	fx := u*float32(size) - 0.5
	fy := v*float32(size) - 0.5
	x0 := int(math.Floor(float64(fx)))
	y0 := int(math.Floor(float64(fy)))
	dx := fx - float32(x0)
	dy := fy - float32(y0)

	c00 := atlas.texel(layer, x0, y0)
	c10 := atlas.texel(layer, x0+1, y0)
	c01 := atlas.texel(layer, x0, y0+1)
	c11 := atlas.texel(layer, x0+1, y0+1)

	top := lerpRGBA(c00, c10, dx)
	bottom := lerpRGBA(c01, c11, dx)
	return lerpRGBA(top, bottom, dy)
}

func lerpRGBA(a, b RGBA, t float32) RGBA {
	return RGBA{
		R: a.R + (b.R-a.R)*t,
		G: a.G + (b.G-a.G)*t,
		B: a.B + (b.B-a.B)*t,
		A: a.A + (b.A-a.A)*t,
	}
}
