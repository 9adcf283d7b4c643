package shading

import (
	"fmt"
	"image"
)

// RGBA is a fragment color with float components in [0, 1].
type RGBA struct {
	R, G, B, A float32
}

// FilterMode selects how the sampler reads texels.
type FilterMode int

const (
	// FilterNearest picks the single closest texel.
	FilterNearest FilterMode = iota
	// FilterLinear blends the four surrounding texels.
	FilterLinear
)

// SamplerConfig is the shared sampling configuration for the whole atlas.
// Addressing within a layer is clamp-to-edge; the wrap-around tiling comes
// from the UV computation, not the sampler.
type SamplerConfig struct {
	Filter FilterMode
}

// TileAtlas is an ordered set of equally-shaped square color layers, one per
// renderable tile id. Layer k holds the appearance of tile id k+1.
type TileAtlas struct {
	size   int
	layers []*image.NRGBA
}

// NewTileAtlas builds an atlas from pre-cut layers. Every layer must be
// square and share the same dimensions; a host that binds mismatched layers
// is caught here rather than producing garbage samples later.
func NewTileAtlas(layers []*image.NRGBA) (*TileAtlas, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("atlas needs at least one layer")
	}
	size := layers[0].Rect.Dx()
	for i, l := range layers {
		if l.Rect.Dx() != size || l.Rect.Dy() != size {
			return nil, fmt.Errorf("atlas layer %d is %dx%d, want %dx%d",
				i, l.Rect.Dx(), l.Rect.Dy(), size, size)
		}
	}
	return &TileAtlas{size: size, layers: layers}, nil
}

// Layers returns the number of layers.
func (a *TileAtlas) Layers() int { return len(a.layers) }

// LayerSize returns the edge length of each layer in texels.
func (a *TileAtlas) LayerSize() int { return a.size }

// Layer returns the image backing layer k, or nil if out of range.
func (a *TileAtlas) Layer(k int) *image.NRGBA {
	if k < 0 || k >= len(a.layers) {
		return nil
	}
	return a.layers[k]
}

// texel reads one texel from layer k with clamp-to-edge addressing.
func (a *TileAtlas) texel(k, x, y int) RGBA {
	x = clampInt(x, 0, a.size-1)
	y = clampInt(y, 0, a.size-1)
	l := a.layers[k]
	i := l.PixOffset(l.Rect.Min.X+x, l.Rect.Min.Y+y)
	return RGBA{
		R: float32(l.Pix[i]) / 255,
		G: float32(l.Pix[i+1]) / 255,
		B: float32(l.Pix[i+2]) / 255,
		A: float32(l.Pix[i+3]) / 255,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
