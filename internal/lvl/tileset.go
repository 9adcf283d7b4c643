package lvl

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"lvlviewer/pkg/shading"
)

const (
	// TileSize is the edge length of one tile image in pixels.
	TileSize = 16

	// The tileset bitmap lays tiles out in a 19x10 grid.
	TilesetColumns = 19
	TilesetRows    = 10

	// AtlasLayers is the number of renderable tile ids, one layer each.
	AtlasLayers = TilesetColumns * TilesetRows
)

// BuildAtlas cuts a tileset image into per-tile layers, where layer k holds
// the image for tile id k+1. The tileset must be at least 304x160 pixels;
// anything extra (editor scratch space below the tile rows) is ignored.
func BuildAtlas(tileset image.Image) (*shading.TileAtlas, error) {
	b := tileset.Bounds()
	if b.Dx() < TilesetColumns*TileSize || b.Dy() < TilesetRows*TileSize {
		return nil, fmt.Errorf("tileset is %dx%d, need at least %dx%d",
			b.Dx(), b.Dy(), TilesetColumns*TileSize, TilesetRows*TileSize)
	}

	layers := make([]*image.NRGBA, AtlasLayers)
	for k := range layers {
		tx := (k % TilesetColumns) * TileSize
		ty := (k / TilesetColumns) * TileSize

		layer := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
		src := b.Min.Add(image.Pt(tx, ty))
		draw.Draw(layer, layer.Bounds(), tileset, src, draw.Src)
		layers[k] = layer
	}

	return shading.NewTileAtlas(layers)
}

// PlaceholderAtlas returns an atlas of flat colors, one per tile id, for
// maps that carry no tileset bitmap. The layout stays readable even though
// the tile art is missing.
func PlaceholderAtlas() *shading.TileAtlas {
	layers := make([]*image.NRGBA, AtlasLayers)
	for k := range layers {
		id := k + 1
		c := color.NRGBA{
			R: uint8(60 + id*97%180),
			G: uint8(60 + id*57%180),
			B: uint8(60 + id*31%180),
			A: 255,
		}

		layer := image.NewNRGBA(image.Rect(0, 0, TileSize, TileSize))
		draw.Draw(layer, layer.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
		layers[k] = layer
	}

	atlas, err := shading.NewTileAtlas(layers)
	if err != nil {
		// All layers are the same fixed shape, so this cannot fail.
		panic(err)
	}
	return atlas
}

// Atlas builds the texture atlas for the map: from the embedded tileset
// bitmap when present, otherwise the flat-color placeholder.
func (m *Map) Atlas() (*shading.TileAtlas, error) {
	if m.Tileset == nil {
		return PlaceholderAtlas(), nil
	}
	return BuildAtlas(m.Tileset)
}
