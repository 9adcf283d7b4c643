package shading

import "fmt"

// TileGrid is a 2D lookup table mapping integer cell coordinates to tile
// ids. One cell covers one square world unit, so a grid of width W and
// height H covers world coordinates [0,W) x [0,H). The grid is read-only
// for the duration of a draw; Set is only used while building it.
type TileGrid struct {
	width  int
	height int
	ids    []TileID
}

// NewTileGrid returns an empty grid (all cells TileIDEmpty).
func NewTileGrid(width, height int) (*TileGrid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", width, height)
	}
	return &TileGrid{
		width:  width,
		height: height,
		ids:    make([]TileID, width*height),
	}, nil
}

// Width returns the addressable width in cells.
func (g *TileGrid) Width() int { return g.width }

// Height returns the addressable height in cells.
func (g *TileGrid) Height() int { return g.height }

// At returns the tile id at cell (x, y). Coordinates outside the grid read
// as TileIDEmpty.
func (g *TileGrid) At(x, y int) TileID {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return TileIDEmpty
	}
	return g.ids[y*g.width+x]
}

// Set stores a tile id at cell (x, y). Out-of-range coordinates are ignored.
func (g *TileGrid) Set(x, y int, id TileID) {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return
	}
	g.ids[y*g.width+x] = id
}

// IDs returns the backing cell data in row-major order, for texture upload.
// The caller must not modify it.
func (g *TileGrid) IDs() []TileID { return g.ids }
