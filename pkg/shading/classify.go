package shading

import "math"

// TileID names which visual tile (or no tile) occupies a grid cell. Ids
// 1..TileIDMaxRenderable index the atlas (layer = id-1); 0 is the empty
// sentinel and is never sampled.
type TileID uint32

// Tile id ranges from the SubSpace map format. Doors, flags and goals are
// animated or state-driven in game and are not drawn by this static pass;
// ids above the atlas range carry gameplay meaning only.
const (
	// TileIDEmpty marks a cell with no tile.
	TileIDEmpty TileID = 0

	// TileIDBorder is the border tile drawn for positions outside the map.
	TileIDBorder TileID = 68

	// TileIDFirstDoor..TileIDLastDoor is the animated door range.
	TileIDFirstDoor TileID = 162
	TileIDLastDoor  TileID = 169

	// TileIDFlag and TileIDGoal are drawn by their own game systems.
	TileIDFlag TileID = 170
	TileIDGoal TileID = 172

	// TileIDSafe is an ordinary renderable tile with gameplay meaning.
	TileIDSafe TileID = 171

	// TileIDWormhole lies beyond the atlas and is never drawn here.
	TileIDWormhole TileID = 220

	// TileIDMaxRenderable is the highest id the atlas has a layer for.
	TileIDMaxRenderable TileID = 190
)

// Classification is the per-pixel outcome of the classifier: either a
// visible tile id (always >= 1) or a discard. Discard is a normal result,
// not an error; it means nothing is drawn at that pixel.
type Classification struct {
	Tile    TileID
	Visible bool
}

// Classify determines which tile covers the interpolated world position
// (x, y) and whether it should be drawn. Positions outside the grid's
// domain classify as the border tile; in-range positions look up the cell
// under the position. The id then passes the visibility filter.
func Classify(grid *TileGrid, x, y float32) Classification {
	if x < 0 || y < 0 || x > float32(grid.Width()) || y > float32(grid.Height()) {
		return visibility(TileIDBorder)
	}
	cx := int(math.Floor(float64(x)))
	cy := int(math.Floor(float64(y)))
	return visibility(grid.At(cx, cy))
}

// visibility applies the discard policy to a fetched tile id.
func visibility(id TileID) Classification {
	switch {
	case id == TileIDEmpty:
		return Classification{}
	case id == TileIDFlag || id == TileIDGoal:
		return Classification{}
	case id >= TileIDFirstDoor && id <= TileIDLastDoor:
		return Classification{}
	case id > TileIDMaxRenderable:
		return Classification{}
	}
	return Classification{Tile: id, Visible: true}
}
