// Package lvl reads SubSpace .lvl map files: an optional tileset bitmap,
// a 1024x1024 grid of tile ids, and optional eLVL metadata chunks embedded
// in the bitmap's reserved header fields.
package lvl

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"os"

	"golang.org/x/image/bmp"

	"lvlviewer/pkg/shading"
)

const (
	// MapWidth and MapHeight are the fixed tile dimensions of a map.
	MapWidth  = 1024
	MapHeight = 1024
)

// Map is a loaded .lvl file.
type Map struct {
	Filename string
	Tiles    *shading.TileGrid
	Tileset  image.Image // nil when the file has no tileset bitmap
	Chunks   []Chunk
}

// Empty returns a map with no tiles, no tileset and no metadata.
func Empty() *Map {
	grid, _ := shading.NewTileGrid(MapWidth, MapHeight)
	return &Map{Tiles: grid}
}

// Load reads and parses a .lvl file from disk.
func Load(filename string) (*Map, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read map file: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	m.Filename = filename
	return m, nil
}

// Parse decodes .lvl file contents. A file shorter than two bytes is a
// valid, fully empty map.
func Parse(data []byte) (*Map, error) {
	m := Empty()

	if len(data) < 2 {
		return m, nil
	}

	tiledataOffset := 0

	if data[0] == 'B' && data[1] == 'M' {
		if len(data) < 10 {
			return nil, fmt.Errorf("truncated bitmap header")
		}

		img, err := bmp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode tileset bitmap: %w", err)
		}
		m.Tileset = img

		// The bitmap's file-size field doubles as the offset of the tile
		// data that follows the image.
		tiledataOffset = int(binary.LittleEndian.Uint32(data[2:6]))
	}

	if tiledataOffset >= len(data) {
		return nil, fmt.Errorf("tile data offset %d beyond file size %d", tiledataOffset, len(data))
	}

	tiledata := data[tiledataOffset:]
	for i := 0; i+4 <= len(tiledata); i += 4 {
		rec := binary.LittleEndian.Uint32(tiledata[i : i+4])
		x := int(rec & 0xFFF)
		y := int((rec >> 12) & 0xFFF)
		id := shading.TileID((rec >> 24) & 0xFF)
		m.Tiles.Set(x, y, id)
	}

	chunks, err := readChunks(data)
	if err != nil {
		return nil, err
	}
	m.Chunks = chunks

	return m, nil
}

// Attributes returns the ATTR metadata entries of the map.
func (m *Map) Attributes() []Attribute {
	var attrs []Attribute
	for _, c := range m.Chunks {
		if c.Attribute != nil {
			attrs = append(attrs, *c.Attribute)
		}
	}
	return attrs
}

// Regions returns the named regions of the map.
func (m *Map) Regions() []*Region {
	var regions []*Region
	for _, c := range m.Chunks {
		if c.Region != nil {
			regions = append(regions, c.Region)
		}
	}
	return regions
}
