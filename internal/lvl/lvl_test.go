package lvl

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/bmp"

	"lvlviewer/pkg/shading"
)

// tileRecord packs one tile into the on-disk u32 layout.
func tileRecord(x, y int, id shading.TileID) []byte {
	rec := uint32(x)&0xFFF | (uint32(y)&0xFFF)<<12 | uint32(id)<<24
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], rec)
	return buf[:]
}

func TestParseEmptyData(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {0x42}} {
		m, err := Parse(data)
		if err != nil {
			t.Fatalf("Parse(%v): %v", data, err)
		}
		if m.Tileset != nil || len(m.Chunks) != 0 {
			t.Errorf("Parse(%v) produced tileset/metadata for an empty map", data)
		}
		if got := m.Tiles.At(0, 0); got != shading.TileIDEmpty {
			t.Errorf("empty map has tile %d at origin", got)
		}
	}
}

func TestParseTileRecords(t *testing.T) {
	var data []byte
	data = append(data, tileRecord(0, 0, 1)...)
	data = append(data, tileRecord(512, 512, 10)...)
	data = append(data, tileRecord(1023, 1023, shading.TileIDSafe)...)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		x, y int
		want shading.TileID
	}{
		{0, 0, 1},
		{512, 512, 10},
		{1023, 1023, shading.TileIDSafe},
		{1, 1, shading.TileIDEmpty},
	}
	for _, tt := range tests {
		if got := m.Tiles.At(tt.x, tt.y); got != tt.want {
			t.Errorf("tile (%d, %d) = %d, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestParseIgnoresTrailingBytes(t *testing.T) {
	// A record fragment at the end of the file is not an error.
	data := append(tileRecord(5, 5, 7), 0xAA, 0xBB)
	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := m.Tiles.At(5, 5); got != 7 {
		t.Errorf("tile (5, 5) = %d, want 7", got)
	}
}

// testTileset builds a tileset image where each 16x16 cell is filled with
// R = tile index, so a repacked layer identifies its source cell.
func testTileset() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, TilesetColumns*TileSize, TilesetRows*TileSize))
	for k := 0; k < AtlasLayers; k++ {
		tx := (k % TilesetColumns) * TileSize
		ty := (k / TilesetColumns) * TileSize
		for y := 0; y < TileSize; y++ {
			for x := 0; x < TileSize; x++ {
				img.SetNRGBA(tx+x, ty+y, color.NRGBA{R: uint8(k), A: 255})
			}
		}
	}
	return img
}

func TestParseWithTilesetBitmap(t *testing.T) {
	var buf bytes.Buffer
	if err := bmp.Encode(&buf, testTileset()); err != nil {
		t.Fatalf("encode tileset: %v", err)
	}

	// Tile records follow the bitmap; the header's size field already
	// points at the first byte after the image.
	data := append(buf.Bytes(), tileRecord(2, 5, 10)...)

	m, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Tileset == nil {
		t.Fatal("tileset bitmap not decoded")
	}
	if got := m.Tiles.At(2, 5); got != 10 {
		t.Errorf("tile (2, 5) = %d, want 10", got)
	}

	atlas, err := BuildAtlas(m.Tileset)
	if err != nil {
		t.Fatalf("BuildAtlas: %v", err)
	}
	if atlas.Layers() != AtlasLayers {
		t.Fatalf("atlas has %d layers, want %d", atlas.Layers(), AtlasLayers)
	}
}

func TestBuildAtlasLayerPlacement(t *testing.T) {
	atlas, err := BuildAtlas(testTileset())
	if err != nil {
		t.Fatalf("BuildAtlas: %v", err)
	}
	if atlas.LayerSize() != TileSize {
		t.Fatalf("layer size = %d, want %d", atlas.LayerSize(), TileSize)
	}

	// Layer k must come from tileset cell k: first, one past the first
	// row boundary, and last.
	for _, k := range []int{0, 1, TilesetColumns, AtlasLayers - 1} {
		layer := atlas.Layer(k)
		if layer == nil {
			t.Fatalf("layer %d missing", k)
		}
		c := layer.NRGBAAt(8, 8)
		if int(c.R) != k {
			t.Errorf("layer %d holds cell %d", k, c.R)
		}
	}
}

func TestBuildAtlasRejectsSmallTileset(t *testing.T) {
	small := image.NewNRGBA(image.Rect(0, 0, 64, 64))
	if _, err := BuildAtlas(small); err == nil {
		t.Error("undersized tileset accepted, want error")
	}
}
