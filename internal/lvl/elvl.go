package lvl

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/bits-and-blooms/bitset"
)

const (
	metadataHeaderSize = 12
	chunkHeaderSize    = 8

	// "elvl" in little-endian.
	elvlMagic = 0x6c766c65
)

// eLVL chunk kinds (four ASCII bytes, little-endian).
const (
	ChunkAttr = 0x52545441 // ATTR
	ChunkRegn = 0x4E474552 // REGN
)

// Region subchunk kinds.
const (
	regionName       = 0x4D414E72 // rNAM
	regionTileData   = 0x4C495472 // rTIL
	regionIsBase     = 0x45534272 // rBSE
	regionNoAntiwarp = 0x57414E72 // rNAW
	regionNoWeapons  = 0x50574E72 // rNWP
	regionNoFlags    = 0x4C464E72 // rNFL
)

// Region flags.
const (
	RegionBase uint32 = 1 << iota
	RegionNoAntiwarp
	RegionNoWeapons
	RegionNoFlags
)

// Attribute is a key=value metadata entry.
type Attribute struct {
	Key   string
	Value string
}

// Chunk is one eLVL metadata chunk. Attribute and Region are set for the
// kinds this package understands; everything else keeps its raw payload.
type Chunk struct {
	Kind      uint32
	Attribute *Attribute
	Region    *Region
	Payload   []byte
}

// Region is a named set of map tiles with gameplay flags.
type Region struct {
	Name  string
	Flags uint32

	tiles     *bitset.BitSet
	tileCount int
}

func newRegion() *Region {
	return &Region{tiles: bitset.New(MapWidth * MapHeight)}
}

// SetTile marks tile (x, y) as part of the region.
func (r *Region) SetTile(x, y uint16) {
	idx := regionIndex(x, y)
	if !r.tiles.Test(idx) {
		r.tiles.Set(idx)
		r.tileCount++
	}
}

// Contains reports whether tile (x, y) lies inside the region.
func (r *Region) Contains(x, y uint16) bool {
	return r.tiles.Test(regionIndex(x, y))
}

// TileCount returns how many tiles the region covers.
func (r *Region) TileCount() int { return r.tileCount }

func regionIndex(x, y uint16) uint {
	return uint(y)*MapWidth + uint(x)
}

// readChunks extracts eLVL metadata from raw .lvl file contents. Maps
// without a bitmap header, without a metadata offset, or with a foreign
// metadata section simply have no chunks; only structurally broken chunk
// data is an error.
func readChunks(data []byte) ([]Chunk, error) {
	if len(data) < 10 || data[0] != 'B' || data[1] != 'M' {
		return nil, nil
	}

	metadataOffset := int(binary.LittleEndian.Uint32(data[6:10]))
	if metadataOffset == 0 {
		return nil, nil
	}
	if len(data) < metadataOffset+metadataHeaderSize {
		return nil, nil
	}

	header := data[metadataOffset:]
	if binary.LittleEndian.Uint32(header[0:4]) != elvlMagic {
		return nil, nil
	}
	totalSize := int(binary.LittleEndian.Uint32(header[4:8]))

	var chunks []Chunk
	rest := data[metadataOffset+metadataHeaderSize:]
	consumed := metadataHeaderSize

	for len(rest) >= chunkHeaderSize && consumed < totalSize {
		kind := binary.LittleEndian.Uint32(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		if chunkHeaderSize+size > len(rest) {
			return nil, fmt.Errorf("chunk %08x size %d exceeds remaining data", kind, size)
		}
		payload := rest[chunkHeaderSize : chunkHeaderSize+size]

		chunk := Chunk{Kind: kind}
		switch kind {
		case ChunkAttr:
			attr, err := parseAttribute(payload)
			if err != nil {
				return nil, err
			}
			chunk.Attribute = attr
		case ChunkRegn:
			region, err := parseRegion(payload)
			if err != nil {
				return nil, err
			}
			chunk.Region = region
		default:
			chunk.Payload = append([]byte(nil), payload...)
		}
		chunks = append(chunks, chunk)

		// Chunks are padded to 4-byte alignment.
		step := chunkHeaderSize + ((size + 3) &^ 3)
		if step > len(rest) {
			break
		}
		rest = rest[step:]
		consumed += step
	}

	return chunks, nil
}

func parseAttribute(payload []byte) (*Attribute, error) {
	for i, b := range payload {
		if b == '=' {
			key, value := payload[:i], payload[i+1:]
			if !utf8.Valid(key) || !utf8.Valid(value) {
				return nil, fmt.Errorf("attribute is not valid UTF-8")
			}
			return &Attribute{Key: string(key), Value: string(value)}, nil
		}
	}
	return nil, fmt.Errorf("attribute data has no key=value split")
}

func parseRegion(payload []byte) (*Region, error) {
	region := newRegion()

	var coordX, coordY uint16
	rest := payload

	for len(rest) >= chunkHeaderSize {
		kind := binary.LittleEndian.Uint32(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		if chunkHeaderSize+size > len(rest) {
			return nil, fmt.Errorf("region subchunk %08x size %d exceeds remaining data", kind, size)
		}
		sub := rest[chunkHeaderSize : chunkHeaderSize+size]

		switch kind {
		case regionName:
			region.Name = string(sub)
		case regionTileData:
			var err error
			coordX, coordY, err = region.parseRuns(sub, coordX, coordY)
			if err != nil {
				return nil, err
			}
		case regionIsBase:
			region.Flags |= RegionBase
		case regionNoAntiwarp:
			region.Flags |= RegionNoAntiwarp
		case regionNoWeapons:
			region.Flags |= RegionNoWeapons
		case regionNoFlags:
			region.Flags |= RegionNoFlags
		}

		step := chunkHeaderSize + ((size + 3) &^ 3)
		if step > len(rest) {
			break
		}
		rest = rest[step:]
	}

	return region, nil
}

// parseRuns decodes the run-length tile encoding of an rTIL subchunk. The
// top 3 bits of each byte pick the run type; short runs (1-32) fit in the
// remaining 5 bits, long runs (1-1024) borrow 2 bits plus a second byte.
// Run lengths are stored minus one.
func (r *Region) parseRuns(data []byte, x, y uint16) (uint16, uint16, error) {
	advance := func(run uint16) {
		x += run
		if x >= MapWidth {
			x = 0
			y++
		}
	}

	for len(data) > 0 {
		kind := data[0] >> 5
		consumed := 1

		shortRun := uint16(data[0]&0x1F) + 1
		var longRun uint16
		if kind&1 == 1 {
			if len(data) < 2 {
				return 0, 0, fmt.Errorf("unexpected end of region tile data")
			}
			longRun = (uint16(data[0]&0x03)<<8 | uint16(data[1])) + 1
			consumed = 2
		}

		switch kind {
		case 0: // short run of empty tiles
			advance(shortRun)
		case 1: // long run of empty tiles
			advance(longRun)
		case 2: // short run of present tiles
			for i := uint16(0); i < shortRun; i++ {
				r.SetTile(x+i, y)
			}
			advance(shortRun)
		case 3: // long run of present tiles
			for i := uint16(0); i < longRun; i++ {
				r.SetTile(x+i, y)
			}
			advance(longRun)
		case 4: // short run of empty rows
			x = 0
			y += shortRun
		case 5: // long run of empty rows
			x = 0
			y += longRun
		case 6: // repeat previous row, short
			r.repeatRow(y, shortRun)
			x = 0
			y += shortRun
		case 7: // repeat previous row, long
			r.repeatRow(y, longRun)
			x = 0
			y += longRun
		}

		data = data[consumed:]
	}

	return x, y, nil
}

func (r *Region) repeatRow(y, times uint16) {
	for i := uint16(0); i < times; i++ {
		for x := uint16(0); x < MapWidth; x++ {
			if r.Contains(x, y-1) {
				r.SetTile(x, y+i)
			}
		}
	}
}
