package lvl

import (
	"encoding/binary"
	"testing"
)

// chunkBytes assembles one chunk with its 4-byte-aligned padding.
func chunkBytes(kind uint32, payload []byte) []byte {
	var out []byte
	out = binary.LittleEndian.AppendUint32(out, kind)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = append(out, payload...)
	if pad := (4 - len(payload)%4) % 4; pad > 0 {
		out = append(out, make([]byte, pad)...)
	}
	return out
}

// metadataFile builds a minimal fake .lvl prefix carrying only eLVL
// metadata: a "BM" signature, the metadata offset in the reserved header
// field, and the chunk stream. readChunks never decodes the bitmap, so the
// image data itself can be absent.
func metadataFile(chunks ...[]byte) []byte {
	const headerSize = 14

	var body []byte
	for _, c := range chunks {
		body = append(body, c...)
	}

	data := make([]byte, headerSize)
	data[0], data[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(data[6:10], headerSize)

	data = binary.LittleEndian.AppendUint32(data, elvlMagic)
	data = binary.LittleEndian.AppendUint32(data, uint32(metadataHeaderSize+len(body)))
	data = binary.LittleEndian.AppendUint32(data, 0)
	return append(data, body...)
}

func TestReadChunksNoMetadata(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"no bitmap signature", []byte("not a bitmap at all")},
		{"zero metadata offset", append([]byte{'B', 'M'}, make([]byte, 12)...)},
		{"offset beyond file", func() []byte {
			d := make([]byte, 14)
			d[0], d[1] = 'B', 'M'
			binary.LittleEndian.PutUint32(d[6:10], 9999)
			return d
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := readChunks(tt.data)
			if err != nil {
				t.Fatalf("readChunks: %v", err)
			}
			if chunks != nil {
				t.Errorf("got %d chunks, want none", len(chunks))
			}
		})
	}
}

func TestReadChunksAttributes(t *testing.T) {
	data := metadataFile(
		chunkBytes(ChunkAttr, []byte("NAME=Trench Wars")),
		chunkBytes(ChunkAttr, []byte("VERSION=1.2")),
		chunkBytes(0x46454442, []byte{1, 2, 3}), // unknown kind kept raw
	)

	chunks, err := readChunks(data)
	if err != nil {
		t.Fatalf("readChunks: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}

	want := []Attribute{
		{Key: "NAME", Value: "Trench Wars"},
		{Key: "VERSION", Value: "1.2"},
	}
	for i, w := range want {
		if chunks[i].Attribute == nil || *chunks[i].Attribute != w {
			t.Errorf("chunk %d = %+v, want attribute %+v", i, chunks[i].Attribute, w)
		}
	}
	if chunks[2].Attribute != nil || chunks[2].Region != nil {
		t.Error("unknown chunk parsed as a known kind")
	}
	if len(chunks[2].Payload) != 3 {
		t.Errorf("unknown chunk payload = %v, want raw bytes kept", chunks[2].Payload)
	}
}

func TestReadChunksAttributeWithoutSplit(t *testing.T) {
	data := metadataFile(chunkBytes(ChunkAttr, []byte("no separator here")))
	if _, err := readChunks(data); err == nil {
		t.Error("attribute without '=' accepted, want error")
	}
}

func TestReadChunksRegion(t *testing.T) {
	// Region covering tiles (0,0)..(3,0): name, flags, and a single short
	// run of 4 present tiles.
	payload := chunkBytes(regionName, []byte("Base 1"))
	payload = append(payload, chunkBytes(regionTileData, []byte{2<<5 | 3})...)
	payload = append(payload, chunkBytes(regionIsBase, nil)...)
	payload = append(payload, chunkBytes(regionNoWeapons, nil)...)

	chunks, err := readChunks(metadataFile(chunkBytes(ChunkRegn, payload)))
	if err != nil {
		t.Fatalf("readChunks: %v", err)
	}
	if len(chunks) != 1 || chunks[0].Region == nil {
		t.Fatalf("got %+v, want one region chunk", chunks)
	}

	r := chunks[0].Region
	if r.Name != "Base 1" {
		t.Errorf("region name = %q, want %q", r.Name, "Base 1")
	}
	if r.Flags != RegionBase|RegionNoWeapons {
		t.Errorf("region flags = %b, want base|noweapons", r.Flags)
	}
	if r.TileCount() != 4 {
		t.Errorf("region covers %d tiles, want 4", r.TileCount())
	}
	for x := uint16(0); x < 4; x++ {
		if !r.Contains(x, 0) {
			t.Errorf("region missing tile (%d, 0)", x)
		}
	}
	if r.Contains(4, 0) {
		t.Error("region contains tile (4, 0), want outside")
	}
}

func TestReadChunksRegionTrailingFlags(t *testing.T) {
	// Flag subchunks carry no payload, so a region can end on a bare
	// 8-byte subchunk header. Each flag must still be picked up.
	tests := []struct {
		name string
		kind uint32
		want uint32
	}{
		{"base", regionIsBase, RegionBase},
		{"noantiwarp", regionNoAntiwarp, RegionNoAntiwarp},
		{"noweapons", regionNoWeapons, RegionNoWeapons},
		{"noflags", regionNoFlags, RegionNoFlags},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := readChunks(metadataFile(chunkBytes(ChunkRegn, chunkBytes(tt.kind, nil))))
			if err != nil {
				t.Fatalf("readChunks: %v", err)
			}
			if len(chunks) != 1 || chunks[0].Region == nil {
				t.Fatalf("got %+v, want one region chunk", chunks)
			}
			if got := chunks[0].Region.Flags; got != tt.want {
				t.Errorf("region flags = %b, want %b", got, tt.want)
			}
		})
	}
}

func TestRegionRunDecoding(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		has  [][2]uint16
		not  [][2]uint16
	}{
		{
			name: "short empty then short present",
			data: []byte{0<<5 | 9, 2<<5 | 1}, // skip 10, two present
			has:  [][2]uint16{{10, 0}, {11, 0}},
			not:  [][2]uint16{{9, 0}, {12, 0}},
		},
		{
			name: "long empty run crosses row",
			data: []byte{1<<5 | 3, 0xFF, 2<<5 | 0}, // skip 1024, one present
			has:  [][2]uint16{{0, 1}},
			not:  [][2]uint16{{0, 0}, {1023, 0}},
		},
		{
			name: "empty rows",
			data: []byte{4<<5 | 1, 2<<5 | 0}, // skip 2 rows, one present
			has:  [][2]uint16{{0, 2}},
			not:  [][2]uint16{{0, 0}, {0, 1}},
		},
		{
			name: "long present run",
			data: []byte{3<<5 | 0, 99}, // 100 present tiles
			has:  [][2]uint16{{0, 0}, {99, 0}},
			not:  [][2]uint16{{100, 0}},
		},
		{
			name: "repeat previous row",
			data: []byte{2<<5 | 2, 1<<5 | 3, 252, 6<<5 | 1}, // 3 present, skip 1021 to row end, repeat twice
			has:  [][2]uint16{{0, 0}, {2, 0}, {0, 1}, {2, 1}, {2, 2}},
			not:  [][2]uint16{{3, 1}, {0, 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRegion()
			if _, _, err := r.parseRuns(tt.data, 0, 0); err != nil {
				t.Fatalf("parseRuns: %v", err)
			}
			for _, p := range tt.has {
				if !r.Contains(p[0], p[1]) {
					t.Errorf("tile (%d, %d) missing from region", p[0], p[1])
				}
			}
			for _, p := range tt.not {
				if r.Contains(p[0], p[1]) {
					t.Errorf("tile (%d, %d) unexpectedly in region", p[0], p[1])
				}
			}
		})
	}
}

func TestRegionRunTruncated(t *testing.T) {
	r := newRegion()
	if _, _, err := r.parseRuns([]byte{1 << 5}, 0, 0); err == nil {
		t.Error("truncated long run accepted, want error")
	}
}
