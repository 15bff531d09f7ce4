package zone

import (
	"encoding/binary"
	"testing"

	"github.com/pierrec/lz4/v4"

	"github.com/fsoel/zel/internal/container"
)

func chunk(payload []byte) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(len(payload)))
	return append(buf, payload...)
}

func TestStreamSequentialWalk(t *testing.T) {
	z0 := []byte{1, 2, 3, 4}
	z1 := []byte{5, 6, 7, 8}
	data := append(append([]byte{}, chunk(z0)...), chunk(z1)...)

	s := NewStream(data, 0, len(data), 2)
	p0, err := s.Next()
	if err != nil {
		t.Fatalf("Next (zone 0): %v", err)
	}
	if string(p0) != string(z0) {
		t.Errorf("zone 0 payload = %v, want %v", p0, z0)
	}
	p1, err := s.Next()
	if err != nil {
		t.Fatalf("Next (zone 1): %v", err)
	}
	if string(p1) != string(z1) {
		t.Errorf("zone 1 payload = %v, want %v", p1, z1)
	}
	if _, err := s.Next(); err != ErrExhausted {
		t.Errorf("Next after zoneCount chunks = %v, want ErrExhausted", err)
	}
	if err := s.Finish(); err != nil {
		t.Errorf("Finish: %v", err)
	}
}

func TestStreamFinishRejectsTrailingByte(t *testing.T) {
	data := append(chunk([]byte{1, 2}), 0xff)
	s := NewStream(data, 0, len(data), 1)
	if _, err := s.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if err := s.Finish(); err != ErrCorrupt {
		t.Errorf("Finish with a trailing byte = %v, want ErrCorrupt", err)
	}
}

func TestStreamRejectsZeroSizeChunk(t *testing.T) {
	data := chunk(nil)
	s := NewStream(data, 0, len(data), 1)
	if _, err := s.Next(); err != ErrCorrupt {
		t.Errorf("Next on zero-size chunk = %v, want ErrCorrupt", err)
	}
}

func TestChunkAtRandomAccess(t *testing.T) {
	zones := [][]byte{{1}, {2}, {3}, {4}}
	var data []byte
	for _, z := range zones {
		data = append(data, chunk(z)...)
	}
	for i, want := range zones {
		got, err := ChunkAt(data, 0, len(data), len(zones), i)
		if err != nil {
			t.Fatalf("ChunkAt(%d): %v", i, err)
		}
		if string(got) != string(want) {
			t.Errorf("ChunkAt(%d) = %v, want %v", i, got, want)
		}
	}
}

func TestResolveNone(t *testing.T) {
	payload := []byte{9, 8, 7, 6}
	var scratch []byte
	got, err := Resolve(payload, container.CompressionNone, 4, &scratch)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("Resolve(NONE) = %v, want %v", got, payload)
	}
}

func TestResolveNoneWrongLength(t *testing.T) {
	var scratch []byte
	if _, err := Resolve([]byte{1, 2, 3}, container.CompressionNone, 4, &scratch); err != ErrCorrupt {
		t.Errorf("Resolve(NONE) with short payload = %v, want ErrCorrupt", err)
	}
}

func TestResolveLZ4RoundTrip(t *testing.T) {
	want := make([]byte, 64)
	for i := range want {
		want[i] = byte(i % 7)
	}
	compressed := make([]byte, len(want))
	ht := make([]int, 1<<16)
	n, err := lz4.CompressBlock(want, compressed, ht)
	if err != nil {
		t.Fatalf("lz4.CompressBlock: %v", err)
	}
	if n == 0 {
		// incompressible input: lz4 leaves the block as literals only when
		// it fits; fall back to storing it uncompressed is not part of the
		// zone format, so widen the pattern instead.
		t.Skip("test payload did not compress; adjust fixture")
	}
	compressed = compressed[:n]

	var scratch []byte
	got, err := Resolve(compressed, container.CompressionLZ4, len(want), &scratch)
	if err != nil {
		t.Fatalf("Resolve(LZ4): %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("Resolve(LZ4) round trip mismatch")
	}
}

func TestResolveUnsupportedCompression(t *testing.T) {
	var scratch []byte
	if _, err := Resolve([]byte{1}, container.CompressionRLE, 1, &scratch); err != ErrUnsupportedCompression {
		t.Errorf("Resolve(RLE) = %v, want ErrUnsupportedCompression", err)
	}
}

func TestLayoutDerivation(t *testing.T) {
	l := NewLayout(64, 32, 8, 8)
	if l.ZonesPerRow != 8 || l.ZonesPerCol != 4 || l.ZoneCount != 32 || l.ZonePixelBytes != 64 {
		t.Errorf("unexpected layout: %+v", l)
	}
}
