// Package zone iterates the chunked {u32 size, payload} records inside one
// frame block's zone-data window (§4.5), and resolves a chunk's payload to
// zonePixelBytes of pixel data under the NONE or LZ4 compression regimes.
//
// Grounded on the teacher's mux.ReadChunk (bounds-checked header+payload
// iteration over a flat byte slice) combined with the
// "wrap a black-box decompressor behind one dispatch point" shape of
// google-wuffs/lib/raclz4.CodecReader.
package zone

import (
	"errors"

	"github.com/pierrec/lz4/v4"

	"github.com/fsoel/zel/internal/container"
)

var (
	// ErrCorrupt reports a chunk whose size is zero, or that does not fit
	// inside the zone-data window, or whose decompressed/raw length does
	// not equal the expected zonePixelBytes.
	ErrCorrupt = errors.New("zone: corrupt chunk")

	// ErrExhausted is returned by Next once zoneCount chunks have already
	// been read.
	ErrExhausted = errors.New("zone: exhausted")

	// ErrUnsupportedCompression is returned for any CompressionType other
	// than NONE or LZ4 (in particular, the reserved-but-unimplemented RLE).
	ErrUnsupportedCompression = errors.New("zone: unsupported compression")
)

// Layout describes the fixed row-major zone grid derived from a file
// header's dimensions (§4.4).
type Layout struct {
	ZoneWidth      int
	ZoneHeight     int
	ZonesPerRow    int
	ZonesPerCol    int
	ZoneCount      int
	ZonePixelBytes int
}

// NewLayout derives a Layout from validated file-header dimensions. The
// caller (the file-header invariant checks in §3) is responsible for having
// already verified that width/height are positive multiples of
// zoneWidth/zoneHeight and that zonesPerRow*zonesPerCol fits in 16 bits.
func NewLayout(width, height, zoneWidth, zoneHeight int) Layout {
	zonesPerRow := width / zoneWidth
	zonesPerCol := height / zoneHeight
	return Layout{
		ZoneWidth:      zoneWidth,
		ZoneHeight:     zoneHeight,
		ZonesPerRow:    zonesPerRow,
		ZonesPerCol:    zonesPerCol,
		ZoneCount:      zonesPerRow * zonesPerCol,
		ZonePixelBytes: zoneWidth * zoneHeight,
	}
}

// Stream is a cursor over one frame's zone-data window within a frame
// block's byte slice. data holds the full frame block; start and end are
// the zone-data window's bounds within data.
type Stream struct {
	data      []byte
	pos       int
	end       int
	zoneCount int
	index     int
}

// NewStream returns a Stream starting at the zone-data window's first byte.
func NewStream(data []byte, start, end, zoneCount int) *Stream {
	return &Stream{data: data, pos: start, end: end, zoneCount: zoneCount}
}

// Next reads the next chunk's 4-byte size prefix and returns its payload
// (a sub-slice of data), advancing the cursor past it. It fails with
// ErrExhausted once zoneCount chunks have been read, or ErrCorrupt if the
// chunk's declared size is zero or does not fit before end.
func (s *Stream) Next() ([]byte, error) {
	if s.index >= s.zoneCount {
		return nil, ErrExhausted
	}
	if s.pos+4 > s.end {
		return nil, ErrCorrupt
	}
	size := int(container.ReadLE32(s.data[s.pos : s.pos+4]))
	if size <= 0 {
		return nil, ErrCorrupt
	}
	s.pos += 4
	if s.pos+size > s.end {
		return nil, ErrCorrupt
	}
	payload := s.data[s.pos : s.pos+size]
	s.pos += size
	s.index++
	return payload, nil
}

// Finish reports whether exactly zoneCount chunks were consumed and the
// cursor lands exactly on end, with no trailing bytes (§4.5, §8 property 6).
func (s *Stream) Finish() error {
	if s.index != s.zoneCount || s.pos != s.end {
		return ErrCorrupt
	}
	return nil
}

// ChunkAt returns the payload for zone index target by walking target+1
// sequential steps from the start of the window (§4.5: the format has no
// per-zone offset table).
func ChunkAt(data []byte, start, end, zoneCount, target int) ([]byte, error) {
	s := NewStream(data, start, end, zoneCount)
	var last []byte
	for i := 0; i <= target; i++ {
		payload, err := s.Next()
		if err != nil {
			return nil, err
		}
		last = payload
	}
	return last, nil
}

// Resolve turns a chunk's on-disk payload into exactly zonePixelBytes of
// pixel data. For CompressionNone the payload is returned as-is (it must
// already be the right length). For CompressionLZ4, scratch is grown to at
// least zonePixelBytes (monotonically — never shrunk) and the payload is
// inflated into it via the LZ4 block-format decompressor. Any other
// CompressionType fails with ErrUnsupportedCompression.
func Resolve(payload []byte, compression container.CompressionType, zonePixelBytes int, scratch *[]byte) ([]byte, error) {
	switch compression {
	case container.CompressionNone:
		if len(payload) != zonePixelBytes {
			return nil, ErrCorrupt
		}
		return payload, nil

	case container.CompressionLZ4:
		if cap(*scratch) < zonePixelBytes {
			*scratch = make([]byte, zonePixelBytes)
		} else {
			*scratch = (*scratch)[:zonePixelBytes]
		}
		n, err := lz4.UncompressBlock(payload, *scratch)
		if err != nil {
			return nil, ErrCorrupt
		}
		if n != zonePixelBytes {
			return nil, ErrCorrupt
		}
		return *scratch, nil

	default:
		return nil, ErrUnsupportedCompression
	}
}
