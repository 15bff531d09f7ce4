// Package container decodes the ZEL on-disk byte layout: the fixed header
// structs, the frame-index table, and the bounds-checked byte source that
// every higher-level decoder operation reads through.
//
// It mirrors the teacher's internal/container package in shape — constants,
// a little-endian field reader, and header structs validated against a
// parent region's declared size — adapted from WebP's RIFF/chunk layout to
// ZEL's fixed-header-chain layout.
package container

import "encoding/binary"

// Magic is the 4-byte ASCII file signature "ZEL0".
var Magic = [4]byte{'Z', 'E', 'L', '0'}

// Version is the only file format version this package understands.
const Version = 1

// ColorFormat selects the pixel representation. ZEL defines exactly one.
type ColorFormat uint8

// ColorFormatIndexed8 is the only defined color format: one byte per pixel,
// indexing into the active palette.
const ColorFormatIndexed8 ColorFormat = 0

// CompressionType selects how zone payloads are encoded on disk.
type CompressionType uint8

const (
	CompressionNone CompressionType = 0
	CompressionLZ4  CompressionType = 1
	// CompressionRLE is reserved by the format but not implemented by any
	// decoder; a frame declaring it fails with ResultUnsupportedFormat.
	CompressionRLE CompressionType = 2
)

// ColorEncoding selects the RGB565 byte order of a palette's entries.
type ColorEncoding uint8

const (
	ColorEncodingRGB565LE ColorEncoding = 0
	ColorEncodingRGB565BE ColorEncoding = 1
)

// PaletteType distinguishes the file-level global palette from a
// frame-level local palette.
type PaletteType uint8

const (
	PaletteTypeGlobal PaletteType = 0
	PaletteTypeLocal  PaletteType = 1
)

// FileHeader flag bits.
const (
	FileFlagHasGlobalPalette     = 1 << 0
	FileFlagHasFrameLocalPalette = 1 << 1
	FileFlagHasFrameIndexTable   = 1 << 2
)

// Frame / frame-index-entry flag bits.
const (
	FrameFlagKeyframe               = 1 << 0
	FrameFlagHasLocalPalette        = 1 << 1
	FrameFlagUsePreviousFrameAsBase = 1 << 2
)

// Nominal on-disk sizes of the four fixed structs (§6). Header-walking code
// must use the parsed HeaderSize field, never one of these constants, to
// locate the block after a header — the header sizes give the minimum a
// parser reads and a declared HeaderSize must reach. FrameIndexEntrySize is
// also the stride of the frame-index table, and BytesPerPaletteEntry the
// size of one palette entry.
const (
	FileHeaderSize        = 34
	PaletteHeaderSize     = 8
	FrameHeaderSize       = 14
	FrameIndexEntrySize   = 11
	BytesPerPaletteEntry  = 2
)

// ReadLE16 reads a little-endian uint16 from the first 2 bytes of b.
func ReadLE16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

// ReadLE32 reads a little-endian uint32 from the first 4 bytes of b.
func ReadLE32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }

func readLE16(b []byte) uint16 { return ReadLE16(b) }
func readLE32(b []byte) uint32 { return ReadLE32(b) }
