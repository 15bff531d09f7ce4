package container

import "fmt"

// ErrTooShort is returned when a byte slice handed to one of the Parse*
// functions is smaller than the struct's nominal size.
type ErrTooShort struct {
	Need, Have int
	Struct     string
}

func (e *ErrTooShort) Error() string {
	return fmt.Sprintf("container: %s needs %d bytes, have %d", e.Struct, e.Need, e.Have)
}

// FileHeader is the 34-byte nominal on-disk file header (§6). All integer
// fields are little-endian.
type FileHeader struct {
	Magic                [4]byte
	Version              uint8
	HeaderSize           uint16
	Width                uint16
	Height               uint16
	ZoneWidth            uint16
	ZoneHeight           uint16
	ColorFormat          ColorFormat
	Flags                uint8
	FrameCount           uint16
	DefaultFrameDuration uint16
	Reserved             [13]byte
}

func (h *FileHeader) HasGlobalPalette() bool     { return h.Flags&FileFlagHasGlobalPalette != 0 }
func (h *FileHeader) HasFrameLocalPalette() bool { return h.Flags&FileFlagHasFrameLocalPalette != 0 }
func (h *FileHeader) HasFrameIndexTable() bool   { return h.Flags&FileFlagHasFrameIndexTable != 0 }

// ParseFileHeader decodes the first FileHeaderSize bytes of data. It does
// not validate any cross-field invariant (§3); it only extracts fields.
func ParseFileHeader(data []byte) (FileHeader, error) {
	var h FileHeader
	if len(data) < FileHeaderSize {
		return h, &ErrTooShort{Need: FileHeaderSize, Have: len(data), Struct: "FileHeader"}
	}
	copy(h.Magic[:], data[0:4])
	h.Version = data[4]
	h.HeaderSize = readLE16(data[5:7])
	h.Width = readLE16(data[7:9])
	h.Height = readLE16(data[9:11])
	h.ZoneWidth = readLE16(data[11:13])
	h.ZoneHeight = readLE16(data[13:15])
	h.ColorFormat = ColorFormat(data[15])
	h.Flags = data[16]
	h.FrameCount = readLE16(data[17:19])
	h.DefaultFrameDuration = readLE16(data[19:21])
	copy(h.Reserved[:], data[21:34])
	return h, nil
}

// PaletteHeader is the 8-byte nominal palette block header (§6).
type PaletteHeader struct {
	Type          PaletteType
	HeaderSize    uint8
	EntryCount    uint16
	ColorEncoding ColorEncoding
	Reserved      [3]byte
}

// ParsePaletteHeader decodes the first PaletteHeaderSize bytes of data.
func ParsePaletteHeader(data []byte) (PaletteHeader, error) {
	var h PaletteHeader
	if len(data) < PaletteHeaderSize {
		return h, &ErrTooShort{Need: PaletteHeaderSize, Have: len(data), Struct: "PaletteHeader"}
	}
	h.Type = PaletteType(data[0])
	h.HeaderSize = data[1]
	h.EntryCount = readLE16(data[2:4])
	h.ColorEncoding = ColorEncoding(data[4])
	copy(h.Reserved[:], data[5:8])
	return h, nil
}

// FrameHeader is the 14-byte nominal per-frame block header (§6).
type FrameHeader struct {
	BlockType              uint8
	HeaderSize             uint8
	Flags                  uint8
	ZoneCount              uint16
	CompressionType        CompressionType
	ReferenceFrameIndex    uint16
	LocalPaletteEntryCount uint16
	Reserved               [4]byte
}

func (h *FrameHeader) Keyframe() bool        { return h.Flags&FrameFlagKeyframe != 0 }
func (h *FrameHeader) HasLocalPalette() bool { return h.Flags&FrameFlagHasLocalPalette != 0 }
func (h *FrameHeader) UsePreviousFrameAsBase() bool {
	return h.Flags&FrameFlagUsePreviousFrameAsBase != 0
}

// ParseFrameHeader decodes the first FrameHeaderSize bytes of data.
func ParseFrameHeader(data []byte) (FrameHeader, error) {
	var h FrameHeader
	if len(data) < FrameHeaderSize {
		return h, &ErrTooShort{Need: FrameHeaderSize, Have: len(data), Struct: "FrameHeader"}
	}
	h.BlockType = data[0]
	h.HeaderSize = data[1]
	h.Flags = data[2]
	h.ZoneCount = readLE16(data[3:5])
	h.CompressionType = CompressionType(data[5])
	h.ReferenceFrameIndex = readLE16(data[6:8])
	h.LocalPaletteEntryCount = readLE16(data[8:10])
	copy(h.Reserved[:], data[10:14])
	return h, nil
}

// FrameIndexEntry is one 11-byte entry of the frame-index table (§6).
type FrameIndexEntry struct {
	FrameOffset   uint32
	FrameSize     uint32
	Flags         uint8
	FrameDuration uint16
}

func (e *FrameIndexEntry) Keyframe() bool        { return e.Flags&FrameFlagKeyframe != 0 }
func (e *FrameIndexEntry) HasLocalPalette() bool { return e.Flags&FrameFlagHasLocalPalette != 0 }
func (e *FrameIndexEntry) UsePreviousFrameAsBase() bool {
	return e.Flags&FrameFlagUsePreviousFrameAsBase != 0
}

// ParseFrameIndexEntry decodes one FrameIndexEntrySize-byte entry.
func ParseFrameIndexEntry(data []byte) (FrameIndexEntry, error) {
	var e FrameIndexEntry
	if len(data) < FrameIndexEntrySize {
		return e, &ErrTooShort{Need: FrameIndexEntrySize, Have: len(data), Struct: "FrameIndexEntry"}
	}
	e.FrameOffset = readLE32(data[0:4])
	e.FrameSize = readLE32(data[4:8])
	e.Flags = data[8]
	e.FrameDuration = readLE16(data[9:11])
	return e, nil
}

// DurationMs returns the entry's duration, substituting defaultDuration
// when the entry's own duration is zero (§4.7).
func (e *FrameIndexEntry) DurationMs(defaultDuration uint16) uint32 {
	if e.FrameDuration != 0 {
		return uint32(e.FrameDuration)
	}
	return uint32(defaultDuration)
}
