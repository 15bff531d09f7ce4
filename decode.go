package zel

import (
	"encoding/binary"

	"github.com/fsoel/zel/internal/container"
	"github.com/fsoel/zel/internal/palette"
	"github.com/fsoel/zel/internal/zone"
)

// frameDescriptor is the validated "frame zone stream" descriptor §4.4
// emits: the frame header, the frame block's bytes (borrowed for
// memory-backed input, owned scratch for stream-backed), the zone-data
// window bounds within those bytes, and (if present) the frame's local
// palette.
type frameDescriptor struct {
	header         container.FrameHeader
	frameBytes     []byte
	zoneDataOffset int
	frameDataEnd   int

	hasLocalPalette bool
	localRaw        []byte
	localCount      int
	localEncoding   container.ColorEncoding
}

// materializeFrame returns entry's frame block bytes: a zero-copy Slice
// for memory-backed input, or a single read into the monotonically grown
// frame-data scratch for stream-backed input (§4.4's single-read policy).
func (d *Decoder) materializeFrame(entry container.FrameIndexEntry) ([]byte, error) {
	if raw, ok := d.source.Slice(int64(entry.FrameOffset), int64(entry.FrameSize)); ok {
		return raw, nil
	}
	need := int(entry.FrameSize)
	if cap(d.frameDataScratch) < need {
		d.frameDataScratch = make([]byte, need)
	} else {
		d.frameDataScratch = d.frameDataScratch[:need]
	}
	if err := d.source.ReadAt(d.frameDataScratch, int64(entry.FrameOffset)); err != nil {
		return nil, translateReadErr(err)
	}
	return d.frameDataScratch, nil
}

// locateFrame validates and describes frame i's block (§4.4).
func (d *Decoder) locateFrame(i int) (*frameDescriptor, error) {
	if i < 0 || i >= len(d.frameIndex) {
		return nil, errf(ResultOutOfBounds, "frame index %d >= frame count %d", i, len(d.frameIndex))
	}
	entry := d.frameIndex[i]

	frameBytes, err := d.materializeFrame(entry)
	if err != nil {
		return nil, err
	}
	if len(frameBytes) < container.FrameHeaderSize {
		return nil, errf(ResultCorruptData, "frame %d block too short for frame header", i)
	}
	fh, _ := container.ParseFrameHeader(frameBytes)
	if int(fh.HeaderSize) < container.FrameHeaderSize || int(fh.HeaderSize) > len(frameBytes) {
		return nil, errf(ResultCorruptData, "frame %d header size %d out of range", i, fh.HeaderSize)
	}

	desc := &frameDescriptor{header: fh, frameBytes: frameBytes}
	cursor := int(fh.HeaderSize)

	if fh.HasLocalPalette() {
		if len(frameBytes)-cursor < container.PaletteHeaderSize {
			return nil, errf(ResultCorruptData, "frame %d local palette header does not fit", i)
		}
		ph, _ := container.ParsePaletteHeader(frameBytes[cursor:])
		if int(ph.HeaderSize) < container.PaletteHeaderSize {
			return nil, errf(ResultCorruptData, "frame %d local palette header size %d too small", i, ph.HeaderSize)
		}
		if ph.Type != container.PaletteTypeLocal {
			return nil, errf(ResultCorruptData, "frame %d local palette has non-LOCAL type byte %d", i, ph.Type)
		}
		if ph.EntryCount == 0 {
			return nil, errf(ResultCorruptData, "frame %d local palette has zero entries", i)
		}
		if ph.ColorEncoding != container.ColorEncodingRGB565LE && ph.ColorEncoding != container.ColorEncodingRGB565BE {
			return nil, errf(ResultCorruptData, "frame %d local palette has unknown color encoding %d", i, ph.ColorEncoding)
		}
		entriesOffset := cursor + int(ph.HeaderSize)
		entriesLen := int(ph.EntryCount) * container.BytesPerPaletteEntry
		if entriesOffset+entriesLen > len(frameBytes) {
			return nil, errf(ResultCorruptData, "frame %d local palette entries do not fit in the block", i)
		}
		desc.hasLocalPalette = true
		desc.localRaw = frameBytes[entriesOffset : entriesOffset+entriesLen]
		desc.localCount = int(ph.EntryCount)
		desc.localEncoding = ph.ColorEncoding
		cursor = entriesOffset + entriesLen
	}

	desc.zoneDataOffset = cursor
	desc.frameDataEnd = len(frameBytes)

	if int(fh.ZoneCount) != d.layout.ZoneCount {
		return nil, errf(ResultCorruptData, "frame %d declares %d zones, layout has %d", i, fh.ZoneCount, d.layout.ZoneCount)
	}

	return desc, nil
}

// paletteForFrame returns the Cache to resolve desc's active palette
// from: its own local palette if it has one, else the file's global
// palette.
func (d *Decoder) paletteForFrame(i int, desc *frameDescriptor) (*palette.Cache, error) {
	if desc.hasLocalPalette {
		d.localCache.Reset(desc.localRaw, desc.localCount, desc.localEncoding)
		return &d.localCache, nil
	}
	if d.hasGlobalPalette {
		return &d.globalCache, nil
	}
	return nil, errf(ResultOutOfBounds, "frame %d has no local palette and the file has no global palette", i)
}

func (d *Decoder) newZoneStream(desc *frameDescriptor) *zone.Stream {
	return zone.NewStream(desc.frameBytes, desc.zoneDataOffset, desc.frameDataEnd, d.layout.ZoneCount)
}

func zoneErr(err error) error {
	switch err {
	case zone.ErrCorrupt, zone.ErrExhausted:
		return errf(ResultCorruptData, "%v", err)
	case zone.ErrUnsupportedCompression:
		return errf(ResultUnsupportedFormat, "%v", err)
	default:
		return errf(ResultCorruptData, "%v", err)
	}
}

// DecodeFrameIndex8 writes frame i's palette indices into dst at
// strideBytes per row (§4.6).
func (d *Decoder) DecodeFrameIndex8(i int, dst []byte, strideBytes int) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	width, height := int(d.header.Width), int(d.header.Height)
	if strideBytes < width {
		return errf(ResultInvalidArgument, "stride %d smaller than width %d", strideBytes, width)
	}
	if len(dst) < (height-1)*strideBytes+width {
		return errf(ResultInvalidArgument, "destination buffer too small for %dx%d at stride %d", width, height, strideBytes)
	}
	desc, err := d.locateFrame(i)
	if err != nil {
		return err
	}
	s := d.newZoneStream(desc)
	zw, zh := d.layout.ZoneWidth, d.layout.ZoneHeight
	for zy := 0; zy < d.layout.ZonesPerCol; zy++ {
		for zx := 0; zx < d.layout.ZonesPerRow; zx++ {
			payload, err := s.Next()
			if err != nil {
				return zoneErr(err)
			}
			resolved, err := zone.Resolve(payload, desc.header.CompressionType, d.layout.ZonePixelBytes, &d.zonePixelScratch)
			if err != nil {
				return zoneErr(err)
			}
			for row := 0; row < zh; row++ {
				srcOff := row * zw
				dstOff := (zy*zh+row)*strideBytes + zx*zw
				copy(dst[dstOff:dstOff+zw], resolved[srcOff:srcOff+zw])
			}
		}
	}
	if err := s.Finish(); err != nil {
		return zoneErr(err)
	}
	return nil
}

// DecodeFrameRGB565 writes frame i expanded to RGB565 values into dst at
// stridePixels per row, resolving indices through the frame's active
// palette (§4.6).
func (d *Decoder) DecodeFrameRGB565(i int, dst []uint16, stridePixels int) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	width, height := int(d.header.Width), int(d.header.Height)
	if stridePixels < width {
		return errf(ResultInvalidArgument, "stride %d smaller than width %d", stridePixels, width)
	}
	if len(dst) < (height-1)*stridePixels+width {
		return errf(ResultInvalidArgument, "destination buffer too small for %dx%d at stride %d", width, height, stridePixels)
	}
	desc, err := d.locateFrame(i)
	if err != nil {
		return err
	}
	pc, err := d.paletteForFrame(i, desc)
	if err != nil {
		return err
	}
	paletteBytes := pc.Resolve(d.requestedEncoding(pc))
	paletteCount := pc.Count()

	s := d.newZoneStream(desc)
	zw, zh := d.layout.ZoneWidth, d.layout.ZoneHeight
	for zy := 0; zy < d.layout.ZonesPerCol; zy++ {
		for zx := 0; zx < d.layout.ZonesPerRow; zx++ {
			payload, err := s.Next()
			if err != nil {
				return zoneErr(err)
			}
			resolved, err := zone.Resolve(payload, desc.header.CompressionType, d.layout.ZonePixelBytes, &d.zonePixelScratch)
			if err != nil {
				return zoneErr(err)
			}
			for row := 0; row < zh; row++ {
				for col := 0; col < zw; col++ {
					idx := resolved[row*zw+col]
					if int(idx) >= paletteCount {
						return errf(ResultCorruptData, "palette index %d >= palette size %d", idx, paletteCount)
					}
					val := binary.LittleEndian.Uint16(paletteBytes[int(idx)*2 : int(idx)*2+2])
					dst[(zy*zh+row)*stridePixels+zx*zw+col] = val
				}
			}
		}
	}
	if err := s.Finish(); err != nil {
		return zoneErr(err)
	}
	return nil
}

// DecodeFrameIndex8Zone writes zone zoneIndex's palette indices into dst,
// tightly packed with no stride (§4.6).
func (d *Decoder) DecodeFrameIndex8Zone(i, zoneIndex int, dst []byte) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if zoneIndex < 0 || zoneIndex >= d.layout.ZoneCount {
		return errf(ResultOutOfBounds, "zone index %d >= zone count %d", zoneIndex, d.layout.ZoneCount)
	}
	desc, err := d.locateFrame(i)
	if err != nil {
		return err
	}
	if len(dst) < d.layout.ZonePixelBytes {
		return errf(ResultInvalidArgument, "destination holds %d bytes, need %d", len(dst), d.layout.ZonePixelBytes)
	}
	payload, err := zone.ChunkAt(desc.frameBytes, desc.zoneDataOffset, desc.frameDataEnd, d.layout.ZoneCount, zoneIndex)
	if err != nil {
		return zoneErr(err)
	}
	resolved, err := zone.Resolve(payload, desc.header.CompressionType, d.layout.ZonePixelBytes, &d.zonePixelScratch)
	if err != nil {
		return zoneErr(err)
	}
	copy(dst[:d.layout.ZonePixelBytes], resolved)
	return nil
}

// DecodeFrameRGB565Zone writes zone zoneIndex expanded to RGB565 values
// into dst, tightly packed (§4.6).
func (d *Decoder) DecodeFrameRGB565Zone(i, zoneIndex int, dst []uint16) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if zoneIndex < 0 || zoneIndex >= d.layout.ZoneCount {
		return errf(ResultOutOfBounds, "zone index %d >= zone count %d", zoneIndex, d.layout.ZoneCount)
	}
	desc, err := d.locateFrame(i)
	if err != nil {
		return err
	}
	if len(dst) < d.layout.ZonePixelBytes {
		return errf(ResultInvalidArgument, "destination holds %d elements, need %d", len(dst), d.layout.ZonePixelBytes)
	}
	pc, err := d.paletteForFrame(i, desc)
	if err != nil {
		return err
	}
	paletteBytes := pc.Resolve(d.requestedEncoding(pc))
	paletteCount := pc.Count()

	payload, err := zone.ChunkAt(desc.frameBytes, desc.zoneDataOffset, desc.frameDataEnd, d.layout.ZoneCount, zoneIndex)
	if err != nil {
		return zoneErr(err)
	}
	resolved, err := zone.Resolve(payload, desc.header.CompressionType, d.layout.ZonePixelBytes, &d.zonePixelScratch)
	if err != nil {
		return zoneErr(err)
	}
	for n, idx := range resolved {
		if int(idx) >= paletteCount {
			return errf(ResultCorruptData, "palette index %d >= palette size %d", idx, paletteCount)
		}
		dst[n] = binary.LittleEndian.Uint16(paletteBytes[int(idx)*2 : int(idx)*2+2])
	}
	return nil
}

// Validate walks every frame's zone-chunk stream, inflating each chunk and
// checking the cursor lands exactly on the frame's end, without writing
// any pixel data — a read-only corruption check, e.g. after reading a
// file back from an SD card (§5 of SPEC_FULL.md).
func (d *Decoder) Validate() error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	for i := range d.frameIndex {
		desc, err := d.locateFrame(i)
		if err != nil {
			return err
		}
		s := d.newZoneStream(desc)
		for z := 0; z < d.layout.ZoneCount; z++ {
			payload, err := s.Next()
			if err != nil {
				return zoneErr(err)
			}
			if _, err := zone.Resolve(payload, desc.header.CompressionType, d.layout.ZonePixelBytes, &d.zonePixelScratch); err != nil {
				return zoneErr(err)
			}
		}
		if err := s.Finish(); err != nil {
			return zoneErr(err)
		}
	}
	return nil
}
