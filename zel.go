package zel

import (
	"github.com/fsoel/zel/internal/container"
	"github.com/fsoel/zel/internal/palette"
	"github.com/fsoel/zel/internal/zone"
)

// ColorFormat mirrors the on-disk pixel representation selector. ZEL
// defines exactly one.
type ColorFormat = container.ColorFormat

// ColorFormatIndexed8 is the only defined color format.
const ColorFormatIndexed8 = container.ColorFormatIndexed8

// ColorEncoding selects the RGB565 byte order a resolved palette is
// returned in.
type ColorEncoding = container.ColorEncoding

const (
	ColorEncodingRGB565LE = container.ColorEncodingRGB565LE
	ColorEncodingRGB565BE = container.ColorEncodingRGB565BE
)

// Stream is a caller-supplied random-access byte source: a read callback,
// an optional close callback invoked at most once by Close, an opaque user
// value threaded through both, and the source's total size in bytes. Read
// must return exactly len(dst) bytes on success; any other return is
// treated as an I/O fault.
type Stream struct {
	Read  func(user interface{}, offset int64, dst []byte) (int, error)
	Close func(user interface{}) error
	User  interface{}
	Size  int64
}

// Decoder is an opened handle over one ZEL file. It is not safe for
// concurrent use by multiple goroutines; open a separate Decoder per
// goroutine for disjoint inputs (§5).
type Decoder struct {
	source container.Source
	closed bool

	header container.FileHeader
	layout zone.Layout

	frameIndex []container.FrameIndexEntry

	hasGlobalPalette bool
	globalCache      palette.Cache

	// localCache is reused across calls; Reset before every resolve so a
	// stale local palette from a previous frame is never returned.
	localCache palette.Cache

	outputEncoding    container.ColorEncoding
	outputEncodingSet bool

	// frameDataScratch materializes a stream-backed frame block; unused
	// (left nil) for memory-backed handles, whose frame bytes are always a
	// zero-copy Slice of the input.
	frameDataScratch []byte
	// zonePixelScratch backs LZ4 inflate; shared and regrown monotonically
	// across every zone of every decode call.
	zonePixelScratch []byte

	streamClose func() error
}

// OpenMemory opens a ZEL file from an in-memory byte slice. data is
// borrowed for the Decoder's lifetime; the caller must not mutate or free
// it before Close.
func OpenMemory(data []byte) (*Decoder, error) {
	return open(&container.MemorySource{Bytes: data}, nil)
}

// OpenStream opens a ZEL file backed by a caller-supplied random-access
// stream callback.
func OpenStream(s Stream) (*Decoder, error) {
	cs := container.Stream{Read: s.Read, Close: s.Close, User: s.User, Size: s.Size}
	return open(&container.StreamSource{Stream: cs}, func() error { return container.CloseStream(cs) })
}

func open(source container.Source, onClose func() error) (*Decoder, error) {
	size := source.Size()
	if size < container.FileHeaderSize {
		return nil, errf(ResultCorruptData, "file too short for file header (have %d bytes)", size)
	}

	var hdrBuf [container.FileHeaderSize]byte
	if err := source.ReadAt(hdrBuf[:], 0); err != nil {
		return nil, translateReadErr(err)
	}
	fh, err := container.ParseFileHeader(hdrBuf[:])
	if err != nil {
		return nil, errf(ResultCorruptData, "%v", err)
	}

	if fh.Magic != container.Magic {
		return nil, errf(ResultInvalidMagic, "bad magic bytes %v", fh.Magic)
	}
	if fh.Version != container.Version {
		return nil, errf(ResultInvalidMagic, "unsupported version %d", fh.Version)
	}
	if fh.Width == 0 || fh.Height == 0 || fh.ZoneWidth == 0 || fh.ZoneHeight == 0 {
		return nil, errf(ResultCorruptData, "zero width/height/zone dimension")
	}
	if fh.Width%fh.ZoneWidth != 0 || fh.Height%fh.ZoneHeight != 0 {
		return nil, errf(ResultCorruptData, "width/height is not a multiple of the zone dimensions")
	}
	zonesPerRow := int(fh.Width) / int(fh.ZoneWidth)
	zonesPerCol := int(fh.Height) / int(fh.ZoneHeight)
	zoneCount := zonesPerRow * zonesPerCol
	if zoneCount == 0 || zoneCount > 65535 {
		return nil, errf(ResultCorruptData, "zone grid of %d zones does not fit in 16 bits", zoneCount)
	}
	if fh.ColorFormat != container.ColorFormatIndexed8 {
		return nil, errf(ResultUnsupportedFormat, "unsupported color format %d", fh.ColorFormat)
	}
	if int64(fh.HeaderSize) < container.FileHeaderSize || int64(fh.HeaderSize) > size {
		return nil, errf(ResultCorruptData, "file header size %d out of range", fh.HeaderSize)
	}
	if !fh.HasFrameIndexTable() {
		return nil, errf(ResultUnsupportedFormat, "file has no frame-index table")
	}

	d := &Decoder{
		source:      source,
		header:      fh,
		layout:      zone.NewLayout(int(fh.Width), int(fh.Height), int(fh.ZoneWidth), int(fh.ZoneHeight)),
		streamClose: onClose,
	}

	pos := int64(fh.HeaderSize)

	if fh.HasGlobalPalette() {
		raw, count, enc, next, err := d.readGlobalPalette(pos, size)
		if err != nil {
			return nil, err
		}
		d.hasGlobalPalette = true
		d.globalCache.Reset(raw, count, enc)
		pos = next
	}

	frameIndexLen := int64(fh.FrameCount) * container.FrameIndexEntrySize
	if !fits(pos, frameIndexLen, size) {
		return nil, errf(ResultCorruptData, "frame-index table does not fit in file")
	}
	fiBytes := make([]byte, frameIndexLen)
	if err := source.ReadAt(fiBytes, pos); err != nil {
		return nil, translateReadErr(err)
	}
	entries := make([]container.FrameIndexEntry, fh.FrameCount)
	for i := range entries {
		e, _ := container.ParseFrameIndexEntry(fiBytes[i*container.FrameIndexEntrySize:])
		if e.FrameSize == 0 || !fits(int64(e.FrameOffset), int64(e.FrameSize), size) {
			return nil, errf(ResultCorruptData, "frame %d block does not fit in file", i)
		}
		entries[i] = e
	}
	d.frameIndex = entries

	return d, nil
}

// readGlobalPalette parses and validates the palette block at pos, which
// must be the file-level (global) palette per the Open Question decision
// in SPEC_FULL.md §7 (type byte must equal GLOBAL).
func (d *Decoder) readGlobalPalette(pos, limit int64) (raw []byte, count int, enc container.ColorEncoding, next int64, err error) {
	var hdrBuf [container.PaletteHeaderSize]byte
	if !fits(pos, container.PaletteHeaderSize, limit) {
		return nil, 0, 0, 0, errf(ResultCorruptData, "global palette header out of range")
	}
	if err := d.source.ReadAt(hdrBuf[:], pos); err != nil {
		return nil, 0, 0, 0, translateReadErr(err)
	}
	ph, _ := container.ParsePaletteHeader(hdrBuf[:])
	if int(ph.HeaderSize) < container.PaletteHeaderSize {
		return nil, 0, 0, 0, errf(ResultCorruptData, "global palette header size %d too small", ph.HeaderSize)
	}
	if ph.Type != container.PaletteTypeGlobal {
		return nil, 0, 0, 0, errf(ResultCorruptData, "global palette block has non-GLOBAL type byte %d", ph.Type)
	}
	if ph.EntryCount == 0 {
		return nil, 0, 0, 0, errf(ResultCorruptData, "global palette has zero entries")
	}
	if ph.ColorEncoding != container.ColorEncodingRGB565LE && ph.ColorEncoding != container.ColorEncodingRGB565BE {
		return nil, 0, 0, 0, errf(ResultCorruptData, "global palette has unknown color encoding %d", ph.ColorEncoding)
	}
	entriesLen := int64(ph.EntryCount) * container.BytesPerPaletteEntry
	entriesOffset := pos + int64(ph.HeaderSize)
	if !fits(entriesOffset, entriesLen, limit) {
		return nil, 0, 0, 0, errf(ResultCorruptData, "global palette entries out of range")
	}
	raw, ok := d.source.Slice(entriesOffset, entriesLen)
	if !ok {
		raw = make([]byte, entriesLen)
		if err := d.source.ReadAt(raw, entriesOffset); err != nil {
			return nil, 0, 0, 0, translateReadErr(err)
		}
	}
	return raw, int(ph.EntryCount), ph.ColorEncoding, entriesOffset + entriesLen, nil
}

// Close releases the Decoder's scratch buffers and, if opened via
// OpenStream, invokes the stream's close callback exactly once. Close is
// idempotent; calling it more than once is a no-op after the first call.
func (d *Decoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	d.frameDataScratch = nil
	d.zonePixelScratch = nil
	d.globalCache = palette.Cache{}
	d.localCache = palette.Cache{}
	if d.streamClose != nil {
		return d.streamClose()
	}
	return nil
}

func (d *Decoder) checkOpen() error {
	if d.closed {
		return ErrClosed
	}
	return nil
}

func (d *Decoder) Width() (uint16, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.header.Width, nil
}

func (d *Decoder) Height() (uint16, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.header.Height, nil
}

func (d *Decoder) FrameCount() (uint16, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.header.FrameCount, nil
}

func (d *Decoder) DefaultFrameDurationMs() (uint16, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.header.DefaultFrameDuration, nil
}

func (d *Decoder) ZoneWidth() (uint16, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.header.ZoneWidth, nil
}

func (d *Decoder) ZoneHeight() (uint16, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.header.ZoneHeight, nil
}

func (d *Decoder) ColorFormat() (ColorFormat, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	return d.header.ColorFormat, nil
}

// SetOutputColorEncoding stores an override applied uniformly to every
// resolved palette (global and local) regardless of its own on-disk
// encoding, and invalidates both converted-palette caches so the next
// resolve rebuilds (§4.3).
func (d *Decoder) SetOutputColorEncoding(enc ColorEncoding) error {
	if err := d.checkOpen(); err != nil {
		return err
	}
	if enc != container.ColorEncodingRGB565LE && enc != container.ColorEncodingRGB565BE {
		return errf(ResultInvalidArgument, "unknown color encoding %d", enc)
	}
	d.outputEncoding = enc
	d.outputEncodingSet = true
	d.globalCache.Invalidate()
	d.localCache.Invalidate()
	return nil
}

// GetOutputColorEncoding returns the active override, or the global
// palette's source encoding when no override has been set.
func (d *Decoder) GetOutputColorEncoding() (ColorEncoding, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	if d.outputEncodingSet {
		return d.outputEncoding, nil
	}
	return d.globalCache.SourceEncoding(), nil
}

// requestedEncoding is the encoding passed to a palette.Cache.Resolve
// call: the override if one is set, else that cache's own source
// encoding (which makes the resolve a no-op zero-copy pass-through).
func (d *Decoder) requestedEncoding(c *palette.Cache) container.ColorEncoding {
	if d.outputEncodingSet {
		return d.outputEncoding
	}
	return c.SourceEncoding()
}

func (d *Decoder) HasGlobalPalette() (bool, error) {
	if err := d.checkOpen(); err != nil {
		return false, err
	}
	return d.hasGlobalPalette, nil
}

// GetGlobalPalette returns the file's global palette resolved to the
// current output encoding, and its entry count.
func (d *Decoder) GetGlobalPalette() ([]byte, int, error) {
	if err := d.checkOpen(); err != nil {
		return nil, 0, err
	}
	if !d.hasGlobalPalette {
		return nil, 0, errf(ResultOutOfBounds, "file has no global palette")
	}
	return d.globalCache.Resolve(d.requestedEncoding(&d.globalCache)), d.globalCache.Count(), nil
}

// GetFramePalette returns frame i's active palette (its local palette if
// it has one, else the file's global palette), resolved to the current
// output encoding.
func (d *Decoder) GetFramePalette(i int) ([]byte, int, error) {
	if err := d.checkOpen(); err != nil {
		return nil, 0, err
	}
	if i < 0 || i >= len(d.frameIndex) {
		return nil, 0, errf(ResultOutOfBounds, "frame index %d >= frame count %d", i, len(d.frameIndex))
	}
	desc, err := d.locateFrame(i)
	if err != nil {
		return nil, 0, err
	}
	c, err := d.paletteForFrame(i, desc)
	if err != nil {
		return nil, 0, err
	}
	return c.Resolve(d.requestedEncoding(c)), c.Count(), nil
}

func (d *Decoder) GetFrameDurationMs(i int) (uint32, error) {
	if err := d.checkOpen(); err != nil {
		return 0, err
	}
	if i < 0 || i >= len(d.frameIndex) {
		return 0, errf(ResultOutOfBounds, "frame index %d >= frame count %d", i, len(d.frameIndex))
	}
	return d.frameIndex[i].DurationMs(d.header.DefaultFrameDuration), nil
}

func (d *Decoder) GetFrameIsKeyframe(i int) (bool, error) {
	if err := d.checkOpen(); err != nil {
		return false, err
	}
	if i < 0 || i >= len(d.frameIndex) {
		return false, errf(ResultOutOfBounds, "frame index %d >= frame count %d", i, len(d.frameIndex))
	}
	return d.frameIndex[i].Keyframe(), nil
}

func (d *Decoder) GetFrameUsesLocalPalette(i int) (bool, error) {
	if err := d.checkOpen(); err != nil {
		return false, err
	}
	if i < 0 || i >= len(d.frameIndex) {
		return false, errf(ResultOutOfBounds, "frame index %d >= frame count %d", i, len(d.frameIndex))
	}
	return d.frameIndex[i].HasLocalPalette(), nil
}

// fits reports whether [offset, offset+length) lies within [0, limit)
// without overflowing as offset approaches the int64 maximum (§4.1).
func fits(offset, length, limit int64) bool {
	if length < 0 || offset < 0 || length > limit {
		return false
	}
	return offset <= limit-length
}

// translateReadErr maps a Source.ReadAt failure to the Result it
// represents: a bounds violation is corrupt data, anything else (a short
// read or a propagated stream error) is an I/O fault.
func translateReadErr(err error) error {
	if _, ok := err.(*container.BoundsError); ok {
		return errf(ResultCorruptData, "%v", err)
	}
	return errf(ResultIO, "%v", err)
}
