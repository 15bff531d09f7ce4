// Package palette resolves ZEL RGB565 palette blocks with on-demand
// endian conversion (§4.3).
//
// Grounded on the teacher's lazily-recomputed, cache-then-invalidate shape
// (the animation package's Frame.Image is decoded once and reused until
// something replaces it), generalized here into an explicit encoding-tagged
// cache: the converted buffer is rebuilt only when the requested output
// encoding differs from what is already cached.
package palette

import "github.com/fsoel/zel/internal/container"

// Cache resolves one palette's entries (global or local — callers keep two
// separate Cache values, since the spec requires them not to share a
// converted buffer) to a requested RGB565 byte order.
type Cache struct {
	raw           []byte
	count         int
	sourceEncoding container.ColorEncoding

	converted         []byte
	convertedEncoding container.ColorEncoding
	convertedValid    bool
}

// Reset points the cache at a new raw palette. It does not copy raw; the
// caller decides whether raw aliases input memory or an owned buffer.
func (c *Cache) Reset(raw []byte, count int, sourceEncoding container.ColorEncoding) {
	c.raw = raw
	c.count = count
	c.sourceEncoding = sourceEncoding
	c.convertedValid = false
}

// Count returns the number of palette entries.
func (c *Cache) Count() int { return c.count }

// SourceEncoding returns the encoding the raw bytes are stored in.
func (c *Cache) SourceEncoding() container.ColorEncoding { return c.sourceEncoding }

// Invalidate forces the next Resolve to rebuild the converted buffer, even
// if the requested encoding matches what was last cached. The decoder calls
// it whenever the output-encoding override is set; Reset already
// invalidates on its own.
func (c *Cache) Invalidate() { c.convertedValid = false }

// Resolve returns the palette's entries in the requested encoding. When
// requested equals the source encoding, it returns the raw bytes unchanged
// (zero-copy, possibly aliasing caller/input memory). Otherwise it grows
// the converted buffer only if needed (monotonic growth, never shrunk) and
// performs an in-order RGB565 byte swap of every entry.
func (c *Cache) Resolve(requested container.ColorEncoding) []byte {
	if requested == c.sourceEncoding {
		return c.raw
	}
	if c.convertedValid && c.convertedEncoding == requested {
		return c.converted
	}
	need := c.count * container.BytesPerPaletteEntry
	if cap(c.converted) < need {
		c.converted = make([]byte, need)
	} else {
		c.converted = c.converted[:need]
	}
	byteSwapEntries(c.converted, c.raw[:need])
	c.convertedEncoding = requested
	c.convertedValid = true
	return c.converted
}

// byteSwapEntries writes the byte-order swap of every 2-byte RGB565 entry
// in src into dst. src and dst must be the same length and must not alias.
func byteSwapEntries(dst, src []byte) {
	for i := 0; i+1 < len(src); i += 2 {
		dst[i] = src[i+1]
		dst[i+1] = src[i]
	}
}
