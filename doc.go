// Package zel decodes the ZEL animated-image container: a format for
// memory-constrained devices that indexes frames by absolute byte offset,
// partitions each frame into a fixed grid of row-major zones that can be
// decompressed individually, and restricts pixels to 8-bit palette indices
// resolved against a global or per-frame RGB565 palette.
//
// A Decoder opens over either an in-memory byte slice (OpenMemory) or a
// caller-supplied random-access stream callback (OpenStream), and decodes
// whole frames or single zones, as palette indices or expanded RGB565, at
// full-frame stride or tight zone packing. A Decoder is not safe for
// concurrent use by multiple goroutines; open a separate Decoder per
// goroutine for disjoint inputs.
//
// Basic usage:
//
//	d, err := zel.OpenMemory(data)
//	if err != nil {
//		// handle err
//	}
//	defer d.Close()
//	width, _ := d.Width()
//	height, _ := d.Height()
//	dst := make([]byte, int(width)*int(height))
//	err = d.DecodeFrameIndex8(0, dst, int(width))
package zel
